package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos ...ForUpdate bloquean las filas hasta el fin de la transacción.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// GetManyForUpdate bloquea los productos en el orden de ids (el caller los pasa ordenados).
	GetManyForUpdate(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
	// SetStockBulk fija el agregado de varios productos en una sola sentencia.
	SetStockBulk(ctx context.Context, stocks map[string]int) error
	UpdateLocation(ctx context.Context, id string, loc *entity.Location) error
	Deactivate(ctx context.Context, id string) error
	// ListActiveIDsExcept IDs de productos activos que no están en exclude.
	ListActiveIDsExcept(ctx context.Context, exclude []string) ([]string, error)
}
