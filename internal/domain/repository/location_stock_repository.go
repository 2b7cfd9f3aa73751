package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// LocationStockRepository puerto para las filas de stock por ubicación.
type LocationStockRepository interface {
	// ListForUpdate devuelve y bloquea todas las filas del producto.
	ListForUpdate(ctx context.Context, productID string) ([]entity.LocationStock, error)
	// ListNonZero filas con cantidad > 0 (modelo de lectura).
	ListNonZero(ctx context.Context, productID string) ([]entity.LocationStock, error)
	// Insert devuelve domain.ErrConflict si la fila ya existe.
	Insert(ctx context.Context, row entity.LocationStock) error
	UpdateQuantity(ctx context.Context, row entity.LocationStock) error
	DeleteByProducts(ctx context.Context, productIDs []string) error
	InsertBulk(ctx context.Context, rows []entity.LocationStock) error
}
