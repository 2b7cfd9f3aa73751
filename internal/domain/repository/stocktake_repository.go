package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// StocktakeRepository puerto para tomas de inventario y sus detalles.
type StocktakeRepository interface {
	// Create asigna ID y Seq.
	Create(ctx context.Context, st *entity.Stocktake) error
	GetByID(ctx context.Context, id string) (*entity.Stocktake, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Stocktake, error)
	// LatestSeq mayor Seq existente (0 si no hay tomas).
	LatestSeq(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Stocktake, error)
	Update(ctx context.Context, st *entity.Stocktake) error
	Delete(ctx context.Context, id string) error

	GetDetail(ctx context.Context, stocktakeID, detailID string) (*entity.StocktakeDetail, error)
	// FindDetailForUpdate busca por (toma, producto, ubicación); nil si no existe.
	FindDetailForUpdate(ctx context.Context, stocktakeID, productID string, loc *entity.Location) (*entity.StocktakeDetail, error)
	// CreateDetail devuelve domain.ErrConflict ante la clave única (toma, producto, ubicación).
	CreateDetail(ctx context.Context, d *entity.StocktakeDetail) error
	UpdateDetail(ctx context.Context, d *entity.StocktakeDetail) error
	DeleteDetail(ctx context.Context, stocktakeID, detailID string) error
	ListDetails(ctx context.Context, stocktakeID string) ([]entity.StocktakeDetail, error)
}
