package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementRepository puerto del kardex (solo inserción y lectura).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	CreateBulk(ctx context.Context, movements []*entity.Movement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Movement, error)
	CountByBatch(ctx context.Context, batchID string) (int, error)
}
