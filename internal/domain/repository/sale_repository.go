package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// SaleRepository puerto de lectura/avance de ventas para el picking.
type SaleRepository interface {
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetLineForUpdate(ctx context.Context, saleID, lineID string) (*entity.SaleLine, error)
	ListLines(ctx context.Context, saleID string) ([]entity.SaleLine, error)
	UpdateLinePicked(ctx context.Context, lineID string, picked int) error
	UpdateStatus(ctx context.Context, saleID, status string) error
}
