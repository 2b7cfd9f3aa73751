package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y líneas vistas desde bodega. Las ventas se crean en otro sistema.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el repositorio. Pasar pool o tx.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// GetForUpdate bloquea la cabecera de la venta.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, `SELECT id, status, created_at, updated_at FROM sales WHERE id = $1 FOR UPDATE`, id).
		Scan(&s.ID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("lock sale", err)
	}
	return &s, nil
}

// GetLineForUpdate bloquea una línea de la venta.
func (r *SaleRepo) GetLineForUpdate(ctx context.Context, saleID, lineID string) (*entity.SaleLine, error) {
	var l entity.SaleLine
	err := r.q.QueryRow(ctx, `
		SELECT id, sale_id, product_id, quantity, picked FROM sale_lines
		WHERE sale_id = $1 AND id = $2 FOR UPDATE`, saleID, lineID).
		Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.Picked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("lock sale line", err)
	}
	return &l, nil
}

// ListLines líneas de la venta.
func (r *SaleRepo) ListLines(ctx context.Context, saleID string) ([]entity.SaleLine, error) {
	rows, err := r.q.Query(ctx, `SELECT id, sale_id, product_id, quantity, picked FROM sale_lines WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, wrapErr("list sale lines", err)
	}
	defer rows.Close()
	var out []entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.Picked); err != nil {
			return nil, wrapErr("scan sale line", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateLinePicked fija las unidades preparadas.
func (r *SaleRepo) UpdateLinePicked(ctx context.Context, lineID string, picked int) error {
	tag, err := r.q.Exec(ctx, `UPDATE sale_lines SET picked = $2 WHERE id = $1`, lineID, picked)
	if err != nil {
		return wrapErr("update sale line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus cambia el estado de la venta.
func (r *SaleRepo) UpdateStatus(ctx context.Context, saleID, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, updated_at = NOW() WHERE id = $1`, saleID, status)
	if err != nil {
		return wrapErr("update sale status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
