package postgres

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex append-only (tabla movements). entry_no conserva el orden de inserción.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el repositorio. Pasar pool o tx.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, product_id, direction, quantity, stock_before, stock_after, actor_id, reason, batch_id, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Direction, m.Quantity, m.StockBefore, m.StockAfter,
		m.ActorID, m.Reason, m.BatchID, m.Reference, m.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert movement", err)
	}
	return nil
}

// CreateBulk inserta los movimientos en el orden recibido con una sola sentencia.
func (r *MovementRepo) CreateBulk(ctx context.Context, movs []*entity.Movement) error {
	if len(movs) == 0 {
		return nil
	}
	n := len(movs)
	var (
		ids        = make([]string, n)
		products   = make([]string, n)
		directions = make([]string, n)
		quantities = make([]int64, n)
		befores    = make([]int64, n)
		afters     = make([]int64, n)
		actors     = make([]string, n)
		reasons    = make([]string, n)
		batches    = make([]string, n)
		references = make([]string, n)
	)
	for i, m := range movs {
		ids[i], products[i], directions[i] = m.ID, m.ProductID, m.Direction
		quantities[i], befores[i], afters[i] = int64(m.Quantity), int64(m.StockBefore), int64(m.StockAfter)
		actors[i], reasons[i] = m.ActorID, m.Reason
		batches[i], references[i] = m.BatchID, m.Reference
	}
	query := `
		INSERT INTO movements (id, product_id, direction, quantity, stock_before, stock_after, actor_id, reason, batch_id, reference, created_at)
		SELECT id, product_id, direction, quantity, stock_before, stock_after, actor_id, reason,
		       NULLIF(batch_id, ''), NULLIF(reference, ''), $11::timestamptz
		FROM unnest($1::text[], $2::text[], $3::text[], $4::bigint[], $5::bigint[], $6::bigint[],
		            $7::text[], $8::text[], $9::text[], $10::text[])
		     WITH ORDINALITY AS t(id, product_id, direction, quantity, stock_before, stock_after, actor_id, reason, batch_id, reference, ord)
		ORDER BY ord`
	_, err := r.q.Exec(ctx, query,
		ids, products, directions, quantities, befores, afters,
		actors, reasons, batches, references, movs[0].CreatedAt,
	)
	if err != nil {
		return wrapErr("bulk insert movements", err)
	}
	return nil
}

// ListByProduct kardex del producto, más reciente primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT id, product_id, direction, quantity, stock_before, stock_after, actor_id, reason,
		       COALESCE(batch_id, ''), COALESCE(reference, ''), created_at
		FROM movements WHERE product_id = $1
		ORDER BY entry_no DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, wrapErr("list movements", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Direction, &m.Quantity, &m.StockBefore, &m.StockAfter,
			&m.ActorID, &m.Reason, &m.BatchID, &m.Reference, &m.CreatedAt); err != nil {
			return nil, wrapErr("scan movement", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CountByBatch cantidad de movimientos de un lote.
func (r *MovementRepo) CountByBatch(ctx context.Context, batchID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE batch_id = $1`, batchID).Scan(&n); err != nil {
		return 0, wrapErr("count movements", err)
	}
	return n, nil
}
