package postgres

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.LocationStockRepository = (*LocationStockRepo)(nil)

// LocationStockRepo filas de stock por ubicación (tabla location_stocks).
type LocationStockRepo struct {
	q Querier
}

// NewLocationStockRepository construye el repositorio. Pasar pool o tx.
func NewLocationStockRepository(q Querier) *LocationStockRepo {
	return &LocationStockRepo{q: q}
}

func (r *LocationStockRepo) list(ctx context.Context, op, query, productID string) ([]entity.LocationStock, error) {
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var out []entity.LocationStock
	for rows.Next() {
		var ls entity.LocationStock
		if err := rows.Scan(&ls.ProductID, &ls.Location.Letter, &ls.Location.Number, &ls.Quantity, &ls.UpdatedAt); err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}

// ListForUpdate filas del producto bloqueadas hasta el fin de la tx.
func (r *LocationStockRepo) ListForUpdate(ctx context.Context, productID string) ([]entity.LocationStock, error) {
	return r.list(ctx, "lock location stock", `
		SELECT product_id, letter, number, quantity, updated_at
		FROM location_stocks WHERE product_id = $1
		ORDER BY letter, number FOR UPDATE`, productID)
}

// ListNonZero filas con cantidad positiva.
func (r *LocationStockRepo) ListNonZero(ctx context.Context, productID string) ([]entity.LocationStock, error) {
	return r.list(ctx, "list location stock", `
		SELECT product_id, letter, number, quantity, updated_at
		FROM location_stocks WHERE product_id = $1 AND quantity > 0
		ORDER BY letter, number`, productID)
}

// Insert crea la fila. ON CONFLICT DO NOTHING evita abortar la tx: si otra tx ya creó la fila
// se devuelve domain.ErrConflict y el caller relee.
func (r *LocationStockRepo) Insert(ctx context.Context, row entity.LocationStock) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO location_stocks (product_id, letter, number, quantity, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (product_id, letter, number) DO NOTHING`,
		row.ProductID, row.Location.Letter, row.Location.Number, row.Quantity)
	if err != nil {
		return wrapErr("insert location stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// UpdateQuantity fija la cantidad de una fila existente.
func (r *LocationStockRepo) UpdateQuantity(ctx context.Context, row entity.LocationStock) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE location_stocks SET quantity = $4, updated_at = NOW()
		WHERE product_id = $1 AND letter = $2 AND number = $3`,
		row.ProductID, row.Location.Letter, row.Location.Number, row.Quantity)
	if err != nil {
		return wrapErr("update location stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByProducts borra todas las filas de los productos dados.
func (r *LocationStockRepo) DeleteByProducts(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM location_stocks WHERE product_id = ANY($1)`, productIDs); err != nil {
		return wrapErr("delete location stock", err)
	}
	return nil
}

// InsertBulk inserta filas con unnest en una sola sentencia.
func (r *LocationStockRepo) InsertBulk(ctx context.Context, rows []entity.LocationStock) error {
	if len(rows) == 0 {
		return nil
	}
	var (
		products = make([]string, len(rows))
		letters  = make([]string, len(rows))
		numbers  = make([]int64, len(rows))
		qtys     = make([]int64, len(rows))
	)
	for i, row := range rows {
		products[i] = row.ProductID
		letters[i] = row.Location.Letter
		numbers[i] = int64(row.Location.Number)
		qtys[i] = int64(row.Quantity)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO location_stocks (product_id, letter, number, quantity, updated_at)
		SELECT p, l, n, q, NOW()
		FROM unnest($1::text[], $2::text[], $3::bigint[], $4::bigint[]) AS t(p, l, n, q)`,
		products, letters, numbers, qtys)
	if err != nil {
		return wrapErr("bulk insert location stock", err)
	}
	return nil
}
