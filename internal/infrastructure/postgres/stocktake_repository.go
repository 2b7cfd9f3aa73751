package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.StocktakeRepository = (*StocktakeRepo)(nil)

const (
	stocktakeColumns = `id, seq, status, owner_id, notes, created_at, closed_at, applied_at`
	detailColumns    = `id, stocktake_id, product_id, letter, number, counted, baseline, discrepancy, created_at, updated_at`
)

// StocktakeRepo tomas de inventario y su tabla de detalles.
// Un detalle sin ubicación se guarda con letter '' y number 0 para que la clave única lo cubra.
type StocktakeRepo struct {
	q Querier
}

// NewStocktakeRepository construye el repositorio. Pasar pool o tx.
func NewStocktakeRepository(q Querier) *StocktakeRepo {
	return &StocktakeRepo{q: q}
}

func scanStocktake(row pgx.Row) (*entity.Stocktake, error) {
	var (
		st     entity.Stocktake
		status string
	)
	if err := row.Scan(&st.ID, &st.Seq, &status, &st.OwnerID, &st.Notes, &st.CreatedAt, &st.ClosedAt, &st.AppliedAt); err != nil {
		return nil, err
	}
	st.Status = entity.StocktakeStatus(status)
	return &st, nil
}

func scanDetail(row pgx.Row) (*entity.StocktakeDetail, error) {
	var (
		d      entity.StocktakeDetail
		letter string
		number int
	)
	if err := row.Scan(&d.ID, &d.StocktakeID, &d.ProductID, &letter, &number, &d.Counted, &d.Baseline, &d.Discrepancy, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if letter != "" {
		d.Location = &entity.Location{Letter: letter, Number: number}
	}
	return &d, nil
}

func detailKey(loc *entity.Location) (string, int) {
	if loc == nil {
		return "", 0
	}
	return loc.Letter, loc.Number
}

// Create inserta la toma; seq lo asigna la columna identity.
func (r *StocktakeRepo) Create(ctx context.Context, st *entity.Stocktake) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO stocktakes (id, status, owner_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING seq`,
		st.ID, string(st.Status), st.OwnerID, st.Notes, st.CreatedAt,
	).Scan(&st.Seq)
	if err != nil {
		return wrapErr("insert stocktake", err)
	}
	return nil
}

func (r *StocktakeRepo) getOne(ctx context.Context, op, query, id string) (*entity.Stocktake, error) {
	st, err := scanStocktake(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return st, nil
}

// GetByID obtiene una toma.
func (r *StocktakeRepo) GetByID(ctx context.Context, id string) (*entity.Stocktake, error) {
	return r.getOne(ctx, "get stocktake", `SELECT `+stocktakeColumns+` FROM stocktakes WHERE id = $1`, id)
}

// GetForUpdate obtiene la toma bloqueando la fila.
func (r *StocktakeRepo) GetForUpdate(ctx context.Context, id string) (*entity.Stocktake, error) {
	return r.getOne(ctx, "lock stocktake", `SELECT `+stocktakeColumns+` FROM stocktakes WHERE id = $1 FOR UPDATE`, id)
}

// LatestSeq lee (sin bloquear) el mayor seq.
func (r *StocktakeRepo) LatestSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM stocktakes`).Scan(&seq); err != nil {
		return 0, wrapErr("latest stocktake seq", err)
	}
	return seq, nil
}

// List tomas de la más reciente a la más antigua.
func (r *StocktakeRepo) List(ctx context.Context, limit, offset int) ([]*entity.Stocktake, error) {
	rows, err := r.q.Query(ctx, `SELECT `+stocktakeColumns+` FROM stocktakes ORDER BY seq DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list stocktakes", err)
	}
	defer rows.Close()
	var list []*entity.Stocktake
	for rows.Next() {
		st, err := scanStocktake(rows)
		if err != nil {
			return nil, wrapErr("scan stocktake", err)
		}
		list = append(list, st)
	}
	return list, rows.Err()
}

// Update persiste estado, notas y marcas de tiempo.
func (r *StocktakeRepo) Update(ctx context.Context, st *entity.Stocktake) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stocktakes SET status = $2, notes = $3, closed_at = $4, applied_at = $5
		WHERE id = $1`,
		st.ID, string(st.Status), st.Notes, st.ClosedAt, st.AppliedAt)
	if err != nil {
		return wrapErr("update stocktake", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la toma; los detalles caen por ON DELETE CASCADE.
func (r *StocktakeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stocktakes WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete stocktake", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDetail obtiene un detalle de la toma.
func (r *StocktakeRepo) GetDetail(ctx context.Context, stocktakeID, detailID string) (*entity.StocktakeDetail, error) {
	d, err := scanDetail(r.q.QueryRow(ctx,
		`SELECT `+detailColumns+` FROM stocktake_details WHERE stocktake_id = $1 AND id = $2`, stocktakeID, detailID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get stocktake detail", err)
	}
	return d, nil
}

// FindDetailForUpdate busca y bloquea el detalle (toma, producto, ubicación).
func (r *StocktakeRepo) FindDetailForUpdate(ctx context.Context, stocktakeID, productID string, loc *entity.Location) (*entity.StocktakeDetail, error) {
	letter, number := detailKey(loc)
	d, err := scanDetail(r.q.QueryRow(ctx, `
		SELECT `+detailColumns+` FROM stocktake_details
		WHERE stocktake_id = $1 AND product_id = $2 AND letter = $3 AND number = $4
		FOR UPDATE`, stocktakeID, productID, letter, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("find stocktake detail", err)
	}
	return d, nil
}

// CreateDetail inserta el detalle; domain.ErrConflict si la clave ya existe.
func (r *StocktakeRepo) CreateDetail(ctx context.Context, d *entity.StocktakeDetail) error {
	letter, number := detailKey(d.Location)
	tag, err := r.q.Exec(ctx, `
		INSERT INTO stocktake_details (`+detailColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (stocktake_id, product_id, letter, number) DO NOTHING`,
		d.ID, d.StocktakeID, d.ProductID, letter, number, d.Counted, d.Baseline, d.Discrepancy, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return wrapErr("insert stocktake detail", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// UpdateDetail persiste conteo y diferencia.
func (r *StocktakeRepo) UpdateDetail(ctx context.Context, d *entity.StocktakeDetail) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stocktake_details SET counted = $2, discrepancy = $3, updated_at = $4
		WHERE id = $1`, d.ID, d.Counted, d.Discrepancy, d.UpdatedAt)
	if err != nil {
		return wrapErr("update stocktake detail", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteDetail elimina un detalle.
func (r *StocktakeRepo) DeleteDetail(ctx context.Context, stocktakeID, detailID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stocktake_details WHERE stocktake_id = $1 AND id = $2`, stocktakeID, detailID)
	if err != nil {
		return wrapErr("delete stocktake detail", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDetails detalles en orden de creación.
func (r *StocktakeRepo) ListDetails(ctx context.Context, stocktakeID string) ([]entity.StocktakeDetail, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+detailColumns+` FROM stocktake_details WHERE stocktake_id = $1 ORDER BY created_at, id`, stocktakeID)
	if err != nil {
		return nil, wrapErr("list stocktake details", err)
	}
	defer rows.Close()
	var out []entity.StocktakeDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, wrapErr("scan stocktake detail", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
