package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, code, description, stock, location_letter, location_number, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p      entity.Product
		letter *string
		number *int
	)
	if err := row.Scan(&p.ID, &p.Code, &p.Description, &p.Stock, &letter, &number, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if letter != nil && number != nil {
		p.Location = &entity.Location{Letter: *letter, Number: *number}
	}
	return &p, nil
}

func locationArgs(loc *entity.Location) (any, any) {
	if loc == nil {
		return nil, nil
	}
	return loc.Letter, loc.Number
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	letter, number := locationArgs(product.Location)
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Code, product.Description, product.Stock,
		letter, number, product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapErr("insert product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByCode obtiene un producto por código normalizado.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by code", `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
}

// GetForUpdate obtiene el producto bloqueando la fila (SELECT ... FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product for update", `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetManyForUpdate bloquea un conjunto de productos en orden de id.
func (r *ProductRepo) GetManyForUpdate(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, wrapErr("lock products", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan product", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("lock products", err)
	}
	return out, nil
}

// List lista productos ordenados por código.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, wrapErr("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan product", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateStock fija el agregado.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`, id, stock)
	if err != nil {
		return wrapErr("update product stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStockBulk fija el agregado de varios productos con unnest en una sola sentencia.
func (r *ProductRepo) SetStockBulk(ctx context.Context, stocks map[string]int) error {
	if len(stocks) == 0 {
		return nil
	}
	ids := make([]string, 0, len(stocks))
	values := make([]int64, 0, len(stocks))
	for id, s := range stocks {
		ids = append(ids, id)
		values = append(values, int64(s))
	}
	query := `
		UPDATE products p SET stock = v.stock, updated_at = NOW()
		FROM unnest($1::text[], $2::bigint[]) AS v(id, stock)
		WHERE p.id = v.id`
	if _, err := r.q.Exec(ctx, query, ids, values); err != nil {
		return wrapErr("bulk update product stock", err)
	}
	return nil
}

// UpdateLocation cambia la ubicación principal; nil la elimina.
func (r *ProductRepo) UpdateLocation(ctx context.Context, id string, loc *entity.Location) error {
	letter, number := locationArgs(loc)
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET location_letter = $2, location_number = $3, updated_at = NOW() WHERE id = $1`,
		id, letter, number)
	if err != nil {
		return wrapErr("update product location", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate borrado lógico.
func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return wrapErr("deactivate product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActiveIDsExcept IDs de productos activos fuera de exclude, ordenados.
func (r *ProductRepo) ListActiveIDsExcept(ctx context.Context, exclude []string) ([]string, error) {
	if exclude == nil {
		// NULL en ANY anularía el NOT y no devolvería filas.
		exclude = []string{}
	}
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE active AND NOT (id = ANY($1)) ORDER BY id`, exclude)
	if err != nil {
		return nil, wrapErr("list active products", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect product ids: %w", err)
	}
	return ids, nil
}
