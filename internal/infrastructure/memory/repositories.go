package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = productRepo{}
	_ repository.LocationStockRepository = locationRepo{}
	_ repository.MovementRepository      = movementRepo{}
	_ repository.StocktakeRepository     = stocktakeRepo{}
	_ repository.SaleRepository          = saleRepo{}
)

func exec(v view, fn func(d *state) error) error {
	_, err := with(v, func(d *state) (struct{}, error) { return struct{}{}, fn(d) })
	return err
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ---------------------------------------------------------------------------
// Productos
// ---------------------------------------------------------------------------

type productRepo struct{ v view }

func cloneProduct(p entity.Product) *entity.Product {
	p.Location = copyPtr(p.Location)
	return &p
}

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return exec(r.v, func(d *state) error {
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrConflict
		}
		for _, existing := range d.products {
			if existing.Code == p.Code {
				return domain.ErrConflict
			}
		}
		d.products[p.ID] = *cloneProduct(*p)
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return with(r.v, func(d *state) (*entity.Product, error) {
		p, ok := d.products[id]
		if !ok {
			return nil, nil
		}
		return cloneProduct(p), nil
	})
}

func (r productRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	return with(r.v, func(d *state) (*entity.Product, error) {
		for _, p := range d.products {
			if p.Code == code {
				return cloneProduct(p), nil
			}
		}
		return nil, nil
	})
}

func (r productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r productRepo) GetManyForUpdate(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	return with(r.v, func(d *state) (map[string]*entity.Product, error) {
		out := make(map[string]*entity.Product, len(ids))
		for _, id := range ids {
			if p, ok := d.products[id]; ok {
				out[id] = cloneProduct(p)
			}
		}
		return out, nil
	})
}

func (r productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	return with(r.v, func(d *state) ([]*entity.Product, error) {
		list := make([]*entity.Product, 0, len(d.products))
		for _, p := range d.products {
			list = append(list, cloneProduct(p))
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
		return page(list, limit, offset), nil
	})
}

func (r productRepo) update(id string, fn func(p *entity.Product)) error {
	return exec(r.v, func(d *state) error {
		p, ok := d.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		fn(&p)
		// Se escribe bajo la clave almacenada: id puede venir de un buffer que el caller reutiliza.
		d.products[p.ID] = p
		return nil
	})
}

func (r productRepo) UpdateStock(_ context.Context, id string, stock int) error {
	if stock < 0 {
		return domain.ErrInsufficientStock
	}
	return r.update(id, func(p *entity.Product) { p.Stock = stock })
}

func (r productRepo) SetStockBulk(_ context.Context, stocks map[string]int) error {
	return exec(r.v, func(d *state) error {
		for id, s := range stocks {
			if s < 0 {
				return domain.ErrInsufficientStock
			}
			if p, ok := d.products[id]; ok {
				p.Stock = s
				d.products[p.ID] = p
			}
		}
		return nil
	})
}

func (r productRepo) UpdateLocation(_ context.Context, id string, loc *entity.Location) error {
	return r.update(id, func(p *entity.Product) { p.Location = copyPtr(loc) })
}

func (r productRepo) Deactivate(_ context.Context, id string) error {
	return r.update(id, func(p *entity.Product) { p.Active = false })
}

func (r productRepo) ListActiveIDsExcept(_ context.Context, exclude []string) ([]string, error) {
	return with(r.v, func(d *state) ([]string, error) {
		skip := make(map[string]struct{}, len(exclude))
		for _, id := range exclude {
			skip[id] = struct{}{}
		}
		var ids []string
		for id, p := range d.products {
			if _, ok := skip[id]; ok || !p.Active {
				continue
			}
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids, nil
	})
}

// ---------------------------------------------------------------------------
// Stock por ubicación
// ---------------------------------------------------------------------------

type locationRepo struct{ v view }

func sortedRows(rows map[entity.Location]entity.LocationStock, nonZero bool) []entity.LocationStock {
	out := make([]entity.LocationStock, 0, len(rows))
	for _, row := range rows {
		if nonZero && row.Quantity == 0 {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location.Less(out[j].Location) })
	return out
}

func (r locationRepo) ListForUpdate(_ context.Context, productID string) ([]entity.LocationStock, error) {
	return with(r.v, func(d *state) ([]entity.LocationStock, error) {
		return sortedRows(d.locations[productID], false), nil
	})
}

func (r locationRepo) ListNonZero(_ context.Context, productID string) ([]entity.LocationStock, error) {
	return with(r.v, func(d *state) ([]entity.LocationStock, error) {
		return sortedRows(d.locations[productID], true), nil
	})
}

func (r locationRepo) Insert(_ context.Context, row entity.LocationStock) error {
	return exec(r.v, func(d *state) error {
		if row.Quantity < 0 {
			return domain.ErrInsufficientStock
		}
		rows := d.locations[row.ProductID]
		if rows == nil {
			rows = make(map[entity.Location]entity.LocationStock)
			d.locations[row.ProductID] = rows
		}
		if _, ok := rows[row.Location]; ok {
			return domain.ErrConflict
		}
		rows[row.Location] = row
		return nil
	})
}

func (r locationRepo) UpdateQuantity(_ context.Context, row entity.LocationStock) error {
	return exec(r.v, func(d *state) error {
		if row.Quantity < 0 {
			return domain.ErrInsufficientStock
		}
		rows := d.locations[row.ProductID]
		existing, ok := rows[row.Location]
		if !ok {
			return domain.ErrNotFound
		}
		existing.Quantity = row.Quantity
		rows[row.Location] = existing
		return nil
	})
}

func (r locationRepo) DeleteByProducts(_ context.Context, productIDs []string) error {
	return exec(r.v, func(d *state) error {
		for _, id := range productIDs {
			delete(d.locations, id)
		}
		return nil
	})
}

func (r locationRepo) InsertBulk(ctx context.Context, rows []entity.LocationStock) error {
	for _, row := range rows {
		if err := r.Insert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Kardex
// ---------------------------------------------------------------------------

type movementRepo struct{ v view }

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return exec(r.v, func(d *state) error {
		d.movements = append(d.movements, *m)
		return nil
	})
}

func (r movementRepo) CreateBulk(_ context.Context, movs []*entity.Movement) error {
	return exec(r.v, func(d *state) error {
		for _, m := range movs {
			d.movements = append(d.movements, *m)
		}
		return nil
	})
}

func (r movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.Movement, error) {
	return with(r.v, func(d *state) ([]*entity.Movement, error) {
		var list []*entity.Movement
		for i := len(d.movements) - 1; i >= 0; i-- {
			if d.movements[i].ProductID == productID {
				m := d.movements[i]
				list = append(list, &m)
			}
		}
		return page(list, limit, offset), nil
	})
}

func (r movementRepo) CountByBatch(_ context.Context, batchID string) (int, error) {
	return with(r.v, func(d *state) (int, error) {
		n := 0
		for _, m := range d.movements {
			if m.BatchID == batchID {
				n++
			}
		}
		return n, nil
	})
}

// ---------------------------------------------------------------------------
// Tomas de inventario
// ---------------------------------------------------------------------------

type stocktakeRepo struct{ v view }

func cloneStocktake(st entity.Stocktake) *entity.Stocktake {
	st.ClosedAt = copyPtr(st.ClosedAt)
	st.AppliedAt = copyPtr(st.AppliedAt)
	return &st
}

func cloneDetail(dt entity.StocktakeDetail) entity.StocktakeDetail {
	dt.StocktakeID = strings.Clone(dt.StocktakeID)
	dt.Location = copyPtr(dt.Location)
	return dt
}

func sameLocation(a, b *entity.Location) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r stocktakeRepo) Create(_ context.Context, st *entity.Stocktake) error {
	return exec(r.v, func(d *state) error {
		if _, ok := d.stocktakes[st.ID]; ok {
			return domain.ErrConflict
		}
		d.seq++
		st.Seq = d.seq
		d.stocktakes[st.ID] = *cloneStocktake(*st)
		return nil
	})
}

func (r stocktakeRepo) GetByID(_ context.Context, id string) (*entity.Stocktake, error) {
	return with(r.v, func(d *state) (*entity.Stocktake, error) {
		st, ok := d.stocktakes[id]
		if !ok {
			return nil, nil
		}
		return cloneStocktake(st), nil
	})
}

func (r stocktakeRepo) GetForUpdate(ctx context.Context, id string) (*entity.Stocktake, error) {
	return r.GetByID(ctx, id)
}

func (r stocktakeRepo) LatestSeq(_ context.Context) (int64, error) {
	return with(r.v, func(d *state) (int64, error) {
		var latest int64
		for _, st := range d.stocktakes {
			latest = max(latest, st.Seq)
		}
		return latest, nil
	})
}

func (r stocktakeRepo) List(_ context.Context, limit, offset int) ([]*entity.Stocktake, error) {
	return with(r.v, func(d *state) ([]*entity.Stocktake, error) {
		list := make([]*entity.Stocktake, 0, len(d.stocktakes))
		for _, st := range d.stocktakes {
			list = append(list, cloneStocktake(st))
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Seq > list[j].Seq })
		return page(list, limit, offset), nil
	})
}

func (r stocktakeRepo) Update(_ context.Context, st *entity.Stocktake) error {
	return exec(r.v, func(d *state) error {
		if _, ok := d.stocktakes[st.ID]; !ok {
			return domain.ErrNotFound
		}
		d.stocktakes[st.ID] = *cloneStocktake(*st)
		return nil
	})
}

func (r stocktakeRepo) Delete(_ context.Context, id string) error {
	return exec(r.v, func(d *state) error {
		if _, ok := d.stocktakes[id]; !ok {
			return domain.ErrNotFound
		}
		delete(d.stocktakes, id)
		d.details = slices.DeleteFunc(d.details, func(dt entity.StocktakeDetail) bool { return dt.StocktakeID == id })
		return nil
	})
}

func (r stocktakeRepo) GetDetail(_ context.Context, stocktakeID, detailID string) (*entity.StocktakeDetail, error) {
	return with(r.v, func(d *state) (*entity.StocktakeDetail, error) {
		for _, dt := range d.details {
			if dt.StocktakeID == stocktakeID && dt.ID == detailID {
				c := cloneDetail(dt)
				return &c, nil
			}
		}
		return nil, nil
	})
}

func (r stocktakeRepo) FindDetailForUpdate(_ context.Context, stocktakeID, productID string, loc *entity.Location) (*entity.StocktakeDetail, error) {
	return with(r.v, func(d *state) (*entity.StocktakeDetail, error) {
		for _, dt := range d.details {
			if dt.StocktakeID == stocktakeID && dt.ProductID == productID && sameLocation(dt.Location, loc) {
				c := cloneDetail(dt)
				return &c, nil
			}
		}
		return nil, nil
	})
}

func (r stocktakeRepo) CreateDetail(_ context.Context, dt *entity.StocktakeDetail) error {
	return exec(r.v, func(d *state) error {
		for _, existing := range d.details {
			if existing.StocktakeID == dt.StocktakeID && existing.ProductID == dt.ProductID && sameLocation(existing.Location, dt.Location) {
				return domain.ErrConflict
			}
		}
		d.details = append(d.details, cloneDetail(*dt))
		return nil
	})
}

func (r stocktakeRepo) UpdateDetail(_ context.Context, dt *entity.StocktakeDetail) error {
	return exec(r.v, func(d *state) error {
		for i := range d.details {
			if d.details[i].ID == dt.ID {
				d.details[i].Counted = dt.Counted
				d.details[i].Discrepancy = dt.Discrepancy
				d.details[i].UpdatedAt = dt.UpdatedAt
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r stocktakeRepo) DeleteDetail(_ context.Context, stocktakeID, detailID string) error {
	return exec(r.v, func(d *state) error {
		n := len(d.details)
		d.details = slices.DeleteFunc(d.details, func(dt entity.StocktakeDetail) bool {
			return dt.StocktakeID == stocktakeID && dt.ID == detailID
		})
		if len(d.details) == n {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r stocktakeRepo) ListDetails(_ context.Context, stocktakeID string) ([]entity.StocktakeDetail, error) {
	return with(r.v, func(d *state) ([]entity.StocktakeDetail, error) {
		var out []entity.StocktakeDetail
		for _, dt := range d.details {
			if dt.StocktakeID == stocktakeID {
				out = append(out, cloneDetail(dt))
			}
		}
		return out, nil
	})
}

// ---------------------------------------------------------------------------
// Ventas
// ---------------------------------------------------------------------------

type saleRepo struct{ v view }

func (r saleRepo) GetForUpdate(_ context.Context, id string) (*entity.Sale, error) {
	return with(r.v, func(d *state) (*entity.Sale, error) {
		s, ok := d.sales[id]
		if !ok {
			return nil, nil
		}
		return &s, nil
	})
}

func (r saleRepo) GetLineForUpdate(_ context.Context, saleID, lineID string) (*entity.SaleLine, error) {
	return with(r.v, func(d *state) (*entity.SaleLine, error) {
		l, ok := d.lines[lineID]
		if !ok || l.SaleID != saleID {
			return nil, nil
		}
		return &l, nil
	})
}

func (r saleRepo) ListLines(_ context.Context, saleID string) ([]entity.SaleLine, error) {
	return with(r.v, func(d *state) ([]entity.SaleLine, error) {
		var out []entity.SaleLine
		for _, l := range d.lines {
			if l.SaleID == saleID {
				out = append(out, l)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	})
}

func (r saleRepo) UpdateLinePicked(_ context.Context, lineID string, picked int) error {
	return exec(r.v, func(d *state) error {
		l, ok := d.lines[lineID]
		if !ok {
			return domain.ErrNotFound
		}
		if picked < 0 || picked > l.Quantity {
			return domain.ErrInvalidQuantity
		}
		l.Picked = picked
		d.lines[l.ID] = l
		return nil
	})
}

func (r saleRepo) UpdateStatus(_ context.Context, saleID, status string) error {
	return exec(r.v, func(d *state) error {
		s, ok := d.sales[saleID]
		if !ok {
			return domain.ErrNotFound
		}
		s.Status = status
		d.sales[s.ID] = s
		return nil
	})
}
