package stocktake

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/ports"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/clock"
)

// DefaultChunkSize tamaño de bloque para las escrituras masivas de Apply.
const DefaultChunkSize = 500

// Config opciones del flujo de tomas de inventario.
type Config struct {
	RequireSameDay bool
	Location       *time.Location
	ChunkSize      int
}

// UseCase flujo de toma de inventario físico: open -> closed -> applied.
type UseCase struct {
	txRunner  ports.TxRunner
	repos     repository.Repositories
	clock     clock.Clock
	policy    SameDayPolicy
	chunkSize int
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso. repos se usa para los modelos de lectura.
func NewUseCase(txRunner ports.TxRunner, repos repository.Repositories, clk clock.Clock, cfg Config, log zerolog.Logger) *UseCase {
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	return &UseCase{
		txRunner:  txRunner,
		repos:     repos,
		clock:     clk,
		policy:    SameDayPolicy{Clock: clk, Location: cfg.Location, Enabled: cfg.RequireSameDay},
		chunkSize: chunk,
		log:       log,
	}
}

// AddCountInput un escaneo. Location nil toma la ubicación principal del producto.
type AddCountInput struct {
	StocktakeID string
	Code        string
	Quantity    int
	Location    *entity.Location
}

// Create abre una nueva toma.
func (uc *UseCase) Create(ctx context.Context, ownerID, notes string) (*dto.StocktakeResponse, error) {
	st := &entity.Stocktake{
		ID:        uuid.New().String(),
		Status:    entity.StocktakeOpen,
		OwnerID:   ownerID,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.repos.Stocktakes.Create(ctx, st); err != nil {
		return nil, err
	}
	uc.log.Info().Str("stocktake_id", st.ID).Int64("seq", st.Seq).Str("owner_id", ownerID).Msg("toma de inventario abierta")
	return toStocktakeResponse(st), nil
}

// AddCount suma un escaneo al detalle (toma, producto, ubicación), creándolo en el primer contacto
// con baseline = stock actual del producto.
func (uc *UseCase) AddCount(ctx context.Context, in AddCountInput) (*dto.StocktakeDetailResponse, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	code := entity.NormalizeCode(in.Code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Location != nil {
		loc, err := entity.NewLocation(in.Location.Letter, in.Location.Number)
		if err != nil {
			return nil, domain.ErrInvalidLocation
		}
		in.Location = &loc
	}
	var out *entity.StocktakeDetail
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if _, err := lockOpen(ctx, repos, in.StocktakeID); err != nil {
			return err
		}
		product, err := repos.Products.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if !product.Active {
			return domain.ErrProductInactive
		}
		loc := in.Location
		if loc == nil {
			loc = product.Location
		}

		// Un primer contacto concurrente choca con la clave única: se relee y se incrementa.
		for attempt := 0; attempt < 2; attempt++ {
			detail, err := repos.Stocktakes.FindDetailForUpdate(ctx, in.StocktakeID, product.ID, loc)
			if err != nil {
				return err
			}
			now := uc.clock.Now()
			if detail != nil {
				detail.AddCounted(in.Quantity)
				detail.UpdatedAt = now
				if err := repos.Stocktakes.UpdateDetail(ctx, detail); err != nil {
					return err
				}
				out = detail
				return nil
			}
			detail = &entity.StocktakeDetail{
				ID:          uuid.New().String(),
				StocktakeID: in.StocktakeID,
				ProductID:   product.ID,
				Location:    loc,
				Baseline:    product.Stock,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			detail.AddCounted(in.Quantity)
			err = repos.Stocktakes.CreateDetail(ctx, detail)
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			if err != nil {
				return err
			}
			out = detail
			return nil
		}
		return domain.ErrConflict
	})
	if err != nil {
		return nil, err
	}
	resp := toDetailResponse(*out)
	return &resp, nil
}

// SetCount sobrescribe el conteo de un detalle.
func (uc *UseCase) SetCount(ctx context.Context, stocktakeID, detailID string, counted int) (*dto.StocktakeDetailResponse, error) {
	if counted < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var out *entity.StocktakeDetail
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if _, err := lockOpen(ctx, repos, stocktakeID); err != nil {
			return err
		}
		detail, err := repos.Stocktakes.GetDetail(ctx, stocktakeID, detailID)
		if err != nil {
			return err
		}
		if detail == nil {
			return domain.ErrNotFound
		}
		detail.SetCounted(counted)
		detail.UpdatedAt = uc.clock.Now()
		if err := repos.Stocktakes.UpdateDetail(ctx, detail); err != nil {
			return err
		}
		out = detail
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toDetailResponse(*out)
	return &resp, nil
}

// RemoveDetail elimina un detalle escaneado por error.
func (uc *UseCase) RemoveDetail(ctx context.Context, stocktakeID, detailID string) error {
	return uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if _, err := lockOpen(ctx, repos, stocktakeID); err != nil {
			return err
		}
		detail, err := repos.Stocktakes.GetDetail(ctx, stocktakeID, detailID)
		if err != nil {
			return err
		}
		if detail == nil {
			return domain.ErrNotFound
		}
		return repos.Stocktakes.DeleteDetail(ctx, stocktakeID, detailID)
	})
}

// Close pasa la toma de open a closed; a partir de aquí no admite conteos.
func (uc *UseCase) Close(ctx context.Context, id string) (*dto.StocktakeResponse, error) {
	var out *entity.Stocktake
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		st, err := repos.Stocktakes.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if st == nil {
			return domain.ErrNotFound
		}
		if !st.Status.CanTransitionTo(entity.StocktakeClosed) {
			return domain.ErrStocktakeNotOpen
		}
		now := uc.clock.Now()
		st.Status = entity.StocktakeClosed
		st.ClosedAt = &now
		if err := repos.Stocktakes.Update(ctx, st); err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("stocktake_id", id).Msg("toma de inventario cerrada")
	return toStocktakeResponse(out), nil
}

// Delete elimina una toma que sigue abierta junto con sus detalles.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if _, err := lockOpen(ctx, repos, id); err != nil {
			return err
		}
		return repos.Stocktakes.Delete(ctx, id)
	})
}

// Get obtiene la cabecera de una toma.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.StocktakeResponse, error) {
	st, err := uc.repos.Stocktakes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.ErrNotFound
	}
	return toStocktakeResponse(st), nil
}

// List lista tomas de la más reciente a la más antigua.
func (uc *UseCase) List(ctx context.Context, limit, offset int) (*dto.StocktakeListResponse, error) {
	list, err := uc.repos.Stocktakes.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StocktakeResponse, 0, len(list))
	for _, st := range list {
		items = append(items, *toStocktakeResponse(st))
	}
	return &dto.StocktakeListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// Details filas de conteo con counted, baseline y discrepancy.
func (uc *UseCase) Details(ctx context.Context, id string) ([]dto.StocktakeDetailResponse, error) {
	st, err := uc.repos.Stocktakes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.ErrNotFound
	}
	details, err := uc.repos.Stocktakes.ListDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StocktakeDetailResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toDetailResponse(d))
	}
	return out, nil
}

// Summary totales de la toma. El baseline se toma una vez por producto, del primer detalle creado.
func (uc *UseCase) Summary(ctx context.Context, id string) (*dto.StocktakeSummaryResponse, error) {
	st, err := uc.repos.Stocktakes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.ErrNotFound
	}
	details, err := uc.repos.Stocktakes.ListDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.StocktakeSummaryResponse{StocktakeID: st.ID, Status: string(st.Status), Rows: len(details)}
	first := make(map[string]entity.StocktakeDetail)
	for _, d := range details {
		out.TotalCounted += d.Counted
		if d.Discrepancy != 0 {
			out.RowsWithDiscrepancy++
		}
		if f, ok := first[d.ProductID]; !ok || d.CreatedAt.Before(f.CreatedAt) {
			first[d.ProductID] = d
		}
	}
	out.Products = len(first)
	for _, d := range first {
		out.TotalBaseline += d.Baseline
	}
	return out, nil
}

// Apply rebasa el stock con los conteos de una toma cerrada. Precondiciones, sin escrituras si fallan:
// no aplicada, cerrada, la más reciente, con detalles y del día actual.
//
// En una sola transacción: fija el agregado de cada producto contado a la suma de sus conteos,
// reemplaza sus filas de ubicación por las contadas, deja en 0 y sin filas a todo producto activo
// no escaneado, registra un ajuste en el kardex por cada agregado que cambió y marca la toma como aplicada.
func (uc *UseCase) Apply(ctx context.Context, id, actorID string) (*dto.StocktakeResponse, error) {
	var (
		out      *entity.Stocktake
		adjusted int
		zeroed   int
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		st, err := repos.Stocktakes.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if st == nil {
			return domain.ErrNotFound
		}
		if st.Status == entity.StocktakeApplied {
			return domain.ErrStocktakeAlreadyApplied
		}
		if !st.Status.CanTransitionTo(entity.StocktakeApplied) {
			return domain.ErrStocktakeNotClosed
		}
		latest, err := repos.Stocktakes.LatestSeq(ctx)
		if err != nil {
			return err
		}
		if latest > st.Seq {
			return domain.ErrStocktakeNotLatest
		}
		details, err := repos.Stocktakes.ListDetails(ctx, id)
		if err != nil {
			return err
		}
		if len(details) == 0 {
			return domain.ErrStocktakeEmpty
		}
		if err := uc.policy.Check(st.CreatedAt); err != nil {
			return err
		}

		plan := domaininv.BuildApplyPlan(details)
		unscanned, err := repos.Products.ListActiveIDsExcept(ctx, plan.ProductIDs)
		if err != nil {
			return err
		}
		targets := make(map[string]int, len(plan.ProductIDs)+len(unscanned))
		for _, pid := range plan.ProductIDs {
			targets[pid] = plan.Totals[pid]
		}
		for _, pid := range unscanned {
			targets[pid] = 0
		}
		ids := make([]string, 0, len(targets))
		for pid := range targets {
			ids = append(ids, pid)
		}
		sort.Strings(ids)

		previous := make(map[string]int, len(ids))
		for _, chunk := range domaininv.Chunk(ids, uc.chunkSize) {
			locked, err := repos.Products.GetManyForUpdate(ctx, chunk)
			if err != nil {
				return err
			}
			for pid, p := range locked {
				previous[pid] = p.Stock
			}
			stocks := make(map[string]int, len(chunk))
			for _, pid := range chunk {
				stocks[pid] = targets[pid]
			}
			if err := repos.Products.SetStockBulk(ctx, stocks); err != nil {
				return err
			}
			if err := repos.Locations.DeleteByProducts(ctx, chunk); err != nil {
				return err
			}
		}
		for _, chunk := range domaininv.Chunk(plan.Rows, uc.chunkSize) {
			if err := repos.Locations.InsertBulk(ctx, chunk); err != nil {
				return err
			}
		}

		now := uc.clock.Now()
		movs := make([]*entity.Movement, 0)
		for _, pid := range ids {
			before, after := previous[pid], targets[pid]
			if before == after {
				continue
			}
			direction := entity.DirectionIn
			if after < before {
				direction = entity.DirectionOut
			}
			movs = append(movs, &entity.Movement{
				ID:          uuid.New().String(),
				ProductID:   pid,
				Direction:   direction,
				Quantity:    after - before,
				StockBefore: before,
				StockAfter:  after,
				ActorID:     actorID,
				Reason:      "adjustment",
				BatchID:     st.ID,
				Reference:   "stocktake:" + st.ID,
				CreatedAt:   now,
			})
		}
		for _, chunk := range domaininv.Chunk(movs, uc.chunkSize) {
			if err := repos.Movements.CreateBulk(ctx, chunk); err != nil {
				return err
			}
		}
		adjusted = len(movs)
		zeroed = len(unscanned)

		st.Status = entity.StocktakeApplied
		st.AppliedAt = &now
		if err := repos.Stocktakes.Update(ctx, st); err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("stocktake_id", id).
		Str("actor_id", actorID).
		Int("adjusted", adjusted).
		Int("zeroed", zeroed).
		Msg("toma de inventario aplicada")
	return toStocktakeResponse(out), nil
}

// lockOpen bloquea la toma y exige que siga abierta.
func lockOpen(ctx context.Context, repos repository.Repositories, id string) (*entity.Stocktake, error) {
	st, err := repos.Stocktakes.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.ErrNotFound
	}
	if !st.IsOpen() {
		return nil, domain.ErrStocktakeNotOpen
	}
	return st, nil
}

func toStocktakeResponse(st *entity.Stocktake) *dto.StocktakeResponse {
	return &dto.StocktakeResponse{
		ID:        st.ID,
		Seq:       st.Seq,
		Status:    string(st.Status),
		OwnerID:   st.OwnerID,
		Notes:     st.Notes,
		CreatedAt: st.CreatedAt,
		ClosedAt:  st.ClosedAt,
		AppliedAt: st.AppliedAt,
	}
}

func toDetailResponse(d entity.StocktakeDetail) dto.StocktakeDetailResponse {
	out := dto.StocktakeDetailResponse{
		ID:          d.ID,
		ProductID:   d.ProductID,
		Counted:     d.Counted,
		Baseline:    d.Baseline,
		Discrepancy: d.Discrepancy,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Location != nil {
		out.Location = &dto.LocationDTO{Letter: d.Location.Letter, Number: d.Location.Number}
	}
	return out
}
