package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/ports"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/clock"
)

// Reintentos de la desactivación ante esperas de bloqueo agotadas.
const (
	deactivateMaxRetries      = 3
	deactivateInitialInterval = 50 * time.Millisecond
)

// ProductUseCase casos de uso de productos. Stock y ubicaciones se manejan vía movimientos.
type ProductUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repositories
	clock    clock.Clock
	log      zerolog.Logger

	// newBackOff permite acortar los intervalos en tests.
	newBackOff func() backoff.BackOff
}

// NewProductUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewProductUseCase(txRunner ports.TxRunner, repos repository.Repositories, clk clock.Clock, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{
		txRunner: txRunner,
		repos:    repos,
		clock:    clk,
		log:      log,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = deactivateInitialInterval
			return b
		},
	}
}

// Create crea un nuevo producto con stock 0. El código se normaliza antes de guardarse.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := entity.NormalizeCode(in.Code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	var loc *entity.Location
	if in.Location != nil {
		l, err := entity.NewLocation(in.Location.Letter, in.Location.Number)
		if err != nil {
			return nil, domain.ErrInvalidLocation
		}
		loc = &l
	}
	existing, err := uc.repos.Products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}
	now := uc.clock.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Code:        code,
		Description: in.Description,
		Location:    loc,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repos.Products.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repos.Products.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Stock agregado del producto y sus filas de ubicación con cantidad > 0.
func (uc *ProductUseCase) Stock(ctx context.Context, id string) (*dto.ProductStockResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.repos.Locations.ListNonZero(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductStockResponse{
		ProductID: product.ID,
		Code:      product.Code,
		Stock:     product.Stock,
		Locations: make([]dto.LocationStockResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Locations = append(out.Locations, dto.LocationStockResponse{
			Letter:   r.Location.Letter,
			Number:   r.Location.Number,
			Code:     r.Location.String(),
			Quantity: r.Quantity,
		})
	}
	return out, nil
}

// Movements kardex paginado del producto, del más reciente al más antiguo.
func (uc *ProductUseCase) Movements(ctx context.Context, id string, limit, offset int) (*dto.MovementListResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.repos.Movements.ListByProduct(ctx, id, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Deactivate desactiva el producto (borrado lógico). Compite por el bloqueo de fila con los movimientos,
// así que un ErrTransient se reintenta con backoff exponencial; cualquier otro error es definitivo.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	op := func() error {
		err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
			product, err := repos.Products.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			if !product.Active {
				return nil
			}
			return repos.Products.Deactivate(ctx, id)
		})
		if err != nil && !errors.Is(err, domain.ErrTransient) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		uc.log.Warn().Err(err).Str("product_id", id).Dur("wait", wait).Msg("reintentando desactivación")
	}
	b := backoff.WithContext(backoff.WithMaxRetries(uc.newBackOff(), deactivateMaxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto desactivado")
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	out := &dto.ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Description: p.Description,
		Stock:       p.Stock,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Location != nil {
		out.Location = &dto.LocationDTO{Letter: p.Location.Letter, Number: p.Location.Number}
	}
	return out
}

// ToMovementResponse mapea un asiento del kardex a su DTO.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Direction:   m.Direction,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		ActorID:     m.ActorID,
		Reason:      m.Reason,
		BatchID:     m.BatchID,
		Reference:   m.Reference,
		CreatedAt:   m.CreatedAt,
	}
}
