package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/jhoicas/Inventario-ledger/internal/application/ports"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/clock"
)

// RegisterMovementUseCase registra movimientos del kardex de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner   ports.TxRunner
	reconciler *LocationReconciler
	clock      clock.Clock
	log        zerolog.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner ports.TxRunner,
	reconciler *LocationReconciler,
	clk clock.Clock,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:   txRunner,
		reconciler: reconciler,
		clock:      clk,
		log:        log,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
type MovementInputDTO struct {
	ProductID string
	Direction string // in | out
	Quantity  int    // > 0
	Reason    string
	ActorID   string
	Reference string
}

// MovementResult salida de un movimiento individual.
type MovementResult struct {
	MovementID string
	NewStock   int
}

// BatchResult salida de un lote.
type BatchResult struct {
	BatchID string
	Count   int
}

func validateMovement(in MovementInputDTO) error {
	if strings.TrimSpace(in.ProductID) == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidDirection(in.Direction) {
		return domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// RecordMovement bloquea el producto, valida stock, inserta el movimiento, actualiza el agregado
// y reconcilia las ubicaciones, todo en una transacción.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, in MovementInputDTO) (*MovementResult, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	var mov *entity.Movement
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		mov, err = uc.RecordInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.audit(mov)
	return &MovementResult{MovementID: mov.ID, NewStock: mov.StockAfter}, nil
}

// RecordInTx registra un movimiento usando los repositorios de la transacción del caller
// (picking, ajustes compuestos). No emite auditoría: la emite el caller tras el Commit.
func (uc *RegisterMovementUseCase) RecordInTx(ctx context.Context, repos repository.Repositories, in MovementInputDTO) (*entity.Movement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !product.Active {
		return nil, domain.ErrProductInactive
	}
	before := product.Stock
	after := before + entity.SignedQuantity(in.Direction, in.Quantity)
	if after < 0 {
		return nil, domain.ErrInsufficientStock
	}

	mov := uc.newMovement(in, before, after, "")
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, after); err != nil {
		return nil, err
	}
	// La ubicación principal no cambia; solo se alinean las filas con el nuevo agregado.
	if err := uc.reconciler.Reconcile(ctx, repos, product.ID, product.Location, after); err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordMovementBatch registra un lote atómico: bloquea una sola vez el conjunto ordenado de productos,
// valida el delta neto de cada uno antes de escribir nada y aplica una actualización y una
// reconciliación por producto. Cualquier violación aborta el lote completo.
func (uc *RegisterMovementUseCase) RecordMovementBatch(ctx context.Context, items []MovementInputDTO) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]domaininv.MovementLine, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, in := range items {
		if err := validateMovement(in); err != nil {
			return nil, err
		}
		lines = append(lines, domaininv.MovementLine{ProductID: in.ProductID, Direction: in.Direction, Quantity: in.Quantity})
		ids = append(ids, in.ProductID)
	}
	ids = domaininv.DistinctSortedIDs(ids)
	deltas := domaininv.NetDeltas(lines)
	batchID := uuid.New().String()

	var movs []*entity.Movement
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		products, err := repos.Products.GetManyForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			p := products[id]
			if p == nil {
				return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
			}
			if !p.Active {
				return fmt.Errorf("producto %s: %w", p.Code, domain.ErrProductInactive)
			}
			if p.Stock+deltas[id] < 0 {
				return fmt.Errorf("producto %s: %w", p.Code, domain.ErrInsufficientStock)
			}
		}

		// Movimientos en el orden de entrada; antes/después acumulados para la auditoría.
		running := make(map[string]int, len(ids))
		for _, id := range ids {
			running[id] = products[id].Stock
		}
		movs = make([]*entity.Movement, 0, len(items))
		for _, in := range items {
			before := running[in.ProductID]
			after := before + entity.SignedQuantity(in.Direction, in.Quantity)
			running[in.ProductID] = after
			movs = append(movs, uc.newMovement(in, before, after, batchID))
		}
		if err := repos.Movements.CreateBulk(ctx, movs); err != nil {
			return err
		}

		for _, id := range ids {
			if err := repos.Products.UpdateStock(ctx, id, running[id]); err != nil {
				return err
			}
			if err := uc.reconciler.Reconcile(ctx, repos, id, products[id].Location, running[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, m := range movs {
		uc.audit(m)
	}
	return &BatchResult{BatchID: batchID, Count: len(movs)}, nil
}

func (uc *RegisterMovementUseCase) newMovement(in MovementInputDTO, before, after int, batchID string) *entity.Movement {
	return &entity.Movement{
		ID:          uuid.New().String(),
		ProductID:   in.ProductID,
		Direction:   in.Direction,
		Quantity:    entity.SignedQuantity(in.Direction, in.Quantity),
		StockBefore: before,
		StockAfter:  after,
		ActorID:     in.ActorID,
		Reason:      in.Reason,
		BatchID:     batchID,
		Reference:   in.Reference,
		CreatedAt:   uc.clock.Now(),
	}
}

// audit registro estructurado del antes/después del agregado por movimiento.
func (uc *RegisterMovementUseCase) audit(m *entity.Movement) {
	uc.log.Info().
		Str("movement_id", m.ID).
		Str("product_id", m.ProductID).
		Str("direction", m.Direction).
		Int("quantity", m.Quantity).
		Int("stock_before", m.StockBefore).
		Int("stock_after", m.StockAfter).
		Str("actor_id", m.ActorID).
		Str("batch_id", m.BatchID).
		Str("reference", m.Reference).
		Msg("movimiento registrado")
}
