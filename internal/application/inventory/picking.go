package inventory

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/jhoicas/Inventario-ledger/internal/application/ports"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// PickingUseCase descuenta stock a medida que se preparan las líneas de una venta.
type PickingUseCase struct {
	txRunner  ports.TxRunner
	movements *RegisterMovementUseCase
	log       zerolog.Logger
}

// NewPickingUseCase construye el caso de uso.
func NewPickingUseCase(txRunner ports.TxRunner, movements *RegisterMovementUseCase, log zerolog.Logger) *PickingUseCase {
	return &PickingUseCase{txRunner: txRunner, movements: movements, log: log}
}

// PickInput unidades preparadas de una línea.
type PickInput struct {
	SaleID   string
	LineID   string
	Quantity int
	ActorID  string
}

// PickResult estado de la venta y de la línea tras el picking.
type PickResult struct {
	SaleStatus string
	Picked     int
	Pending    int
	MovementID string
	NewStock   int
}

// Pick bloquea la venta y luego la línea, registra la salida en el kardex con referencia a la venta
// y avanza el estado: picking mientras queden pendientes, picked cuando todas las líneas están completas.
func (uc *PickingUseCase) Pick(ctx context.Context, in PickInput) (*PickResult, error) {
	if in.SaleID == "" || in.LineID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var (
		res *PickResult
		mov *entity.Movement
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		sale, err := repos.Sales.GetForUpdate(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status != entity.SaleConfirmed && sale.Status != entity.SalePicking {
			return domain.ErrSaleNotPickable
		}
		line, err := repos.Sales.GetLineForUpdate(ctx, in.SaleID, in.LineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		if in.Quantity > line.Pending() {
			return domain.ErrInvalidQuantity
		}

		mov, err = uc.movements.RecordInTx(ctx, repos, MovementInputDTO{
			ProductID: line.ProductID,
			Direction: entity.DirectionOut,
			Quantity:  in.Quantity,
			Reason:    "picking",
			ActorID:   in.ActorID,
			Reference: "sale:" + sale.ID,
		})
		if err != nil {
			return err
		}
		line.Picked += in.Quantity
		if err := repos.Sales.UpdateLinePicked(ctx, line.ID, line.Picked); err != nil {
			return err
		}

		lines, err := repos.Sales.ListLines(ctx, sale.ID)
		if err != nil {
			return err
		}
		status := entity.SalePicked
		for _, l := range lines {
			if l.ID == line.ID {
				l = *line
			}
			if l.Pending() > 0 {
				status = entity.SalePicking
				break
			}
		}
		if status != sale.Status {
			if err := repos.Sales.UpdateStatus(ctx, sale.ID, status); err != nil {
				return err
			}
		}
		res = &PickResult{
			SaleStatus: status,
			Picked:     line.Picked,
			Pending:    line.Pending(),
			MovementID: mov.ID,
			NewStock:   mov.StockAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.movements.audit(mov)
	return res, nil
}

// Ship marca como despachada una venta ya preparada. No afecta stock.
func (uc *PickingUseCase) Ship(ctx context.Context, saleID string) error {
	if saleID == "" {
		return domain.ErrInvalidInput
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		sale, err := repos.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status != entity.SalePicked {
			return domain.ErrSaleNotPicked
		}
		return repos.Sales.UpdateStatus(ctx, saleID, entity.SaleShipped)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("sale_id", saleID).Msg("venta despachada")
	return nil
}
