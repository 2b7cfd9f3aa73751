package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// MoveToLocation cambia la ubicación principal de un producto y reconcilia con el mismo agregado,
// de modo que la fila destino exista (en 0 si el stock ya estaba repartido en otras ubicaciones).
func (uc *RegisterMovementUseCase) MoveToLocation(ctx context.Context, productID string, loc entity.Location) (*entity.Product, error) {
	loc, err := entity.NewLocation(loc.Letter, loc.Number)
	if err != nil {
		return nil, domain.ErrInvalidLocation
	}
	var out *entity.Product
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		product, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if !product.Active {
			return domain.ErrProductInactive
		}
		if err := repos.Products.UpdateLocation(ctx, product.ID, &loc); err != nil {
			return err
		}
		if err := uc.reconciler.Reconcile(ctx, repos, product.ID, &loc, product.Stock); err != nil {
			return err
		}
		product.Location = &loc
		out = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", out.ID).Str("location", loc.String()).Msg("ubicación principal actualizada")
	return out, nil
}
