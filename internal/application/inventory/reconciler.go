package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// maxReconcileAttempts reintentos ante ErrConflict (otra tx creó la fila destino primero).
const maxReconcileAttempts = 3

// LocationReconciler mantiene las filas de stock por ubicación alineadas con el agregado.
// Siempre corre dentro de la transacción del caller, que ya tiene bloqueado el producto.
type LocationReconciler struct {
	log zerolog.Logger
}

// NewLocationReconciler construye el reconciliador.
func NewLocationReconciler(log zerolog.Logger) *LocationReconciler {
	return &LocationReconciler{log: log}
}

// Reconcile bloquea las filas del producto (SELECT FOR UPDATE), calcula el plan de redistribución
// y persiste únicamente las filas que cambian. target puede ser nil.
func (rc *LocationReconciler) Reconcile(
	ctx context.Context,
	repos repository.Repositories,
	productID string,
	target *entity.Location,
	aggregate int,
) error {
	for attempt := 1; attempt <= maxReconcileAttempts; attempt++ {
		rows, err := repos.Locations.ListForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		plan, err := domaininv.PlanReconciliation(productID, rows, target, aggregate)
		if err != nil {
			return fmt.Errorf("reconciliar %s: %w", productID, err)
		}
		if plan.Empty() {
			return nil
		}
		err = rc.persist(ctx, repos, plan)
		if errors.Is(err, domain.ErrConflict) {
			// Otro escritor creó la fila; se vuelve a leer y se recalcula.
			rc.log.Debug().Str("product_id", productID).Int("attempt", attempt).Msg("fila de ubicación creada concurrentemente")
			continue
		}
		return err
	}
	return fmt.Errorf("reconciliar %s: %w", productID, domain.ErrConflict)
}

func (rc *LocationReconciler) persist(ctx context.Context, repos repository.Repositories, plan domaininv.ReconcilePlan) error {
	for _, row := range plan.Inserts {
		if err := repos.Locations.Insert(ctx, row); err != nil {
			return err
		}
	}
	for _, row := range plan.Updates {
		if err := repos.Locations.UpdateQuantity(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
