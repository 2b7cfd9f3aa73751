package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ReconcilePlan cambios necesarios para que las filas de ubicación sumen el agregado objetivo.
// Inserts son filas nuevas (la fila destino que aún no existía); Updates solo las filas que cambian.
type ReconcilePlan struct {
	Inserts []entity.LocationStock
	Updates []entity.LocationStock
}

// Empty indica que no hay nada que persistir.
func (p ReconcilePlan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0
}

// PlanReconciliation redistribuye la diferencia entre el agregado objetivo y la suma actual
// de las filas de un producto (servicio de dominio, sin efectos).
//
//   - Sin filas: si hay destino se crea con el agregado completo; si no, no se hace nada.
//   - Sobrante: va entero a la fila destino o, sin destino, a la primera fila (menor letra/número).
//   - Faltante: se descuenta primero de la fila destino y luego de las demás de mayor a menor
//     cantidad, sin dejar ninguna fila negativa.
//
// Si las filas no alcanzan para absorber el faltante devuelve domain.ErrInsufficientStock.
func PlanReconciliation(productID string, rows []entity.LocationStock, target *entity.Location, aggregate int) (ReconcilePlan, error) {
	var plan ReconcilePlan
	if aggregate < 0 {
		return plan, domain.ErrInvalidQuantity
	}
	if len(rows) == 0 {
		if target != nil {
			plan.Inserts = append(plan.Inserts, entity.LocationStock{ProductID: productID, Location: *target, Quantity: aggregate})
		}
		return plan, nil
	}

	work := make([]entity.LocationStock, len(rows))
	copy(work, rows)
	sort.SliceStable(work, func(i, j int) bool { return work[i].Location.Less(work[j].Location) })

	targetIdx := -1
	if target != nil {
		for i := range work {
			if work[i].Location == *target {
				targetIdx = i
				break
			}
		}
		if targetIdx == -1 {
			work = append(work, entity.LocationStock{ProductID: productID, Location: *target, Quantity: 0})
			targetIdx = len(work) - 1
		}
	}
	original := make([]int, len(work))
	for i := range work {
		original[i] = work[i].Quantity
	}

	diff := aggregate - SumQuantities(work)
	switch {
	case diff > 0:
		idx := targetIdx
		if idx == -1 {
			idx = 0
		}
		work[idx].Quantity += diff
	case diff < 0:
		if err := absorbDeficit(work, targetIdx, -diff); err != nil {
			return ReconcilePlan{}, err
		}
	}

	for i := range work {
		isNew := target != nil && i == targetIdx && i >= len(rows)
		if isNew {
			plan.Inserts = append(plan.Inserts, work[i])
			continue
		}
		if work[i].Quantity != original[i] {
			plan.Updates = append(plan.Updates, work[i])
		}
	}
	return plan, nil
}

// absorbDeficit descuenta remaining de las filas: destino primero, luego por cantidad descendente.
func absorbDeficit(work []entity.LocationStock, targetIdx, remaining int) error {
	order := make([]int, 0, len(work))
	if targetIdx >= 0 {
		order = append(order, targetIdx)
	}
	rest := make([]int, 0, len(work))
	for i := range work {
		if i != targetIdx {
			rest = append(rest, i)
		}
	}
	sort.SliceStable(rest, func(a, b int) bool {
		ra, rb := work[rest[a]], work[rest[b]]
		if ra.Quantity != rb.Quantity {
			return ra.Quantity > rb.Quantity
		}
		return ra.Location.Less(rb.Location)
	})
	order = append(order, rest...)

	for _, i := range order {
		if remaining == 0 {
			break
		}
		take := min(work[i].Quantity, remaining)
		work[i].Quantity -= take
		remaining -= take
	}
	if remaining > 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// SumQuantities suma las cantidades de las filas.
func SumQuantities(rows []entity.LocationStock) int {
	total := 0
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}
