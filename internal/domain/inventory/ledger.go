package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementLine una línea de lote ya validada (dirección conocida, cantidad > 0).
type MovementLine struct {
	ProductID string
	Direction string
	Quantity  int
}

// DistinctSortedIDs devuelve los IDs sin repetir y ordenados; es el orden de bloqueo de filas
// para que dos lotes concurrentes no se bloqueen mutuamente.
func DistinctSortedIDs(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// NetDeltas suma con signo todas las cantidades de un lote por producto.
func NetDeltas(lines []MovementLine) map[string]int {
	deltas := make(map[string]int, len(lines))
	for _, l := range lines {
		deltas[l.ProductID] += entity.SignedQuantity(l.Direction, l.Quantity)
	}
	return deltas
}
