package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ApplyPlan resultado de consolidar los conteos de una toma de inventario.
type ApplyPlan struct {
	// Totals suma de Counted por producto (un producto puede contarse en varias ubicaciones).
	Totals map[string]int
	// ProductIDs productos contados, ordenados.
	ProductIDs []string
	// Rows nuevas filas de ubicación: una por detalle con ubicación y Counted > 0, ordenadas.
	Rows []entity.LocationStock
}

// BuildApplyPlan consolida los detalles. El resultado solo depende del contenido de los detalles,
// no de su orden, de modo que dos tomas con los mismos conteos producen las mismas filas.
func BuildApplyPlan(details []entity.StocktakeDetail) ApplyPlan {
	plan := ApplyPlan{Totals: make(map[string]int)}
	merged := make(map[string]map[entity.Location]int)
	for _, d := range details {
		plan.Totals[d.ProductID] += d.Counted
		if d.Location == nil || d.Counted <= 0 {
			continue
		}
		if merged[d.ProductID] == nil {
			merged[d.ProductID] = make(map[entity.Location]int)
		}
		merged[d.ProductID][*d.Location] += d.Counted
	}
	for id := range plan.Totals {
		plan.ProductIDs = append(plan.ProductIDs, id)
	}
	sort.Strings(plan.ProductIDs)

	for _, id := range plan.ProductIDs {
		for loc, qty := range merged[id] {
			plan.Rows = append(plan.Rows, entity.LocationStock{ProductID: id, Location: loc, Quantity: qty})
		}
	}
	sort.Slice(plan.Rows, func(i, j int) bool {
		if plan.Rows[i].ProductID != plan.Rows[j].ProductID {
			return plan.Rows[i].ProductID < plan.Rows[j].ProductID
		}
		return plan.Rows[i].Location.Less(plan.Rows[j].Location)
	})
	return plan
}

// Chunk parte items en bloques de a lo sumo size elementos.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}
