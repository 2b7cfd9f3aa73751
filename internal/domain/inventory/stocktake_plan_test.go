package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

func detail(productID string, l *entity.Location, counted int) entity.StocktakeDetail {
	return entity.StocktakeDetail{ProductID: productID, Location: l, Counted: counted}
}

func TestBuildApplyPlan_SumaPorProducto(t *testing.T) {
	a1, b2 := loc("A", 1), loc("B", 2)
	plan := inventory.BuildApplyPlan([]entity.StocktakeDetail{
		detail("p2", &b2, 4),
		detail("p1", &a1, 3),
		detail("p1", &b2, 2),
		detail("p1", nil, 5), // cuenta para el agregado sin generar fila
		detail("p3", &a1, 0), // contado en 0: sin fila
	})

	assert.Equal(t, []string{"p1", "p2", "p3"}, plan.ProductIDs)
	assert.Equal(t, map[string]int{"p1": 10, "p2": 4, "p3": 0}, plan.Totals)
	require.Len(t, plan.Rows, 3)
	assert.Equal(t, entity.LocationStock{ProductID: "p1", Location: a1, Quantity: 3}, plan.Rows[0])
	assert.Equal(t, entity.LocationStock{ProductID: "p1", Location: b2, Quantity: 2}, plan.Rows[1])
	assert.Equal(t, entity.LocationStock{ProductID: "p2", Location: b2, Quantity: 4}, plan.Rows[2])
}

func TestBuildApplyPlan_Determinista(t *testing.T) {
	a1, c7 := loc("A", 1), loc("C", 7)
	one := inventory.BuildApplyPlan([]entity.StocktakeDetail{
		detail("p1", &a1, 3), detail("p1", &c7, 1), detail("p2", &c7, 6),
	})
	other := inventory.BuildApplyPlan([]entity.StocktakeDetail{
		detail("p2", &c7, 6), detail("p1", &c7, 1), detail("p1", &a1, 3),
	})
	assert.Equal(t, one, other, "el orden de los detalles no cambia el resultado")
}

func TestChunk(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, inventory.Chunk(items, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, inventory.Chunk(items, 0))
	assert.Nil(t, inventory.Chunk([]int{}, 3))
}
