package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

func TestNewLocation(t *testing.T) {
	l, err := entity.NewLocation(" b ", 12)
	require.NoError(t, err)
	assert.Equal(t, entity.Location{Letter: "B", Number: 12}, l)
	assert.Equal(t, "B12", l.String())

	for _, tc := range []struct {
		letter string
		number int
	}{{"I", 1}, {"", 1}, {"AB", 1}, {"A", 0}, {"H", -3}} {
		_, err := entity.NewLocation(tc.letter, tc.number)
		assert.Error(t, err, "%s%d", tc.letter, tc.number)
	}
}

func TestParseLocation(t *testing.T) {
	l, err := entity.ParseLocation("h07")
	require.NoError(t, err)
	assert.Equal(t, entity.Location{Letter: "H", Number: 7}, l)

	for _, s := range []string{"", "A", "Z1", "Ax", "A-1"} {
		_, err := entity.ParseLocation(s)
		assert.Error(t, err, s)
	}
}

func TestLocationLess(t *testing.T) {
	assert.True(t, entity.Location{Letter: "A", Number: 9}.Less(entity.Location{Letter: "B", Number: 1}))
	assert.True(t, entity.Location{Letter: "A", Number: 2}.Less(entity.Location{Letter: "A", Number: 10}))
	assert.False(t, entity.Location{Letter: "A", Number: 2}.Less(entity.Location{Letter: "A", Number: 2}))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC-12", entity.NormalizeCode("  abc-12 "))
	assert.Equal(t, "ABC12", entity.NormalizeCode("ＡＢＣ１２"), "ancho completo se pliega a ASCII")
	assert.Equal(t, "", entity.NormalizeCode("   "))
}

func TestStocktakeStatus_Transiciones(t *testing.T) {
	assert.True(t, entity.StocktakeOpen.CanTransitionTo(entity.StocktakeClosed))
	assert.True(t, entity.StocktakeClosed.CanTransitionTo(entity.StocktakeApplied))

	assert.False(t, entity.StocktakeOpen.CanTransitionTo(entity.StocktakeApplied))
	assert.False(t, entity.StocktakeClosed.CanTransitionTo(entity.StocktakeOpen))
	assert.False(t, entity.StocktakeApplied.CanTransitionTo(entity.StocktakeOpen))
	assert.False(t, entity.StocktakeApplied.CanTransitionTo(entity.StocktakeClosed))
}

func TestStocktakeDetail_Discrepancia(t *testing.T) {
	d := entity.StocktakeDetail{Baseline: 10}
	d.AddCounted(3)
	d.AddCounted(4)
	assert.Equal(t, 7, d.Counted)
	assert.Equal(t, -3, d.Discrepancy)

	d.SetCounted(12)
	assert.Equal(t, 2, d.Discrepancy)
}

func TestSignedQuantity(t *testing.T) {
	assert.Equal(t, 4, entity.SignedQuantity(entity.DirectionIn, 4))
	assert.Equal(t, -4, entity.SignedQuantity(entity.DirectionOut, 4))
	assert.True(t, entity.ValidDirection("in"))
	assert.False(t, entity.ValidDirection("IN"))
}

func TestSaleLinePending(t *testing.T) {
	l := entity.SaleLine{Quantity: 5, Picked: 2}
	assert.Equal(t, 3, l.Pending())
}
