package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

func (f *fixture) sale(status string, lines ...entity.SaleLine) {
	f.store.PutSale(entity.Sale{ID: "s1", Status: status}, lines...)
}

func TestPick_AvanzaEstadoYDescuentaStock(t *testing.T) {
	f := newFixture(t)
	f.product("p1", locPtr("A", 1))
	f.product("p2", locPtr("B", 1))
	_, err := f.move("p1", entity.DirectionIn, 5)
	require.NoError(t, err)
	_, err = f.move("p2", entity.DirectionIn, 5)
	require.NoError(t, err)
	f.sale(entity.SaleConfirmed,
		entity.SaleLine{ID: "l1", ProductID: "p1", Quantity: 2},
		entity.SaleLine{ID: "l2", ProductID: "p2", Quantity: 1},
	)

	res, err := f.picking.Pick(f.ctx, inventory.PickInput{SaleID: "s1", LineID: "l1", Quantity: 2, ActorID: "picker"})
	require.NoError(t, err)
	assert.Equal(t, entity.SalePicking, res.SaleStatus, "queda una línea pendiente")
	assert.Equal(t, 0, res.Pending)
	assert.Equal(t, 3, res.NewStock)
	f.assertConsistent("p1")

	movs, err := f.store.Repositories().Movements.ListByProduct(f.ctx, "p1", 1, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "sale:s1", movs[0].Reference)
	assert.Equal(t, "picker", movs[0].ActorID)

	assert.ErrorIs(t, f.picking.Ship(f.ctx, "s1"), domain.ErrSaleNotPicked)

	res, err = f.picking.Pick(f.ctx, inventory.PickInput{SaleID: "s1", LineID: "l2", Quantity: 1, ActorID: "picker"})
	require.NoError(t, err)
	assert.Equal(t, entity.SalePicked, res.SaleStatus)

	require.NoError(t, f.picking.Ship(f.ctx, "s1"))
	_, err = f.picking.Pick(f.ctx, inventory.PickInput{SaleID: "s1", LineID: "l2", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrSaleNotPickable)
}

func TestPick_SinStockNoAvanzaLinea(t *testing.T) {
	f := newFixture(t)
	f.product("p1", nil)
	_, err := f.move("p1", entity.DirectionIn, 1)
	require.NoError(t, err)
	f.sale(entity.SaleConfirmed, entity.SaleLine{ID: "l1", ProductID: "p1", Quantity: 3})

	_, err = f.picking.Pick(f.ctx, inventory.PickInput{SaleID: "s1", LineID: "l1", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	lines, err := f.store.Repositories().Sales.ListLines(f.ctx, "s1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 0, lines[0].Picked, "la transacción se revierte completa")
	assert.Equal(t, 1, f.stock("p1"))
}

func TestPick_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.product("p1", nil)
	f.sale(entity.SaleConfirmed, entity.SaleLine{ID: "l1", ProductID: "p1", Quantity: 1})

	_, err := f.picking.Pick(f.ctx, inventory.PickInput{SaleID: "s1", LineID: "l1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.picking.Pick(f.ctx, inventory.PickInput{SaleID: "s1", LineID: "l1", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.picking.Pick(f.ctx, inventory.PickInput{SaleID: "s1", LineID: "lx", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.picking.Pick(f.ctx, inventory.PickInput{SaleID: "sx", LineID: "l1", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.picking.Ship(f.ctx, "sx"), domain.ErrNotFound)
}
