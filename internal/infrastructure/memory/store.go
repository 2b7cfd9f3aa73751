// Package memory implementa los puertos de repositorio en memoria para desarrollo y tests.
// Un solo proceso: las transacciones se serializan con un mutex y se revierten restaurando
// una copia del estado. En producción se usa el adaptador postgres.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/Inventario-ledger/internal/application/ports"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

type state struct {
	products   map[string]entity.Product
	locations  map[string]map[entity.Location]entity.LocationStock
	movements  []entity.Movement
	stocktakes map[string]entity.Stocktake
	details    []entity.StocktakeDetail // en orden de creación
	sales      map[string]entity.Sale
	lines      map[string]entity.SaleLine
	seq        int64
}

func newState() state {
	return state{
		products:   make(map[string]entity.Product),
		locations:  make(map[string]map[entity.Location]entity.LocationStock),
		stocktakes: make(map[string]entity.Stocktake),
		sales:      make(map[string]entity.Sale),
		lines:      make(map[string]entity.SaleLine),
	}
}

func (s state) clone() state {
	c := state{
		products:   maps.Clone(s.products),
		locations:  make(map[string]map[entity.Location]entity.LocationStock, len(s.locations)),
		movements:  slices.Clone(s.movements),
		stocktakes: maps.Clone(s.stocktakes),
		details:    slices.Clone(s.details),
		sales:      maps.Clone(s.sales),
		lines:      maps.Clone(s.lines),
		seq:        s.seq,
	}
	for pid, rows := range s.locations {
		c.locations[pid] = maps.Clone(rows)
	}
	return c
}

// Store estado compartido del adaptador.
type Store struct {
	mu   sync.Mutex
	data state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// view da acceso al estado; fuera de una tx cada llamada toma el mutex, dentro ya lo tiene el TxRunner.
type view struct {
	st   *Store
	inTx bool
}

func with[T any](v view, fn func(d *state) (T, error)) (T, error) {
	if !v.inTx {
		v.st.mu.Lock()
		defer v.st.mu.Unlock()
	}
	return fn(&v.st.data)
}

func (v view) repos() repository.Repositories {
	return repository.Repositories{
		Products:   productRepo{v},
		Locations:  locationRepo{v},
		Movements:  movementRepo{v},
		Stocktakes: stocktakeRepo{v},
		Sales:      saleRepo{v},
	}
}

// Repositories repositorios para lecturas y escrituras fuera de transacción.
func (s *Store) Repositories() repository.Repositories {
	return view{st: s}.repos()
}

// TxRunner transacciones sobre el almacén.
func (s *Store) TxRunner() *TxRunner {
	return &TxRunner{st: s}
}

// PutSale registra una venta con sus líneas; la creación de ventas es externa al servicio.
func (s *Store) PutSale(sale entity.Sale, lines ...entity.SaleLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.sales[sale.ID] = sale
	for _, l := range lines {
		l.SaleID = sale.ID
		s.data.lines[l.ID] = l
	}
}

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones y deshace los cambios si fn falla.
type TxRunner struct {
	st *Store
}

// Run ejecuta fn con el mutex tomado; ante error restaura la copia previa.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	snapshot := r.st.data.clone()
	if err := fn(view{st: r.st, inTx: true}.repos()); err != nil {
		r.st.data = snapshot
		return err
	}
	return nil
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
