package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/pkg/clock"
)

// flakyTx falla con ErrTransient las primeras n veces y luego delega en el almacén.
type flakyTx struct {
	inner *memory.TxRunner
	fails int
	calls int
}

func (f *flakyTx) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	f.calls++
	if f.calls <= f.fails {
		return domain.ErrTransient
	}
	return f.inner.Run(ctx, fn)
}

func newTestUseCase(t *testing.T, fails int) (*ProductUseCase, *flakyTx) {
	t.Helper()
	store := memory.NewStore()
	tx := &flakyTx{inner: store.TxRunner(), fails: fails}
	uc := NewProductUseCase(tx, store.Repositories(), clock.Fixed{T: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}, zerolog.Nop())
	uc.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return uc, tx
}

func TestCreate_NormalizaCodigoYRechazaDuplicado(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: " abc-1 ", Description: "Tornillo", Location: &dto.LocationDTO{Letter: "b", Number: 4}})
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", p.Code)
	assert.Equal(t, 0, p.Stock)
	assert.True(t, p.Active)
	require.NotNil(t, p.Location)
	assert.Equal(t, "B", p.Location.Letter)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "ABC-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "X", Location: &dto.LocationDTO{Letter: "AB", Number: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
}

func TestLecturas_ProductoInexistente(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)
	ctx := context.Background()

	got, err := uc.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = uc.Stock(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Movements(ctx, "nope", 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ────────────────────────────────────────────────────────────────
// Desactivación con reintentos
// ────────────────────────────────────────────────────────────────

func TestDeactivate_ReintentaTransitorios(t *testing.T) {
	uc, tx := newTestUseCase(t, 2)
	ctx := context.Background()
	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: "P-1"})
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(ctx, p.ID))
	assert.Equal(t, 3, tx.calls)

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestDeactivate_AgotaReintentos(t *testing.T) {
	uc, tx := newTestUseCase(t, 5)
	ctx := context.Background()
	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: "P-1"})
	require.NoError(t, err)

	err = uc.Deactivate(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, deactivateMaxRetries+1, tx.calls)

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestDeactivate_NoReintentaDefinitivos(t *testing.T) {
	uc, tx := newTestUseCase(t, 0)

	err := uc.Deactivate(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, tx.calls)
}

func TestDeactivate_Idempotente(t *testing.T) {
	uc, tx := newTestUseCase(t, 0)
	ctx := context.Background()
	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: "P-1"})
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(ctx, p.ID))
	require.NoError(t, uc.Deactivate(ctx, p.ID))
	assert.Equal(t, 2, tx.calls)
}
