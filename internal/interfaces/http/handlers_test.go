package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/stocktake"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/clock"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno: router completo sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	t     *testing.T
	app   *fiber.App
	store *memory.Store
	auth  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	tx := store.TxRunner()
	clk := clock.Fixed{T: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)}
	log := zerolog.Nop()

	movements := inventory.NewRegisterMovementUseCase(tx, inventory.NewLocationReconciler(log), clk, log)
	app := fiber.New(fiber.Config{Immutable: true})
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:        usecase.NewProductUseCase(tx, repos, clk, log),
		RegisterMovement: movements,
		Picking:          inventory.NewPickingUseCase(tx, movements, log),
		Stocktake:        stocktake.NewUseCase(tx, repos, clk, stocktake.Config{RequireSameDay: true}, log),
		JWTSecret:        testJWTSecret,
		JWTIssuer:        testIssuer,
		Storage:          "memory",
	})
	return &testEnv{t: t, app: app, store: store, auth: bearer(t)}
}

// do envía la petición autenticada y devuelve status y cuerpo.
func (e *testEnv) do(method, path string, body any) (int, []byte) {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", e.auth)
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func errorCode(t *testing.T, raw []byte) string {
	return decode[dto.ErrorResponse](t, raw).Code
}

func (e *testEnv) createProduct(code string, loc *dto.LocationDTO) dto.ProductResponse {
	e.t.Helper()
	status, raw := e.do(http.MethodPost, "/api/products", dto.CreateProductRequest{Code: code, Description: "prueba", Location: loc})
	require.Equal(e.t, http.StatusCreated, status, string(raw))
	return decode[dto.ProductResponse](e.t, raw)
}

func (e *testEnv) move(productID, direction string, qty int) (int, []byte) {
	e.t.Helper()
	return e.do(http.MethodPost, "/api/inventory/movements", dto.RegisterMovementRequest{
		ProductID: productID, Direction: direction, Quantity: qty, Reason: "test",
	})
}

func (e *testEnv) stock(productID string) dto.ProductStockResponse {
	e.t.Helper()
	status, raw := e.do(http.MethodGet, "/api/products/"+productID+"/stock", nil)
	require.Equal(e.t, http.StatusOK, status, string(raw))
	return decode[dto.ProductStockResponse](e.t, raw)
}

// ──────────────────────────────────────────────────────────────────────────────
// Salud y autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_SinToken(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_RequiereToken(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/products", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y kardex
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimiento_EntradaReconciliaUbicacion(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("ABC-1", &dto.LocationDTO{Letter: "B", Number: 12})

	status, raw := env.move(p.ID, "in", 10)
	require.Equal(t, http.StatusCreated, status, string(raw))
	res := decode[dto.RegisterMovementResponse](t, raw)
	assert.NotEmpty(t, res.MovementID)
	assert.Equal(t, 10, res.NewStock)

	st := env.stock(p.ID)
	assert.Equal(t, 10, st.Stock)
	require.Len(t, st.Locations, 1)
	assert.Equal(t, "B12", st.Locations[0].Code)
	assert.Equal(t, 10, st.Locations[0].Quantity)

	status, raw = env.do(http.MethodGet, "/api/products/"+p.ID+"/movements", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.MovementListResponse](t, raw)
	require.Len(t, list.Items, 1)
	assert.Equal(t, testUserID, list.Items[0].ActorID, "el actor sale del token")
	assert.Equal(t, 0, list.Items[0].StockBefore)
	assert.Equal(t, 10, list.Items[0].StockAfter)
}

func TestMovimiento_SalidaSinStock(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("ABC-2", nil)
	status, _ := env.move(p.ID, "in", 5)
	require.Equal(t, http.StatusCreated, status)

	status, raw := env.move(p.ID, "out", 10)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, raw))
	assert.Equal(t, 5, env.stock(p.ID).Stock)
}

func TestMovimiento_Validaciones(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("ABC-3", nil)

	status, raw := env.move(p.ID, "in", 0)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUANTITY", errorCode(t, raw))

	status, raw = env.move(p.ID, "sideways", 1)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	status, raw = env.move("no-existe", "in", 1)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, raw))
}

func TestMovimiento_ProductoInactivo(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("ABC-4", nil)

	status, _ := env.do(http.MethodDelete, "/api/products/"+p.ID, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, raw := env.move(p.ID, "in", 1)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PRODUCT_INACTIVE", errorCode(t, raw))
}

func TestMovimiento_ProductoInactivoTrasOtrasPeticiones(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("ABC-5", nil)

	status, _ := env.do(http.MethodDelete, "/api/products/"+p.ID, nil)
	require.Equal(t, http.StatusNoContent, status)

	// Peticiones intermedias con otra forma reutilizan los buffers del servidor.
	env.createProduct("OTRO-PRODUCTO-LARGO", &dto.LocationDTO{Letter: "C", Number: 4})
	status, raw := env.do(http.MethodGet, "/api/products/"+p.ID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.False(t, decode[dto.ProductResponse](t, raw).Active)

	status, raw = env.move(p.ID, "in", 1)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PRODUCT_INACTIVE", errorCode(t, raw))
}

func TestLote_TodoONada(t *testing.T) {
	env := newTestEnv(t)
	a := env.createProduct("LOTE-A", &dto.LocationDTO{Letter: "A", Number: 1})
	b := env.createProduct("LOTE-B", nil)

	status, raw := env.do(http.MethodPost, "/api/inventory/movements/batch", dto.RegisterMovementBatchRequest{Items: []dto.RegisterMovementRequest{
		{ProductID: a.ID, Direction: "in", Quantity: 5},
		{ProductID: b.ID, Direction: "in", Quantity: 2},
		{ProductID: a.ID, Direction: "out", Quantity: 3},
	}})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, 3, decode[dto.RegisterMovementBatchResponse](t, raw).Count)
	assert.Equal(t, 2, env.stock(a.ID).Stock)
	assert.Equal(t, 2, env.stock(b.ID).Stock)

	// La segunda línea deja a B en negativo: no se aplica ninguna.
	status, raw = env.do(http.MethodPost, "/api/inventory/movements/batch", dto.RegisterMovementBatchRequest{Items: []dto.RegisterMovementRequest{
		{ProductID: a.ID, Direction: "in", Quantity: 100},
		{ProductID: b.ID, Direction: "out", Quantity: 3},
	}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, raw))
	assert.Equal(t, 2, env.stock(a.ID).Stock)
	assert.Equal(t, 2, env.stock(b.ID).Stock)
}

func TestProducto_CodigoDuplicadoYUbicacionInvalida(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct("DUP-1", nil)

	status, raw := env.do(http.MethodPost, "/api/products", dto.CreateProductRequest{Code: "dup-1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, raw))

	status, raw = env.do(http.MethodPost, "/api/products", dto.CreateProductRequest{Code: "LOC-1", Location: &dto.LocationDTO{Letter: "Z", Number: 1}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_LOCATION", errorCode(t, raw))

	status, _ = env.do(http.MethodGet, "/api/products/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProducto_CambioDeUbicacion(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("MOV-1", &dto.LocationDTO{Letter: "A", Number: 1})
	status, _ := env.move(p.ID, "in", 4)
	require.Equal(t, http.StatusCreated, status)

	status, raw := env.do(http.MethodPut, "/api/products/"+p.ID+"/location", dto.UpdateLocationRequest{Letter: "C", Number: 3})
	require.Equal(t, http.StatusOK, status, string(raw))
	got := decode[dto.ProductResponse](t, raw)
	require.NotNil(t, got.Location)
	assert.Equal(t, "C", got.Location.Letter)

	// Mismo agregado: el stock sigue en A1 y la nueva fila destino existe en 0.
	st := env.stock(p.ID)
	assert.Equal(t, 4, st.Stock)
	require.Len(t, st.Locations, 1)
	assert.Equal(t, "A1", st.Locations[0].Code)

	status, _ = env.move(p.ID, "in", 2)
	require.Equal(t, http.StatusCreated, status)
	st = env.stock(p.ID)
	require.Len(t, st.Locations, 2)
	assert.Equal(t, "A1", st.Locations[0].Code)
	assert.Equal(t, 4, st.Locations[0].Quantity)
	assert.Equal(t, "C3", st.Locations[1].Code)
	assert.Equal(t, 2, st.Locations[1].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tomas de inventario
// ──────────────────────────────────────────────────────────────────────────────

func (e *testEnv) openStocktake() dto.StocktakeResponse {
	e.t.Helper()
	status, raw := e.do(http.MethodPost, "/api/stocktakes", dto.CreateStocktakeRequest{Notes: "mensual"})
	require.Equal(e.t, http.StatusCreated, status, string(raw))
	return decode[dto.StocktakeResponse](e.t, raw)
}

func TestStocktake_FlujoCompleto(t *testing.T) {
	env := newTestEnv(t)
	counted := env.createProduct("CNT-1", &dto.LocationDTO{Letter: "B", Number: 12})
	unscanned := env.createProduct("CNT-2", &dto.LocationDTO{Letter: "A", Number: 2})
	for _, id := range []string{counted.ID, unscanned.ID} {
		status, _ := env.move(id, "in", 10)
		require.Equal(t, http.StatusCreated, status)
	}

	st := env.openStocktake()
	assert.Equal(t, "open", st.Status)
	assert.Equal(t, testUserID, st.OwnerID)

	path := "/api/stocktakes/" + st.ID
	status, raw := env.do(http.MethodPost, path+"/counts", dto.AddCountRequest{Code: "cnt-1", Quantity: 3, Slot: "C4"})
	require.Equal(t, http.StatusOK, status, string(raw))
	status, raw = env.do(http.MethodPost, path+"/counts", dto.AddCountRequest{Code: "CNT-1", Quantity: 2, Location: &dto.LocationDTO{Letter: "C", Number: 4}})
	require.Equal(t, http.StatusOK, status, string(raw))
	detail := decode[dto.StocktakeDetailResponse](t, raw)
	assert.Equal(t, 5, detail.Counted, "los escaneos repetidos se acumulan")
	assert.Equal(t, 10, detail.Baseline)
	assert.Equal(t, -5, detail.Discrepancy)

	status, raw = env.do(http.MethodPost, path+"/counts", dto.AddCountRequest{Code: "CNT-1", Quantity: 1, Slot: "Z9"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_LOCATION", errorCode(t, raw))

	status, raw = env.do(http.MethodGet, path+"/summary", nil)
	require.Equal(t, http.StatusOK, status)
	sum := decode[dto.StocktakeSummaryResponse](t, raw)
	assert.Equal(t, 1, sum.Rows)
	assert.Equal(t, 5, sum.TotalCounted)
	assert.Equal(t, 10, sum.TotalBaseline)

	// Abierta: aplicar exige cierre.
	status, raw = env.do(http.MethodPost, path+"/apply", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "STOCKTAKE_NOT_CLOSED", errorCode(t, raw))

	status, _ = env.do(http.MethodPost, path+"/close", nil)
	require.Equal(t, http.StatusOK, status)

	status, raw = env.do(http.MethodPost, path+"/counts", dto.AddCountRequest{Code: "CNT-1", Quantity: 1})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "STOCKTAKE_NOT_OPEN", errorCode(t, raw))

	status, raw = env.do(http.MethodPost, path+"/apply", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "applied", decode[dto.StocktakeResponse](t, raw).Status)

	got := env.stock(counted.ID)
	assert.Equal(t, 5, got.Stock)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "C4", got.Locations[0].Code)
	assert.Equal(t, 5, got.Locations[0].Quantity)

	zero := env.stock(unscanned.ID)
	assert.Equal(t, 0, zero.Stock, "un producto activo no escaneado queda en 0")
	assert.Empty(t, zero.Locations)

	status, raw = env.do(http.MethodPost, path+"/apply", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "STOCKTAKE_ALREADY_APPLIED", errorCode(t, raw))

	status, raw = env.do(http.MethodGet, "/api/products/"+counted.ID+"/movements", nil)
	require.Equal(t, http.StatusOK, status)
	movs := decode[dto.MovementListResponse](t, raw)
	require.NotEmpty(t, movs.Items)
	assert.Equal(t, "adjustment", movs.Items[0].Reason)
	assert.Equal(t, -5, movs.Items[0].Quantity)
	assert.Equal(t, "stocktake:"+st.ID, movs.Items[0].Reference)
}

func TestStocktake_SoloLaMasReciente(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct("LAT-1", nil)
	older := env.openStocktake()
	_ = env.openStocktake()

	status, _ := env.do(http.MethodPost, "/api/stocktakes/"+older.ID+"/counts", dto.AddCountRequest{Code: "LAT-1", Quantity: 1})
	require.Equal(t, http.StatusOK, status)
	status, _ = env.do(http.MethodPost, "/api/stocktakes/"+older.ID+"/close", nil)
	require.Equal(t, http.StatusOK, status)

	status, raw := env.do(http.MethodPost, "/api/stocktakes/"+older.ID+"/apply", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "STOCKTAKE_NOT_LATEST", errorCode(t, raw))
}

func TestStocktake_VaciaYBorrado(t *testing.T) {
	env := newTestEnv(t)
	st := env.openStocktake()
	path := "/api/stocktakes/" + st.ID

	status, _ := env.do(http.MethodPost, path+"/close", nil)
	require.Equal(t, http.StatusOK, status)
	status, raw := env.do(http.MethodPost, path+"/apply", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "STOCKTAKE_EMPTY", errorCode(t, raw))

	// Solo se borra mientras está abierta.
	status, _ = env.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, status)

	open := env.openStocktake()
	status, _ = env.do(http.MethodDelete, "/api/stocktakes/"+open.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = env.do(http.MethodGet, "/api/stocktakes/"+open.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStocktake_CorregirYEliminarDetalle(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct("SET-1", nil)
	st := env.openStocktake()
	path := "/api/stocktakes/" + st.ID

	status, raw := env.do(http.MethodPost, path+"/counts", dto.AddCountRequest{Code: "SET-1", Quantity: 4})
	require.Equal(t, http.StatusOK, status, string(raw))
	d := decode[dto.StocktakeDetailResponse](t, raw)
	assert.Nil(t, d.Location)

	status, raw = env.do(http.MethodPut, path+"/details/"+d.ID, dto.SetCountRequest{Counted: 9})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, 9, decode[dto.StocktakeDetailResponse](t, raw).Discrepancy)

	status, _ = env.do(http.MethodPut, path+"/details/"+d.ID, dto.SetCountRequest{Counted: -1})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(http.MethodDelete, path+"/details/"+d.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, raw = env.do(http.MethodGet, path+"/details", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]dto.StocktakeDetailResponse](t, raw))
}

// ──────────────────────────────────────────────────────────────────────────────
// Picking
// ──────────────────────────────────────────────────────────────────────────────

func TestPicking_HastaDespacho(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct("PICK-1", &dto.LocationDTO{Letter: "D", Number: 7})
	status, _ := env.move(p.ID, "in", 5)
	require.Equal(t, http.StatusCreated, status)

	env.store.PutSale(entity.Sale{ID: "sale-1", Status: entity.SaleConfirmed},
		entity.SaleLine{ID: "line-1", ProductID: p.ID, Quantity: 3})

	status, raw := env.do(http.MethodPost, "/api/sales/sale-1/ship", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SALE_NOT_PICKED", errorCode(t, raw))

	status, raw = env.do(http.MethodPost, "/api/sales/sale-1/lines/line-1/pick", dto.PickRequest{Quantity: 2})
	require.Equal(t, http.StatusOK, status, string(raw))
	res := decode[dto.PickResponse](t, raw)
	assert.Equal(t, "picking", res.SaleStatus)
	assert.Equal(t, 1, res.Pending)
	assert.Equal(t, 3, res.NewStock)

	status, raw = env.do(http.MethodPost, "/api/sales/sale-1/lines/line-1/pick", dto.PickRequest{Quantity: 2})
	assert.Equal(t, http.StatusBadRequest, status, "no se preparan más unidades que las pendientes")
	assert.Equal(t, "INVALID_QUANTITY", errorCode(t, raw))

	status, raw = env.do(http.MethodPost, "/api/sales/sale-1/lines/line-1/pick", dto.PickRequest{Quantity: 1})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "picked", decode[dto.PickResponse](t, raw).SaleStatus)

	status, _ = env.do(http.MethodPost, "/api/sales/sale-1/ship", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, raw = env.do(http.MethodPost, "/api/sales/sale-1/lines/line-1/pick", dto.PickRequest{Quantity: 1})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SALE_NOT_PICKABLE", errorCode(t, raw))

	st := env.stock(p.ID)
	assert.Equal(t, 2, st.Stock)
	require.Len(t, st.Locations, 1)
	assert.Equal(t, 2, st.Locations[0].Quantity)
}
