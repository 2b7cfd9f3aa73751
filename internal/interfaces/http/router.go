package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/stocktake"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Picking          *inventory.PickingUseCase
	Stocktake        *stocktake.UseCase
	JWTSecret        string
	JWTIssuer        string
	Storage          string // driver activo, se informa en /health
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Storage: deps.Storage})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.RegisterMovement)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/stock", productHandler.Stock)
	products.Get("/:id/movements", productHandler.Movements)
	products.Put("/:id/location", productHandler.UpdateLocation)
	products.Delete("/:id", productHandler.Deactivate)

	// Kardex
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Post("/movements/batch", inventoryHandler.RegisterBatch)

	// Tomas de inventario
	stocktakes := protected.Group("/stocktakes")
	stocktakeHandler := NewStocktakeHandler(deps.Stocktake)
	stocktakes.Post("/", stocktakeHandler.Create)
	stocktakes.Get("/", stocktakeHandler.List)
	stocktakes.Get("/:id", stocktakeHandler.Get)
	stocktakes.Get("/:id/details", stocktakeHandler.Details)
	stocktakes.Get("/:id/summary", stocktakeHandler.Summary)
	stocktakes.Post("/:id/counts", stocktakeHandler.AddCount)
	stocktakes.Put("/:id/details/:detailId", stocktakeHandler.SetCount)
	stocktakes.Delete("/:id/details/:detailId", stocktakeHandler.RemoveDetail)
	stocktakes.Post("/:id/close", stocktakeHandler.Close)
	stocktakes.Post("/:id/apply", stocktakeHandler.Apply)
	stocktakes.Delete("/:id", stocktakeHandler.Delete)

	// Picking
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.Picking)
	sales.Post("/:id/lines/:lineId/pick", saleHandler.Pick)
	sales.Post("/:id/ship", saleHandler.Ship)
}
