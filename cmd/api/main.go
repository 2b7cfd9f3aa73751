package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/ports"
	"github.com/jhoicas/Inventario-ledger/internal/application/stocktake"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/migrations"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/clock"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	tz, err := cfg.Stocktake.TimeLocation()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Stocktake.Timezone).Msg("zona horaria de tomas de inventario")
	}

	ctx := context.Background()
	var (
		txRunner ports.TxRunner
		repos    repository.Repositories
	)
	switch cfg.App.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		txRunner, repos = store.TxRunner(), store.Repositories()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.App.MigrationsAuto {
			if err := migrate(cfg.DB.ConnectionString(), log.Component("migrations")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
		repos = postgres.NewRepositories(pool)
	}

	clk := clock.System{}
	reconciler := inventory.NewLocationReconciler(log.Component("reconciler"))
	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, reconciler, clk, log.Component("ledger"))
	pickingUC := inventory.NewPickingUseCase(txRunner, registerMovementUC, log.Component("picking"))
	productUC := usecase.NewProductUseCase(txRunner, repos, clk, log.Component("products"))
	stocktakeUC := stocktake.NewUseCase(txRunner, repos, clk, stocktake.Config{
		RequireSameDay: cfg.Stocktake.RequireSameDay,
		Location:       tz,
		ChunkSize:      cfg.Stocktake.ApplyChunk,
	}, log.Component("stocktake"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		// Params y cuerpos se guardan en el almacén en memoria; no deben apuntar al buffer de fasthttp.
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:        productUC,
		RegisterMovement: registerMovementUC,
		Picking:          pickingUC,
		Stocktake:        stocktakeUC,
		JWTSecret:        cfg.JWT.Secret,
		JWTIssuer:        cfg.JWT.Issuer,
		Storage:          cfg.App.StorageDriver,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func migrate(databaseURL string, log zerolog.Logger) error {
	m, err := migrations.New(databaseURL, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
