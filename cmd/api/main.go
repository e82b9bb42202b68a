package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/produccion-api/internal/application/auth"
	appinventory "github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/internal/infrastructure/catalog"
	"github.com/jhoicas/produccion-api/internal/infrastructure/kafka"
	"github.com/jhoicas/produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/produccion-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/produccion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/produccion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/produccion-api/internal/interfaces/http"
	"github.com/jhoicas/produccion-api/pkg/config"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacenamiento: PostgreSQL o memoria (desarrollo y demos)
	var (
		deps  tracking.Deps
		stock *appinventory.StockService
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		if cfg.Store.SeedFile != "" {
			cat, err := catalog.Load(cfg.Store.SeedFile)
			if err != nil {
				log.Fatal().Err(err).Msg("catálogo de referencia")
			}
			if err := cat.Apply(ctx, catalog.NewMemoryWriter(store)); err != nil {
				log.Fatal().Err(err).Msg("carga del catálogo")
			}
		} else {
			store.SeedDemo()
		}
		stock = appinventory.NewStockService(store, store.Stock(), store.Movements(), store.Products())
		deps = tracking.Deps{
			TxRunner:  store,
			Lots:      store.Lots(),
			History:   store.History(),
			Products:  store.Products(),
			Locations: store.Locations(),
			Materials: store.Materials(),
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner := postgres.NewTxRunner(pool)
		productRepo := postgres.NewProductRepository(pool)
		stock = appinventory.NewStockService(
			txRunner,
			postgres.NewStockRepository(pool),
			postgres.NewStockMovementRepository(pool),
			productRepo,
		)
		deps = tracking.Deps{
			TxRunner:  txRunner,
			Lots:      postgres.NewLotRepository(pool),
			History:   postgres.NewLotHistoryRepository(pool),
			Products:  productRepo,
			Locations: postgres.NewLocationRepository(pool),
			Materials: postgres.NewRawMaterialRepository(pool),
		}
	}

	m := metrics.New(cfg.Metrics.Namespace)

	// Eventos de stock: opcionales, solo con KAFKA_BROKERS
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewSyncProducer(cfg.Kafka)
		if err != nil {
			log.Fatal().Err(err).Msg("productor Kafka")
		}
		publisher := kafka.NewStockPublisher(producer, cfg.Kafka.Topic, log)
		defer publisher.Close()
		deps.Publisher = publisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos de stock activa")
	}

	deps.Inventory = stock
	deps.Metrics = m
	deps.Sheets = infrapdf.NewLotSheetGenerator(cfg.App.Name)
	deps.Logger = log
	tracker := tracking.NewTracker(deps, tracking.Config{
		MaxAttempts:  cfg.Tracker.MaxAttempts,
		BaseBackoff:  cfg.Tracker.Backoff,
		StoreTimeout: cfg.Store.Timeout,
	})

	accounts := make([]entity.Account, 0, len(cfg.Auth.Accounts))
	for _, a := range cfg.Auth.Accounts {
		accounts = append(accounts, entity.Account{Login: a.Login, Role: a.Role, PasswordHash: a.PasswordHash})
	}
	if len(accounts) == 0 {
		log.Warn().Msg("AUTH_ACCOUNTS vacío: nadie podrá iniciar sesión")
	}
	authUC, err := auth.NewAuthUseCase(accounts, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cuentas de acceso")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Producción API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		Tracker:   tracker,
		Stock:     stock,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log,
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
