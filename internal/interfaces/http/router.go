package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produccion-api/internal/application/auth"
	appinventory "github.com/jhoicas/produccion-api/internal/application/inventory"
	"github.com/jhoicas/produccion-api/internal/application/tracking"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Tracker   *tracking.Tracker
	Stock     *appinventory.StockService
	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/login", authHandler.Login)
	api.Get("/auth/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rastreo de producción: Bearer Token + rol admin, montado por grupo (sin grupo sobre /api).
	authMW := AuthMiddleware(deps.JWTSecret)
	adminMW := RequireRole(entity.RoleAdmin)

	lots := api.Group("/lots", authMW, adminMW)
	lotHandler := NewLotHandler(deps.Tracker, log)
	lots.Post("/", lotHandler.Create)
	lots.Get("/", lotHandler.List)
	lots.Get("/summary", lotHandler.Summary)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Post("/:id/moves", lotHandler.Move)
	lots.Post("/:id/finalize", lotHandler.Finalize)
	lots.Get("/:id/history", lotHandler.History)
	lots.Get("/:id/sheet", lotHandler.Sheet)
	api.Get("/lot-history", authMW, adminMW, lotHandler.RecentHistory)

	locationHandler := NewLocationHandler(deps.Tracker, log)
	api.Get("/locations", authMW, adminMW, locationHandler.List)

	stock := api.Group("/stock", authMW, adminMW)
	stockHandler := NewStockHandler(deps.Stock, log)
	stock.Get("/:product_id", stockHandler.OnHand)
	stock.Get("/:product_id/movements", stockHandler.Movements)
}
