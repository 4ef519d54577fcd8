package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"macrolog/config"
	"macrolog/controllers"
	"macrolog/logger"
	"macrolog/repos"
	"macrolog/routes"
	"macrolog/services"
)

// App is the wired HTTP application plus the background pieces main has to
// start and stop.
type App struct {
	Router *gin.Engine
	Queue  *services.PersistQueue
	Hub    *services.RealtimeHub
	Bus    services.EventBus
}

// New wires repositories, services and controllers. oracle and bus are
// passed in so callers can swap transports.
func New(cfg *config.Config, db *gorm.DB, oracle services.Oracle, bus services.EventBus, log *logger.Logger) *App {
	profiles := repos.NewProfileRepo(db, log)
	catalogRepo := repos.NewCatalogRepo(db, log)
	credentials := repos.NewCredentialRepo(db, log)
	recipeRepo := repos.NewRecipeRepo(db, log)

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	clock := func() time.Time { return time.Now().In(loc) }

	catalog := services.NewCatalogService(catalogRepo, log)
	ledger := services.NewLedgerService(profiles, log, clock, cfg.AdviceDailyLimit)
	queue := services.NewPersistQueue(
		services.NewLedgerPersister(catalog, ledger, bus, log),
		log,
		services.QueueOptions{Workers: cfg.PersistWorkers, MaxAttempts: cfg.PersistMaxAttempts},
	)
	resolver := services.NewResolutionService(catalog, profiles, oracle, queue, log)
	hub := services.NewRealtimeHub(log)

	router := routes.SetupRouter(routes.RouterConfig{
		Log:            log,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           controllers.NewAuthController(services.NewAuthService(credentials, profiles, cfg.JWTSecret, cfg.JWTTTL, log), log),
		Profile:        controllers.NewProfileController(services.NewProfileService(profiles, log), log),
		Day:            controllers.NewDayController(ledger, log),
		Food:           controllers.NewFoodController(resolver, catalog, log),
		Recipe:         controllers.NewRecipeController(services.NewRecipeService(recipeRepo, profiles, log), log),
		Realtime:       controllers.NewRealtimeController(hub),
	})

	return &App{Router: router, Queue: queue, Hub: hub, Bus: bus}
}

// StartRealtime forwards bus events to the local websocket sessions until
// ctx ends.
func (a *App) StartRealtime(ctx context.Context) error {
	return a.Bus.StartForwarder(ctx, a.Hub.ForwardLedger)
}
