package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/app"
	iauth "github.com/flightdeck-io/flightdeck/internal/auth"
	"github.com/flightdeck-io/flightdeck/internal/cache"
	"github.com/flightdeck-io/flightdeck/internal/handlers"
	"github.com/flightdeck-io/flightdeck/internal/middleware"
	"github.com/flightdeck-io/flightdeck/internal/realtime"
	"github.com/flightdeck-io/flightdeck/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, hub *realtime.Hub, store cache.Store, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if hub == nil {
		return nil, fmt.Errorf("realtime hub must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	trials, err := services.NewTrialService(db)
	if err != nil {
		return nil, err
	}
	flights, err := services.NewFlightService(db, store)
	if err != nil {
		return nil, err
	}
	shares, err := services.NewShareService(db)
	if err != nil {
		return nil, err
	}
	files, err := services.NewFileService(db)
	if err != nil {
		return nil, err
	}
	incidents, err := services.NewIncidentService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	r.NoRoute(middleware.NotFoundHandler)

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(users, jwt)
	trialHandler := handlers.NewTrialHandler(trials)
	flightHandler := handlers.NewFlightHandler(flights)
	shareHandler := handlers.NewShareHandler(shares, trials)
	fileHandler := handlers.NewFileHandler(files)
	incidentHandler := handlers.NewIncidentHandler(incidents)
	realtimeHandler := handlers.NewRealtimeHandler(hub, jwt)

	// Public routes
	r.POST("/api/auth/login", authHandler.Login)
	r.GET("/api/share/:token", shareHandler.Resolve)

	// The websocket endpoint authenticates inside the handler because it
	// accepts token query parameters from browser clients.
	r.GET("/ws", realtimeHandler.Stream)

	// Protected routes
	api := r.Group("/api", middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)

	trialsGroup := api.Group("/trials")
	{
		trialsGroup.GET("", trialHandler.List)
		trialsGroup.POST("", trialHandler.Create)
		trialsGroup.GET("/:id", trialHandler.Get)
		trialsGroup.PATCH("/:id", trialHandler.Update)
		trialsGroup.DELETE("/:id", trialHandler.Delete)
	}

	flightsGroup := api.Group("/flights")
	{
		flightsGroup.GET("", flightHandler.List)
		flightsGroup.POST("", flightHandler.Create)
		flightsGroup.GET("/:id", flightHandler.Get)
		flightsGroup.PATCH("/:id", flightHandler.Update)
		flightsGroup.DELETE("/:id", flightHandler.Delete)
		flightsGroup.GET("/:id/telemetry", flightHandler.Telemetry)
		flightsGroup.POST("/:id/telemetry", flightHandler.AppendTelemetry)
	}

	incidentsGroup := api.Group("/incidents")
	{
		incidentsGroup.GET("", incidentHandler.List)
		incidentsGroup.POST("", incidentHandler.Report)
		incidentsGroup.GET("/:id", incidentHandler.Get)
	}

	sharesGroup := api.Group("/shares")
	{
		sharesGroup.POST("", shareHandler.Issue)
		sharesGroup.DELETE("/:id", shareHandler.Revoke)
	}

	filesGroup := api.Group("/files")
	{
		filesGroup.GET("", fileHandler.List)
		filesGroup.POST("", fileHandler.Register)
		filesGroup.DELETE("/:id", fileHandler.Delete)
	}

	return r, nil
}
