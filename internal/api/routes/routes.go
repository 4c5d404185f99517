package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/aridelmo/argus/internal/analyzer"
	"github.com/aridelmo/argus/internal/api/handlers"
	"github.com/aridelmo/argus/internal/api/middleware"
	"github.com/aridelmo/argus/internal/audit"
	"github.com/aridelmo/argus/internal/auth"
	"github.com/aridelmo/argus/internal/config"
	"github.com/aridelmo/argus/internal/metrics"
	"github.com/aridelmo/argus/internal/models"
	"github.com/aridelmo/argus/internal/notify"
	"github.com/aridelmo/argus/internal/waf"
)

// Deps exposes long-lived components built during registration so the caller
// can wire background lifecycles (seed file watcher, retention scheduler).
type Deps struct {
	Rules *waf.RuleStore
	Audit *audit.Service
}

// Register performs migrations, wires shared stores and registers all API
// routes on the router.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (*Deps, error) {
	if err := db.AutoMigrate(
		&models.Rule{},
		&models.WhitelistEntry{},
		&models.AuditRecord{},
		&models.Setting{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	ruleStore, err := waf.NewRuleStore(db)
	if err != nil {
		return nil, fmt.Errorf("load rule store: %w", err)
	}
	whitelistStore, err := waf.NewWhitelistStore(db)
	if err != nil {
		return nil, fmt.Errorf("load whitelist store: %w", err)
	}

	defaultMode, err := waf.ParseMode(cfg.DefaultMode)
	if err != nil {
		return nil, fmt.Errorf("default mode: %w", err)
	}
	modeController, err := waf.NewModeController(db, defaultMode)
	if err != nil {
		return nil, fmt.Errorf("load mode controller: %w", err)
	}

	analyzerClient := analyzer.NewClient(cfg.AnalyzerURL, cfg.AnalyzerTimeout)
	auditService := audit.NewService(db, whitelistStore)
	broadcaster := audit.NewBroadcaster(cfg.EventBuffer)

	pipeline := &waf.Pipeline{
		Rules:     ruleStore,
		Whitelist: whitelistStore,
		Mode:      modeController,
		Analyzer:  analyzerClient,
		Audit:     auditService,
		Events:    broadcaster,
		Notifier:  notify.New(cfg.NotifyURLs),
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.OperatorPasswordHash)

	filterHandler := handlers.NewFilterHandler(pipeline)
	modeHandler := handlers.NewModeHandler(modeController)
	rulesHandler := handlers.NewRulesHandler(ruleStore)
	recordsHandler := handlers.NewRecordsHandler(auditService)
	whitelistHandler := handlers.NewWhitelistHandler(whitelistStore)
	streamHandler := handlers.NewStreamHandler(broadcaster)
	healthHandler := handlers.NewHealthHandler(db, analyzerClient, modeController)
	authHandler := handlers.NewAuthHandler(authService)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.GET("/health", healthHandler.Health)
	api.POST("/auth/login", authHandler.Login)

	// Data plane: called by the gateway once per proxied request.
	api.POST("/filter", filterHandler.Filter)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.GET("/mode", modeHandler.Get)
		protected.PUT("/mode", modeHandler.Set)

		protected.GET("/rules", rulesHandler.List)
		protected.POST("/rules", rulesHandler.Create)
		protected.DELETE("/rules/:uuid", rulesHandler.Delete)

		protected.GET("/records", recordsHandler.Recent)
		protected.GET("/records/stats", recordsHandler.Stats)
		protected.GET("/records/:uuid", recordsHandler.Get)
		protected.POST("/records/:uuid/override", recordsHandler.Override)
		protected.DELETE("/records/:uuid", recordsHandler.Delete)
		protected.DELETE("/records", recordsHandler.Purge)

		protected.GET("/whitelist", whitelistHandler.List)
		protected.GET("/events", streamHandler.Events)
	}

	return &Deps{Rules: ruleStore, Audit: auditService}, nil
}
