// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"drawer-service/internal/config"
	"drawer-service/internal/database"
	"drawer-service/internal/handler"
	"drawer-service/internal/metrics"
	"drawer-service/internal/middleware"
	"drawer-service/internal/service"
	"drawer-service/internal/updater"
	"drawer-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config        *config.Config
	logger        *zap.Logger
	db            *database.DB
	drawerService *service.DrawerService
	updater       *updater.Updater
	wsHandler     *handler.WebSocketHandler
}

// NewRouter creates a new router instance. db and updater may be nil when
// the audit log is in memory or self-update is disabled.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	db *database.DB,
	drawerService *service.DrawerService,
	updater *updater.Updater,
	wsHandler *handler.WebSocketHandler,
) *Router {
	return &Router{
		config:        config,
		logger:        logger,
		db:            db,
		drawerService: drawerService,
		updater:       updater,
		wsHandler:     wsHandler,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if r.config.IsDebugEnabled() {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

func (r *Router) addRoutes(router *gin.Engine) {
	var (
		db         handler.DatabaseChecker
		migrations handler.MigrationReporter
	)
	if r.db != nil {
		db = r.db
		migrations = database.NewMigrator(r.db, r.logger)
	}
	healthHandler := handler.NewHealthHandler(db, migrations, r.drawerService, r.wsHandler, r.config, r.logger)
	healthHandler.RegisterRoutes(router)

	apiV1 := router.Group("/api/v1")
	handler.NewDrawerHandler(r.drawerService, r.logger).RegisterRoutes(apiV1)
	if r.updater != nil {
		handler.NewUpdateHandler(r.updater, r.logger).RegisterRoutes(apiV1)
	}

	if r.wsHandler != nil {
		r.wsHandler.RegisterRoutes(router.Group("/ws"))
	}

	if r.config.Metrics.Enabled {
		router.GET(r.config.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
