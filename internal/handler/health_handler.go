// internal/handler/health_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drawer-service/internal/config"
	"drawer-service/internal/drawer"
	"drawer-service/internal/utils"
)

// DrawerStatusProvider reports the drawer connection snapshot
type DrawerStatusProvider interface {
	Status() drawer.Status
}

// DatabaseChecker is the audit store probed by the health checks
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
	GetStats() map[string]interface{}
}

// MigrationReporter reports the applied schema version
type MigrationReporter interface {
	Version(ctx context.Context) (uint, bool, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db         DatabaseChecker
	migrations MigrationReporter
	drawer     DrawerStatusProvider
	websocket  *WebSocketHandler
	config     *config.Config
	logger     *utils.ServiceLogger
	startedAt  time.Time
}

// NewHealthHandler creates a new health handler. db and migrations are nil
// when the audit log is kept in memory; websocket is nil when not served.
func NewHealthHandler(
	db DatabaseChecker,
	migrations MigrationReporter,
	drawerStatus DrawerStatusProvider,
	websocket *WebSocketHandler,
	config *config.Config,
	logger *zap.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:         db,
		migrations: migrations,
		drawer:     drawerStatus,
		websocket:  websocket,
		config:     config,
		logger:     utils.NewServiceLogger(logger, "health-handler"),
		startedAt:  time.Now(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get overall service health including drawer connection and database
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}

	if h.drawer.Status().Connected {
		health.Checks["drawer"] = CheckResult{Status: "healthy", Message: "Drawer connected"}
	} else if h.config.Drawer.RequireConnect {
		health.Status = "unhealthy"
		health.Checks["drawer"] = CheckResult{Status: "unhealthy", Message: "Drawer not connected"}
	} else {
		health.Checks["drawer"] = CheckResult{Status: "degraded", Message: "Drawer not connected"}
	}

	if h.db != nil {
		check := h.databaseCheck(c.Request.Context())
		if check.Status == "unhealthy" {
			health.Status = "unhealthy"
		}
		health.Checks["database"] = check
	}

	if h.websocket != nil {
		health.Checks["websocket"] = CheckResult{
			Status: "healthy",
			Data:   map[string]interface{}{"clients": h.websocket.Stats().TotalConnections},
		}
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, health)
}

// ReadinessCheck reports whether the service can take drawer traffic
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.config.Drawer.RequireConnect && !h.drawer.Status().Connected {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "drawer not connected",
		})
		return
	}
	if h.db != nil {
		if err := h.checkDatabase(c.Request.Context()); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "database not available",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck reports that the process responds
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.HealthCheck(ctx)
}

// databaseCheck pings the store and reports pool stats and schema version.
// A dirty schema means a migration failed half way and is unhealthy.
func (h *HealthHandler) databaseCheck(ctx context.Context) CheckResult {
	if err := h.checkDatabase(ctx); err != nil {
		return CheckResult{Status: "unhealthy", Message: err.Error()}
	}

	result := CheckResult{
		Status:  "healthy",
		Message: "Database connection OK",
		Data:    h.db.GetStats(),
	}
	if h.migrations == nil {
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	version, dirty, err := h.migrations.Version(ctx)
	if err != nil {
		h.logger.Warn("Failed to read migration version", zap.Error(err))
		result.Status = "degraded"
		result.Message = "Migration version unavailable"
		return result
	}

	if result.Data == nil {
		result.Data = make(map[string]interface{})
	}
	result.Data["migration_version"] = version
	result.Data["migration_dirty"] = dirty
	if dirty {
		result.Status = "unhealthy"
		result.Message = "Database schema is dirty"
	}
	return result
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
