// internal/handler/update_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drawer-service/internal/updater"
	"drawer-service/internal/utils"
)

// UpdateHandler exposes the self-update subsystem
type UpdateHandler struct {
	updater *updater.Updater
	logger  *utils.ServiceLogger
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(u *updater.Updater, logger *zap.Logger) *UpdateHandler {
	return &UpdateHandler{
		updater: u,
		logger:  utils.NewServiceLogger(logger, "update-handler"),
	}
}

// RegisterRoutes registers update routes
func (h *UpdateHandler) RegisterRoutes(router *gin.RouterGroup) {
	update := router.Group("/update")
	{
		update.GET("/status", h.GetStatus)
		update.GET("/version", h.GetVersion)
		update.POST("/check", h.Check)
		update.POST("/download", h.Download)
		update.POST("/install", h.Install)
	}
}

// GetStatus returns the updater state
// @Summary Update status
// @Tags Update
// @Produce json
// @Success 200 {object} utils.APIResponse{data=updater.Status} "Status"
// @Router /update/status [get]
func (h *UpdateHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Update status retrieved", h.updater.Status())
}

// GetVersion returns the running version
// @Summary Running version
// @Tags Update
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{version=string}} "Version"
// @Router /update/version [get]
func (h *UpdateHandler) GetVersion(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Version retrieved", gin.H{
		"version": h.updater.CurrentVersion(),
	})
}

// Check queries the release feed
// @Summary Check for updates
// @Tags Update
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{available=bool,release=updater.Release}} "Checked"
// @Failure 409 {object} utils.APIResponse "Another update operation is running"
// @Failure 502 {object} utils.APIResponse "Release feed unavailable"
// @Router /update/check [post]
func (h *UpdateHandler) Check(c *gin.Context) {
	release, available, err := h.updater.CheckForUpdates(c.Request.Context())
	if err != nil {
		h.updateError(c, http.StatusBadGateway, "Update check failed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Update check completed", gin.H{
		"available":       available,
		"current_version": h.updater.CurrentVersion(),
		"release":         release,
	})
}

// Download fetches the available release
// @Summary Download update
// @Tags Update
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{downloaded=bool}} "Downloaded"
// @Failure 409 {object} utils.APIResponse "No update available or busy"
// @Failure 502 {object} utils.APIResponse "Download failed"
// @Router /update/download [post]
func (h *UpdateHandler) Download(c *gin.Context) {
	if _, err := h.updater.DownloadUpdate(c.Request.Context()); err != nil {
		h.updateError(c, http.StatusBadGateway, "Update download failed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Update downloaded", gin.H{
		"downloaded": true,
		"status":     h.updater.Status(),
	})
}

// Install replaces the executable and restarts the service
// @Summary Install update and restart
// @Tags Update
// @Produce json
// @Success 202 {object} utils.APIResponse "Restart scheduled"
// @Failure 409 {object} utils.APIResponse "Nothing downloaded or busy"
// @Failure 500 {object} utils.APIResponse "Install failed"
// @Router /update/install [post]
func (h *UpdateHandler) Install(c *gin.Context) {
	if err := h.updater.InstallAndRestart(); err != nil {
		h.updateError(c, http.StatusInternalServerError, "Update install failed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusAccepted, "Update installed, restarting", nil)
}

func (h *UpdateHandler) updateError(c *gin.Context, status int, message string, err error) {
	switch {
	case errors.Is(err, updater.ErrBusy),
		errors.Is(err, updater.ErrNoUpdate),
		errors.Is(err, updater.ErrNotDownloaded):
		status = http.StatusConflict
	case errors.Is(err, updater.ErrChecksumMismatch):
		status = http.StatusUnprocessableEntity
	default:
		h.logger.Error(message, zap.Error(err))
	}
	utils.ErrorResponse(c, status, message, err)
}
