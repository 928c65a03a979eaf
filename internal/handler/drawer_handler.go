// internal/handler/drawer_handler.go
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drawer-service/internal/model"
	"drawer-service/internal/repository"
	"drawer-service/internal/service"
	"drawer-service/internal/utils"
)

// DrawerHandler handles cash drawer HTTP requests
type DrawerHandler struct {
	drawerService *service.DrawerService
	logger        *utils.ServiceLogger
}

// NewDrawerHandler creates a new drawer handler
func NewDrawerHandler(drawerService *service.DrawerService, logger *zap.Logger) *DrawerHandler {
	return &DrawerHandler{
		drawerService: drawerService,
		logger:        utils.NewServiceLogger(logger, "drawer-handler"),
	}
}

// ConnectRequest selects the serial port to open
type ConnectRequest struct {
	Port     string `json:"port" binding:"required"`
	BaudRate int    `json:"baud_rate"`
}

// OpenRequest selects the kick variant; empty uses the configured default
type OpenRequest struct {
	Command string `json:"command"`
}

// RegisterRoutes registers drawer routes
func (h *DrawerHandler) RegisterRoutes(router *gin.RouterGroup) {
	drawer := router.Group("/drawer")
	{
		drawer.GET("/ports", h.ListPorts)
		drawer.POST("/connect", h.Connect)
		drawer.POST("/disconnect", h.Disconnect)
		drawer.POST("/reconnect", h.Reconnect)
		drawer.POST("/auto-connect", h.AutoConnect)
		drawer.POST("/open", h.OpenDrawer)
		drawer.POST("/test", h.TestDrawer)
		drawer.GET("/status", h.GetStatus)
		drawer.GET("/commands", h.ListCommands)
		drawer.GET("/operations", h.ListOperations)
		drawer.GET("/operations/stats", h.GetOperationStats)
	}
}

func requestContext(c *gin.Context) context.Context {
	return service.WithRequestID(c.Request.Context(), utils.GetRequestID(c))
}

// ListPorts lists candidate serial ports
// @Summary List serial ports
// @Description Enumerate serial ports that may host a cash drawer
// @Tags Drawer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{ports=[]drawer.Endpoint,count=int}} "Ports listed"
// @Router /drawer/ports [get]
func (h *DrawerHandler) ListPorts(c *gin.Context) {
	ports := h.drawerService.ListPorts(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Ports listed successfully", gin.H{
		"ports": ports,
		"count": len(ports),
	})
}

// Connect opens a serial port
// @Summary Connect to drawer
// @Description Open the given serial port, closing any current connection first
// @Tags Drawer
// @Accept json
// @Produce json
// @Param request body ConnectRequest true "Port and optional baud rate"
// @Success 200 {object} utils.APIResponse{data=object{connected=bool,status=drawer.Status}} "Connected"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 503 {object} utils.APIResponse "Port could not be opened"
// @Router /drawer/connect [post]
func (h *DrawerHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}
	if req.BaudRate < 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "baud_rate must not be negative", nil)
		return
	}

	status, err := h.drawerService.Connect(requestContext(c), strings.TrimSpace(req.Port), req.BaudRate)
	if err != nil {
		utils.DrawerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drawer connected", gin.H{
		"connected": true,
		"status":    status,
	})
}

// Disconnect closes the serial port
// @Summary Disconnect from drawer
// @Tags Drawer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{connected=bool,status=drawer.Status}} "Disconnected"
// @Router /drawer/disconnect [post]
func (h *DrawerHandler) Disconnect(c *gin.Context) {
	status := h.drawerService.Disconnect(requestContext(c))
	utils.SuccessResponse(c, http.StatusOK, "Drawer disconnected", gin.H{
		"connected": false,
		"status":    status,
	})
}

// Reconnect reopens the last connected port
// @Summary Reconnect to drawer
// @Tags Drawer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{connected=bool,status=drawer.Status}} "Reconnected"
// @Failure 409 {object} utils.APIResponse "No prior connection"
// @Failure 503 {object} utils.APIResponse "Port could not be opened"
// @Router /drawer/reconnect [post]
func (h *DrawerHandler) Reconnect(c *gin.Context) {
	status, err := h.drawerService.Reconnect(requestContext(c))
	if err != nil {
		utils.DrawerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Drawer reconnected", gin.H{
		"connected": true,
		"status":    status,
	})
}

// AutoConnect connects to the first enumerated port
// @Summary Auto-connect to drawer
// @Description Connect to the first enumerated serial port at the default baud rate
// @Tags Drawer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{connected=bool,status=drawer.Status}} "Connected"
// @Failure 404 {object} utils.APIResponse "No serial ports found"
// @Failure 503 {object} utils.APIResponse "Port could not be opened"
// @Router /drawer/auto-connect [post]
func (h *DrawerHandler) AutoConnect(c *gin.Context) {
	status, err := h.drawerService.AutoConnect(requestContext(c))
	if err != nil {
		utils.DrawerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Drawer connected", gin.H{
		"connected": true,
		"status":    status,
	})
}

// OpenDrawer sends a kick command
// @Summary Open drawer
// @Description Send a drawer-kick command and wait until it has been transmitted
// @Tags Drawer
// @Accept json
// @Produce json
// @Param request body OpenRequest false "Command variant: standard, alternative, epson or star"
// @Success 200 {object} utils.APIResponse{data=object{opened=bool,command=string,bytes=string}} "Drawer opened"
// @Failure 400 {object} utils.APIResponse "Unknown command"
// @Failure 409 {object} utils.APIResponse "Not connected"
// @Failure 502 {object} utils.APIResponse "Transmit failed"
// @Router /drawer/open [post]
func (h *DrawerHandler) OpenDrawer(c *gin.Context) {
	var req OpenRequest
	// An empty body selects the default command
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ValidationErrorResponse(c, err)
			return
		}
	}

	cmd, err := h.drawerService.OpenDrawer(requestContext(c), req.Command)
	if err != nil {
		utils.DrawerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drawer opened", gin.H{
		"opened":  true,
		"command": cmd.String(),
		"bytes":   cmd.Hex(),
	})
}

// TestDrawer sends the standard kick
// @Summary Test drawer
// @Tags Drawer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{opened=bool}} "Drawer opened"
// @Failure 409 {object} utils.APIResponse "Not connected"
// @Failure 502 {object} utils.APIResponse "Transmit failed"
// @Router /drawer/test [post]
func (h *DrawerHandler) TestDrawer(c *gin.Context) {
	if err := h.drawerService.TestDrawer(requestContext(c)); err != nil {
		utils.DrawerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Drawer test completed", gin.H{"opened": true})
}

// GetStatus returns the connection snapshot
// @Summary Drawer status
// @Tags Drawer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=drawer.Status} "Status"
// @Router /drawer/status [get]
func (h *DrawerHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Status retrieved", h.drawerService.Status())
}

// ListCommands lists the kick variants
// @Summary List drawer commands
// @Tags Drawer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]service.CommandInfo} "Commands"
// @Router /drawer/commands [get]
func (h *DrawerHandler) ListCommands(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Commands listed", h.drawerService.Commands())
}

// ListOperations lists recent audited operations
// @Summary List drawer operations
// @Tags Drawer
// @Produce json
// @Param limit query int false "Maximum entries" default(50)
// @Param type query string false "Operation type" Enums(CONNECT, DISCONNECT, RECONNECT, AUTO_CONNECT, OPEN_DRAWER, TEST_DRAWER)
// @Param status query string false "Operation status" Enums(SUCCESS, FAILED)
// @Success 200 {object} utils.APIResponse{data=object{operations=[]model.DrawerOperation,count=int}} "Operations"
// @Failure 400 {object} utils.APIResponse "Invalid filter"
// @Failure 500 {object} utils.APIResponse "Storage error"
// @Router /drawer/operations [get]
func (h *DrawerHandler) ListOperations(c *gin.Context) {
	filter := &repository.OperationFilter{Limit: repository.DefaultListLimit}

	if limit := c.Query("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil || l <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		filter.Limit = l
	}
	if opType := c.Query("type"); opType != "" {
		t, ok := model.ParseOperationType(strings.ToUpper(opType))
		if !ok {
			utils.ErrorResponse(c, http.StatusBadRequest, "Unknown operation type: "+opType, nil)
			return
		}
		filter.OperationType = &t
	}
	if status := c.Query("status"); status != "" {
		s := model.OperationStatus(strings.ToUpper(status))
		if s != model.OperationStatusSuccess && s != model.OperationStatusFailed {
			utils.ErrorResponse(c, http.StatusBadRequest, "Unknown operation status: "+status, nil)
			return
		}
		filter.Status = &s
	}

	operations, err := h.drawerService.ListOperations(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list drawer operations", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list operations", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Operations retrieved", gin.H{
		"operations": operations,
		"count":      len(operations),
	})
}

// GetOperationStats summarizes audited operations
// @Summary Drawer operation statistics
// @Tags Drawer
// @Produce json
// @Param window query string false "Look-back window as a Go duration" default(24h)
// @Success 200 {object} utils.APIResponse{data=repository.OperationStats} "Statistics"
// @Failure 400 {object} utils.APIResponse "Invalid window"
// @Failure 500 {object} utils.APIResponse "Storage error"
// @Router /drawer/operations/stats [get]
func (h *DrawerHandler) GetOperationStats(c *gin.Context) {
	window := 24 * time.Hour
	if w := c.Query("window"); w != "" {
		d, err := time.ParseDuration(w)
		if err != nil || d <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "window must be a positive duration", err)
			return
		}
		window = d
	}

	stats, err := h.drawerService.OperationStats(c.Request.Context(), window)
	if err != nil {
		h.logger.Error("Failed to compute operation stats", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get operation stats", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved", stats)
}
