// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"drawer-service/internal/drawer"
)

// APIResponse represents standard API response structure
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError represents error information
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: GetRequestID(c),
	})
}

// ErrorResponse sends an error response with a code derived from the status
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	errorWithCode(c, statusCode, getErrorCode(statusCode), message, err)
}

// DrawerErrorResponse maps drawer error kinds to HTTP statuses and stable codes.
// Errors that are not drawer errors become 500s.
func DrawerErrorResponse(c *gin.Context, err error) {
	var de *drawer.Error
	if !errors.As(err, &de) {
		ErrorResponse(c, http.StatusInternalServerError, "Drawer operation failed", err)
		return
	}
	errorWithCode(c, DrawerStatusCode(err), de.Code(), de.Message(), err)
}

// DrawerStatusCode returns the HTTP status for a drawer error
func DrawerStatusCode(err error) int {
	switch {
	case errors.Is(err, drawer.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, drawer.ErrNoPortsAvailable):
		return http.StatusNotFound
	case errors.Is(err, drawer.ErrNotConnected), errors.Is(err, drawer.ErrNoPriorConnection):
		return http.StatusConflict
	case errors.Is(err, drawer.ErrTransmit):
		return http.StatusBadGateway
	case errors.Is(err, drawer.ErrConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorWithCode(c *gin.Context, statusCode int, code, message string, err error) {
	apiError := &APIError{
		Code:    code,
		Message: message,
	}
	if err != nil {
		apiError.Details = err.Error()
	}

	c.JSON(statusCode, APIResponse{
		Success:   false,
		Message:   message,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: GetRequestID(c),
	})
}

// ValidationErrorResponse sends validation error response
func ValidationErrorResponse(c *gin.Context, err error) {
	errorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", err)
}

// GetRequestID extracts request ID from context
func GetRequestID(c *gin.Context) string {
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// getErrorCode returns error code based on HTTP status
func getErrorCode(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case http.StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	case http.StatusBadGateway:
		return "BAD_GATEWAY"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}
