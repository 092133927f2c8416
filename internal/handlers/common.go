package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/SAP-F-2025/exam-session-client/internal/errors"
	"github.com/SAP-F-2025/exam-session-client/internal/services"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

func (h *BaseHandler) requestFields(c *gin.Context, additionalFields ...interface{}) []interface{} {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
	}
	return append(fields, additionalFields...)
}

// LogRequest logs incoming UI events at debug level; the page polls and
// streams far more often than a REST client would.
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Debug(message, h.requestFields(c, additionalFields...)...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, h.requestFields(c, additionalFields...)...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Warn(message, h.requestFields(c, additionalFields...)...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// RespondWithServiceError maps controller errors to HTTP status codes.
func (h *BaseHandler) RespondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAlreadySubmitted):
		h.RespondWithError(c, http.StatusConflict, "Exam already submitted", err, err.Error())
	case services.IsLocked(err):
		h.RespondWithError(c, http.StatusConflict, "Exam is locked", err, err.Error())
	case errors.Is(err, services.ErrReplayNotAllowed):
		h.RespondWithError(c, http.StatusForbidden, "Audio replay is not allowed", err, err.Error())
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Not found", err, err.Error())
	case services.IsBadInput(err):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request", err, err.Error())
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// bindAndValidate decodes the JSON body into req and validates it.
func (h *BaseHandler) bindAndValidate(c *gin.Context, v structValidator, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	if err := v.ValidateStruct(req); err != nil {
		details := apperrors.ToValidationErrors(err)
		if len(details) == 0 {
			h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, err.Error())
			return false
		}
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, details)
		return false
	}
	return true
}

type structValidator interface {
	ValidateStruct(s interface{}) error
}
