package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type ErrorResponse struct {
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logger and the helpers shared by all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	if logger == nil {
		logger = utils.NewSlogLogger(nil)
	}
	return BaseHandler{logger: logger}
}

// Logger returns the request-scoped logger when one was attached.
func (h *BaseHandler) Logger(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	if userID, ok := c.Get("user_id"); ok {
		args = append(args, "user_id", userID)
	}
	h.Logger(c).Info(msg, args...)
}

func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) string {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return id
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseBoolQueryPtr(c *gin.Context, param string) *bool {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return nil
	}
	return &value
}

func optionalQuery(c *gin.Context, param string) *string {
	if v := strings.TrimSpace(c.Query(param)); v != "" {
		return &v
	}
	return nil
}

// actor resolves the authenticated caller, writing 401 when absent.
func (h *BaseHandler) actor(c *gin.Context) (services.Actor, bool) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return services.Actor{}, false
	}
	return services.ActorFromUser(user), true
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "business_rule",
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Message: err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error()})
	case errors.Is(err, services.ErrUpstream):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "upstream_failed", Message: err.Error()})
	case errors.Is(err, services.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "unavailable", Message: err.Error()})
	default:
		h.Logger(c).Error("Unhandled service error", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}
