package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type SuggestionHandler struct {
	BaseHandler
	suggestionService services.SuggestionService
}

func NewSuggestionHandler(suggestionService services.SuggestionService, logger utils.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		BaseHandler:       NewBaseHandler(logger),
		suggestionService: suggestionService,
	}
}

func (h *SuggestionHandler) CreateSuggestion(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.CreateSuggestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating suggestion", "title", req.Title)

	suggestion, err := h.suggestionService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, suggestion)
}

// ListSuggestions returns every suggestion to staff and the caller's own otherwise.
// @Summary List suggestions
// @Tags suggestions
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} services.SuggestionListResponse
// @Router /suggestions [get]
func (h *SuggestionHandler) ListSuggestions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var status *models.SuggestionStatus
	if s := c.Query("status"); s != "" {
		st := models.SuggestionStatus(s)
		status = &st
	}

	resp, err := h.suggestionService.List(c.Request.Context(), actor, status,
		h.parseIntQuery(c, "page", 1), h.parseIntQuery(c, "size", 20))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateStatus approves or rejects; approval can add the title to the wishlist.
func (h *SuggestionHandler) UpdateStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.UpdateSuggestionStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Reviewing suggestion", "suggestion_id", id, "status", req.Status)

	suggestion, err := h.suggestionService.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

func (h *SuggestionHandler) DeleteSuggestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.suggestionService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
