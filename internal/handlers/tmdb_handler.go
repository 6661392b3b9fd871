package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

// TMDBHandler proxies metadata lookups so the API key never reaches the browser.
type TMDBHandler struct {
	BaseHandler
	metadataService services.MetadataService
}

func NewTMDBHandler(metadataService services.MetadataService, logger utils.Logger) *TMDBHandler {
	return &TMDBHandler{
		BaseHandler:     NewBaseHandler(logger),
		metadataService: metadataService,
	}
}

// Search
// @Summary Search TMDB
// @Tags tmdb
// @Param q query string true "Title"
// @Param page query int false "Page (default: 1)"
// @Param language query string false "Response language, defaults to the caller's preference"
// @Success 200 {object} tmdb.SearchResult
// @Failure 502 {object} ErrorResponse
// @Router /tmdb/search [get]
func (h *TMDBHandler) Search(c *gin.Context) {
	result, err := h.metadataService.Search(c.Request.Context(), c.Query("q"),
		h.parseIntQuery(c, "page", 1), h.language(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TMDBHandler) Videos(c *gin.Context) {
	id, ok := h.parseTMDBID(c)
	if !ok {
		return
	}

	videos, err := h.metadataService.Videos(c.Request.Context(), id, h.language(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, videos)
}

func (h *TMDBHandler) Details(c *gin.Context) {
	id, ok := h.parseTMDBID(c)
	if !ok {
		return
	}

	movie, err := h.metadataService.Details(c.Request.Context(), id, h.language(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, movie)
}

// Refresh runs the metadata refresh job on demand.
func (h *TMDBHandler) Refresh(c *gin.Context) {
	h.LogRequest(c, "Refreshing movie metadata")

	updated, err := h.metadataService.RefreshMovies(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *TMDBHandler) parseTMDBID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("tmdb_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid tmdb_id",
		})
		return 0, false
	}
	return id, true
}

func (h *TMDBHandler) language(c *gin.Context) string {
	if lang := c.Query("language"); lang != "" {
		return lang
	}
	if user, err := GetUserFromContext(c); err == nil {
		return user.Language
	}
	return ""
}
