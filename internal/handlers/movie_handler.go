package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type MovieHandler struct {
	BaseHandler
	movieService services.MovieService
}

func NewMovieHandler(movieService services.MovieService, logger utils.Logger) *MovieHandler {
	return &MovieHandler{
		BaseHandler:  NewBaseHandler(logger),
		movieService: movieService,
	}
}

// ListMovies lists the wishlist and downloaded movies
// @Summary List movies
// @Tags movies
// @Param status query string false "wishlist or downloaded"
// @Param kids_liked query bool false "Only movies the kids liked"
// @Param q query string false "Title search"
// @Param sort_by query string false "created_at, title or rating"
// @Success 200 {object} services.MovieListResponse
// @Router /movies [get]
func (h *MovieHandler) ListMovies(c *gin.Context) {
	filters := repositories.MovieFilters{
		KidsLiked: h.parseBoolQueryPtr(c, "kids_liked"),
		Query:     strings.TrimSpace(c.Query("q")),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if status := c.Query("status"); status != "" {
		movieStatus := models.MovieStatus(status)
		filters.Status = &movieStatus
	}

	resp, err := h.movieService.List(c.Request.Context(), filters,
		h.parseIntQuery(c, "page", 1), h.parseIntQuery(c, "size", 20))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MovieHandler) GetMovie(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}

	movie, err := h.movieService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, movie)
}

// CreateMovie adds a movie; titles are unique regardless of case
// @Summary Create movie
// @Tags movies
// @Param movie body services.CreateMovieRequest true "Movie"
// @Success 201 {object} models.Movie
// @Failure 409 {object} ErrorResponse
// @Router /movies [post]
func (h *MovieHandler) CreateMovie(c *gin.Context) {
	var req services.CreateMovieRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating movie", "title", req.Title)

	movie, err := h.movieService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) UpdateMovie(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.UpdateMovieRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating movie", "movie_id", id)

	movie, err := h.movieService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, movie)
}

// DeleteMovie removes the movie and its schedule entries.
func (h *MovieHandler) DeleteMovie(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting movie", "movie_id", id)

	if err := h.movieService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
