package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type StatsHandler struct {
	BaseHandler
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService, logger utils.Logger) *StatsHandler {
	return &StatsHandler{
		BaseHandler:  NewBaseHandler(logger),
		statsService: statsService,
	}
}

// GetMovieStats
// @Summary Movie statistics
// @Tags stats
// @Success 200 {object} models.MovieStats
// @Router /stats/movies [get]
func (h *StatsHandler) GetMovieStats(c *gin.Context) {
	stats, err := h.statsService.MovieStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetSchoolStats(c *gin.Context) {
	stats, err := h.statsService.SchoolStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
