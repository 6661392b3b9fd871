package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type ScheduleHandler struct {
	BaseHandler
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService, logger utils.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler:     NewBaseHandler(logger),
		scheduleService: scheduleService,
	}
}

// GetWeek returns Mon..Sun with the entries visible to the caller.
// @Summary Weekly schedule
// @Tags schedule
// @Success 200 {array} models.DaySchedule
// @Router /schedule [get]
func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	week, err := h.scheduleService.Week(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, week)
}

func (h *ScheduleHandler) CreateEntry(c *gin.Context) {
	var req services.CreateScheduleEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Scheduling movie", "movie_id", req.MovieID, "day", req.Day)

	entry, err := h.scheduleService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *ScheduleHandler) UpdateEntry(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.UpdateScheduleEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.scheduleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *ScheduleHandler) DeleteEntry(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ScheduleHandler) ClearDay(c *gin.Context) {
	day := models.Weekday(c.Query("day"))

	h.LogRequest(c, "Clearing schedule day", "day", day)

	removed, err := h.scheduleService.ClearDay(c.Request.Context(), day)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"day": day, "removed": removed})
}
