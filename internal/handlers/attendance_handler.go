package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler struct {
	BaseHandler
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(attendanceService services.AttendanceService, logger utils.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler:       NewBaseHandler(logger),
		attendanceService: attendanceService,
	}
}

// SaveAttendance stores the teacher's sheet for a date, replacing an earlier one
// @Summary Save attendance
// @Tags attendance
// @Param body body services.SaveAttendanceRequest true "Date and studentId->present map"
// @Success 200 {object} models.AttendanceRecord
// @Router /attendance [put]
func (h *AttendanceHandler) SaveAttendance(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.SaveAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Saving attendance", "date", req.Date, "students", len(req.Records))

	record, err := h.attendanceService.Save(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandler) GetByDate(c *gin.Context) {
	records, err := h.attendanceService.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	rng, ok := h.bindRange(c)
	if !ok {
		return
	}

	records, err := h.attendanceService.List(c.Request.Context(), rng, optionalQuery(c, "teacher_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) Summary(c *gin.Context) {
	rng, ok := h.bindRange(c)
	if !ok {
		return
	}

	summary, err := h.attendanceService.Summary(c.Request.Context(), rng)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// MyHistory is the student's own attendance.
func (h *AttendanceHandler) MyHistory(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.history(c, actor.UserID)
}

func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	h.history(c, id)
}

func (h *AttendanceHandler) history(c *gin.Context, studentID string) {
	rng, ok := h.bindRange(c)
	if !ok {
		return
	}

	history, err := h.attendanceService.StudentHistory(c.Request.Context(), studentID, rng)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *AttendanceHandler) Export(c *gin.Context) {
	rng, ok := h.bindRange(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting attendance", "from", rng.From, "to", rng.To)

	var buf bytes.Buffer
	if err := h.attendanceService.Export(c.Request.Context(), rng, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName("attendance", rng)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.attendanceService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) bindRange(c *gin.Context) (services.DateRange, bool) {
	var rng services.DateRange
	if err := c.ShouldBindQuery(&rng); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid date range",
			Details: err.Error(),
		})
		return rng, false
	}
	return rng, true
}

func exportName(kind string, rng services.DateRange) string {
	name := kind
	if rng.From != "" {
		name += "_" + rng.From
	}
	if rng.To != "" {
		name += "_" + rng.To
	}
	return name + ".xlsx"
}
