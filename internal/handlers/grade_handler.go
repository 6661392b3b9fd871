package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type GradeHandler struct {
	BaseHandler
	gradeService services.GradeService
}

func NewGradeHandler(gradeService services.GradeService, logger utils.Logger) *GradeHandler {
	return &GradeHandler{
		BaseHandler:  NewBaseHandler(logger),
		gradeService: gradeService,
	}
}

func (h *GradeHandler) CreateReport(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.CreateGradeReportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating grade report", "subject", req.Subject, "type", req.Type)

	report, err := h.gradeService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// UpdateReport is limited to the owning teacher or an admin.
func (h *GradeHandler) UpdateReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.UpdateGradeReportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.gradeService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *GradeHandler) DeleteReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.gradeService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListReports lists grade reports
// @Summary List grade reports
// @Tags grades
// @Param subject query string false "Subject"
// @Param type query string false "test, quiz, homework..."
// @Param teacher_id query string false "Owning teacher"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Router /grades [get]
func (h *GradeHandler) ListReports(c *gin.Context) {
	reports, err := h.gradeService.List(c.Request.Context(), h.parseGradeFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (h *GradeHandler) Averages(c *gin.Context) {
	averages, err := h.gradeService.Averages(c.Request.Context(), h.parseGradeFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, averages)
}

func (h *GradeHandler) MyScores(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.scores(c, actor.UserID)
}

func (h *GradeHandler) StudentScores(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	h.scores(c, id)
}

func (h *GradeHandler) scores(c *gin.Context, studentID string) {
	scores, err := h.gradeService.StudentScores(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scores)
}

func (h *GradeHandler) Export(c *gin.Context) {
	filters := h.parseGradeFilters(c)

	h.LogRequest(c, "Exporting grades")

	var buf bytes.Buffer
	if err := h.gradeService.Export(c.Request.Context(), filters, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	name := exportName("grades", services.DateRange{From: filters.From, To: filters.To})
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *GradeHandler) parseGradeFilters(c *gin.Context) repositories.GradeFilters {
	return repositories.GradeFilters{
		Subject:   optionalQuery(c, "subject"),
		Type:      optionalQuery(c, "type"),
		TeacherID: optionalQuery(c, "teacher_id"),
		From:      c.Query("from"),
		To:        c.Query("to"),
	}
}
