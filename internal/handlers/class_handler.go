package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type ClassHandler struct {
	BaseHandler
	classService services.ClassService
}

func NewClassHandler(classService services.ClassService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler:  NewBaseHandler(logger),
		classService: classService,
	}
}

func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req services.ClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating class", "name", req.Name)

	class, err := h.classService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

func (h *ClassHandler) RenameClass(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.ClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Rename(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// DeleteClass also detaches the class from students and schedule entries.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting class", "class_id", id)

	if err := h.classService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ClassHandler) ListStudents(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}

	students, err := h.classService.Students(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}
