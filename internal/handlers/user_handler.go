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

// maxImportSize bounds uploaded pre-registration workbooks.
const maxImportSize = 5 << 20

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags admin
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (email, name or login id)"
// @Param role query string false "Filter by role"
// @Param status query string false "Filter by status"
// @Param class_id query string false "Filter by class"
// @Success 200 {object} services.UserListResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := h.parseUserFilters(c)
	resp, err := h.userService.List(c.Request.Context(), filters,
		h.parseIntQuery(c, "page", 1), h.parseIntQuery(c, "size", 20))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateStatus approves or rejects an account.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.UpdateUserStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating user status", "target_id", id, "status", req.Status)

	user, err := h.userService.UpdateStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.UpdateUserRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating user role", "target_id", id, "role", req.Role)

	user, err := h.userService.UpdateRole(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) AssignClass(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.AssignClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.AssignClass(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateStudent creates an approved student account that signs in with a login id.
func (h *UserHandler) CreateStudent(c *gin.Context) {
	var req services.CreateStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating student account", "login_id", req.LoginID)

	user, err := h.userService.CreateStudent(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting user", "target_id", id)

	if err := h.userService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListPreRegistered(c *gin.Context) {
	emails, err := h.userService.ListPreRegistered(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, emails)
}

func (h *UserHandler) AddPreRegistered(c *gin.Context) {
	var req services.PreRegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.userService.AddPreRegistered(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ImportPreRegistered reads emails from the first column of an uploaded XLSX file.
// @Summary Import pre-registered emails
// @Tags admin
// @Accept multipart/form-data
// @Param file formData file true "XLSX workbook"
// @Success 200 {object} models.ImportResult
// @Router /admin/pre-registered/import [post]
func (h *UserHandler) ImportPreRegistered(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "An XLSX file is required in the 'file' field",
			Details: err.Error(),
		})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Only .xlsx files are supported",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Could not read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing pre-registered emails", "file", fileHeader.Filename)

	result, err := h.userService.ImportPreRegistered(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *UserHandler) DeletePreRegistered(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.userService.DeletePreRegistered(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetPreferences(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	prefs, err := h.userService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}
	var req services.Preferences
	if !h.bindJSON(c, &req) {
		return
	}

	prefs, err := h.userService.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	filters := repositories.UserFilters{
		Query:     strings.TrimSpace(c.Query("q")),
		ClassID:   optionalQuery(c, "class_id"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if role := c.Query("role"); role != "" {
		userRole := models.UserRole(role)
		filters.Role = &userRole
	}
	if status := c.Query("status"); status != "" {
		userStatus := models.UserStatus(status)
		filters.Status = &userStatus
	}

	return filters
}
