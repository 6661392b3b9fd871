package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type MigrationHandler struct {
	BaseHandler
	migrationService services.MigrationService
}

func NewMigrationHandler(migrationService services.MigrationService, logger utils.Logger) *MigrationHandler {
	return &MigrationHandler{
		BaseHandler:      NewBaseHandler(logger),
		migrationService: migrationService,
	}
}

// ImportLegacy imports the browser's old local-storage blob once per account
// @Summary Import legacy local data
// @Tags me
// @Param body body services.LegacyImportRequest true "movies and schedule"
// @Success 200 {object} models.LegacyImportResult
// @Failure 409 {object} ErrorResponse "Already imported"
// @Router /me/legacy-import [post]
func (h *MigrationHandler) ImportLegacy(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.LegacyImportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Importing legacy data", "movies", len(req.Movies))

	result, err := h.migrationService.ImportLegacy(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
