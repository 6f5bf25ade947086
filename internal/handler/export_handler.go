package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeyatra/query-engine-api/internal/service"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
	"github.com/codeyatra/query-engine-api/pkg/response"
)

// ExportHandler serves teacher query-log downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// QueryLog godoc
// @Summary Download my query log
// @Description Render the acting teacher's query log as CSV or PDF
// @Tags Export
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "Export format" Enums(csv, pdf) default(csv)
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{}
// @Router /teacher/queries/export [get]
func (h *ExportHandler) QueryLog(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.service.QueryLog(c.Request.Context(), claims, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
