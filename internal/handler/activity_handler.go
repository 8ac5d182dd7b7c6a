package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tracker-console/internal/dto"
	"github.com/noah-isme/tracker-console/internal/middleware"
	"github.com/noah-isme/tracker-console/internal/service"
	"github.com/noah-isme/tracker-console/pkg/response"
)

// ActivityHandler serves the exercise tracker dashboard.
type ActivityHandler struct {
	dashboard *service.DashboardService
	records   *service.RecordService
	exports   *service.ExportService
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(dashboard *service.DashboardService, records *service.RecordService, exports *service.ExportService) *ActivityHandler {
	return &ActivityHandler{dashboard: dashboard, records: records, exports: exports}
}

// List godoc
// @Summary Exercise dashboard
// @Description Lists activities filtered by category and search text with statistics over the whole log
// @Tags Exercise
// @Produce json
// @Param category query string false "Category filter, all for none"
// @Param search query string false "Case-insensitive search"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var filter dto.RecordFilter
	_ = c.ShouldBindQuery(&filter)

	view, err := h.dashboard.Exercise(c.Request.Context(), sessionID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.SetMeta(c, "shown", len(view.Activities))
	response.JSON(c, http.StatusOK, view, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Log activity
// @Tags Exercise
// @Accept json
// @Produce json
// @Param payload body dto.ActivityForm true "Activity"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var form dto.ActivityForm
	if !bindJSON(c, &form, "invalid activity payload") {
		return
	}
	created, err := h.records.CreateActivity(c.Request.Context(), sessionID(c), form)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update activity
// @Tags Exercise
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body dto.ActivityForm true "Activity"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities/{id} [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var form dto.ActivityForm
	if !bindJSON(c, &form, "invalid activity payload") {
		return
	}
	updated, err := h.records.UpdateActivity(c.Request.Context(), sessionID(c), id, form)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete activity
// @Tags Exercise
// @Param id path string true "Activity ID"
// @Success 204
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.records.DeleteActivity(c.Request.Context(), sessionID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download activities
// @Tags Exercise
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /activities/export [get]
func (h *ActivityHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}
	file, err := h.exports.Activities(c.Request.Context(), sessionID(c), format)
	if err != nil {
		fail(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
