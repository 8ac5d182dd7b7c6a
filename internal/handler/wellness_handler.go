package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tracker-console/internal/dto"
	"github.com/noah-isme/tracker-console/internal/middleware"
	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/internal/service"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
	"github.com/noah-isme/tracker-console/pkg/response"
)

// WellnessHandler serves the wellness tracker dashboard tabs.
type WellnessHandler struct {
	dashboard *service.DashboardService
	records   *service.RecordService
	exports   *service.ExportService
}

// NewWellnessHandler constructs the handler.
func NewWellnessHandler(dashboard *service.DashboardService, records *service.RecordService, exports *service.ExportService) *WellnessHandler {
	return &WellnessHandler{dashboard: dashboard, records: records, exports: exports}
}

// Summary godoc
// @Summary Wellness summary
// @Description Passes the tracker API's cross-category summary through
// @Tags Wellness
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /wellness/summary [get]
func (h *WellnessHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.WellnessSummary(c.Request.Context(), sessionID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// List godoc
// @Summary Wellness tab
// @Description Lists one category's entries with statistics
// @Tags Wellness
// @Produce json
// @Param category path string true "nutrition, sleep, mood, meditation or hydration"
// @Param search query string false "Case-insensitive search"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /wellness/{category} [get]
func (h *WellnessHandler) List(c *gin.Context) {
	category, ok := wellnessCategory(c)
	if !ok {
		return
	}
	var filter dto.RecordFilter
	_ = c.ShouldBindQuery(&filter)

	view, err := h.dashboard.Wellness(c.Request.Context(), sessionID(c), category, filter)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.SetMeta(c, "shown", len(view.Entries))
	response.JSON(c, http.StatusOK, view, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Log wellness entry
// @Tags Wellness
// @Accept json
// @Produce json
// @Param category path string true "Wellness category"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /wellness/{category} [post]
func (h *WellnessHandler) Create(c *gin.Context) {
	category, form, ok := h.bindForm(c)
	if !ok {
		return
	}
	entry, err := h.records.CreateWellness(c.Request.Context(), sessionID(c), category, form)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, entry)
}

// Update godoc
// @Summary Update wellness entry
// @Tags Wellness
// @Accept json
// @Produce json
// @Param category path string true "Wellness category"
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /wellness/{category}/{id} [put]
func (h *WellnessHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	category, form, ok := h.bindForm(c)
	if !ok {
		return
	}
	entry, err := h.records.UpdateWellness(c.Request.Context(), sessionID(c), category, id, form)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete wellness entry
// @Tags Wellness
// @Param category path string true "Wellness category"
// @Param id path string true "Entry ID"
// @Success 204
// @Router /wellness/{category}/{id} [delete]
func (h *WellnessHandler) Delete(c *gin.Context) {
	category, ok := wellnessCategory(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.records.DeleteWellness(c.Request.Context(), sessionID(c), category, id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download a wellness category
// @Tags Wellness
// @Produce text/csv
// @Produce application/pdf
// @Param category path string true "Wellness category"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /wellness/{category}/export [get]
func (h *WellnessHandler) Export(c *gin.Context) {
	category, ok := wellnessCategory(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}
	file, err := h.exports.Wellness(c.Request.Context(), sessionID(c), category, format)
	if err != nil {
		fail(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

func (h *WellnessHandler) bindForm(c *gin.Context) (models.WellnessCategory, dto.WellnessForm, bool) {
	category, ok := wellnessCategory(c)
	if !ok {
		return "", nil, false
	}
	form, err := dto.NewWellnessForm(category)
	if err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, err.Error()))
		return "", nil, false
	}
	if !bindJSON(c, form, "invalid "+string(category)+" payload") {
		return "", nil, false
	}
	return category, form, true
}
