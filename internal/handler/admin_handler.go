package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/internal/service"
	"github.com/noah-isme/tracker-console/pkg/response"
)

// AdminHandler serves the admin console.
type AdminHandler struct {
	dashboard *service.DashboardService
	records   *service.RecordService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(dashboard *service.DashboardService, records *service.RecordService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, records: records}
}

// ListUsers godoc
// @Summary List users
// @Tags Admin
// @Produce json
// @Param search query string false "Username or email contains"
// @Param status query string false "all, admin or regular"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := models.AdminUserFilter{Search: c.Query("search"), Status: c.DefaultQuery("status", "all")}
	view, err := h.dashboard.AdminUsers(c.Request.Context(), sessionID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// CreateUser godoc
// @Summary Create user
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "User"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req, "invalid user payload") {
		return
	}
	user, err := h.records.CreateUser(c.Request.Context(), sessionID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, user)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags Admin
// @Param id path string true "User ID"
// @Success 204
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.records.DeleteUser(c.Request.Context(), sessionID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// UserActivities godoc
// @Summary User activities
// @Description One user's activities with totals and streaks
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /admin/users/{id}/activities [get]
func (h *AdminHandler) UserActivities(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.dashboard.AdminUserActivities(c.Request.Context(), sessionID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// SystemStats godoc
// @Summary System statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) SystemStats(c *gin.Context) {
	stats, err := h.dashboard.SystemStats(c.Request.Context(), sessionID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// ScopedUsers godoc
// @Summary Role-scoped users
// @Tags Admin
// @Produce json
// @Param scope path string true "subusers, exercise_trackers or wellness_trackers"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/scoped/{scope} [get]
func (h *AdminHandler) ScopedUsers(c *gin.Context) {
	users, err := h.dashboard.ScopedUsers(c.Request.Context(), sessionID(c), c.Param("scope"))
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, map[string]interface{}{"total": len(users)})
}
