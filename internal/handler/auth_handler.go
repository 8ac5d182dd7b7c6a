package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tracker-console/internal/dto"
	"github.com/noah-isme/tracker-console/internal/middleware"
	"github.com/noah-isme/tracker-console/internal/service"
	"github.com/noah-isme/tracker-console/pkg/config"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
	"github.com/noah-isme/tracker-console/pkg/response"
)

// AuthHandler wires the sign-in flow of a browser session to the auth service.
type AuthHandler struct {
	service *service.AuthService
	session config.SessionConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, session config.SessionConfig) *AuthHandler {
	return &AuthHandler{service: svc, session: session}
}

// AcceptTerms godoc
// @Summary Accept terms and conditions
// @Description Records terms acceptance and keeps the issued auth token in the browser session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /terms/agree [post]
func (h *AuthHandler) AcceptTerms(c *gin.Context) {
	if err := h.service.AcceptTerms(c.Request.Context(), sessionID(c)); err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"terms_accepted": true})
}

// Register godoc
// @Summary Register account
// @Description Creates a tracker account. Requires accepted terms.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterForm true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	if !bindJSON(c, &form, "invalid registration payload") {
		return
	}
	user, err := h.service.Register(c.Request.Context(), sessionID(c), form)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, user)
}

// Login godoc
// @Summary Sign in
// @Description Signs in, keeps the tokens server-side and answers the profile with its dashboard view
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginForm true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if !bindJSON(c, &form, "invalid login payload") {
		return
	}
	res, err := h.service.Login(c.Request.Context(), sessionID(c), form)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Sign out
// @Description Drops the browser session and expires its cookie
// @Tags Authentication
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), sessionID(c)); err != nil {
		fail(c, err)
		return
	}
	middleware.EndSession(c, h.session)
	response.NoContent(c)
}

// Me godoc
// @Summary Current profile
// @Description Re-fetches the profile from the tracker API, refreshing the access token when needed
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), sessionID(c), true)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Session godoc
// @Summary Session status
// @Description Reports terms acceptance, sign-in state and access token expiry without calling the tracker API
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), sessionID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Dashboard godoc
// @Summary Dashboard route
// @Description Picks the dashboard for the signed-in profile. Profiles holding no tracker or admin role are denied.
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard [get]
func (h *AuthHandler) Dashboard(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), sessionID(c), true)
	if err != nil {
		fail(c, err)
		return
	}
	view := service.Classify(profile)
	if view == service.ViewUnrecognized {
		fail(c, appErrors.Clone(appErrors.ErrAccessDenied, "this account has no dashboard, contact an administrator"))
		return
	}
	response.JSON(c, http.StatusOK, dto.DashboardRoute{View: string(view), Profile: profile})
}
