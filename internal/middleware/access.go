package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/internal/service"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
	"github.com/noah-isme/tracker-console/pkg/response"
)

// ContextProfileKey is the gin context key storing the signed-in profile.
const ContextProfileKey = "currentProfile"

type profileSource interface {
	Profile(ctx context.Context, sessionID string, fresh bool) (*models.UserProfile, error)
}

// RequireView admits only sessions whose profile may mount view. The profile is
// re-fetched on GET so a role change upstream is seen when a dashboard mounts.
// This is view gating; the tracker API still authorises every call.
func RequireView(profiles profileSource, view service.ViewKind) gin.HandlerFunc {
	required := view.RequiredRole()
	return func(c *gin.Context) {
		profile, err := profiles.Profile(c.Request.Context(), SessionID(c), c.Request.Method == http.MethodGet)
		if err != nil {
			Abort(c, err)
			return
		}
		if !service.IsAuthorized(profile, required) {
			Abort(c, appErrors.Clone(appErrors.ErrAccessDenied, ""))
			return
		}
		c.Set(ContextProfileKey, profile)
		c.Next()
	}
}

// Abort writes err and stops the chain. Errors that signed the session out are
// flagged with SessionStateHeader.
func Abort(c *gin.Context, err error) {
	if appErrors.IsSessionTerminal(err) {
		c.Header(SessionStateHeader, "signed-out")
	}
	response.Error(c, err)
	c.Abort()
}

// ProfileFromContext returns the profile stored by RequireView.
func ProfileFromContext(c *gin.Context) *models.UserProfile {
	value, exists := c.Get(ContextProfileKey)
	if !exists {
		return nil
	}
	profile, _ := value.(*models.UserProfile)
	return profile
}
