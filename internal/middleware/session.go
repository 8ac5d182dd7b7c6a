package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/tracker-console/pkg/config"
	"github.com/noah-isme/tracker-console/pkg/logger"
)

// SessionStateHeader tells the browser its session was signed out by the gateway.
const SessionStateHeader = "X-Session-State"

// Session binds every request to a browser session id kept in an HttpOnly cookie. The
// cookie carries no Max-Age, so it ends with the browser session. Missing or malformed
// ids are replaced with a fresh one.
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.CookieName)
		if err != nil || !validSessionID(sid) {
			sid = uuid.NewString()
			writeSessionCookie(c, cfg, sid, 0)
		}
		c.Set(logger.SessionIDKey, sid)
		c.Next()
	}
}

// SessionID returns the session id bound by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(logger.SessionIDKey)
}

// EndSession expires the session cookie. The next request starts a new session.
func EndSession(c *gin.Context, cfg config.SessionConfig) {
	writeSessionCookie(c, cfg, "", -1)
	c.Header(SessionStateHeader, "ended")
}

func writeSessionCookie(c *gin.Context, cfg config.SessionConfig, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, value, maxAge, "/", "", cfg.CookieSecure, true)
}

func validSessionID(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}
