package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
	"github.com/noah-isme/tracker-console/pkg/middleware/requestid"
	"github.com/noah-isme/tracker-console/pkg/response"
	"github.com/noah-isme/tracker-console/pkg/telemetry"
)

// Recovery turns a handler panic into an INTERNAL_ERROR envelope and reports it.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err := fmt.Errorf("panic: %v", recovered)
		logger.Error("handler panic", zap.Error(err), zap.String("path", c.FullPath()))
		telemetry.CaptureError(err, map[string]string{
			"path":       c.FullPath(),
			"request_id": requestid.Value(c),
		})
		response.Error(c, appErrors.ErrInternal)
		c.Abort()
	})
}
