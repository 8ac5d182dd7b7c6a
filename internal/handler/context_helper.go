package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tracker-console/internal/middleware"
	"github.com/noah-isme/tracker-console/internal/models"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

func sessionID(c *gin.Context) string {
	return middleware.SessionID(c)
}

func fail(c *gin.Context, err error) {
	middleware.Abort(c, err)
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func pathID(c *gin.Context) (models.ID, bool) {
	id := models.ID(strings.TrimSpace(c.Param("id")))
	if id.IsZero() {
		fail(c, appErrors.Clone(appErrors.ErrValidation, "id is required"))
		return "", false
	}
	return id, true
}

func wellnessCategory(c *gin.Context) (models.WellnessCategory, bool) {
	category, err := models.ParseWellnessCategory(c.Param("category"))
	if err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, err.Error()))
		return "", false
	}
	return category, true
}
