package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tracker-console/internal/middleware"
	"github.com/noah-isme/tracker-console/internal/service"
)

// Handlers groups the gateway handlers mounted by Register.
type Handlers struct {
	Auth     *AuthHandler
	Activity *ActivityHandler
	Wellness *WellnessHandler
	Admin    *AdminHandler
}

// Register mounts the session-bound routes on api. Each dashboard group is gated on the
// role its view requires.
func Register(api *gin.RouterGroup, h Handlers, profiles *service.AuthService) {
	api.POST("/terms/agree", h.Auth.AcceptTerms)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)

	api.GET("/session", h.Auth.Session)
	api.GET("/dashboard", h.Auth.Dashboard)

	activities := api.Group("/activities", middleware.RequireView(profiles, service.ViewExerciseTracker))
	activities.GET("", h.Activity.List)
	activities.POST("", h.Activity.Create)
	activities.GET("/export", h.Activity.Export)
	activities.PUT("/:id", h.Activity.Update)
	activities.DELETE("/:id", h.Activity.Delete)

	wellness := api.Group("/wellness", middleware.RequireView(profiles, service.ViewWellnessTracker))
	wellness.GET("/summary", h.Wellness.Summary)
	wellness.GET("/:category", h.Wellness.List)
	wellness.POST("/:category", h.Wellness.Create)
	wellness.GET("/:category/export", h.Wellness.Export)
	wellness.PUT("/:category/:id", h.Wellness.Update)
	wellness.DELETE("/:category/:id", h.Wellness.Delete)

	admin := api.Group("/admin", middleware.RequireView(profiles, service.ViewAdmin))
	admin.GET("/users", h.Admin.ListUsers)
	admin.POST("/users", h.Admin.CreateUser)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
	admin.GET("/users/:id/activities", h.Admin.UserActivities)
	admin.GET("/stats", h.Admin.SystemStats)
	admin.GET("/scoped/:scope", h.Admin.ScopedUsers)
}
