package dto

import "github.com/noah-isme/tracker-console/internal/models"

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Username        string          `json:"username" validate:"required,min=3"`
	Email           string          `json:"email" validate:"required,email"`
	Password        string          `json:"password" validate:"required,min=6"`
	ConfirmPassword string          `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=exercise_tracker wellness_tracker subuser"`
}

// LoginResult is returned to the browser after sign-in. Tokens never leave the gateway.
type LoginResult struct {
	Profile *models.UserProfile `json:"profile"`
	View    string              `json:"view"`
}

// DashboardRoute tells the browser which dashboard to mount.
type DashboardRoute struct {
	View    string              `json:"view"`
	Profile *models.UserProfile `json:"profile"`
}
