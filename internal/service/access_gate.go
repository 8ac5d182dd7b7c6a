package service

import "github.com/noah-isme/tracker-console/internal/models"

// ViewKind selects which dashboard a profile gets.
type ViewKind string

const (
	ViewAdmin           ViewKind = "admin"
	ViewExerciseTracker ViewKind = "exercise_tracker"
	ViewWellnessTracker ViewKind = "wellness_tracker"
	ViewUnrecognized    ViewKind = "unrecognized"
)

// RequiredRole is the role a view needs. Unrecognized has none.
func (v ViewKind) RequiredRole() models.UserRole {
	switch v {
	case ViewAdmin:
		return models.RoleAdmin
	case ViewExerciseTracker:
		return models.RoleExerciseTracker
	case ViewWellnessTracker:
		return models.RoleWellnessTracker
	}
	return ""
}

// IsAuthorized reports whether profile carries required, either as its single role or
// inside its role list. This gates views only; the API enforces permissions.
func IsAuthorized(profile *models.UserProfile, required models.UserRole) bool {
	if profile == nil || required == "" {
		return false
	}
	if profile.Role == required {
		return true
	}
	for _, role := range profile.Roles {
		if role == required {
			return true
		}
	}
	return false
}

// Classify picks the view for profile. Admin wins over the tracker roles; a profile
// holding neither tracker role nor admin is Unrecognized.
func Classify(profile *models.UserProfile) ViewKind {
	switch {
	case IsAuthorized(profile, models.RoleAdmin):
		return ViewAdmin
	case IsAuthorized(profile, models.RoleExerciseTracker):
		return ViewExerciseTracker
	case IsAuthorized(profile, models.RoleWellnessTracker):
		return ViewWellnessTracker
	}
	return ViewUnrecognized
}
