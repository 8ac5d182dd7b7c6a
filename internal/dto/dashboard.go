package dto

import "github.com/noah-isme/tracker-console/internal/models"

// RecordFilter narrows a record list. Stats are always computed over the full list.
type RecordFilter struct {
	Category string `form:"category" json:"category,omitempty"`
	Search   string `form:"search" json:"search,omitempty"`
}

// ExerciseDashboard is the payload of the exercise tracker view.
type ExerciseDashboard struct {
	Activities []models.Activity  `json:"activities"`
	Categories []string           `json:"categories"`
	Filter     RecordFilter       `json:"filter"`
	Stats      models.RecordStats `json:"stats"`
}

// WellnessDashboard is the payload of one wellness category tab.
type WellnessDashboard struct {
	Category models.WellnessCategory `json:"category"`
	Entries  []models.Record         `json:"entries"`
	Filter   RecordFilter            `json:"filter"`
	Stats    models.RecordStats      `json:"stats"`
}

// AdminUserList is the admin console's user table.
type AdminUserList struct {
	Users   []models.UserProfile `json:"users"`
	Total   int                  `json:"total"`
	Admins  int                  `json:"admins"`
	Regular int                  `json:"regular"`
}

// AdminUserStats summarises one user's activities.
type AdminUserStats struct {
	TotalActivities int     `json:"total_activities"`
	TotalDuration   float64 `json:"total_duration"`
	TotalDistance   float64 `json:"total_distance"`
	TotalCalories   float64 `json:"total_calories"`
	AverageDuration float64 `json:"average_duration"`
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
}

// AdminUserActivities is the per-user drill-down.
type AdminUserActivities struct {
	UserID     models.ID         `json:"user_id"`
	Activities []models.Activity `json:"activities"`
	Stats      AdminUserStats    `json:"stats"`
}
