package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tracker-console/internal/models"
)

func TestIsAuthorizedAcceptsBothRoleShapes(t *testing.T) {
	single := &models.UserProfile{Username: "root", Role: models.RoleAdmin}
	listed := &models.UserProfile{Username: "ops", Roles: []models.UserRole{models.RoleExerciseTracker, models.RoleAdmin}}
	subuser := &models.UserProfile{Username: "kid", Role: models.RoleSubuser}

	assert.True(t, IsAuthorized(single, models.RoleAdmin))
	assert.True(t, IsAuthorized(listed, models.RoleAdmin))
	assert.True(t, IsAuthorized(listed, models.RoleExerciseTracker))
	assert.False(t, IsAuthorized(subuser, models.RoleAdmin))
	assert.False(t, IsAuthorized(listed, models.RoleWellnessTracker))
}

func TestIsAuthorizedRejectsEmptyInput(t *testing.T) {
	assert.False(t, IsAuthorized(nil, models.RoleAdmin))
	assert.False(t, IsAuthorized(&models.UserProfile{}, models.RoleAdmin))
	assert.False(t, IsAuthorized(&models.UserProfile{Role: models.RoleAdmin}, ""))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.UserProfile
		want    ViewKind
	}{
		{"admin role", &models.UserProfile{Role: models.RoleAdmin}, ViewAdmin},
		{"admin wins over tracker roles", &models.UserProfile{Roles: []models.UserRole{models.RoleWellnessTracker, models.RoleAdmin}}, ViewAdmin},
		{"exercise tracker", &models.UserProfile{Role: models.RoleExerciseTracker}, ViewExerciseTracker},
		{"exercise wins over wellness", &models.UserProfile{Roles: []models.UserRole{models.RoleWellnessTracker, models.RoleExerciseTracker}}, ViewExerciseTracker},
		{"wellness tracker", &models.UserProfile{Roles: []models.UserRole{models.RoleWellnessTracker}}, ViewWellnessTracker},
		{"subuser", &models.UserProfile{Role: models.RoleSubuser}, ViewUnrecognized},
		{"unknown role", &models.UserProfile{Role: "coach"}, ViewUnrecognized},
		{"nil profile", nil, ViewUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.profile))
		})
	}
}

func TestViewKindRequiredRole(t *testing.T) {
	assert.Equal(t, models.RoleAdmin, ViewAdmin.RequiredRole())
	assert.Equal(t, models.RoleExerciseTracker, ViewExerciseTracker.RequiredRole())
	assert.Equal(t, models.RoleWellnessTracker, ViewWellnessTracker.RequiredRole())
	assert.Empty(t, ViewUnrecognized.RequiredRole())
}
