package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/noah-isme/tracker-console/internal/dto"
	"github.com/noah-isme/tracker-console/internal/models"
)

type trackerReader interface {
	ListActivities(ctx context.Context, sessionID string) ([]models.Activity, error)
	ListWellness(ctx context.Context, sessionID string, category models.WellnessCategory) ([]models.Record, error)
	WellnessSummary(ctx context.Context, sessionID string) (json.RawMessage, error)
	ListUsers(ctx context.Context, sessionID string) ([]models.UserProfile, error)
	UserActivities(ctx context.Context, sessionID string, id models.ID) ([]models.Activity, error)
	SystemStats(ctx context.Context, sessionID string) (json.RawMessage, error)
	ScopedUsers(ctx context.Context, sessionID, scope string) ([]models.UserProfile, error)
}

// DashboardService assembles the exercise, wellness and admin views.
type DashboardService struct {
	api   trackerReader
	stats *StatsService
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(api trackerReader, stats *StatsService) *DashboardService {
	if stats == nil {
		stats = NewStatsService()
	}
	return &DashboardService{api: api, stats: stats}
}

// Exercise returns the activity log, filtered for display, with statistics over the
// whole log.
func (s *DashboardService) Exercise(ctx context.Context, sessionID string, filter dto.RecordFilter) (*dto.ExerciseDashboard, error) {
	activities, err := s.api.ListActivities(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &dto.ExerciseDashboard{
		Activities: make([]models.Activity, 0, len(activities)),
		Categories: activityCategories(activities),
		Filter:     filter,
		Stats:      s.stats.Summarize(models.ActivitiesAsRecords(activities)),
	}
	for _, activity := range activities {
		if matchesCategory(activity.Category, filter.Category) && matchesSearch(activity, filter.Search) {
			view.Activities = append(view.Activities, activity)
		}
	}
	sort.SliceStable(view.Activities, func(i, j int) bool {
		return view.Activities[i].Date > view.Activities[j].Date
	})
	return view, nil
}

// ExerciseRecords returns every activity, newest first.
func (s *DashboardService) ExerciseRecords(ctx context.Context, sessionID string) ([]models.Record, error) {
	activities, err := s.api.ListActivities(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	records := models.ActivitiesAsRecords(activities)
	sortRecords(records)
	return records, nil
}

// Wellness returns one wellness category tab.
func (s *DashboardService) Wellness(ctx context.Context, sessionID string, category models.WellnessCategory, filter dto.RecordFilter) (*dto.WellnessDashboard, error) {
	records, err := s.api.ListWellness(ctx, sessionID, category)
	if err != nil {
		return nil, err
	}

	view := &dto.WellnessDashboard{
		Category: category,
		Entries:  make([]models.Record, 0, len(records)),
		Filter:   filter,
		Stats:    s.stats.Summarize(records),
	}
	for _, record := range records {
		if matchesSearch(record, filter.Search) {
			view.Entries = append(view.Entries, record)
		}
	}
	sortRecords(view.Entries)
	return view, nil
}

// WellnessRecords returns every entry of a category, newest first.
func (s *DashboardService) WellnessRecords(ctx context.Context, sessionID string, category models.WellnessCategory) ([]models.Record, error) {
	records, err := s.api.ListWellness(ctx, sessionID, category)
	if err != nil {
		return nil, err
	}
	sortRecords(records)
	return records, nil
}

// WellnessSummary passes the API summary through.
func (s *DashboardService) WellnessSummary(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return s.api.WellnessSummary(ctx, sessionID)
}

// AdminUsers lists users matching filter. Counts cover every user.
func (s *DashboardService) AdminUsers(ctx context.Context, sessionID string, filter models.AdminUserFilter) (*dto.AdminUserList, error) {
	users, err := s.api.ListUsers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &dto.AdminUserList{Users: make([]models.UserProfile, 0, len(users)), Total: len(users)}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for i := range users {
		user := users[i]
		admin := isAdminUser(&user)
		if admin {
			view.Admins++
		} else {
			view.Regular++
		}

		switch filter.Status {
		case "admin":
			if !admin {
				continue
			}
		case "regular":
			if admin {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(user.Username), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		view.Users = append(view.Users, user)
	}
	return view, nil
}

// AdminUserActivities returns one user's activities with their totals.
func (s *DashboardService) AdminUserActivities(ctx context.Context, sessionID string, userID models.ID) (*dto.AdminUserActivities, error) {
	activities, err := s.api.UserActivities(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	summary := s.stats.Summarize(models.ActivitiesAsRecords(activities))
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date > activities[j].Date
	})
	return &dto.AdminUserActivities{
		UserID:     userID,
		Activities: activities,
		Stats: dto.AdminUserStats{
			TotalActivities: summary.Count,
			TotalDuration:   summary.TotalsByField["duration"],
			TotalDistance:   summary.TotalsByField["distance"],
			TotalCalories:   summary.TotalsByField["calories_burned"],
			AverageDuration: summary.AveragesByField["duration"],
			CurrentStreak:   summary.CurrentStreak,
			LongestStreak:   summary.LongestStreak,
		},
	}, nil
}

// SystemStats passes the API's system statistics through.
func (s *DashboardService) SystemStats(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return s.api.SystemStats(ctx, sessionID)
}

// ScopedUsers lists a role-scoped user collection.
func (s *DashboardService) ScopedUsers(ctx context.Context, sessionID, scope string) ([]models.UserProfile, error) {
	return s.api.ScopedUsers(ctx, sessionID, scope)
}

func isAdminUser(user *models.UserProfile) bool {
	return user.IsAdmin || IsAuthorized(user, models.RoleAdmin)
}

func activityCategories(activities []models.Activity) []string {
	seen := map[string]struct{}{}
	categories := []string{}
	for _, activity := range activities {
		if activity.Category == "" {
			continue
		}
		if _, ok := seen[activity.Category]; ok {
			continue
		}
		seen[activity.Category] = struct{}{}
		categories = append(categories, activity.Category)
	}
	sort.Strings(categories)
	return categories
}

func matchesCategory(category, want string) bool {
	if want == "" || strings.EqualFold(want, "all") {
		return true
	}
	return strings.EqualFold(category, want)
}

func matchesSearch(record models.Record, search string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(record.SearchText()), strings.ToLower(search))
}

// sortRecords orders newest first. Wire timestamps share one fixed-width layout, so
// string order is chronological order.
func sortRecords(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordDate() > records[j].RecordDate()
	})
}
