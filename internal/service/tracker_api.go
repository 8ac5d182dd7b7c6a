package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/internal/repository"
	"github.com/noah-isme/tracker-console/pkg/config"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

// RoleScopes are the role-scoped user lists exposed by the API.
var RoleScopes = []string{"subusers", "exercise_trackers", "wellness_trackers"}

// TrackerAPI is the typed, session-authenticated surface of the tracker API.
type TrackerAPI struct {
	store     repository.SessionStore
	clients   *SessionClientFactory
	endpoints config.EndpointConfig
}

// NewTrackerAPI constructs the API wrapper.
func NewTrackerAPI(store repository.SessionStore, clients *SessionClientFactory, endpoints config.EndpointConfig) *TrackerAPI {
	return &TrackerAPI{store: store, clients: clients, endpoints: endpoints}
}

// Client returns the SessionClient of a browser session.
func (a *TrackerAPI) Client(sessionID string) *SessionClient {
	return a.clients.ForSession(repository.NewScopedTokenStore(a.store, sessionID), sessionID, nil)
}

func (a *TrackerAPI) call(ctx context.Context, sessionID, method, path string, in, out interface{}) error {
	opts, err := jsonOptions(method, in)
	if err != nil {
		return err
	}
	resp, err := a.Client(sessionID).Request(ctx, path, opts)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func (a *TrackerAPI) raw(ctx context.Context, sessionID, path string) ([]byte, error) {
	var body json.RawMessage
	if err := a.call(ctx, sessionID, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// Me fetches the current profile.
func (a *TrackerAPI) Me(ctx context.Context, sessionID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := a.call(ctx, sessionID, http.MethodGet, a.endpoints.Me, nil, &profile); err != nil {
		return nil, err
	}
	if profile.Username == "" {
		return nil, appErrors.Malformed(nil, "profile response has no username")
	}
	return &profile, nil
}

func (a *TrackerAPI) ListActivities(ctx context.Context, sessionID string) ([]models.Activity, error) {
	var items []models.Activity
	if err := a.call(ctx, sessionID, http.MethodGet, a.endpoints.Activities, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *TrackerAPI) CreateActivity(ctx context.Context, sessionID string, activity models.Activity) (*models.Activity, error) {
	var created models.Activity
	if err := a.call(ctx, sessionID, http.MethodPost, a.endpoints.Activities, activity, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *TrackerAPI) UpdateActivity(ctx context.Context, sessionID string, id models.ID, activity models.Activity) (*models.Activity, error) {
	var updated models.Activity
	if err := a.call(ctx, sessionID, http.MethodPut, itemPath(a.endpoints.Activities, id), activity, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a *TrackerAPI) DeleteActivity(ctx context.Context, sessionID string, id models.ID) error {
	return a.call(ctx, sessionID, http.MethodDelete, itemPath(a.endpoints.Activities, id), nil, nil)
}

func (a *TrackerAPI) ListWellness(ctx context.Context, sessionID string, category models.WellnessCategory) ([]models.Record, error) {
	body, err := a.raw(ctx, sessionID, a.wellnessPath(category))
	if err != nil {
		return nil, err
	}
	records, err := category.DecodeList(body)
	if err != nil {
		return nil, appErrors.Malformed(err, "")
	}
	return records, nil
}

func (a *TrackerAPI) CreateWellness(ctx context.Context, sessionID string, category models.WellnessCategory, entry models.Record) (models.Record, error) {
	return a.writeWellness(ctx, sessionID, http.MethodPost, a.wellnessPath(category), category, entry)
}

func (a *TrackerAPI) UpdateWellness(ctx context.Context, sessionID string, category models.WellnessCategory, id models.ID, entry models.Record) (models.Record, error) {
	return a.writeWellness(ctx, sessionID, http.MethodPut, itemPath(a.wellnessPath(category), id), category, entry)
}

func (a *TrackerAPI) DeleteWellness(ctx context.Context, sessionID string, category models.WellnessCategory, id models.ID) error {
	return a.call(ctx, sessionID, http.MethodDelete, itemPath(a.wellnessPath(category), id), nil, nil)
}

// WellnessSummary passes the API's wellness summary through unchanged.
func (a *TrackerAPI) WellnessSummary(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return a.raw(ctx, sessionID, strings.TrimRight(a.endpoints.Wellness, "/")+"/summary")
}

func (a *TrackerAPI) writeWellness(ctx context.Context, sessionID, method, path string, category models.WellnessCategory, entry models.Record) (models.Record, error) {
	var body json.RawMessage
	if err := a.call(ctx, sessionID, method, path, entry, &body); err != nil {
		return nil, err
	}
	record, err := category.DecodeOne(body)
	if err != nil {
		return nil, appErrors.Malformed(err, "")
	}
	return record, nil
}

func (a *TrackerAPI) wellnessPath(category models.WellnessCategory) string {
	return strings.TrimRight(a.endpoints.Wellness, "/") + "/" + string(category)
}

func (a *TrackerAPI) ListUsers(ctx context.Context, sessionID string) ([]models.UserProfile, error) {
	var users []models.UserProfile
	if err := a.call(ctx, sessionID, http.MethodGet, a.endpoints.AdminUsers, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *TrackerAPI) CreateUser(ctx context.Context, sessionID string, req models.CreateUserRequest) (*models.UserProfile, error) {
	var created models.UserProfile
	if err := a.call(ctx, sessionID, http.MethodPost, a.endpoints.AdminUsers, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *TrackerAPI) DeleteUser(ctx context.Context, sessionID string, id models.ID) error {
	return a.call(ctx, sessionID, http.MethodDelete, itemPath(a.endpoints.AdminUsers, id), nil, nil)
}

func (a *TrackerAPI) UserActivities(ctx context.Context, sessionID string, id models.ID) ([]models.Activity, error) {
	var items []models.Activity
	path := itemPath(a.endpoints.AdminUsers, id) + "/activities"
	if err := a.call(ctx, sessionID, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SystemStats passes the API's system statistics through unchanged.
func (a *TrackerAPI) SystemStats(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return a.raw(ctx, sessionID, a.endpoints.AdminStats)
}

// ScopedUsers lists one of the role-scoped user collections.
func (a *TrackerAPI) ScopedUsers(ctx context.Context, sessionID, scope string) ([]models.UserProfile, error) {
	if !knownScope(scope) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown user scope %q", scope))
	}
	var users []models.UserProfile
	path := strings.TrimRight(a.endpoints.RoleScoped, "/") + "/" + scope
	if err := a.call(ctx, sessionID, http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func knownScope(scope string) bool {
	for _, s := range RoleScopes {
		if s == scope {
			return true
		}
	}
	return false
}

func itemPath(base string, id models.ID) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(id.String())
}
