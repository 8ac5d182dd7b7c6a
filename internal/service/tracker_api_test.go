package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tracker-console/internal/models"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

func TestTrackerAPIListActivities(t *testing.T) {
	f := newAuthFixture(t)
	f.api.handle(http.MethodGet, "/activities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"activity_name":"Run","duration":30,"date":"2024-03-01T07:00:00.000Z"},
			{"id":"b2","activity_name":"Walk","duration":null,"date":"2024-02-29"}]`)
	})
	f.signIn(t, "sid")

	items, err := f.tracker.ListActivities(context.Background(), "sid")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ID("1"), items[0].ID)
	assert.Equal(t, models.ID("b2"), items[1].ID)
	assert.Nil(t, items[1].Duration)
}

func TestTrackerAPIWritesAndDeletes(t *testing.T) {
	f := newAuthFixture(t)
	var deletedPath string
	f.api.handle(http.MethodPost, "/activities", func(w http.ResponseWriter, r *http.Request) {
		var in models.Activity
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = "42"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	})
	f.api.handle(http.MethodDelete, "/activities/42", func(w http.ResponseWriter, r *http.Request) {
		deletedPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	f.signIn(t, "sid")

	created, err := f.tracker.CreateActivity(context.Background(), "sid", models.Activity{
		ActivityName: "Row", Duration: floatPtr(20), Date: "2024-03-01T10:00:00.000Z",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID("42"), created.ID)

	require.NoError(t, f.tracker.DeleteActivity(context.Background(), "sid", created.ID))
	assert.Equal(t, "/activities/42", deletedPath)
}

func TestTrackerAPIWellnessDecodesByCategory(t *testing.T) {
	f := newAuthFixture(t)
	f.api.handle(http.MethodGet, "/wellness/sleep", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":3,"bedtime":"2024-02-29T23:00:00.000Z","wake_time":"2024-03-01T07:00:00.000Z","sleep_quality":8}]`)
	})
	f.api.handle(http.MethodGet, "/wellness/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"sleep":{"avg_quality":8}}`)
	})
	f.signIn(t, "sid")

	records, err := f.tracker.ListWellness(context.Background(), "sid", models.WellnessSleep)
	require.NoError(t, err)
	require.Len(t, records, 1)
	sleep, ok := records[0].(models.SleepEntry)
	require.True(t, ok)
	assert.Equal(t, "2024-02-29T23:00:00.000Z", sleep.RecordDate())

	summary, err := f.tracker.WellnessSummary(context.Background(), "sid")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sleep":{"avg_quality":8}}`, string(summary))
}

func TestTrackerAPIMalformedListBody(t *testing.T) {
	f := newAuthFixture(t)
	f.api.handle(http.MethodGet, "/activities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":"not a list"}`)
	})
	f.signIn(t, "sid")

	_, err := f.tracker.ListActivities(context.Background(), "sid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedResponse))
}

func TestTrackerAPISurfacesUpstreamDetail(t *testing.T) {
	f := newAuthFixture(t)
	f.api.handle(http.MethodPost, "/admin/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"msg":"username taken"},{"msg":"email invalid"}]}`)
	})
	f.signIn(t, "sid")

	_, err := f.tracker.CreateUser(context.Background(), "sid", models.CreateUserRequest{Username: "bob"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErrors.StatusOf(err))
	assert.Equal(t, "username taken; email invalid", appErrors.FromError(err).Message)
}

func TestTrackerAPIScopedUsers(t *testing.T) {
	f := newAuthFixture(t)
	f.api.handle(http.MethodGet, "/users/subusers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":7,"username":"kid","role":"subuser"}]`)
	})
	f.signIn(t, "sid")

	users, err := f.tracker.ScopedUsers(context.Background(), "sid", "subusers")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleSubuser, users[0].Role)

	_, err = f.tracker.ScopedUsers(context.Background(), "sid", "coaches")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTrackerAPISignedOutSessionIsUnauthenticated(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.tracker.ListActivities(context.Background(), "anonymous")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
}

func TestTrackerAPIMeRequiresUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.signIn(t, "sid")
	f.api.set(func(a *fakeTrackerAPI) { a.loginUser = &models.UserProfile{ID: "1"} })

	_, err := f.tracker.Me(context.Background(), "sid")
	assert.True(t, errors.Is(err, appErrors.ErrMalformedResponse))
}
