package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/internal/repository"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

type fakeTokens struct {
	mu     sync.Mutex
	pair   models.TokenPair
	clears int
}

func (f *fakeTokens) Read(context.Context) (models.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pair, nil
}

func (f *fakeTokens) Save(_ context.Context, access, refresh string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pair.Access = access
	if refresh != "" {
		f.pair.Refresh = refresh
	}
	return nil
}

func (f *fakeTokens) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pair = models.TokenPair{}
	f.clears++
	return nil
}

func (f *fakeTokens) snapshot() (models.TokenPair, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pair, f.clears
}

type trackerStub struct {
	server      *httptest.Server
	dataHits    atomic.Int32
	refreshHits atomic.Int32
}

// newTrackerStub serves /data with data and /auth/refresh with refresh.
func newTrackerStub(t *testing.T, data, refresh http.HandlerFunc) *trackerStub {
	t.Helper()
	stub := &trackerStub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		stub.dataHits.Add(1)
		data(w, r)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		stub.refreshHits.Add(1)
		refresh(w, r)
	})
	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *trackerStub) factory(dedup bool, metrics *MetricsService) *SessionClientFactory {
	return NewSessionClientFactory(s.server.Client(), SessionClientConfig{
		BaseURL:      s.server.URL,
		RefreshPath:  "/auth/refresh",
		DedupRefresh: dedup,
	}, zap.NewNop(), metrics)
}

func bearerGate(valid string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"token expired"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}
}

func refreshWith(body string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

type logoutRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (l *logoutRecorder) signal(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reasons = append(l.reasons, reason)
}

func (l *logoutRecorder) calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.reasons...)
}

func TestSessionClientRefreshesOnceAndReturnsRetriedResponse(t *testing.T) {
	stub := newTrackerStub(t, bearerGate("fresh"), func(w http.ResponseWriter, r *http.Request) {
		var req models.RefreshTokenRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh-1", req.RefreshToken)
		_, _ = io.WriteString(w, `{"access_token":"fresh","refresh_token":"refresh-2"}`)
	})
	metrics := NewMetricsService()
	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale", Refresh: "refresh-1"}}
	logouts := &logoutRecorder{}
	client := stub.factory(false, metrics).ForSession(tokens, "sid-1", logouts.signal)

	resp, err := client.Request(context.Background(), "/data", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	pair, clears := tokens.snapshot()
	assert.Equal(t, models.TokenPair{Access: "fresh", Refresh: "refresh-2"}, pair)
	assert.Zero(t, clears)
	assert.EqualValues(t, 2, stub.dataHits.Load())
	assert.EqualValues(t, 1, stub.refreshHits.Load())
	assert.Empty(t, logouts.calls())
	assert.False(t, client.LoggedOut())
	assert.EqualValues(t, 1, metrics.Snapshot().RefreshSuccesses)
}

func TestSessionClientDoesNotRetryTwice(t *testing.T) {
	stub := newTrackerStub(t, bearerGate("never-valid"), refreshWith(`{"access_token":"fresh"}`, http.StatusOK))
	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale", Refresh: "refresh-1"}}
	client := stub.factory(false, nil).ForSession(tokens, "sid-1", nil)

	resp, err := client.Request(context.Background(), "/data", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 2, stub.dataHits.Load())
	assert.EqualValues(t, 1, stub.refreshHits.Load())
	pair, _ := tokens.snapshot()
	assert.Equal(t, "fresh", pair.Access)
}

func TestSessionClientRefreshFailureClearsTokens(t *testing.T) {
	stub := newTrackerStub(t, bearerGate("fresh"), refreshWith(`{"detail":"refresh token revoked"}`, http.StatusUnauthorized))
	metrics := NewMetricsService()
	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale", Refresh: "refresh-1"}}
	logouts := &logoutRecorder{}
	client := stub.factory(false, metrics).ForSession(tokens, "sid-1", logouts.signal)

	resp, err := client.Request(context.Background(), "/data", RequestOptions{})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, appErrors.ErrRefreshFailed))
	assert.True(t, appErrors.IsSessionTerminal(err))

	pair, _ := tokens.snapshot()
	assert.Equal(t, models.TokenPair{}, pair)
	assert.EqualValues(t, 1, stub.dataHits.Load(), "no retried request after a failed refresh")
	assert.Equal(t, []string{LogoutRefreshFailed}, logouts.calls())
	assert.True(t, client.LoggedOut())

	snap := metrics.Snapshot()
	assert.EqualValues(t, 1, snap.RefreshFailures)
	assert.EqualValues(t, 1, snap.Logouts)
}

func TestSessionClientMalformedRefreshForcesLogout(t *testing.T) {
	stub := newTrackerStub(t, bearerGate("fresh"), refreshWith(`{"token_type":"bearer"}`, http.StatusOK))
	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale", Refresh: "refresh-1"}}
	client := stub.factory(false, nil).ForSession(tokens, "sid-1", nil)

	_, err := client.Request(context.Background(), "/data", RequestOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedResponse))
	assert.True(t, errors.Is(err, appErrors.ErrRefreshFailed))
	assert.True(t, appErrors.IsSessionTerminal(err))

	pair, _ := tokens.snapshot()
	assert.Equal(t, models.TokenPair{}, pair)
	assert.True(t, client.LoggedOut())
}

func TestSessionClientWithoutAccessTokenFailsBeforeNetwork(t *testing.T) {
	stub := newTrackerStub(t, bearerGate("fresh"), refreshWith(`{}`, http.StatusOK))
	tokens := &fakeTokens{pair: models.TokenPair{Refresh: "refresh-1"}}
	logouts := &logoutRecorder{}
	client := stub.factory(false, nil).ForSession(tokens, "sid-1", logouts.signal)

	_, err := client.Request(context.Background(), "/data", RequestOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
	assert.Zero(t, stub.dataHits.Load())
	assert.Zero(t, stub.refreshHits.Load())
	assert.Equal(t, []string{LogoutNoAccessToken}, logouts.calls())

	pair, _ := tokens.snapshot()
	assert.Empty(t, pair.Refresh)
}

func TestSessionClientRefreshWithoutRefreshTokenFailsFast(t *testing.T) {
	stub := newTrackerStub(t, bearerGate("fresh"), refreshWith(`{"access_token":"fresh"}`, http.StatusOK))
	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale"}}
	client := stub.factory(false, nil).ForSession(tokens, "sid-1", nil)

	_, err := client.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNoRefreshToken))
	assert.Zero(t, stub.refreshHits.Load())

	_, err = client.Request(context.Background(), "/data", RequestOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNoRefreshToken))
	assert.Zero(t, stub.refreshHits.Load())
	assert.EqualValues(t, 1, stub.dataHits.Load())
	assert.True(t, client.LoggedOut())
}

func TestSessionClientRefreshKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	stub := newTrackerStub(t, bearerGate("fresh"), refreshWith(`{"access_token":"fresh"}`, http.StatusOK))
	store := repository.NewMemorySessionStore(time.Hour)
	ctx := context.Background()
	require.NoError(t, store.SaveTokens(ctx, "sid-1", "stale", "refresh-1"))

	client := stub.factory(false, nil).ForSession(repository.NewScopedTokenStore(store, "sid-1"), "sid-1", nil)
	resp, err := client.Request(ctx, "/data", RequestOptions{})
	require.NoError(t, err)
	discard(resp)

	session, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", session.AccessToken)
	assert.Equal(t, "refresh-1", session.RefreshToken)
}

func TestSessionClientForceLogoutIsIdempotent(t *testing.T) {
	metrics := NewMetricsService()
	tokens := &fakeTokens{pair: models.TokenPair{Access: "a", Refresh: "r"}}
	logouts := &logoutRecorder{}
	client := NewSessionClientFactory(nil, SessionClientConfig{BaseURL: "http://tracker.invalid"}, nil, metrics).
		ForSession(tokens, "sid-1", logouts.signal)

	client.ForceLogout(context.Background(), LogoutRefreshFailed)
	first, _ := tokens.snapshot()
	assert.NotPanics(t, func() { client.ForceLogout(context.Background(), LogoutRefreshFailed) })
	second, clears := tokens.snapshot()

	assert.Equal(t, models.TokenPair{}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, clears)
	assert.Equal(t, []string{LogoutRefreshFailed}, logouts.calls())
	assert.EqualValues(t, 1, metrics.Snapshot().Logouts)
}

func TestSessionClientHeaderPrecedence(t *testing.T) {
	var seen http.Header
	stub := newTrackerStub(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}, refreshWith(`{}`, http.StatusOK))
	tokens := &fakeTokens{pair: models.TokenPair{Access: "current", Refresh: "r"}}
	client := stub.factory(false, nil).ForSession(tokens, "sid-1", nil)

	header := http.Header{}
	header.Set("Authorization", "Bearer caller-supplied")
	header.Set("X-Client", "console")
	header.Set("Accept-Language", "en")
	resp, err := client.Request(context.Background(), "/data", RequestOptions{Method: http.MethodPost, Header: header, Body: []byte(`{}`)})
	require.NoError(t, err)
	discard(resp)

	assert.Equal(t, "Bearer current", seen.Get("Authorization"))
	assert.Equal(t, "console", seen.Get("X-Client"))
	assert.Equal(t, "en", seen.Get("Accept-Language"))
	assert.Equal(t, "application/json", seen.Get("Content-Type"))
	assert.Equal(t, "Bearer caller-supplied", header.Get("Authorization"), "caller header map is not mutated")
}

func TestSessionClientRetriesWithSameBody(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	stub := newTrackerStub(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(raw))
		mu.Unlock()
		bearerGate("fresh")(w, r)
	}, refreshWith(`{"access_token":"fresh"}`, http.StatusOK))
	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale", Refresh: "r"}}
	client := stub.factory(false, nil).ForSession(tokens, "sid-1", nil)

	resp, err := client.Request(context.Background(), "/data", RequestOptions{Method: http.MethodPost, Body: []byte(`{"duration":30}`)})
	require.NoError(t, err)
	discard(resp)

	assert.Equal(t, []string{`{"duration":30}`, `{"duration":30}`}, bodies)
}

func TestSessionClientNetworkFailureKeepsTokens(t *testing.T) {
	stub := newTrackerStub(t, bearerGate("fresh"), refreshWith(`{}`, http.StatusOK))
	factory := stub.factory(false, nil)
	stub.server.Close()

	tokens := &fakeTokens{pair: models.TokenPair{Access: "a", Refresh: "r"}}
	client := factory.ForSession(tokens, "sid-1", nil)
	_, err := client.Request(context.Background(), "/data", RequestOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNetwork))
	assert.False(t, appErrors.IsSessionTerminal(err))

	pair, clears := tokens.snapshot()
	assert.Equal(t, models.TokenPair{Access: "a", Refresh: "r"}, pair)
	assert.Zero(t, clears)
}

func TestSessionClientDeduplicatesConcurrentRefresh(t *testing.T) {
	release := make(chan struct{})
	stub := newTrackerStub(t, bearerGate("fresh"), func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, `{"access_token":"fresh"}`)
	})
	factory := stub.factory(true, nil)
	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale", Refresh: "r"}}

	const callers = 5
	results := make([]string, callers)
	var wg sync.WaitGroup
	start := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := factory.ForSession(tokens, "sid-1", nil).Refresh(context.Background())
			assert.NoError(t, err)
			results[i] = token
		}()
	}

	start(0)
	require.Eventually(t, func() bool { return stub.refreshHits.Load() == 1 }, time.Second, 5*time.Millisecond)
	for i := 1; i < callers; i++ {
		start(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, stub.refreshHits.Load())
	for _, token := range results {
		assert.Equal(t, "fresh", token)
	}
}

func TestSessionClientCancelledCallerKeepsSharedRefresh(t *testing.T) {
	release := make(chan struct{})
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	stub := newTrackerStub(t, bearerGate("fresh"), func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, `{"access_token":"fresh"}`)
	})
	t.Cleanup(unblock)

	factory := stub.factory(true, nil)
	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale", Refresh: "r"}}
	logouts := &logoutRecorder{}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		resp, err := factory.ForSession(tokens, "sid-1", logouts.signal).Request(ctxA, "/data", RequestOptions{})
		if resp != nil {
			discard(resp)
		}
		errA <- err
	}()
	require.Eventually(t, func() bool { return stub.refreshHits.Load() == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		status int
		err    error
	}
	resultB := make(chan outcome, 1)
	go func() {
		resp, err := factory.ForSession(tokens, "sid-1", logouts.signal).Request(context.Background(), "/data", RequestOptions{})
		if err != nil {
			resultB <- outcome{err: err}
			return
		}
		discard(resp)
		resultB <- outcome{status: resp.StatusCode}
	}()
	require.Eventually(t, func() bool { return stub.dataHits.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, appErrors.IsSessionTerminal(err))
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}
	pair, clears := tokens.snapshot()
	assert.Equal(t, models.TokenPair{Access: "stale", Refresh: "r"}, pair)
	assert.Zero(t, clears)

	unblock()
	select {
	case res := <-resultB:
		require.NoError(t, res.err)
		assert.Equal(t, http.StatusOK, res.status)
	case <-time.After(2 * time.Second):
		t.Fatal("joined caller did not return")
	}

	pair, clears = tokens.snapshot()
	assert.Equal(t, models.TokenPair{Access: "fresh", Refresh: "r"}, pair)
	assert.Zero(t, clears)
	assert.Empty(t, logouts.calls())
	assert.EqualValues(t, 1, stub.refreshHits.Load())
}

func TestSessionClientCancelledRefreshDoesNotLogOut(t *testing.T) {
	release := make(chan struct{})
	stub := newTrackerStub(t, bearerGate("fresh"), func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	tokens := &fakeTokens{pair: models.TokenPair{Access: "stale", Refresh: "r"}}
	logouts := &logoutRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	client := stub.factory(false, nil).ForSession(tokens, "sid-1", logouts.signal)

	done := make(chan error, 1)
	go func() {
		_, err := client.Request(ctx, "/data", RequestOptions{})
		done <- err
	}()
	require.Eventually(t, func() bool { return stub.refreshHits.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled request did not return")
	}
	_, clears := tokens.snapshot()
	assert.Zero(t, clears)
	assert.Empty(t, logouts.calls())
	assert.False(t, client.LoggedOut())
}
