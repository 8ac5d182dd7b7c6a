package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/tracker-console/internal/models"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
	"github.com/noah-isme/tracker-console/pkg/middleware/requestid"
	"github.com/noah-isme/tracker-console/pkg/telemetry"
)

const defaultRefreshTimeout = 30 * time.Second

// Logout reasons.
const (
	LogoutNoAccessToken = "no_access_token"
	LogoutRefreshFailed = "refresh_failed"
	LogoutExplicit      = "explicit"
)

// TokenStore persists the access/refresh pair of one session.
type TokenStore interface {
	Read(ctx context.Context) (models.TokenPair, error)
	Save(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

// RequestOptions describes one outbound call. Body is kept as bytes so the request can
// be reissued after a refresh.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte
}

// SessionClientConfig locates the tracker API.
type SessionClientConfig struct {
	BaseURL      string
	RefreshPath  string
	DedupRefresh bool
}

// SessionClientFactory builds per-session clients that share one HTTP client and one
// refresh deduplication group.
type SessionClientFactory struct {
	httpClient  *http.Client
	baseURL     string
	refreshPath string
	group       *singleflight.Group
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewSessionClientFactory constructs a factory. A nil httpClient uses http.DefaultClient.
func NewSessionClientFactory(httpClient *http.Client, cfg SessionClientConfig, logger *zap.Logger, metrics *MetricsService) *SessionClientFactory {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &SessionClientFactory{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		refreshPath: cfg.RefreshPath,
		logger:      logger,
		metrics:     metrics,
	}
	if cfg.DedupRefresh {
		f.group = &singleflight.Group{}
	}
	return f
}

// ForSession returns a client bound to tokens. sessionID keys refresh deduplication;
// onLogout, when set, is signalled on forced logout.
func (f *SessionClientFactory) ForSession(tokens TokenStore, sessionID string, onLogout func(reason string)) *SessionClient {
	return &SessionClient{
		httpClient:  f.httpClient,
		baseURL:     f.baseURL,
		refreshPath: f.refreshPath,
		tokens:      tokens,
		sessionID:   sessionID,
		onLogout:    onLogout,
		group:       f.group,
		logger:      f.logger.With(zap.String("session_id", sessionID)),
		metrics:     f.metrics,
	}
}

// SessionClient issues bearer-authenticated calls and recovers from one access token
// expiry per call by refreshing and retrying once.
type SessionClient struct {
	httpClient  *http.Client
	baseURL     string
	refreshPath string
	tokens      TokenStore
	sessionID   string
	onLogout    func(reason string)
	group       *singleflight.Group
	logger      *zap.Logger
	metrics     *MetricsService

	loggedOut atomic.Bool
}

// Request issues the call with the stored access token. A 401 triggers exactly one
// refresh; on success the call is reissued once and that response is returned whatever
// its status. A failed refresh forces logout and its error is returned. Callers own the
// returned body.
func (c *SessionClient) Request(ctx context.Context, path string, opts RequestOptions) (*http.Response, error) {
	pair, err := c.tokens.Read(ctx)
	if err != nil {
		return nil, err
	}
	if pair.Access == "" {
		c.ForceLogout(ctx, LogoutNoAccessToken)
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}

	resp, err := c.do(ctx, path, opts, pair.Access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	discard(resp)

	access, err := c.Refresh(ctx)
	if err != nil {
		if abandoned(ctx, err) {
			return nil, err
		}
		c.ForceLogout(ctx, LogoutRefreshFailed)
		return nil, err
	}

	return c.do(ctx, path, opts, access)
}

// Refresh exchanges the stored refresh token for a new access token and saves the
// result. It fails with NoRefreshToken without a network call when none is held.
// A deduplicated refresh runs detached from any one caller, so a caller that gives up
// returns its own context error while the others still get the refresh outcome.
func (c *SessionClient) Refresh(ctx context.Context) (string, error) {
	if c.group == nil {
		return c.refresh(ctx)
	}
	ch := c.group.DoChan(c.sessionID, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout())
		defer cancel()
		return c.refresh(shared)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *SessionClient) refreshTimeout() time.Duration {
	if c.httpClient.Timeout > 0 {
		return c.httpClient.Timeout
	}
	return defaultRefreshTimeout
}

// abandoned reports whether err comes from the caller giving up rather than from the
// tracker API.
func abandoned(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || ctx.Err() != nil
}

func (c *SessionClient) refresh(ctx context.Context) (string, error) {
	pair, err := c.tokens.Read(ctx)
	if err != nil {
		return "", err
	}
	if pair.Refresh == "" {
		c.metrics.RecordRefresh(RefreshNoToken)
		return "", appErrors.Clone(appErrors.ErrNoRefreshToken, "")
	}

	payload, err := json.Marshal(models.RefreshTokenRequest{RefreshToken: pair.Refresh})
	if err != nil {
		return "", fmt.Errorf("marshal refresh request: %w", err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	resp, err := c.send(ctx, c.refreshPath, RequestOptions{Method: http.MethodPost, Header: header, Body: payload})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", c.failRefresh(ctx, RefreshFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", c.failRefresh(ctx, RefreshFailure, fmt.Errorf("refresh endpoint answered %d", resp.StatusCode))
	}

	var body models.RefreshTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", c.failRefresh(ctx, RefreshMalformed, appErrors.Malformed(err, "refresh response is not valid JSON"))
	}
	if body.AccessToken == "" {
		return "", c.failRefresh(ctx, RefreshMalformed, appErrors.Malformed(nil, "refresh response has no access_token"))
	}

	if err := c.tokens.Save(ctx, body.AccessToken, body.RefreshToken); err != nil {
		return "", err
	}
	c.metrics.RecordRefresh(RefreshSuccess)
	c.logger.Info("access token refreshed", zap.Bool("rotated_refresh_token", body.RefreshToken != ""))
	return body.AccessToken, nil
}

func (c *SessionClient) failRefresh(ctx context.Context, outcome string, cause error) error {
	c.metrics.RecordRefresh(outcome)
	c.logger.Warn("token refresh failed", zap.String("outcome", outcome), zap.Error(cause))
	telemetry.CaptureError(cause, map[string]string{"component": "session_client", "outcome": outcome})
	c.ForceLogout(ctx, LogoutRefreshFailed)
	return appErrors.Wrap(cause, appErrors.ErrRefreshFailed.Code, appErrors.ErrRefreshFailed.Status, appErrors.ErrRefreshFailed.Message)
}

// ForceLogout clears the stored tokens and cached profile and signals the owner. Repeated
// calls leave the store cleared and signal only once.
func (c *SessionClient) ForceLogout(ctx context.Context, reason string) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error("clear tokens on forced logout", zap.Error(err))
	}
	if !c.loggedOut.CompareAndSwap(false, true) {
		return
	}
	c.metrics.RecordLogout(reason)
	c.logger.Warn("forced logout", zap.String("reason", reason))
	if c.onLogout != nil {
		c.onLogout(reason)
	}
}

// LoggedOut reports whether this client forced a logout.
func (c *SessionClient) LoggedOut() bool {
	return c.loggedOut.Load()
}

func (c *SessionClient) do(ctx context.Context, path string, opts RequestOptions, access string) (*http.Response, error) {
	header := http.Header{}
	for key, values := range opts.Header {
		header[key] = append([]string(nil), values...)
	}
	header.Set("Authorization", "Bearer "+access)
	return c.send(ctx, path, RequestOptions{Method: opts.Method, Header: header, Body: opts.Body})
}

// send issues one HTTP request. Transport failures come back as NetworkError.
func (c *SessionClient) send(ctx context.Context, path string, opts RequestOptions) (*http.Response, error) {
	return sendUpstream(ctx, c.httpClient, c.metrics, resolveURL(c.baseURL, path), opts)
}

func sendUpstream(ctx context.Context, client *http.Client, metrics *MetricsService, url string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, url, err)
	}
	for key, values := range opts.Header {
		req.Header[key] = values
	}
	if opts.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if req.Header.Get(requestid.HeaderKey) == "" {
		if id := requestid.FromContext(ctx); id != "" {
			req.Header.Set(requestid.HeaderKey, id)
		}
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		metrics.ObserveUpstream(method, 0, time.Since(start))
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, appErrors.Network(err)
	}
	metrics.ObserveUpstream(method, resp.StatusCode, time.Since(start))
	return resp, nil
}

func resolveURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
