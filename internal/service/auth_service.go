package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/tracker-console/internal/dto"
	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/internal/repository"
	"github.com/noah-isme/tracker-console/pkg/config"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

// AuthTokenHeader carries the terms auth token on login and register.
const AuthTokenHeader = "X-Auth-Token"

type profileAPI interface {
	Me(ctx context.Context, sessionID string) (*models.UserProfile, error)
}

// AuthConfig locates the unauthenticated endpoints.
type AuthConfig struct {
	BaseURL   string
	Endpoints config.EndpointConfig
}

// AuthService runs the terms, sign-in and sign-up flow of a browser session and keeps
// its cached profile current.
type AuthService struct {
	store      repository.SessionStore
	profiles   profileAPI
	httpClient *http.Client
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	config     AuthConfig
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(store repository.SessionStore, profiles profileAPI, httpClient *http.Client, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg AuthConfig) *AuthService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &AuthService{
		store:      store,
		profiles:   profiles,
		httpClient: httpClient,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
		config:     cfg,
	}
}

// AcceptTerms records terms acceptance and keeps the minted auth token in the session.
// Upstream failures are returned as-is; no token is fabricated.
func (s *AuthService) AcceptTerms(ctx context.Context, sessionID string) error {
	var body models.TermsResponse
	if err := s.post(ctx, s.config.Endpoints.Terms, "", struct{}{}, &body); err != nil {
		return err
	}
	if body.AuthToken == "" {
		return appErrors.Malformed(nil, "terms response has no auth_token")
	}
	if err := s.store.SetAuthToken(ctx, sessionID, body.AuthToken); err != nil {
		return err
	}
	s.metrics.RecordSessionStarted()
	s.logger.Info("terms accepted", zap.String("session_id", sessionID))
	return nil
}

// Register creates an account. The session stays signed out.
func (s *AuthService) Register(ctx context.Context, sessionID string, form dto.RegisterForm) (*models.UserProfile, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}
	authToken, err := s.requireTerms(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	req := models.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	}
	var body models.RegisterResponse
	if err := s.post(ctx, s.config.Endpoints.Register, authToken, req, &body); err != nil {
		return nil, err
	}
	if body.User == nil {
		return &models.UserProfile{Username: form.Username, Email: form.Email, Role: form.Role}, nil
	}
	return body.User, nil
}

// Login signs in, stores both tokens and the profile, and picks the dashboard. A
// rejected login clears any tokens the session still held.
func (s *AuthService) Login(ctx context.Context, sessionID string, form dto.LoginForm) (*dto.LoginResult, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, validationError(err, "invalid login payload")
	}
	authToken, err := s.requireTerms(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var body models.LoginResponse
	err = s.post(ctx, s.config.Endpoints.Login, authToken, models.LoginRequest{Username: form.Username, Password: form.Password}, &body)
	if err != nil {
		if appErrors.StatusOf(err) == http.StatusUnauthorized {
			if clearErr := s.store.ClearTokens(ctx, sessionID); clearErr != nil {
				s.logger.Warn("clear tokens after rejected login", zap.Error(clearErr))
			}
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Message == "authentication failed" {
				return nil, appErrors.Clone(appErr, "invalid username or password")
			}
		}
		return nil, err
	}

	if body.AccessToken == "" {
		return nil, appErrors.Malformed(nil, "login response has no access_token")
	}
	if body.User == nil || (body.User.Role == "" && len(body.User.Roles) == 0) {
		return nil, appErrors.Malformed(nil, "login response has no user role")
	}

	if err := s.store.SaveTokens(ctx, sessionID, body.AccessToken, body.RefreshToken); err != nil {
		return nil, err
	}
	if err := s.store.SaveProfile(ctx, sessionID, body.User); err != nil {
		return nil, err
	}

	view := Classify(body.User)
	s.logger.Info("signed in",
		zap.String("session_id", sessionID),
		zap.String("username", body.User.Username),
		zap.String("view", string(view)),
	)
	return &dto.LoginResult{Profile: body.User, View: string(view)}, nil
}

// Logout ends the browser session, terms acceptance included.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	s.metrics.RecordLogout(LogoutExplicit)
	return s.store.Delete(ctx, sessionID)
}

// Profile returns the signed-in profile. With fresh set, it is re-fetched from the
// API and the cache updated; otherwise the cached copy is used when present.
func (s *AuthService) Profile(ctx context.Context, sessionID string, fresh bool) (*models.UserProfile, error) {
	if !fresh {
		session, err := s.store.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if session.Profile != nil && session.AccessToken != "" {
			return session.Profile, nil
		}
	}

	profile, err := s.profiles.Me(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveProfile(ctx, sessionID, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Status describes the browser session without contacting the API.
func (s *AuthService) Status(ctx context.Context, sessionID string) (*models.SessionStatus, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	status := &models.SessionStatus{
		TermsAccepted:   session.AuthToken != "",
		Authenticated:   session.AccessToken != "",
		HasRefreshToken: session.RefreshToken != "",
	}
	if !status.Authenticated {
		return status, nil
	}
	status.AccessExpiresAt = tokenExpiry(session.AccessToken)
	if session.Profile != nil {
		status.Profile = session.Profile
		status.View = string(Classify(session.Profile))
	}
	return status, nil
}

// tokenExpiry reads exp from a JWT access token without verifying it. Opaque tokens
// have no visible expiry.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time.UTC()
	return &t
}

func (s *AuthService) requireTerms(ctx context.Context, sessionID string) (string, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.AuthToken == "" {
		return "", appErrors.Clone(appErrors.ErrTermsRequired, "")
	}
	return session.AuthToken, nil
}

func (s *AuthService) post(ctx context.Context, path, authToken string, in, out interface{}) error {
	opts, err := jsonOptions(http.MethodPost, in)
	if err != nil {
		return err
	}
	if authToken != "" {
		opts.Header.Set(AuthTokenHeader, authToken)
	}
	resp, err := sendUpstream(ctx, s.httpClient, s.metrics, resolveURL(s.config.BaseURL, path), opts)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}
