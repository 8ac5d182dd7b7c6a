package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/tracker-console/internal/models"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

// SessionStore keeps per-browser session state. An unknown session id reads as an
// empty session. Every method is a single atomic update from a reader's view.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (models.Session, error)
	SetAuthToken(ctx context.Context, sessionID, authToken string) error
	// SaveTokens overwrites the access token and, when refresh is non-empty, the refresh token.
	SaveTokens(ctx context.Context, sessionID, access, refresh string) error
	SaveProfile(ctx context.Context, sessionID string, profile *models.UserProfile) error
	// ClearTokens drops the tokens, the legacy single-token field and the cached profile.
	// The terms auth token survives.
	ClearTokens(ctx context.Context, sessionID string) error
	// Delete removes the whole session.
	Delete(ctx context.Context, sessionID string) error
}

// ScopedTokenStore is a SessionStore bound to one session id.
type ScopedTokenStore struct {
	store     SessionStore
	sessionID string
}

// NewScopedTokenStore binds store to sessionID.
func NewScopedTokenStore(store SessionStore, sessionID string) *ScopedTokenStore {
	return &ScopedTokenStore{store: store, sessionID: sessionID}
}

// SessionID returns the bound id.
func (s *ScopedTokenStore) SessionID() string {
	return s.sessionID
}

// Read returns the current token pair.
func (s *ScopedTokenStore) Read(ctx context.Context) (models.TokenPair, error) {
	session, err := s.store.Get(ctx, s.sessionID)
	if err != nil {
		return models.TokenPair{}, err
	}
	return session.Tokens(), nil
}

// Save stores access and, when non-empty, refresh.
func (s *ScopedTokenStore) Save(ctx context.Context, access, refresh string) error {
	return s.store.SaveTokens(ctx, s.sessionID, access, refresh)
}

// Clear removes both tokens and the cached profile.
func (s *ScopedTokenStore) Clear(ctx context.Context) error {
	return s.store.ClearTokens(ctx, s.sessionID)
}

func storeError(op, sessionID string, err error) error {
	return appErrors.Wrap(fmt.Errorf("%s session %s: %w", op, sessionID, err),
		appErrors.ErrSessionStore.Code, appErrors.ErrSessionStore.Status, appErrors.ErrSessionStore.Message)
}
