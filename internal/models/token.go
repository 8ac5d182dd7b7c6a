package models

import "time"

// Session is everything the gateway keeps for one browser session.
type Session struct {
	AuthToken    string       `json:"auth_token,omitempty"`
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	Profile      *UserProfile `json:"profile,omitempty"`
}

// Tokens returns the access/refresh pair.
func (s Session) Tokens() TokenPair {
	return TokenPair{Access: s.AccessToken, Refresh: s.RefreshToken}
}

// SessionStatus is the public view of a browser session.
type SessionStatus struct {
	TermsAccepted   bool         `json:"terms_accepted"`
	Authenticated   bool         `json:"authenticated"`
	HasRefreshToken bool         `json:"has_refresh_token"`
	AccessExpiresAt *time.Time   `json:"access_expires_at,omitempty"`
	Profile         *UserProfile `json:"profile,omitempty"`
	View            string       `json:"view,omitempty"`
}
