package models

import (
	"encoding/json"
	"strings"
)

// TermsResponse carries the auth token minted on terms acceptance.
type TermsResponse struct {
	AuthToken string `json:"auth_token"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username string   `json:"username" validate:"required,min=3"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=exercise_tracker wellness_tracker subuser"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type,omitempty"`
	User         *UserProfile `json:"user"`
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	User    *UserProfile `json:"user"`
	Message string       `json:"message,omitempty"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenResponse returns the refreshed tokens. RefreshToken is optional.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenPair is what a TokenStore holds. Empty strings mean absent.
type TokenPair struct {
	Access  string
	Refresh string
}

// ErrorBody is the API's error payload. detail is a string, or a list of
// validation issues for 422 responses.
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Message flattens Detail into one human-readable line.
func (b ErrorBody) Message() string {
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	var issues []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(b.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
