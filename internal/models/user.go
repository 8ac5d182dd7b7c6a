package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UserRole is a role name as reported by the tracker API.
type UserRole string

const (
	RoleAdmin           UserRole = "admin"
	RoleExerciseTracker UserRole = "exercise_tracker"
	RoleWellnessTracker UserRole = "wellness_tracker"
	RoleSubuser         UserRole = "subuser"
)

// ID is an API-assigned identifier. The API emits integers for some resources and
// strings for others; both decode into the same value.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits canonical integer ids as numbers so request bodies keep the API's
// shape. Anything else, "007" or "+5" included, stays a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// UserProfile is the user object returned by login and /auth/me. Deployments send
// either Role or Roles.
type UserProfile struct {
	ID        ID         `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	Role      UserRole   `json:"role,omitempty"`
	Roles     []UserRole `json:"roles,omitempty"`
	IsAdmin   bool       `json:"is_admin,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// AdminUserFilter narrows the admin user list.
type AdminUserFilter struct {
	Search string
	Status string // all, admin or regular
}

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Username string   `json:"username" validate:"required,min=3"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role" validate:"required,oneof=admin exercise_tracker wellness_tracker subuser"`
}
