package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Role values a User can hold.
const (
	RoleCompetitor = "competitor"
	RoleAdmin      = "admin"
)

// User is an authenticated participant, optionally assigned to a Team.
type User struct {
	Login   string `json:"login"`
	APIKey  string `json:"api_key"`
	Team    string `json:"team,omitempty"`
	Role    string `json:"role"`
	Blocked bool   `json:"blocked"`
}

// NewUser constructs a User with a generated API key and the default
// competitor role.
func NewUser(login string) *User {
	return &User{
		Login:  login,
		APIKey: uuid.NewString(),
		Role:   RoleCompetitor,
	}
}

func (u *User) PartitionKey() string { return u.Login }
func (u *User) RowKey() string       { return u.Login }

// RotateAuthToken replaces the user's API key.
func (u *User) RotateAuthToken() {
	u.APIKey = uuid.NewString()
}

type authTokenPayload struct {
	Login  string `json:"login"`
	APIKey string `json:"api_key"`
}

// AuthToken returns the opaque bearer/cookie token for this user.
func (u *User) AuthToken() (string, error) {
	content, err := json.Marshal(authTokenPayload{Login: u.Login, APIKey: u.APIKey})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(content), nil
}

// LoginAndKeyFromAuthToken decodes a bearer/cookie token into the login and
// API key it asserts, without looking anything up in storage — callers
// must still verify the API key against the stored User.
func LoginAndKeyFromAuthToken(token string) (login, apiKey string, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("invalid auth token encoding: %w", err)
	}
	var payload authTokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "", fmt.Errorf("invalid auth token payload: %w", err)
	}
	if payload.Login == "" || payload.APIKey == "" {
		return "", "", fmt.Errorf("auth token missing login or api_key")
	}
	return payload.Login, payload.APIKey, nil
}

// APIView returns the subset of fields exposed over the API.
func (u *User) APIView() map[string]any {
	view := map[string]any{
		"login":   u.Login,
		"role":    u.Role,
		"blocked": u.Blocked,
	}
	if u.Team != "" {
		view["team"] = u.Team
	}
	return view
}
