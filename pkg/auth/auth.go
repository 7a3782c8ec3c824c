package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/services"
	"github.com/llmail-inject/ctf-control-plane/pkg/storage"
)

// CookieName is the name of the HttpOnly session cookie auth/callback
// sets. No route clears it.
const CookieName = "Auth"

// ErrUnauthenticated is returned by Authenticate when no usable
// credential was presented or it did not verify.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator verifies bearer/cookie tokens against stored Users and
// drives the GitHub login handshake. Port of auth.py plus the
// maybe_authenticated/authenticated mixins, collapsed into one type
// since Go handlers branch on the returned error instead of stacking
// decorators.
type Authenticator struct {
	Users           storage.UserStore
	OAuth           *GithubOAuth
	SignupAllowlist []string
	AdminLogins     []string
}

func NewAuthenticator(users storage.UserStore, oauth *GithubOAuth, signupAllowlist, adminLogins []string) *Authenticator {
	return &Authenticator{Users: users, OAuth: oauth, SignupAllowlist: signupAllowlist, AdminLogins: adminLogins}
}

// TokenFromRequest extracts a bearer or cookie token, preferring the
// Authorization header, matching get_auth_token's precedence.
func TokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), true
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// Authenticate decodes token, loads the asserted user, and verifies the
// API key matches and the account is not blocked.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	login, apiKey, err := models.LoginAndKeyFromAuthToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := a.Users.Get(ctx, login)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Blocked || user.APIKey != apiKey {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// LoginURL returns the URL to redirect an anonymous browser to begin
// the GitHub OAuth handshake.
func (a *Authenticator) LoginURL() string {
	return a.OAuth.LoginURL("")
}

// HandleCallback exchanges an OAuth authorization code for the caller's
// GitHub identity, creating the User record on first login. A user's
// blocked status is decided once, at creation, from the signup
// allowlist — it is never recomputed on later logins, so removing a
// login from the allowlist after the fact does not retroactively lock
// out an already-approved competitor.
func (a *Authenticator) HandleCallback(ctx context.Context, code string) (user *models.User, token string, err error) {
	login, _, err := a.OAuth.ExchangeUser(ctx, code)
	if err != nil {
		return nil, "", err
	}

	user, err = a.Users.Get(ctx, login)
	if errors.Is(err, storage.ErrNotFound) {
		user = models.NewUser(login)
		user.Blocked = a.isSignupBlocked(login)
		if a.isAdmin(login) {
			user.Role = models.RoleAdmin
		}
		if err := a.Users.Upsert(ctx, user); err != nil {
			return nil, "", fmt.Errorf("create user: %w", err)
		}
	} else if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}

	if user.Blocked {
		return user, "", services.ErrNotAuthorized
	}

	token, err = user.AuthToken()
	if err != nil {
		return nil, "", fmt.Errorf("mint auth token: %w", err)
	}
	return user, token, nil
}

// RotateKey replaces a user's API key and persists the change, port of
// auth_rotate_key.
func (a *Authenticator) RotateKey(ctx context.Context, user *models.User) (string, error) {
	user.RotateAuthToken()
	if err := a.Users.Upsert(ctx, user); err != nil {
		return "", fmt.Errorf("persist rotated key: %w", err)
	}
	return user.AuthToken()
}

// isSignupBlocked reports whether a first-time login should start out
// blocked. An empty allowlist admits everyone.
func (a *Authenticator) isSignupBlocked(login string) bool {
	if len(a.SignupAllowlist) == 0 {
		return false
	}
	for _, allowed := range a.SignupAllowlist {
		if strings.EqualFold(strings.TrimSpace(allowed), login) {
			return false
		}
	}
	return true
}

func (a *Authenticator) isAdmin(login string) bool {
	for _, admin := range a.AdminLogins {
		if strings.EqualFold(strings.TrimSpace(admin), login) {
			return true
		}
	}
	return false
}

// RequireRole returns services.ErrNotAuthorized unless user holds one
// of the given roles, port of require_role.
func RequireRole(user *models.User, roles ...string) error {
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return services.ErrNotAuthorized
}
