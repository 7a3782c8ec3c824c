// Package auth implements the competition's login flow: GitHub OAuth2 in
// production, a deterministic fallback identity in local development and
// CI, plus the bearer/cookie token verification every other handler relies
// on. Grounded on original_source/src/api/apis/auth.py and
// mixins/authenticated.py.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// githubUser is the subset of GitHub's /user response auth cares about.
type githubUser struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// GithubOAuth wraps the oauth2 authorization-code flow against GitHub.
// A nil *GithubOAuth (constructed when GITHUB_CLIENT_ID is unset) signals
// the caller to use the fixed test-user/test-token identity instead.
type GithubOAuth struct {
	config *oauth2.Config
}

// NewGithubOAuth returns nil when clientID is empty, matching the
// original's "github_client = None" local-dev fallback.
func NewGithubOAuth(clientID, clientSecret, redirectURI string) *GithubOAuth {
	if clientID == "" {
		return nil
	}
	return &GithubOAuth{config: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     github.Endpoint,
	}}
}

// LoginURL returns the GitHub authorization URL the browser is redirected
// to, or the fixed local callback when running without OAuth configured.
func (g *GithubOAuth) LoginURL(state string) string {
	if g == nil {
		return "http://localhost:7071/auth/callback"
	}
	return g.config.AuthCodeURL(state)
}

// ExchangeUser exchanges an authorization code for a token and fetches
// the corresponding GitHub login, lower-cased for storage-key stability.
func (g *GithubOAuth) ExchangeUser(ctx context.Context, code string) (login, name string, err error) {
	if g == nil {
		return "test-user", "Test User", nil
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("exchange authorization code: %w", err)
	}

	client := g.config.Client(ctx, token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return "", "", fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("github user lookup failed: status %d", resp.StatusCode)
	}

	var u githubUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return "", "", fmt.Errorf("decode github user: %w", err)
	}
	return strings.ToLower(u.Login), u.Name, nil
}
