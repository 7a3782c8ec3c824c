package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGithubOAuth_NilWhenClientIDEmpty(t *testing.T) {
	assert.Nil(t, NewGithubOAuth("", "secret", "https://example.test/callback"))
}

func TestNewGithubOAuth_NonNilWhenClientIDSet(t *testing.T) {
	g := NewGithubOAuth("client-id", "secret", "https://example.test/callback")
	assert.NotNil(t, g)
}

func TestGithubOAuth_LoginURL_NilFallsBackToLocalCallback(t *testing.T) {
	var g *GithubOAuth
	assert.Equal(t, "http://localhost:7071/auth/callback", g.LoginURL(""))
}

func TestGithubOAuth_LoginURL_DelegatesToOAuthConfig(t *testing.T) {
	g := NewGithubOAuth("client-id", "secret", "https://example.test/callback")
	url := g.LoginURL("state-123")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=state-123")
}

func TestGithubOAuth_ExchangeUser_NilReturnsDeterministicTestIdentity(t *testing.T) {
	var g *GithubOAuth
	login, name, err := g.ExchangeUser(context.Background(), "any-code")
	require.NoError(t, err)
	assert.Equal(t, "test-user", login)
	assert.Equal(t, "Test User", name)
}
