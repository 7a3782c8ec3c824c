package api

import (
	echo "github.com/labstack/echo/v5"

	"github.com/llmail-inject/ctf-control-plane/pkg/auth"
	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/services"
)

// requireAuth rejects the request with 401 unless a valid bearer or
// cookie token is present, stashing the resolved user for handlers.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		token, ok := auth.TokenFromRequest(c.Request())
		if !ok {
			return notAuthenticated(c)
		}
		user, err := s.auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return s.handleError(c, err)
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

// optionalAuth resolves a caller if credentials are present and valid,
// but lets the request through either way — used by endpoints whose
// response shape narrows for anonymous callers.
func (s *Server) optionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		token, ok := auth.TokenFromRequest(c.Request())
		if !ok {
			return next(c)
		}
		user, err := s.auth.Authenticate(c.Request().Context(), token)
		if err == nil {
			c.Set(userContextKey, user)
		}
		return next(c)
	}
}

// requireAdminRole must run after requireAuth.
func (s *Server) requireAdminRole(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if err := auth.RequireRole(currentUser(c), models.RoleAdmin); err != nil {
			return s.handleError(c, err)
		}
		return next(c)
	}
}

// currentUser returns the user requireAuth/optionalAuth stashed, or nil
// for an anonymous caller.
func currentUser(c *echo.Context) *models.User {
	u, _ := c.Get(userContextKey).(*models.User)
	return u
}

// resolveTeamPath resolves the ":id" path parameter (including the
// "mine" shorthand) and enforces admin-or-member access.
func (s *Server) resolveTeamPath(c *echo.Context) (string, error) {
	teamID, err := services.ResolveTeamID(currentUser(c), c.Param("id"))
	if err != nil {
		return "", err
	}
	if err := services.RequireTeamMember(currentUser(c), teamID); err != nil {
		return "", err
	}
	return teamID, nil
}
