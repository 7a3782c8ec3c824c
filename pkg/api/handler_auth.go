package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// authCookieMaxAge matches the original's 24h "Auth" cookie lifetime.
const authCookieMaxAge = 86400

func (s *Server) handleAuthLogin(c *echo.Context) error {
	return c.Redirect(http.StatusFound, s.auth.LoginURL())
}

func (s *Server) handleAuthCallback(c *echo.Context) error {
	code := c.QueryParam("code")
	_, token, err := s.auth.HandleCallback(c.Request().Context(), code)
	if err != nil {
		return s.handleError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     "Auth",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   authCookieMaxAge,
	})
	return c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleAuthMe(c *echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, meResponse(user.APIView(), user.APIKey))
}

func (s *Server) handleAuthRotateKey(c *echo.Context) error {
	user := currentUser(c)
	token, err := s.auth.RotateKey(c.Request().Context(), user)
	if err != nil {
		return s.handleError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     "Auth",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   authCookieMaxAge,
	})
	return c.JSON(http.StatusOK, meResponse(user.APIView(), user.APIKey))
}
