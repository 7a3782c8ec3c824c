package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/llmail-inject/ctf-control-plane/pkg/services"
)

func (s *Server) handleListUsers(c *echo.Context) error {
	users, err := s.users.List(c.Request().Context())
	if err != nil {
		return s.handleError(c, err)
	}
	views := make([]map[string]any, len(users))
	for i, u := range users {
		views[i] = u.APIView()
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) handleGetUser(c *echo.Context) error {
	user, err := s.users.Get(c.Request().Context(), c.Param("login"))
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, user.APIView())
}

func (s *Server) handleUpdateUser(c *echo.Context) error {
	var req updateUserRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return s.handleError(c, err)
	}

	user, err := s.users.Update(c.Request().Context(), c.Param("login"), services.UserUpdate{
		Role:    req.Role,
		Blocked: req.Blocked,
	})
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, user.APIView())
}

func (s *Server) handleDeleteUser(c *echo.Context) error {
	if err := s.users.Delete(c.Request().Context(), c.Param("login")); err != nil {
		return s.handleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
