package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/llmail-inject/ctf-control-plane/pkg/services"
)

func (s *Server) handleListTeams(c *echo.Context) error {
	teams, err := s.teams.List(c.Request().Context())
	if err != nil {
		return s.handleError(c, err)
	}

	anonymous := currentUser(c) == nil
	views := make([]map[string]any, len(teams))
	for i, t := range teams {
		if anonymous {
			views[i] = t.APIViewPublic()
		} else {
			views[i] = t.APIView()
		}
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) handleCreateTeam(c *echo.Context) error {
	var req createTeamRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return s.handleError(c, err)
	}

	team, err := s.teams.Create(c.Request().Context(), currentUser(c), req.Name)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusCreated, team.APIView())
}

func (s *Server) handleGetTeam(c *echo.Context) error {
	teamID, err := services.ResolveTeamID(currentUser(c), c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}

	team, err := s.teams.Get(c.Request().Context(), teamID)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, team.APIView())
}

func (s *Server) handleUpdateTeamMembers(c *echo.Context) error {
	teamID, err := s.resolveTeamPath(c)
	if err != nil {
		return s.handleError(c, err)
	}

	var req updateTeamMembersRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return s.handleError(c, err)
	}

	team, err := s.teams.UpdateMembers(c.Request().Context(), teamID, req.Members)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, team.APIView())
}

func (s *Server) handleDeleteTeam(c *echo.Context) error {
	teamID, err := s.resolveTeamPath(c)
	if err != nil {
		return s.handleError(c, err)
	}
	if err := s.teams.Delete(c.Request().Context(), teamID); err != nil {
		return s.handleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleEnableTeam(c *echo.Context) error {
	team, err := s.teams.Enable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, team.APIView())
}

func (s *Server) handleDisableTeam(c *echo.Context) error {
	team, err := s.teams.Disable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, team.APIView())
}
