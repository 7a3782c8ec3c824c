package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// handleInternalSetup (re-)generates the scenario catalog. Safe to call
// repeatedly: existing scenarios are updated in place, not replaced.
func (s *Server) handleInternalSetup(c *echo.Context) error {
	if err := s.scenarios.Setup(c.Request().Context()); err != nil {
		return s.handleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleRepairTeamMembership reconciles User.Team drift against each
// Team's member list, port of internal_repair_team_membership.
func (s *Server) handleRepairTeamMembership(c *echo.Context) error {
	scanned, repaired, err := s.teams.ReconcileMembership(c.Request().Context())
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"scanned": scanned, "repaired": repaired})
}
