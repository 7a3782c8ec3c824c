package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

func (s *Server) handleListScenarios(c *echo.Context) error {
	scenarios, err := s.scenarios.ListActive(c.Request().Context(), s.cfg.CompetitionPhase)
	if err != nil {
		return s.handleError(c, err)
	}
	views := make([]map[string]any, len(scenarios))
	for i, sc := range scenarios {
		views[i] = sc.APIView()
	}
	return c.JSON(http.StatusOK, views)
}
