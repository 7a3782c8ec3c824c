package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

func (s *Server) handleLeaderboard(c *echo.Context) error {
	board, err := s.leaderboard.Get(c.Request().Context())
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, leaderboardResponse{
		Phase:       board.Phase,
		TeamIDs:     board.TeamIDs,
		LastUpdated: board.LastUpdated,
	})
}
