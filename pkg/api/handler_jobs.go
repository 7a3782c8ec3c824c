package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/llmail-inject/ctf-control-plane/pkg/services"
)

func (s *Server) handleCreateJob(c *echo.Context) error {
	teamID, err := s.resolveTeamPath(c)
	if err != nil {
		return s.handleError(c, err)
	}

	// Body parsing/required-field validation is precondition step 6 in
	// the submission pipeline, after the launch-window, team-enabled,
	// and rate-limit checks Submit runs first: a malformed or empty body
	// is left as a zero-valued request here and surfaces as Submit's own
	// empty-field error only if it reaches that step.
	var req createJobRequest
	_ = c.Bind(&req)

	traceContext := map[string]string{"trace_id": traceIDFromContext(c)}
	job, err := s.jobs.Submit(c.Request().Context(), currentUser(c), teamID, services.CreateJobRequest(req), traceContext)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusCreated, job.APIView())
}

func (s *Server) handleListJobs(c *echo.Context) error {
	teamID, err := s.resolveTeamPath(c)
	if err != nil {
		return s.handleError(c, err)
	}

	jobs, err := s.jobs.ListByTeam(c.Request().Context(), teamID)
	if err != nil {
		return s.handleError(c, err)
	}
	views := make([]map[string]any, len(jobs))
	for i, j := range jobs {
		views[i] = j.APIView()
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) handleGetJob(c *echo.Context) error {
	teamID, err := s.resolveTeamPath(c)
	if err != nil {
		return s.handleError(c, err)
	}

	job, err := s.jobs.Get(c.Request().Context(), teamID, c.Param("job_id"))
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, job.APIView())
}
