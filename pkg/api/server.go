// Package api implements the control plane's HTTP surface: competitor
// and admin endpoints over Echo v5, grounded on tarsy's pkg/api/server.go
// wiring style and auth.go header-extraction idiom.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echo "github.com/labstack/echo/v5"
	echomw "github.com/labstack/echo/v5/middleware"

	"github.com/llmail-inject/ctf-control-plane/pkg/auth"
	"github.com/llmail-inject/ctf-control-plane/pkg/config"
	"github.com/llmail-inject/ctf-control-plane/pkg/database"
	"github.com/llmail-inject/ctf-control-plane/pkg/services"
	"github.com/llmail-inject/ctf-control-plane/pkg/version"
)

// userContextKey is the echo.Context key the auth middleware stashes the
// authenticated *models.User under.
const userContextKey = "auth_user"

// Server is the control plane's HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	logger     *slog.Logger
	validate   *validator.Validate

	cfg      *config.Config
	dbClient *database.Client

	auth        *auth.Authenticator
	teams       *services.TeamService
	users       *services.UserService
	scenarios   *services.ScenarioCatalogService
	jobs        *services.JobService
	leaderboard *services.LeaderboardService
}

// NewServer wires every handler and returns a server ready to Start.
func NewServer(
	cfg *config.Config,
	dbClient *database.Client,
	authn *auth.Authenticator,
	teams *services.TeamService,
	users *services.UserService,
	scenarios *services.ScenarioCatalogService,
	jobs *services.JobService,
	leaderboard *services.LeaderboardService,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	s := &Server{
		echo:        e,
		logger:      logger,
		validate:    validator.New(),
		cfg:         cfg,
		dbClient:    dbClient,
		auth:        authn,
		teams:       teams,
		users:       users,
		scenarios:   scenarios,
		jobs:        jobs,
		leaderboard: leaderboard,
	}

	e.Use(echomw.Recover())
	e.Use(traceID())
	e.Use(securityHeaders())

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo

	e.GET("/healthz", s.handleHealth)

	e.GET("/auth/login", s.handleAuthLogin)
	e.GET("/auth/callback", s.handleAuthCallback)
	e.GET("/auth/me", s.handleAuthMe, s.requireAuth)
	e.POST("/auth/rotate-key", s.handleAuthRotateKey, s.requireAuth)

	e.GET("/scenarios", s.handleListScenarios)
	e.GET("/leaderboard", s.handleLeaderboard)

	e.GET("/teams", s.handleListTeams, s.optionalAuth)
	e.POST("/teams", s.handleCreateTeam, s.requireAuth)
	e.GET("/teams/:id", s.handleGetTeam, s.requireAuth)
	e.PATCH("/teams/:id", s.handleUpdateTeamMembers, s.requireAuth)
	e.DELETE("/teams/:id", s.handleDeleteTeam, s.requireAuth)
	e.POST("/teams/:id/enable", s.handleEnableTeam, s.requireAuth, s.requireAdminRole)
	e.POST("/teams/:id/disable", s.handleDisableTeam, s.requireAuth, s.requireAdminRole)
	e.POST("/teams/:id/jobs", s.handleCreateJob, s.requireAuth)
	e.GET("/teams/:id/jobs", s.handleListJobs, s.requireAuth)
	e.GET("/teams/:id/jobs/:job_id", s.handleGetJob, s.requireAuth)

	e.GET("/users", s.handleListUsers, s.requireAuth, s.requireAdminRole)
	e.GET("/users/:login", s.handleGetUser, s.requireAuth, s.requireAdminRole)
	e.PATCH("/users/:login", s.handleUpdateUser, s.requireAuth, s.requireAdminRole)
	e.DELETE("/users/:login", s.handleDeleteUser, s.requireAuth, s.requireAdminRole)

	e.POST("/internal/setup", s.handleInternalSetup, s.requireAuth, s.requireAdminRole)
	e.POST("/internal/repair-team-membership", s.handleRepairTeamMembership, s.requireAuth, s.requireAdminRole)
}

// Start begins serving on cfg.ServerAddr and blocks until the context is
// canceled, at which point it shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.ServerAddr,
		Handler:      s.echo,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.ServerAddr, "version", version.Full())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}
}

// StartWithListener serves on an already-open listener, for callers that
// need a known port. Nothing in this repository calls it.
func (s *Server) StartWithListener(l net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(l)
}

func (s *Server) handleHealth(c *echo.Context) error {
	status, err := database.Health(c.Request().Context(), s.dbClient.DB())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: status})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "healthy", Database: status})
}

func (s *Server) bindAndValidate(c *echo.Context, out any) error {
	if err := c.Bind(out); err != nil {
		return services.NewValidationError("body", "malformed request body")
	}
	if err := s.validate.Struct(out); err != nil {
		return services.NewValidationError("body", err.Error())
	}
	return nil
}
