package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/llmail-inject/ctf-control-plane/pkg/auth"
	"github.com/llmail-inject/ctf-control-plane/pkg/config"
	"github.com/llmail-inject/ctf-control-plane/pkg/database"
	"github.com/llmail-inject/ctf-control-plane/pkg/queue"
	"github.com/llmail-inject/ctf-control-plane/pkg/services"
	"github.com/llmail-inject/ctf-control-plane/pkg/storage"
)

// deps bundles every wired component a subcommand might need, built
// once from environment configuration, mirroring the dependency
// construction tarsy's cmd/tarsy/main.go does inline in main().
type deps struct {
	cfg    config.Config
	db     *database.Client
	logger *slog.Logger

	teamStore        storage.TeamStore
	userStore        storage.UserStore
	scenarioStore    storage.ScenarioStore
	jobStore         storage.JobStore
	leaderboardStore storage.LeaderboardStore
	queue            queue.Queue

	authn       *auth.Authenticator
	teams       *services.TeamService
	users       *services.UserService
	scenarios   *services.ScenarioCatalogService
	jobs        *services.JobService
	leaderboard *services.LeaderboardService
}

func wire(ctx context.Context) (*deps, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}

	db, err := database.NewClient(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	teamStore := storage.NewTeamStore(db.DB())
	userStore := storage.NewUserStore(db.DB())
	scenarioStore := storage.NewScenarioStore(db.DB())
	jobStore := storage.NewJobStore(db.DB())
	leaderboardStore := storage.NewLeaderboardStore(db.DB())
	pgQueue := queue.NewPostgresQueue(db.DB())

	githubOAuth := auth.NewGithubOAuth(cfg.GithubClientID, cfg.GithubClientSecret, cfg.GithubRedirectURI)
	authn := auth.NewAuthenticator(userStore, githubOAuth, cfg.SignupAllowlist, cfg.AdminLogins)

	teams := services.NewTeamService(teamStore, userStore, logger)
	users := services.NewUserService(userStore)
	scenarios := services.NewScenarioCatalogService(scenarioStore)
	jobs := services.NewJobService(jobStore, teamStore, scenarioStore, pgQueue, cfg)
	leaderboardSvc := services.NewLeaderboardService(teamStore, scenarioStore, leaderboardStore, cfg.CompetitionPhase, cfg.LeaderboardRefreshInterval, logger)

	return &deps{
		cfg:              cfg,
		db:               db,
		logger:           logger,
		teamStore:        teamStore,
		userStore:        userStore,
		scenarioStore:    scenarioStore,
		jobStore:         jobStore,
		leaderboardStore: leaderboardStore,
		queue:            pgQueue,
		authn:            authn,
		teams:            teams,
		users:            users,
		scenarios:        scenarios,
		jobs:             jobs,
		leaderboard:      leaderboardSvc,
	}, nil
}
