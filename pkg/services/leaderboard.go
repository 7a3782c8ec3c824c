package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/scoring"
	"github.com/llmail-inject/ctf-control-plane/pkg/storage"
)

// LeaderboardService builds and serves periodic leaderboard snapshots.
// The builder loop is grounded on the original's @timer_trigger("*/30 * * * * *")
// leaderboard_builder combined with tarsy's WorkerPool.Start/Stop
// graceful-shutdown idiom (stop channel + WaitGroup).
type LeaderboardService struct {
	Teams        storage.TeamStore
	Scenarios    storage.ScenarioStore
	Leaderboards storage.LeaderboardStore
	Phase        int
	Interval     time.Duration
	Logger       *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewLeaderboardService(teams storage.TeamStore, scenarios storage.ScenarioStore, leaderboards storage.LeaderboardStore, phase int, interval time.Duration, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{
		Teams:        teams,
		Scenarios:    scenarios,
		Leaderboards: leaderboards,
		Phase:        phase,
		Interval:     interval,
		Logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// Start runs BuildOnce immediately and then on every tick of Interval,
// until Stop is called.
func (s *LeaderboardService) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.BuildOnce(ctx); err != nil {
			s.Logger.Error("leaderboard build failed", "error", err)
		}

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.BuildOnce(ctx); err != nil {
					s.Logger.Error("leaderboard build failed", "error", err)
				}
			}
		}
	}()
}

func (s *LeaderboardService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// BuildOnce lists teams, filters out deleted ones, scores the rest, and
// persists the ordered team_id list as the active phase's Leaderboard.
func (s *LeaderboardService) BuildOnce(ctx context.Context) error {
	teams, err := s.Teams.List(ctx)
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	active := make([]*models.Team, 0, len(teams))
	for _, t := range teams {
		if !t.Deleted {
			active = append(active, t)
		}
	}

	catalog, err := s.Scenarios.ListByPhase(ctx, s.Phase)
	if err != nil {
		return fmt.Errorf("list scenarios: %w", err)
	}

	ordered := scoring.Order(active, catalog, scoring.DefaultParams)
	ids := make([]string, len(ordered))
	for i, t := range ordered {
		ids[i] = t.TeamID
	}

	board := &models.Leaderboard{Phase: s.Phase, TeamIDs: ids, LastUpdated: time.Now().UTC()}
	if err := s.Leaderboards.Upsert(ctx, board); err != nil {
		return fmt.Errorf("persist leaderboard: %w", err)
	}
	return nil
}

// Get returns the last-built snapshot without recomputation; readers
// must tolerate staleness up to Interval.
func (s *LeaderboardService) Get(ctx context.Context) (*models.Leaderboard, error) {
	board, err := s.Leaderboards.Get(ctx, s.Phase)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.Leaderboard{Phase: s.Phase, TeamIDs: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	return board, nil
}
