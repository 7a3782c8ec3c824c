package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/llmail-inject/ctf-control-plane/pkg/config"
	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/queue"
	"github.com/llmail-inject/ctf-control-plane/pkg/ratelimiter"
	"github.com/llmail-inject/ctf-control-plane/pkg/storage"
)

// CreateJobRequest is the validated input to JobService.Submit.
type CreateJobRequest struct {
	Scenario string `json:"scenario" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Body     string `json:"body" validate:"required"`
}

// JobService implements the submission pipeline, port of
// original_source/src/api/apis/jobs.py::jobs_create and the read paths
// beside it.
type JobService struct {
	Jobs      storage.JobStore
	Teams     storage.TeamStore
	Scenarios storage.ScenarioStore
	Queue     queue.Queue
	Config    config.Config
}

func NewJobService(jobs storage.JobStore, teams storage.TeamStore, scenarios storage.ScenarioStore, q queue.Queue, cfg config.Config) *JobService {
	return &JobService{Jobs: jobs, Teams: teams, Scenarios: scenarios, Queue: q, Config: cfg}
}

// Submit evaluates every precondition in spec order, short-circuiting
// on the first failure, then persists the job and enqueues its message
// before persisting the team's updated rate-limit state.
func (s *JobService) Submit(ctx context.Context, caller *models.User, teamID string, req CreateJobRequest, traceContext map[string]string) (*models.JobRecord, error) {
	now := time.Now().UTC()

	if caller.Role == models.RoleCompetitor {
		if !s.Config.LaunchDate.IsZero() && now.Before(s.Config.LaunchDate) {
			return nil, NewValidationError("launch_date", "the competition has not started yet")
		}
		if !s.Config.EndDate.IsZero() && now.After(s.Config.EndDate) {
			return nil, NewValidationError("end_date", "the competition has ended")
		}
	}

	team, err := s.Teams.Get(ctx, teamID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && (team.Deleted || !team.IsEnabled)) {
		return nil, NewValidationError("team_id", "team does not exist or is not enabled")
	}
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}

	limiter := s.limiterFor(team)
	admitted, newWatermark := limiter.TryAdmit(team.RateLimitWatermark, now)

	total := s.Config.DefaultRateLimitTotal
	if team.RateLimitTotal != nil {
		total = *team.RateLimitTotal
	}
	if admitted && team.RateLimitCounter >= total {
		admitted = false
	}
	if !admitted {
		return nil, ErrRateLimited
	}

	if strings.TrimSpace(req.Scenario) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		return nil, NewValidationError("scenario|subject|body", "must all be non-empty")
	}

	scenario, err := s.Scenarios.Get(ctx, req.Scenario)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, NewValidationError("scenario", "scenario does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	job := &models.JobRecord{
		TeamID:        teamID,
		JobID:         uuid.NewString(),
		Scenario:      req.Scenario,
		Subject:       req.Subject,
		Body:          req.Body,
		ScheduledTime: now,
	}
	if err := s.Jobs.Upsert(ctx, job); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	msg := job.BuildMessage(traceContext)
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode job message: %w", err)
	}
	if err := s.Queue.Send(ctx, scenario.Workqueue, body); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	// The watermark update is persisted after successful enqueue: a
	// crash here duplicates at most one admission slot, favoring
	// availability over strict quota.
	team.RateLimitWatermark = &newWatermark
	team.RateLimitCounter++
	if err := s.Teams.Upsert(ctx, team); err != nil {
		return nil, fmt.Errorf("persist team rate-limit state: %w", err)
	}

	return job, nil
}

func (s *JobService) Get(ctx context.Context, teamID, jobID string) (*models.JobRecord, error) {
	job, err := s.Jobs.Get(ctx, teamID, jobID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *JobService) ListByTeam(ctx context.Context, teamID string) ([]*models.JobRecord, error) {
	jobs, err := s.Jobs.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *JobService) limiterFor(team *models.Team) ratelimiter.Limiter {
	l := ratelimiter.Limiter{
		SustainedRate: s.Config.DefaultRateLimitSustained,
		BurstSize:     s.Config.DefaultRateLimitBurst,
	}
	if team.RateLimitSustained != nil {
		l.SustainedRate = *team.RateLimitSustained
	}
	if team.RateLimitBurst != nil {
		l.BurstSize = *team.RateLimitBurst
	}
	return l
}
