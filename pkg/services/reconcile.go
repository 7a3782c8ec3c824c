package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/storage"
)

// ResultsReconciler absorbs worker results into JobRecord and Team
// state. Port of original_source/src/api/queues/results_queue.py.
// Its Step method is wired into a queue.Consumer polling the "results"
// queue.
type ResultsReconciler struct {
	Jobs      storage.JobStore
	Teams     storage.TeamStore
	Scenarios storage.ScenarioStore
	Logger    *slog.Logger
}

func NewResultsReconciler(jobs storage.JobStore, teams storage.TeamStore, scenarios storage.ScenarioStore, logger *slog.Logger) *ResultsReconciler {
	return &ResultsReconciler{Jobs: jobs, Teams: teams, Scenarios: scenarios, Logger: logger}
}

// Step reconciles one JobResult envelope. It never swallows unexpected
// storage failures — those propagate so the caller re-delivers the
// message.
func (r *ResultsReconciler) Step(ctx context.Context, body []byte) error {
	var result models.JobResult
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode job result: %w", err)
	}
	log := r.Logger.With("team_id", result.TeamID, "job_id", result.JobID)

	job, err := r.Jobs.Get(ctx, result.TeamID, result.JobID)
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn("result for unknown job, discarding")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}

	if job.CompletedTime != nil {
		log.Info("job already completed, ignoring duplicate result")
		return nil
	}

	started := result.StartedTime
	completed := result.CompletedTime
	job.StartedTime = &started
	job.CompletedTime = &completed
	job.Output = result.Output
	job.Objectives = result.Objectives
	if err := r.Jobs.Upsert(ctx, job); err != nil {
		return fmt.Errorf("persist job result: %w", err)
	}

	if !job.Solved() {
		return nil
	}

	team, err := r.Teams.Get(ctx, job.TeamID)
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn("solved job for unknown team, discarding solve credit")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load team: %w", err)
	}
	if !team.IsEnabled {
		return nil
	}
	if contains(team.SolvedScenarios, job.Scenario) {
		return nil
	}

	team.SolvedScenarios = append(team.SolvedScenarios, job.Scenario)
	if team.SolutionDetails == nil {
		team.SolutionDetails = map[string]string{}
	}
	team.SolutionDetails[job.Scenario] = completed.Format(time.RFC3339Nano)
	if err := r.Teams.Upsert(ctx, team); err != nil {
		return fmt.Errorf("persist team solve: %w", err)
	}

	scenario, err := r.Scenarios.Get(ctx, job.Scenario)
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn("solved scenario missing from catalog, skipping solve count")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	scenario.Solves++
	if err := r.Scenarios.Upsert(ctx, scenario); err != nil {
		return fmt.Errorf("persist scenario solve count: %w", err)
	}
	return nil
}

// DeadletterFinalizer finalizes jobs a worker could not process after
// repeated retries. Port of
// original_source/src/api/queues/deadletter_queue.py.
type DeadletterFinalizer struct {
	Jobs   storage.JobStore
	Logger *slog.Logger
}

func NewDeadletterFinalizer(jobs storage.JobStore, logger *slog.Logger) *DeadletterFinalizer {
	return &DeadletterFinalizer{Jobs: jobs, Logger: logger}
}

// deadletterMessage matches whatever shape a message carries once it is
// forwarded to the dead-letter queue: either a JobMessage (by a worker
// giving up on dispatch) or a JobResult (by our own consumer escalating
// a repeatedly-failing reconciliation). Either carries team_id/job_id,
// which is all finalization needs.
type deadletterMessage struct {
	TeamID       string            `json:"team_id"`
	JobID        string            `json:"job_id"`
	TraceContext map[string]string `json:"trace_context,omitempty"`
}

func (f *DeadletterFinalizer) Step(ctx context.Context, body []byte) error {
	var msg deadletterMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode dead-letter envelope: %w", err)
	}
	log := f.Logger.With("team_id", msg.TeamID, "job_id", msg.JobID)

	job, err := f.Jobs.Get(ctx, msg.TeamID, msg.JobID)
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn("dead-letter for unknown job, discarding")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job.CompletedTime != nil {
		return nil
	}

	now := time.Now().UTC()
	traceID := msg.TraceContext["trace_id"]
	if traceID == "" {
		traceID = msg.JobID
	}

	job.StartedTime = &now
	job.CompletedTime = &now
	job.Objectives = map[string]bool{}
	job.Output = fmt.Sprintf(
		"Job failed to process after multiple attempts. Please report this issue to the competition organizers with the trace ID %s.",
		traceID)

	if err := f.Jobs.Upsert(ctx, job); err != nil {
		return fmt.Errorf("finalize job: %w", err)
	}
	return nil
}
