package models

import "time"

// JobRecord is the durable record of a single submission against a
// scenario. It is addressed by partition=team_id, row=job_id.
type JobRecord struct {
	TeamID        string          `json:"team_id"`
	JobID         string          `json:"job_id"`
	Scenario      string          `json:"scenario"`
	Subject       string          `json:"subject"`
	Body          string          `json:"body"`
	ScheduledTime time.Time       `json:"scheduled_time"`
	StartedTime   *time.Time      `json:"started_time,omitempty"`
	CompletedTime *time.Time      `json:"completed_time,omitempty"`
	Output        string          `json:"output,omitempty"`
	Objectives    map[string]bool `json:"objectives,omitempty"`
}

func (j *JobRecord) PartitionKey() string { return j.TeamID }
func (j *JobRecord) RowKey() string       { return j.JobID }

// Solved reports whether every objective on the record was achieved.
// An empty objectives map is never considered solved.
func (j *JobRecord) Solved() bool {
	if len(j.Objectives) == 0 {
		return false
	}
	for _, achieved := range j.Objectives {
		if !achieved {
			return false
		}
	}
	return true
}

// APIView returns the subset of fields exposed over the API.
func (j *JobRecord) APIView() map[string]any {
	view := map[string]any{
		"team_id":        j.TeamID,
		"job_id":         j.JobID,
		"scenario":       j.Scenario,
		"subject":        j.Subject,
		"body":           j.Body,
		"scheduled_time": j.ScheduledTime,
	}
	if j.StartedTime != nil {
		view["started_time"] = *j.StartedTime
	}
	if j.CompletedTime != nil {
		view["completed_time"] = *j.CompletedTime
	}
	if j.Output != "" {
		view["output"] = j.Output
	}
	if j.Objectives != nil {
		view["objectives"] = j.Objectives
	}
	return view
}

// BuildMessage snapshots the record into the envelope a worker receives.
// traceContext carries whatever propagated tracing metadata the caller's
// current span produced; it is forwarded opaquely, never interpreted.
func (j *JobRecord) BuildMessage(traceContext map[string]string) *JobMessage {
	return &JobMessage{
		TeamID:       j.TeamID,
		JobID:        j.JobID,
		Scenario:     j.Scenario,
		Subject:      j.Subject,
		Body:         j.Body,
		TraceContext: traceContext,
	}
}

// JobMessage is the envelope dispatched onto a scenario's workqueue. It is
// a snapshot, not a pointer: workers act on exactly what it contains and
// never re-read JobRecord from storage.
type JobMessage struct {
	TeamID       string            `json:"team_id"`
	JobID        string            `json:"job_id"`
	Scenario     string            `json:"scenario"`
	Subject      string            `json:"subject"`
	Body         string            `json:"body"`
	TraceContext map[string]string `json:"trace_context,omitempty"`
}

// JobResult is the envelope a worker publishes to the results queue once
// it finishes processing a JobMessage.
type JobResult struct {
	TeamID        string            `json:"team_id"`
	JobID         string            `json:"job_id"`
	StartedTime   time.Time         `json:"started_time"`
	CompletedTime time.Time         `json:"completed_time"`
	Output        string            `json:"output"`
	Objectives    map[string]bool   `json:"objectives"`
	TraceContext  map[string]string `json:"trace_context,omitempty"`
}
