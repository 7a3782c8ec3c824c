package api

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/llmail-inject/ctf-control-plane/pkg/auth"
	"github.com/llmail-inject/ctf-control-plane/pkg/config"
	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/queue"
	"github.com/llmail-inject/ctf-control-plane/pkg/services"
	"github.com/llmail-inject/ctf-control-plane/pkg/storage"
)

type fakeTeamStore struct{ teams map[string]*models.Team }

func newFakeTeamStore() *fakeTeamStore { return &fakeTeamStore{teams: map[string]*models.Team{}} }

func (f *fakeTeamStore) Upsert(ctx context.Context, t *models.Team) error {
	f.teams[t.TeamID] = t
	return nil
}
func (f *fakeTeamStore) Get(ctx context.Context, teamID string) (*models.Team, error) {
	t, ok := f.teams[teamID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return t, nil
}
func (f *fakeTeamStore) GetByName(ctx context.Context, name string) (*models.Team, error) {
	for _, t := range f.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, storage.ErrNotFound
}
func (f *fakeTeamStore) List(ctx context.Context) ([]*models.Team, error) {
	out := make([]*models.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, t)
	}
	return out, nil
}
func (f *fakeTeamStore) Delete(ctx context.Context, teamID string) error {
	if _, ok := f.teams[teamID]; !ok {
		return storage.ErrNotFound
	}
	delete(f.teams, teamID)
	return nil
}

type fakeUserStore struct{ users map[string]*models.User }

func newFakeUserStore() *fakeUserStore { return &fakeUserStore{users: map[string]*models.User{}} }

func (f *fakeUserStore) Upsert(ctx context.Context, u *models.User) error {
	f.users[u.Login] = u
	return nil
}
func (f *fakeUserStore) Get(ctx context.Context, login string) (*models.User, error) {
	u, ok := f.users[login]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}
func (f *fakeUserStore) List(ctx context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}
func (f *fakeUserStore) Delete(ctx context.Context, login string) error {
	if _, ok := f.users[login]; !ok {
		return storage.ErrNotFound
	}
	delete(f.users, login)
	return nil
}

type fakeScenarioStore struct{ scenarios map[string]*models.Scenario }

func newFakeScenarioStore() *fakeScenarioStore {
	return &fakeScenarioStore{scenarios: map[string]*models.Scenario{}}
}

func (f *fakeScenarioStore) Upsert(ctx context.Context, sc *models.Scenario) error {
	f.scenarios[sc.ScenarioID] = sc
	return nil
}
func (f *fakeScenarioStore) Get(ctx context.Context, id string) (*models.Scenario, error) {
	sc, ok := f.scenarios[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return sc, nil
}
func (f *fakeScenarioStore) List(ctx context.Context) ([]*models.Scenario, error) {
	out := make([]*models.Scenario, 0, len(f.scenarios))
	for _, sc := range f.scenarios {
		out = append(out, sc)
	}
	return out, nil
}
func (f *fakeScenarioStore) ListByPhase(ctx context.Context, phase int) ([]*models.Scenario, error) {
	out := make([]*models.Scenario, 0)
	for _, sc := range f.scenarios {
		if sc.Phase == phase {
			out = append(out, sc)
		}
	}
	return out, nil
}

type fakeJobStore struct{ jobs map[string]*models.JobRecord }

func newFakeJobStore() *fakeJobStore { return &fakeJobStore{jobs: map[string]*models.JobRecord{}} }

func (f *fakeJobStore) key(teamID, jobID string) string { return teamID + "/" + jobID }

func (f *fakeJobStore) Upsert(ctx context.Context, j *models.JobRecord) error {
	f.jobs[f.key(j.TeamID, j.JobID)] = j
	return nil
}
func (f *fakeJobStore) Get(ctx context.Context, teamID, jobID string) (*models.JobRecord, error) {
	j, ok := f.jobs[f.key(teamID, jobID)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return j, nil
}
func (f *fakeJobStore) ListByTeam(ctx context.Context, teamID string) ([]*models.JobRecord, error) {
	out := make([]*models.JobRecord, 0)
	for _, j := range f.jobs {
		if j.TeamID == teamID {
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeLeaderboardStore struct{ boards map[int]*models.Leaderboard }

func newFakeLeaderboardStore() *fakeLeaderboardStore {
	return &fakeLeaderboardStore{boards: map[int]*models.Leaderboard{}}
}

func (f *fakeLeaderboardStore) Upsert(ctx context.Context, l *models.Leaderboard) error {
	f.boards[l.Phase] = l
	return nil
}
func (f *fakeLeaderboardStore) Get(ctx context.Context, phase int) (*models.Leaderboard, error) {
	l, ok := f.boards[phase]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return l, nil
}

type fakeQueue struct{ sent map[string][][]byte }

func newFakeQueue() *fakeQueue { return &fakeQueue{sent: map[string][][]byte{}} }

func (f *fakeQueue) Send(ctx context.Context, queueName string, body []byte) error {
	f.sent[queueName] = append(f.sent[queueName], body)
	return nil
}
func (f *fakeQueue) Receive(ctx context.Context, queueName string, visibilityTimeout time.Duration) (*queue.Message, error) {
	return nil, nil
}
func (f *fakeQueue) Delete(ctx context.Context, m *queue.Message) error     { return nil }
func (f *fakeQueue) DeadLetter(ctx context.Context, m *queue.Message) error { return nil }

// testDeps bundles the fakes a testServer is built from, so tests can seed
// state before issuing a request.
type testDeps struct {
	teams     *fakeTeamStore
	users     *fakeUserStore
	scenarios *fakeScenarioStore
	jobs      *fakeJobStore
	server    *Server
}

func newTestServer() *testDeps {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	teamStore := newFakeTeamStore()
	userStore := newFakeUserStore()
	scenarioStore := newFakeScenarioStore()
	jobStore := newFakeJobStore()
	leaderboardStore := newFakeLeaderboardStore()
	q := newFakeQueue()

	cfg := &config.Config{
		DefaultRateLimitSustained: 1,
		DefaultRateLimitBurst:     10,
		DefaultRateLimitTotal:     100,
		CompetitionPhase:          1,
	}

	authn := auth.NewAuthenticator(userStore, nil, nil, nil)
	teamSvc := services.NewTeamService(teamStore, userStore, logger)
	userSvc := services.NewUserService(userStore)
	scenarioSvc := services.NewScenarioCatalogService(scenarioStore)
	jobSvc := services.NewJobService(jobStore, teamStore, scenarioStore, q, *cfg)
	leaderboardSvc := services.NewLeaderboardService(teamStore, scenarioStore, leaderboardStore, cfg.CompetitionPhase, time.Hour, logger)

	server := NewServer(cfg, nil, authn, teamSvc, userSvc, scenarioSvc, jobSvc, leaderboardSvc, logger)

	return &testDeps{teams: teamStore, users: userStore, scenarios: scenarioStore, jobs: jobStore, server: server}
}
