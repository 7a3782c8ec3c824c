package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/storage"
)

// TeamSizeLimit is the maximum number of members a team may have,
// matching the original's TEAM_SIZE_LIMIT.
const TeamSizeLimit = 5

// TeamService implements team lifecycle and membership operations,
// grounded on original_source/src/api/apis/teams.py.
type TeamService struct {
	Teams  storage.TeamStore
	Users  storage.UserStore
	Logger *slog.Logger
}

func NewTeamService(teams storage.TeamStore, users storage.UserStore, logger *slog.Logger) *TeamService {
	return &TeamService{Teams: teams, Users: users, Logger: logger}
}

// Create registers a new team with the caller as its sole member.
func (s *TeamService) Create(ctx context.Context, caller *models.User, name string) (*models.Team, error) {
	if caller.Team != "" {
		return nil, ErrAlreadyExists
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if existing, err := s.Teams.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrAlreadyExists
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check team name: %w", err)
	}

	team := models.NewTeam(name)
	team.Members = []string{caller.Login}
	if err := s.Teams.Upsert(ctx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	caller.Team = team.TeamID
	if err := s.Users.Upsert(ctx, caller); err != nil {
		return nil, fmt.Errorf("assign caller to team: %w", err)
	}
	return team, nil
}

// Get loads a team, treating a soft-deleted team as not found.
func (s *TeamService) Get(ctx context.Context, teamID string) (*models.Team, error) {
	team, err := s.Teams.Get(ctx, teamID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if team.Deleted {
		return nil, ErrNotFound
	}
	return team, nil
}

// List returns every non-deleted team.
func (s *TeamService) List(ctx context.Context) ([]*models.Team, error) {
	all, err := s.Teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	out := make([]*models.Team, 0, len(all))
	for _, t := range all {
		if !t.Deleted {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateMembers replaces a team's roster, enforcing the size limit and
// keeping each affected User's team field in sync. Port of
// teams.py::_update_team_members.
func (s *TeamService) UpdateMembers(ctx context.Context, teamID string, members []string) (*models.Team, error) {
	if len(members) == 0 {
		return nil, NewValidationError("members", "cannot remove all members")
	}
	if len(members) > TeamSizeLimit {
		return nil, ErrAlreadyExists // cardinality conflict, mapped to 409 at the HTTP boundary
	}

	team, err := s.Get(ctx, teamID)
	if err != nil {
		return nil, err
	}

	normalized := make([]string, len(members))
	for i, m := range members {
		normalized[i] = strings.ToLower(m)
	}

	existing := make(map[string]bool, len(team.Members))
	for _, m := range team.Members {
		existing[m] = true
	}
	incoming := make(map[string]bool, len(normalized))
	for _, m := range normalized {
		incoming[m] = true
	}

	for _, login := range normalized {
		if existing[login] {
			continue
		}
		user, err := s.Users.Get(ctx, login)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load new member %s: %w", login, err)
		}
		if user.Team != "" && user.Team != teamID {
			return nil, ErrAlreadyExists
		}
		user.Team = teamID
		if err := s.Users.Upsert(ctx, user); err != nil {
			return nil, fmt.Errorf("assign member %s: %w", login, err)
		}
	}

	for login := range existing {
		if incoming[login] {
			continue
		}
		user, err := s.Users.Get(ctx, login)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load removed member %s: %w", login, err)
		}
		user.Team = ""
		if err := s.Users.Upsert(ctx, user); err != nil {
			return nil, fmt.Errorf("release member %s: %w", login, err)
		}
	}

	team.Members = normalized
	if err := s.Teams.Upsert(ctx, team); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}
	return team, nil
}

// Delete soft-deletes a team, which is only permitted while it has at
// most one member remaining (the caller removing themselves).
func (s *TeamService) Delete(ctx context.Context, teamID string) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if len(team.Members) > 1 {
		return ErrAlreadyExists // conflict: other members still present
	}

	for _, login := range team.Members {
		user, err := s.Users.Get(ctx, login)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load departing member %s: %w", login, err)
		}
		user.Team = ""
		if err := s.Users.Upsert(ctx, user); err != nil {
			return fmt.Errorf("release departing member %s: %w", login, err)
		}
	}

	team.Deleted = true
	team.IsEnabled = false
	team.Members = []string{}
	if err := s.Teams.Upsert(ctx, team); err != nil {
		return fmt.Errorf("soft-delete team: %w", err)
	}
	return nil
}

// Enable flips a team's is_enabled flag on.
func (s *TeamService) Enable(ctx context.Context, teamID string) (*models.Team, error) {
	return s.setEnabled(ctx, teamID, true)
}

// Disable flips a team's is_enabled flag off.
func (s *TeamService) Disable(ctx context.Context, teamID string) (*models.Team, error) {
	return s.setEnabled(ctx, teamID, false)
}

func (s *TeamService) setEnabled(ctx context.Context, teamID string, enabled bool) (*models.Team, error) {
	team, err := s.Teams.Get(ctx, teamID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}
	team.IsEnabled = enabled
	if err := s.Teams.Upsert(ctx, team); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}
	return team, nil
}

// ReconcileMembership scans every User and fixes two drift cases: a
// user referencing a team that no longer exists, and a user whose team
// exists but no longer lists them as a member. Port of
// internal.py::internal_repair_team_membership.
func (s *TeamService) ReconcileMembership(ctx context.Context) (scanned, repaired int, err error) {
	teams, err := s.Teams.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list teams: %w", err)
	}
	teamLookup := make(map[string]*models.Team, len(teams))
	for _, t := range teams {
		teamLookup[t.TeamID] = t
	}

	users, err := s.Users.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		scanned++
		if u.Team == "" {
			continue
		}
		team, ok := teamLookup[u.Team]
		drifted := !ok
		if ok && !contains(team.Members, u.Login) {
			drifted = true
		}
		if !drifted {
			continue
		}
		u.Team = ""
		if err := s.Users.Upsert(ctx, u); err != nil {
			return scanned, repaired, fmt.Errorf("repair user %s: %w", u.Login, err)
		}
		repaired++
	}
	return scanned, repaired, nil
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
