package services

import "github.com/llmail-inject/ctf-control-plane/pkg/models"

// ResolveTeamID resolves the "mine" path placeholder to the caller's own
// team. Returns a ValidationError on field team_id if the caller has no
// team and asked for "mine".
func ResolveTeamID(caller *models.User, teamID string) (string, error) {
	if teamID == "mine" {
		if caller.Team == "" {
			return "", NewValidationError("team_id", "caller has no team")
		}
		return caller.Team, nil
	}
	return teamID, nil
}

// RequireTeamMember returns ErrNotAuthorized unless caller is an admin
// or a member of teamID, matching the original's
// require_team_membership mixin.
func RequireTeamMember(caller *models.User, teamID string) error {
	if caller.Role == models.RoleAdmin {
		return nil
	}
	if caller.Team != teamID {
		return ErrNotAuthorized
	}
	return nil
}
