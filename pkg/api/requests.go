package api

// createTeamRequest is the body of POST /teams.
type createTeamRequest struct {
	Name string `json:"name" validate:"required"`
}

// updateTeamMembersRequest is the body of PATCH /teams/{id}.
type updateTeamMembersRequest struct {
	Members []string `json:"members" validate:"required,min=1"`
}

// createJobRequest is the body of POST /teams/{id}/jobs.
type createJobRequest struct {
	Scenario string `json:"scenario" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Body     string `json:"body" validate:"required"`
}

// updateUserRequest is the body of PATCH /users/{login}. Each field is
// a pointer so admins can patch role and blocked independently.
type updateUserRequest struct {
	Role    *string `json:"role"`
	Blocked *bool   `json:"blocked"`
}
