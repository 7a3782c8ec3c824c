package models

// Scenario is one attack/defense configuration a team can submit jobs
// against. The catalog is generated once by setup and keyed by ScenarioID
// (e.g. "level1a"), not by partition/row key — scenarios are looked up
// directly by id, never listed by partition.
type Scenario struct {
	ScenarioID  string            `json:"scenario_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Objectives  []string          `json:"objectives"`
	Metadata    map[string]string `json:"metadata"`
	Workqueue   string            `json:"workqueue"`
	Solves      int               `json:"solves"`
	Phase       int               `json:"phase"`
}

func (s *Scenario) PartitionKey() string { return s.ScenarioID }
func (s *Scenario) RowKey() string       { return s.ScenarioID }

// APIView returns the subset of fields exposed over the API.
func (s *Scenario) APIView() map[string]any {
	return map[string]any{
		"scenario_id": s.ScenarioID,
		"name":        s.Name,
		"description": s.Description,
		"objectives":  s.Objectives,
		"metadata":    s.Metadata,
		"phase":       s.Phase,
	}
}
