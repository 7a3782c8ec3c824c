package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenario_KeysAndAPIView(t *testing.T) {
	s := &Scenario{
		ScenarioID:  "level1a",
		Name:        "Prompt Leak",
		Description: "extract the system prompt",
		Objectives:  []string{"leak_prompt"},
		Metadata:    map[string]string{"difficulty": "1"},
		Workqueue:   "level1a",
		Solves:      3,
		Phase:       1,
	}
	assert.Equal(t, "level1a", s.PartitionKey())
	assert.Equal(t, "level1a", s.RowKey())

	view := s.APIView()
	assert.Equal(t, "level1a", view["scenario_id"])
	assert.Equal(t, "Prompt Leak", view["name"])
	assert.Equal(t, 1, view["phase"])
	_, hasSolves := view["solves"]
	assert.False(t, hasSolves, "internal solve counter is not part of the public projection")
	_, hasWorkqueue := view["workqueue"]
	assert.False(t, hasWorkqueue, "workqueue routing detail is not part of the public projection")
}
