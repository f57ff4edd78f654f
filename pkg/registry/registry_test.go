package registry

import (
	"path/filepath"
	"testing"

	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{
				ID:          "wizard-step",
				DisplayName: "Wizard Step",
				Category:    "onboarding",
				TaskType:    "wizard-step",
				InputSchema: validation.JSONSchema{Type: "object", Required: []string{"action"}},
			},
			{ID: "list-documents", DisplayName: "List Documents", Category: "documents", TaskType: "list-documents"},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	require.NoError(t, sample().Save(path))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 2)
	assert.Equal(t, []string{"action"}, reg.Activities[0].InputSchema.Required)
	assert.NoError(t, reg.Validate())
}

func TestValidate(t *testing.T) {
	reg := sample()
	reg.Activities[1].TaskType = "wizard-step"
	assert.ErrorContains(t, reg.Validate(), "duplicate task type")

	reg = sample()
	reg.Activities[0].Category = ""
	assert.ErrorContains(t, reg.Validate(), "Category")

	assert.Error(t, (&ActivityRegistry{}).Validate())
}

func TestDrift(t *testing.T) {
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		"wizard-step": {Enabled: true},
		"legacy-task": {Enabled: true},
	}}
	unregistered, unconfigured := sample().Drift(cfg)
	assert.Equal(t, []string{"legacy-task"}, unregistered)
	assert.Equal(t, []string{"list-documents"}, unconfigured)
}
