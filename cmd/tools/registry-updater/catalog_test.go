package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"brokerage-portal/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Valid(t *testing.T) {
	reg := &registry.ActivityRegistry{
		Version: "test",
		Activities: activities(func(string) (time.Duration, int) {
			return 10 * time.Second, 3
		}),
	}
	require.NoError(t, reg.Validate())
	for _, a := range reg.Activities {
		assert.Equal(t, "object", a.InputSchema.Type, a.TaskType)
		assert.Contains(t, a.ErrorCodes, "VALIDATION_FAILED", a.TaskType)
		assert.Equal(t, "10s", a.Timeout)
	}
}

func TestExportValidate_MatchesShippedConfig(t *testing.T) {
	configPath := filepath.Join("..", "..", "..", "configs", "config.yaml")
	t.Setenv("ZEEBE_ADDRESS", "localhost:26500")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "portal")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	if _, err := os.Stat(configPath); err != nil {
		t.Skip("shipped config not found")
	}

	out := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, export(out, configPath, "test"))
	assert.NoError(t, validate(out, configPath))
}
