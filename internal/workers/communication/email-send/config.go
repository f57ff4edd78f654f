package emailsend

import (
	"fmt"
	"time"

	"brokerage-portal/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	DefaultFrom   string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		DefaultFrom:   "noreply@example.com",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.DefaultFrom == "" {
		return fmt.Errorf("default_from email is required")
	}
	return nil
}

// createConfigFromAppConfig merges the worker block with the SES sender.
func createConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	wcfg := config.GetWorkerConfig(appConfig, TaskType)
	cfg.Enabled = wcfg.Enabled && appConfig.Integrations.AWS.SES.Enabled
	if wcfg.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wcfg.MaxJobsActive
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if from := appConfig.Integrations.AWS.SES.FromEmail; from != "" {
		cfg.DefaultFrom = from
	}
	return cfg
}
