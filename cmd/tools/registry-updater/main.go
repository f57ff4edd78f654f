// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"brokerage-portal/internal/common/config"
	"brokerage-portal/pkg/registry"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportPath := exportCmd.String("path", "configs/activity-registry.json", "Path to write the registry")
	exportConfig := exportCmd.String("config", "configs/config.yaml", "Config used for timeouts and retries")
	version := exportCmd.String("version", "1.0.0", "Registry version")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", "configs/activity-registry.json", "Path to registry file")
	validateConfig := validateCmd.String("config", "configs/config.yaml", "Config whose worker blocks must match the registry")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := export(*exportPath, *exportConfig, *version); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", len(catalog), *exportPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validate(*validatePath, *validateConfig); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func export(path, configPath, version string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return err
	}
	reg := &registry.ActivityRegistry{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities: activities(func(taskType string) (time.Duration, int) {
			w := config.GetWorkerConfig(cfg, taskType)
			return config.GetDuration(w.Timeout), w.MaxRetries
		}),
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	return reg.Save(path)
}

func validate(path, configPath string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return err
	}

	unregistered, unconfigured := reg.Drift(cfg)
	var problems []string
	if len(unregistered) > 0 {
		problems = append(problems, "configured but not registered: "+strings.Join(unregistered, ", "))
	}
	if len(unconfigured) > 0 {
		problems = append(problems, "registered but not configured: "+strings.Join(unconfigured, ", "))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	fmt.Printf("Found %d activities.\n", len(reg.Activities))
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  export    Write the activity registry from the worker catalog
  validate  Check the registry file against the worker config
  help      Show this help message

Examples:
  registry-updater export -path configs/activity-registry.json -config configs/config.yaml
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
