// pkg/registry/schema.go
package registry

import "brokerage-portal/internal/common/validation"

// ActivityRegistry is the published catalog of task types the workers
// serve, for process modelers.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string                `json:"id"`
	DisplayName string                `json:"displayName"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	TaskType    string                `json:"taskType"`
	InputSchema validation.JSONSchema `json:"inputSchema"`
	ErrorCodes  []string              `json:"errorCodes"`
	Timeout     string                `json:"timeout"`
	Retries     int                   `json:"retries"`
}
