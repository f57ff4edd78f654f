// internal/workers/data-access/query-entities/models.go
package queryentities

import (
	"encoding/json"

	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/workers/data-access/query-entities/queries"
)

type Input struct {
	QueryType  string                 `json:"queryType"`
	Collection string                 `json:"collection,omitempty"`
	TicketID   string                 `json:"ticketId,omitempty"`
	AdvisorID  string                 `json:"advisorId,omitempty"`
	OwnerID    string                 `json:"ownerId,omitempty"`
	Status     string                 `json:"status,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               []json.RawMessage `json:"data"`
	RowCount           int               `json:"rowCount"`
	QueryExecutionTime int64             `json:"queryExecutionTime"` // milliseconds
}

func GetInputSchema() validation.JSONSchema {
	types := make([]string, 0, len(queries.Registry))
	for t := range queries.Registry {
		types = append(types, string(t))
	}
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"queryType"},
		Properties: map[string]validation.Property{
			"queryType":  {Type: "string", Enum: types},
			"collection": {Type: "string"},
			"ticketId":   {Type: "string"},
			"advisorId":  {Type: "string"},
			"ownerId":    {Type: "string"},
			"status":     {Type: "string"},
			"filters":    {Type: "object"},
		},
		AdditionalProperties: true,
	}
}
