package leadfollowup

import "brokerage-portal/internal/common/validation"

const (
	ActionAdd      = "add"
	ActionComplete = "complete"
)

type Input struct {
	Action      string `json:"action"`
	LeadID      string `json:"leadId"`
	FollowUpID  string `json:"followUpId,omitempty"`
	Date        string `json:"date,omitempty"` // RFC 3339 or YYYY-MM-DD
	Description string `json:"description,omitempty"`
}

type Output struct {
	LeadID     string `json:"leadId"`
	FollowUpID string `json:"followUpId"`
	Completed  bool   `json:"completed"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"action", "leadId"},
		Properties: map[string]validation.Property{
			"action":      {Type: "string", Enum: []string{ActionAdd, ActionComplete}},
			"leadId":      {Type: "string", MinLength: validation.IntPtr(1)},
			"followUpId":  {Type: "string"},
			"date":        {Type: "string"},
			"description": {Type: "string", MaxLength: validation.IntPtr(2000)},
		},
		AdditionalProperties: true,
	}
}
