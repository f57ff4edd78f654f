package searchcontacts

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	Text      string `json:"text"`
	AdvisorID string `json:"advisorId,omitempty"`
	Country   string `json:"country,omitempty"`
	From      int    `json:"from,omitempty"`
	Size      int    `json:"size,omitempty"`
}

type Output struct {
	Contacts  []models.Contact `json:"contacts"`
	TotalHits int64            `json:"totalHits"`
	MaxScore  float64          `json:"maxScore"`
	Took      int64            `json:"took"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"text":      {Type: "string", MaxLength: validation.IntPtr(200)},
			"advisorId": {Type: "string"},
			"country": {
				Type:    "string",
				Pattern: validation.StringPtr(`^[A-Z]{2}$`),
			},
			"from": {Type: "integer", Minimum: validation.FloatPtr(0)},
			"size": {Type: "integer", Minimum: validation.FloatPtr(0), Maximum: validation.FloatPtr(100)},
		},
		AdditionalProperties: true,
	}
}
