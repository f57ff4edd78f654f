package listdocuments

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	OwnerID string `json:"ownerId"`
	// IncludePayload keeps inline base64 bodies in the output.
	IncludePayload bool `json:"includePayload,omitempty"`
}

type Output struct {
	Buckets       []models.Bucket `json:"buckets"`
	DocumentCount int             `json:"documentCount"`
	Missing       []string        `json:"missingBuckets"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"ownerId"},
		Properties: map[string]validation.Property{
			"ownerId":        {Type: "string", MinLength: validation.IntPtr(1)},
			"includePayload": {Type: "boolean"},
		},
		AdditionalProperties: true,
	}
}
