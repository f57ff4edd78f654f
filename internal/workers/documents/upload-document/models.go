package uploaddocument

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	OwnerID    string            `json:"ownerId"`
	BucketID   string            `json:"bucketId"`
	Name       string            `json:"name"`
	MimeType   string            `json:"mimeType"`
	IssuedDate string            `json:"issuedDate,omitempty"`
	Content    string            `json:"content"` // base64
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type Output struct {
	DocumentID string          `json:"documentId"`
	Checksum   string          `json:"checksum,omitempty"`
	StorageRef string          `json:"storageRef,omitempty"`
	Document   models.Document `json:"document"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"ownerId", "bucketId", "name", "content"},
		Properties: map[string]validation.Property{
			"ownerId":  {Type: "string", MinLength: validation.IntPtr(1)},
			"bucketId": {Type: "string", MinLength: validation.IntPtr(1)},
			"name":     {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(255)},
			"mimeType": {Type: "string"},
			"issuedDate": {
				Type:    "string",
				Pattern: validation.StringPtr(`^\d{4}-\d{2}-\d{2}$`),
			},
			"content":  {Type: "string", Description: "Base64 file body"},
			"metadata": {Type: "object"},
		},
		AdditionalProperties: true,
	}
}
