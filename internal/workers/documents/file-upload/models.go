package fileupload

import "brokerage-portal/internal/common/validation"

type Input struct {
	Folder      string            `json:"folder"`
	FileName    string            `json:"fileName"`
	ContentType string            `json:"contentType,omitempty"`
	Content     string            `json:"content"` // base64
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Output struct {
	ReferenceID string `json:"referenceId"`
	StorageRef  string `json:"storageRef"`
	Size        int    `json:"size"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"folder", "fileName", "content"},
		Properties: map[string]validation.Property{
			"folder": {
				Type:    "string",
				Pattern: validation.StringPtr(`^[A-Za-z0-9._/-]+$`),
			},
			"fileName":    {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(255)},
			"contentType": {Type: "string"},
			"content":     {Type: "string"},
			"metadata":    {Type: "object"},
		},
		AdditionalProperties: true,
	}
}
