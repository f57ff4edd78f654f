package emailsend

import "brokerage-portal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"to", "subject", "body"},
		Properties: map[string]validation.Property{
			"from": {
				Type:        "string",
				Description: "Sender address, defaults to the SES sender",
				MaxLength:   validation.IntPtr(255),
			},
			"to": {
				Type:        "string",
				Description: "Recipients (comma-separated)",
				MinLength:   validation.IntPtr(5),
				MaxLength:   validation.IntPtr(1000),
			},
			"cc":      {Type: "string", MaxLength: validation.IntPtr(1000)},
			"bcc":     {Type: "string", MaxLength: validation.IntPtr(1000)},
			"replyTo": {Type: "string", MaxLength: validation.IntPtr(255)},
			"subject": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(500),
			},
			"body": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(100000),
			},
			"isHtml":   {Type: "boolean"},
			"metadata": {Type: "object"},
		},
		AdditionalProperties: true,
	}
}
