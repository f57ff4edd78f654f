package crmcontactsync

import "brokerage-portal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"contactId"},
		Properties: map[string]validation.Property{
			"contactId": {
				Type:        "string",
				Description: "Portal contact to push to the CRM",
				MinLength:   validation.IntPtr(1),
			},
		},
		AdditionalProperties: true,
	}
}
