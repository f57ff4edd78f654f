package sessionresolve

import "brokerage-portal/internal/common/validation"

const (
	ActionResolve = "resolve"
	ActionRevoke  = "revoke"
)

type Input struct {
	Action       string `json:"action"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Output never carries the tokens back into process variables.
type Output struct {
	Authenticated bool     `json:"authenticated"`
	Revoked       bool     `json:"sessionRevoked"`
	SessionID     string   `json:"sessionId,omitempty"`
	UserID        string   `json:"userId,omitempty"`
	UserEmail     string   `json:"userEmail,omitempty"`
	Scopes        []string `json:"userScopes,omitempty"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"accessToken"},
		Properties: map[string]validation.Property{
			"action": {
				Type: "string",
				Enum: []string{ActionResolve, ActionRevoke},
			},
			"accessToken": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
			},
			"refreshToken": {Type: "string"},
		},
		AdditionalProperties: true,
	}
}
