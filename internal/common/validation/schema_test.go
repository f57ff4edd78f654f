package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wizardSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"wizardId": {Type: "string", MinLength: IntPtr(1)},
			"action":   {Type: "string", Enum: []string{"forward", "backward"}},
			"step":     {Type: "integer", Minimum: FloatPtr(1)},
		},
		Required: []string{"wizardId", "action"},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		valid     bool
		field     string
		errorCode string
	}{
		{
			name:  "valid input",
			input: map[string]interface{}{"wizardId": "w-1", "action": "forward", "step": float64(2)},
			valid: true,
		},
		{
			name:      "missing required",
			input:     map[string]interface{}{"action": "forward"},
			field:     "wizardId",
			errorCode: "REQUIRED_FIELD_MISSING",
		},
		{
			name:      "bad enum",
			input:     map[string]interface{}{"wizardId": "w-1", "action": "sideways"},
			field:     "action",
			errorCode: "INVALID_ENUM_VALUE",
		},
		{
			name:      "extra field rejected",
			input:     map[string]interface{}{"wizardId": "w-1", "action": "forward", "other": true},
			field:     "other",
			errorCode: "EXTRA_FIELD",
		},
		{
			name:      "below minimum",
			input:     map[string]interface{}{"wizardId": "w-1", "action": "forward", "step": float64(0)},
			field:     "step",
			errorCode: "MINIMUM_VIOLATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateInput(tt.input, wizardSchema())
			assert.Equal(t, tt.valid, res.Valid, res.GetErrorMessages())
			if !tt.valid {
				require.NotEmpty(t, res.Errors)
				assert.True(t, res.HasErrors(tt.field), res.GetErrorMessages())
				assert.Equal(t, tt.errorCode, res.Errors[0].Code)
			}
		})
	}
}

func TestDocument_Validate(t *testing.T) {
	doc := MustCompile(`{
		"type": "object",
		"required": ["customerType"],
		"properties": {"customerType": {"enum": ["INDIVIDUAL", "JOINT", "ORG"]}}
	}`)

	res, err := doc.Validate(map[string]interface{}{"customerType": "JOINT"})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = doc.Validate(struct {
		CustomerType string `json:"customerType"`
	}{CustomerType: "TRUST"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("customerType"))
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateEmailAndPhone(t *testing.T) {
	assert.True(t, ValidateEmail("advisor@broker.example"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.True(t, ValidatePhone("+41 44 123 45 67"))
	assert.False(t, ValidatePhone("123"))
}
