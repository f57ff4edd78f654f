package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"renamed code", NewScoreOutOfRangeError(stderrors.New("1.2")), "RISK_QUESTIONNAIRE_INVALID", 0},
		{"code passes through", NewUnknownBucketError(stderrors.New("tax")), "UNKNOWN_BUCKET", 0},
		{"retryable store outage", NewStoreUnavailableError(stderrors.New("dial")), "STORE_UNAVAILABLE", 3},
		{"wizard conflict", NewWizardConflictError(stderrors.New("version 3")), "WIZARD_STATE_CONFLICT", 1},
		{"store conflict", NewStoreConflictError(stderrors.New("t-1")), "STORE_CONFLICT", 2},
		{"ticket locked", NewTicketLockedError(stderrors.New("t-1")), "TICKET_SELECTION_LOCKED", 0},
		{"retry budget needs retryable flag", &StandardError{Code: ErrCodeStoreUnavailable}, "STORE_UNAVAILABLE", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, b.Code)
			assert.Equal(t, tt.wantRetries, b.Retries)
			assert.Equal(t, string(tt.err.Code), b.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_MetadataBecomesVariables(t *testing.T) {
	std := NewApplicationValidationFailedError("2 violations").
		WithMetadata("violations", []string{"holders", "signature"})

	vars := ConvertToBPMNError(std).ToErrorVariables()
	assert.Equal(t, "APPLICATION_VALIDATION_FAILED", vars["errorCode"])
	assert.Equal(t, []string{"holders", "signature"}, vars["violations"])
	assert.Equal(t, false, vars["retryable"])
}

func TestNormalize(t *testing.T) {
	std := NewLeadClosedError(stderrors.New("lead-1"))
	wrapped := fmt.Errorf("start application: %w", std)
	assert.Same(t, std, Normalize(wrapped))

	timeout := Normalize(fmt.Errorf("read tickets: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeTimeout, timeout.Code)
	assert.True(t, timeout.Retryable)

	plain := stderrors.New("boom")
	internal := Normalize(plain)
	assert.Equal(t, ErrCodeInternal, internal.Code)
	assert.False(t, internal.Retryable)
	assert.ErrorIs(t, internal, plain)
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewCRMAPIError(cause)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CRM_API_ERROR")
}

func TestGetErrorCategory(t *testing.T) {
	cases := map[ErrorCode]string{
		ErrCodeWizardPrecondition:          "WIZARD",
		ErrCodeQueryTimeout:                "DATA",
		ErrCodeDocumentRejected:            "DOCUMENTS",
		ErrCodeSearchTimeout:               "SEARCH",
		ErrCodeEmailSendFailed:             "NOTIFICATION",
		ErrCodeCRMNotConfigured:            "CRM",
		ErrCodeSessionCache:                "AUTH",
		ErrCodeSignatureMismatch:           "VALIDATION",
		ErrCodeTimeout:                     "TIMEOUT",
		ErrCodeBusinessRule:                "UNKNOWN",
		ErrCodeInvalidTransition:           "VALIDATION",
		ErrCodeApplicationValidationFailed: "VALIDATION",
	}
	for code, want := range cases {
		assert.Equal(t, want, GetErrorCategory(code), code)
	}
	assert.True(t, IsRetryableErrorCode(ErrCodeSearchQueryFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeSignatureMismatch))
}
