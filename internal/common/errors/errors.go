// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode identifies a failure class across workers and BPMN boundary events.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAnswers   ErrorCode = "INVALID_ANSWERS"
	ErrCodeScoreOutOfRange  ErrorCode = "SCORE_OUT_OF_RANGE"

	ErrCodeWizardPrecondition ErrorCode = "WIZARD_PRECONDITION_FAILED"
	ErrCodeWizardNotFound     ErrorCode = "WIZARD_NOT_FOUND"
	ErrCodeWizardConflict     ErrorCode = "WIZARD_STATE_CONFLICT"
	ErrCodeWizardEffectFailed ErrorCode = "WIZARD_EFFECT_FAILED"
	ErrCodeTicketLocked       ErrorCode = "TICKET_SELECTION_LOCKED"

	ErrCodeStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeStoreRejected     ErrorCode = "STORE_REJECTED"
	ErrCodeStoreConflict     ErrorCode = "STORE_CONFLICT"
	ErrCodeEntityNotFound    ErrorCode = "ENTITY_NOT_FOUND"
	ErrCodeInvalidTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeQueryTimeout      ErrorCode = "QUERY_TIMEOUT"

	ErrCodeUnknownBucket     ErrorCode = "UNKNOWN_BUCKET"
	ErrCodeDocumentRejected  ErrorCode = "DOCUMENT_REJECTED"
	ErrCodeFileStorageFailed ErrorCode = "FILE_STORAGE_FAILED"

	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeSignatureMismatch           ErrorCode = "SIGNATURE_MISMATCH"
	ErrCodeDuplicateApplication        ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeLeadClosed                  ErrorCode = "LEAD_CLOSED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEmailSendFailed        ErrorCode = "EMAIL_SEND_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeCRMNotConfigured ErrorCode = "CRM_NOT_CONFIGURED"
	ErrCodeCRMAPIError      ErrorCode = "CRM_API_ERROR"

	ErrCodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeSessionCache   ErrorCode = "SESSION_CACHE_ERROR"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule    ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the normalized error every worker reports.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key that is forwarded as a BPMN error variable.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// BPMNError is what a job throws or fails with.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables flattens the error into process variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ============================================================================
// Constructors
// ============================================================================

func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", details, false, nil)
}

func NewInvalidAnswersError(err error) *StandardError {
	return newError(ErrCodeInvalidAnswers, "Questionnaire answers are invalid", err.Error(), false, err)
}

func NewScoreOutOfRangeError(err error) *StandardError {
	return newError(ErrCodeScoreOutOfRange, "Risk score does not fall into any archetype band", err.Error(), false, err)
}

// NewWizardPreconditionError carries the step-specific message shown to the user.
func NewWizardPreconditionError(step string, err error) *StandardError {
	return newError(ErrCodeWizardPrecondition, err.Error(), fmt.Sprintf("step: %s", step), false, err).
		WithMetadata("step", step)
}

func NewWizardNotFoundError(err error) *StandardError {
	return newError(ErrCodeWizardNotFound, "Wizard session not found or expired", err.Error(), false, err)
}

func NewWizardConflictError(err error) *StandardError {
	return newError(ErrCodeWizardConflict, "Wizard state was modified concurrently", err.Error(), true, err)
}

func NewWizardEffectError(transition string, err error) *StandardError {
	return newError(ErrCodeWizardEffectFailed, "Step transition side effect failed", fmt.Sprintf("transition: %s, error: %s", transition, err.Error()), true, err)
}

func NewStoreUnavailableError(err error) *StandardError {
	return newError(ErrCodeStoreUnavailable, "Data store unavailable", err.Error(), true, err)
}

func NewStoreRejectedError(err error) *StandardError {
	return newError(ErrCodeStoreRejected, "Data store rejected the request", err.Error(), false, err)
}

func NewStoreConflictError(err error) *StandardError {
	return newError(ErrCodeStoreConflict, "Document was modified concurrently", err.Error(), true, err)
}

func NewTicketLockedError(err error) *StandardError {
	return newError(ErrCodeTicketLocked, "Ticket selection can no longer change", err.Error(), false, err)
}

func NewEntityNotFoundError(err error) *StandardError {
	return newError(ErrCodeEntityNotFound, "Entity not found", err.Error(), false, err)
}

func NewInvalidTransitionError(err error) *StandardError {
	return newError(ErrCodeInvalidTransition, "Ticket status transition not allowed", err.Error(), false, err)
}

func NewQueryTimeoutError(collection string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Data store query timeout", fmt.Sprintf("collection: %s", collection), true, nil)
}

func NewUnknownBucketError(err error) *StandardError {
	return newError(ErrCodeUnknownBucket, "Document bucket is not configured", err.Error(), false, err)
}

func NewDocumentRejectedError(details string) *StandardError {
	return newError(ErrCodeDocumentRejected, "Document upload rejected", details, false, nil)
}

func NewFileStorageError(err error) *StandardError {
	return newError(ErrCodeFileStorageFailed, "File storage upload failed", err.Error(), true, err)
}

func NewApplicationValidationFailedError(details string) *StandardError {
	return newError(ErrCodeApplicationValidationFailed, "Application data validation failed", details, false, nil)
}

func NewSignatureMismatchError(err error) *StandardError {
	return newError(ErrCodeSignatureMismatch, "Holder signatures do not match holder names", err.Error(), false, err)
}

func NewDuplicateApplicationError(err error) *StandardError {
	return newError(ErrCodeDuplicateApplication, "An application already exists for this lead", err.Error(), false, err)
}

func NewLeadClosedError(err error) *StandardError {
	return newError(ErrCodeLeadClosed, "Lead is already closed", err.Error(), false, err)
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed", fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true, err)
}

func NewEmailSendFailedError(err error) *StandardError {
	return newError(ErrCodeEmailSendFailed, "Failed to send email", err.Error(), true, err)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error", err.Error(), true, err)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", fmt.Sprintf("index: %s", index), true, nil)
}

func NewCRMNotConfiguredError() *StandardError {
	return newError(ErrCodeCRMNotConfigured, "Zoho CRM client not configured", "Missing API key or OAuth token", false, nil)
}

func NewCRMAPIError(err error) *StandardError {
	return newError(ErrCodeCRMAPIError, "CRM request failed", err.Error(), true, err)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false, nil)
}

func NewSessionCacheError(err error) *StandardError {
	return newError(ErrCodeSessionCache, "Session cache unavailable", err.Error(), true, err)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

// ============================================================================
// BPMN mapping
// ============================================================================

// BPMNErrorMapping renames internal codes to the error codes modelled in BPMN.
// Codes missing here are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidAnswers:       "RISK_QUESTIONNAIRE_INVALID",
	ErrCodeScoreOutOfRange:      "RISK_QUESTIONNAIRE_INVALID",
	ErrCodeSignatureMismatch:    "APPLICATION_VALIDATION_FAILED",
	ErrCodeWizardNotFound:       "WIZARD_PRECONDITION_FAILED",
	ErrCodeEntityNotFound:       "RESOURCE_NOT_FOUND",
	ErrCodeStoreRejected:        "STORE_REJECTED",
	ErrCodeDuplicateApplication: "DUPLICATE_APPLICATION",
}

// GetRetryCount is the retry budget per code; zero means throw a BPMN error.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreUnavailable,
		ErrCodeFileStorageFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeEmailSendFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCRMAPIError,
		ErrCodeSessionCache,
		ErrCodeExternalService:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeTimeout,
		ErrCodeWizardEffectFailed,
		ErrCodeStoreConflict:
		return 2

	case ErrCodeWizardConflict:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError maps a StandardError onto its BPMN representation.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for log aggregation.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "WIZARD"):
		return "WIZARD"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "ENTITY") || strings.Contains(codeStr, "QUERY"):
		return "DATA"
	case strings.Contains(codeStr, "BUCKET") || strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "FILE"):
		return "DOCUMENTS"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "EMAIL"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "CRM"):
		return "CRM"
	case strings.Contains(codeStr, "AUTH") || strings.Contains(codeStr, "SESSION"):
		return "AUTH"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "SIGNATURE") || strings.Contains(codeStr, "SCORE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT"):
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}
