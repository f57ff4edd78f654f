package main

import (
	"time"

	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/pkg/registry"

	createnotification "brokerage-portal/internal/workers/application/create-notification"
	sendnotification "brokerage-portal/internal/workers/application/send-notification"
	startapplication "brokerage-portal/internal/workers/application/start-application"
	submitapplication "brokerage-portal/internal/workers/application/submit-application"
	sessionresolve "brokerage-portal/internal/workers/auth/session-resolve"
	emailsend "brokerage-portal/internal/workers/communication/email-send"
	crmcontactsync "brokerage-portal/internal/workers/crm/crm-contact-sync"
	queryentities "brokerage-portal/internal/workers/data-access/query-entities"
	searchcontacts "brokerage-portal/internal/workers/data-access/search-contacts"
	fileupload "brokerage-portal/internal/workers/documents/file-upload"
	listdocuments "brokerage-portal/internal/workers/documents/list-documents"
	uploaddocument "brokerage-portal/internal/workers/documents/upload-document"
	createlead "brokerage-portal/internal/workers/leads/create-lead"
	leadfollowup "brokerage-portal/internal/workers/leads/lead-follow-up"
	computeriskprofile "brokerage-portal/internal/workers/onboarding/compute-risk-profile"
	wizardstep "brokerage-portal/internal/workers/onboarding/wizard-step"
	accountoverview "brokerage-portal/internal/workers/reports/account-overview"
)

type entry struct {
	taskType    string
	displayName string
	category    string
	description string
	schema      func() validation.JSONSchema
	codes       []errors.ErrorCode
}

var storeCodes = []errors.ErrorCode{errors.ErrCodeStoreUnavailable, errors.ErrCodeStoreRejected, errors.ErrCodeStoreConflict, errors.ErrCodeEntityNotFound}

func with(codes ...errors.ErrorCode) []errors.ErrorCode {
	return append(append([]errors.ErrorCode{errors.ErrCodeValidationFailed}, codes...), storeCodes...)
}

var catalog = []entry{
	{computeriskprofile.TaskType, "Compute Risk Profile", "onboarding", "Scores questionnaire answers and stores the risk profile",
		computeriskprofile.GetInputSchema, with(errors.ErrCodeInvalidAnswers, errors.ErrCodeScoreOutOfRange)},
	{wizardstep.TaskType, "Wizard Step", "onboarding", "Runs one action of the account-opening wizard",
		wizardstep.GetInputSchema, with(errors.ErrCodeWizardPrecondition, errors.ErrCodeWizardNotFound, errors.ErrCodeWizardConflict, errors.ErrCodeWizardEffectFailed, errors.ErrCodeInvalidTransition, errors.ErrCodeTicketLocked)},
	{uploaddocument.TaskType, "Upload Document", "documents", "Files a document into an owner's bucket",
		uploaddocument.GetInputSchema, with(errors.ErrCodeUnknownBucket, errors.ErrCodeDocumentRejected, errors.ErrCodeFileStorageFailed)},
	{listdocuments.TaskType, "List Documents", "documents", "Reads an owner's buckets in configured order",
		listdocuments.GetInputSchema, with()},
	{fileupload.TaskType, "File Upload", "documents", "Stores a raw file in S3 and returns its reference",
		fileupload.GetInputSchema, []errors.ErrorCode{errors.ErrCodeValidationFailed, errors.ErrCodeDocumentRejected, errors.ErrCodeFileStorageFailed, errors.ErrCodeBusinessRule}},
	{createnotification.TaskType, "Create Notification", "application", "Records a lifecycle notification",
		createnotification.GetInputSchema, with()},
	{sendnotification.TaskType, "Send Notification", "application", "Delivers a notification over SES and SNS",
		sendnotification.GetInputSchema, []errors.ErrorCode{errors.ErrCodeValidationFailed, errors.ErrCodeNotificationSendFailed}},
	{emailsend.TaskType, "Send Email", "communication", "Sends an email through SES",
		emailsend.GetInputSchema, []errors.ErrorCode{errors.ErrCodeValidationFailed, errors.ErrCodeEmailSendFailed, errors.ErrCodeBusinessRule}},
	{createlead.TaskType, "Create Lead", "leads", "Stores a contact and opens a lead for it",
		createlead.GetInputSchema, with()},
	{startapplication.TaskType, "Start Application", "leads", "Opens a ticket for a lead and closes the lead",
		startapplication.GetInputSchema, with(errors.ErrCodeDuplicateApplication, errors.ErrCodeLeadClosed)},
	{leadfollowup.TaskType, "Lead Follow-up", "leads", "Adds or completes a follow-up on a lead",
		leadfollowup.GetInputSchema, with(errors.ErrCodeLeadClosed)},
	{submitapplication.TaskType, "Submit Application", "application", "Validates, signs and submits the account application",
		submitapplication.GetInputSchema, with(errors.ErrCodeApplicationValidationFailed, errors.ErrCodeSignatureMismatch, errors.ErrCodeInvalidTransition)},
	{queryentities.TaskType, "Query Entities", "data-access", "Reads portal entities by named query",
		queryentities.GetInputSchema, with(errors.ErrCodeQueryTimeout)},
	{searchcontacts.TaskType, "Search Contacts", "data-access", "Full-text contact search",
		searchcontacts.GetInputSchema, []errors.ErrorCode{errors.ErrCodeValidationFailed, errors.ErrCodeSearchQueryFailed, errors.ErrCodeSearchTimeout}},
	{crmcontactsync.TaskType, "CRM Contact Sync", "crm", "Upserts a portal contact into Zoho CRM",
		crmcontactsync.GetInputSchema, with(errors.ErrCodeCRMNotConfigured, errors.ErrCodeCRMAPIError, errors.ErrCodeBusinessRule)},
	{accountoverview.TaskType, "Account Overview", "reports", "Accounts with client name and NAV overlays",
		accountoverview.GetInputSchema, with()},
	{sessionresolve.TaskType, "Resolve Session", "auth", "Resolves or revokes a bearer token session",
		sessionresolve.GetInputSchema, []errors.ErrorCode{errors.ErrCodeValidationFailed, errors.ErrCodeAuthentication, errors.ErrCodeSessionCache}},
}

// activities builds the catalog; limits returns a task type's timeout and
// retry budget.
func activities(limits func(taskType string) (time.Duration, int)) []registry.Activity {
	out := make([]registry.Activity, 0, len(catalog))
	for _, e := range catalog {
		codes := make([]string, len(e.codes))
		for i, c := range e.codes {
			codes[i] = string(c)
		}
		timeout, retries := limits(e.taskType)
		out = append(out, registry.Activity{
			ID:          e.taskType,
			DisplayName: e.displayName,
			Description: e.description,
			Category:    e.category,
			TaskType:    e.taskType,
			InputSchema: e.schema(),
			ErrorCodes:  codes,
			Timeout:     timeout.String(),
			Retries:     retries,
		})
	}
	return out
}
