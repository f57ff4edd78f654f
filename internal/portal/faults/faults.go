// Package faults maps portal domain errors onto the worker error codes.
package faults

import (
	"context"
	stderrors "errors"
	"fmt"

	"brokerage-portal/internal/common/auth"
	"brokerage-portal/internal/common/errors"
	chttp "brokerage-portal/internal/common/http"
	"brokerage-portal/internal/portal/application"
	"brokerage-portal/internal/portal/documents"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/leads"
	"brokerage-portal/internal/portal/notify"
	"brokerage-portal/internal/portal/onboarding"
	"brokerage-portal/internal/portal/risk"
	"brokerage-portal/internal/portal/search"
	"brokerage-portal/internal/portal/session"
	"brokerage-portal/internal/portal/store"
	"brokerage-portal/internal/portal/wizard"
)

// ToStandard returns err as a *errors.StandardError. Errors that already
// are one pass through; unknown errors are left for errors.Normalize.
func ToStandard(err error) error {
	if err == nil {
		return nil
	}
	var std *errors.StandardError
	if stderrors.As(err, &std) {
		return std
	}
	if mapped := classify(err); mapped != nil {
		return mapped
	}
	return err
}

func classify(err error) *errors.StandardError {
	var (
		pre    *wizard.PreconditionError
		eff    *wizard.EffectError
		status *chttp.StatusError
	)
	is := func(target error) bool { return stderrors.Is(err, target) }

	switch {
	// The effect wrapper goes first so its cause decides retryability.
	case stderrors.As(err, &eff):
		out := errors.NewWizardEffectError(fmt.Sprintf("%s -> %s", eff.From, eff.To), eff.Err)
		if cause := classify(eff.Err); cause != nil {
			out.Retryable = cause.Retryable
			out.WithMetadata("causeCode", string(cause.Code))
		}
		return out
	case stderrors.As(err, &pre):
		return errors.NewWizardPreconditionError(pre.Name, err)

	case is(risk.ErrMissingAnswer), is(risk.ErrInvalidChoice):
		return errors.NewInvalidAnswersError(err)
	case is(risk.ErrScoreOutOfRange):
		return errors.NewScoreOutOfRangeError(err)

	case is(wizard.ErrStateNotFound):
		return errors.NewWizardNotFoundError(err)
	case is(wizard.ErrStateConflict):
		return errors.NewWizardConflictError(err)
	case is(wizard.ErrStateUnavailable):
		return errors.NewExternalServiceError("redis", err)
	case is(wizard.ErrAtFinalStep):
		return errors.NewBusinessRuleError("Wizard is already at its final step", err.Error())
	case is(wizard.ErrStaleReport), is(wizard.ErrInvalidReadiness):
		return errors.NewValidationError(err.Error())

	case is(onboarding.ErrNoTicket), is(onboarding.ErrTicketClosed):
		return errors.NewWizardPreconditionError("TicketSelect", err)
	case is(onboarding.ErrTicketLocked):
		return errors.NewTicketLockedError(err)
	case is(onboarding.ErrAccountMismatch):
		return errors.NewWizardPreconditionError("AccountForm", err)

	case is(store.ErrNotFound):
		return errors.NewEntityNotFoundError(err)
	case is(store.ErrUnavailable):
		return errors.NewStoreUnavailableError(err)
	case is(store.ErrConflict):
		return errors.NewStoreConflictError(err)
	case is(store.ErrRejected):
		return errors.NewStoreRejectedError(err)
	case is(gateway.ErrInvalidTransition):
		return errors.NewInvalidTransitionError(err)

	case is(documents.ErrUnknownBucket):
		return errors.NewUnknownBucketError(err)
	case is(documents.ErrEmptyFile), is(documents.ErrFileTooLarge), is(documents.ErrMissingName):
		return errors.NewDocumentRejectedError(err.Error())
	case is(documents.ErrFileStorage):
		return errors.NewFileStorageError(err)

	case is(application.ErrInvalidApplication):
		out := errors.NewApplicationValidationFailedError(err.Error())
		var verr *application.ValidationError
		if stderrors.As(err, &verr) {
			out.WithMetadata("violations", verr.Errors)
		}
		return out
	case is(application.ErrSignatureMismatch):
		return errors.NewSignatureMismatchError(err)
	case is(application.ErrAlreadySubmitted), is(application.ErrTicketClosed):
		return errors.NewBusinessRuleError("Application cannot be submitted", err.Error())

	case is(leads.ErrApplicationExists):
		return errors.NewDuplicateApplicationError(err)
	case is(leads.ErrLeadClosed):
		return errors.NewLeadClosedError(err)
	case is(leads.ErrFollowUpNotFound):
		return errors.NewResourceNotFoundError("leads", err.Error())
	case is(leads.ErrInvalidContact):
		return errors.NewValidationError(err.Error())

	case is(notify.ErrUnknownType), is(notify.ErrMissingTicket):
		return errors.NewValidationError(err.Error())

	case is(search.ErrSearchFailed), is(search.ErrIndexFailed):
		return errors.NewSearchQueryFailedError(err)

	case is(session.ErrMissingToken), is(session.ErrSessionRevoked), is(auth.ErrInvalidToken):
		return errors.NewAuthenticationError(err.Error())
	case is(session.ErrCacheUnavailable):
		return errors.NewSessionCacheError(err)
	case is(auth.ErrUserNotFound):
		return errors.NewResourceNotFoundError("keycloak", err.Error())

	case is(context.DeadlineExceeded):
		return errors.NewTimeoutError("portal", err)
	case stderrors.As(err, &status):
		if status.Retryable() {
			return errors.NewExternalServiceError(status.URL, err)
		}
		return errors.NewBusinessRuleError("Upstream request rejected", err.Error())
	}
	return nil
}
