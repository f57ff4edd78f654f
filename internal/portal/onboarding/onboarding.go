// Package onboarding defines the account-opening wizard and runs it
// against persisted wizard state.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/store"
	"brokerage-portal/internal/portal/wizard"

	"github.com/google/uuid"
)

const WizardName = "account-opening"

const (
	StepTicketSelect = iota + 1
	StepAccountForm
	StepDocumentBackup
	StepApplicationForm
	StepFinal
)

// Selection keys owned by the wizard.
const (
	SelectedTicket  = "ticketId"
	SelectedAccount = "accountId"
)

const (
	TicketRequiredMessage  = "please select a ticket before continuing"
	AccountRequiredMessage = "please link an account before continuing"
)

var (
	ErrTicketClosed    = errors.New("ticket is closed")
	ErrAccountMismatch = errors.New("account belongs to another ticket")
	ErrNoTicket        = errors.New("no ticket selected")
	ErrTicketLocked    = errors.New("selected ticket is already in progress")
)

// Notifier records lifecycle notifications. notify.Service satisfies it.
type Notifier interface {
	CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error)
	// FindNotification returns nil when the ticket has no notification of kind.
	FindNotification(ctx context.Context, ticketID string, kind models.NotificationType) (*models.Notification, error)
}

type Deps struct {
	Tickets    *gateway.TicketGateway
	Accounts   *gateway.Gateway[models.Account]
	Notifier   Notifier
	Repository wizard.Repository
	Logger     logger.Logger
	Now        func() time.Time
}

type Service struct {
	wiz      *wizard.Wizard
	tickets  *gateway.TicketGateway
	accounts *gateway.Gateway[models.Account]
	notifier Notifier
	repo     wizard.Repository
	log      logger.Logger
	now      func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		tickets:  d.Tickets,
		accounts: d.Accounts,
		notifier: d.Notifier,
		repo:     d.Repository,
		log:      d.Logger,
		now:      d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logger.NewNoOpLogger()
	}
	s.log = s.log.WithFields(map[string]interface{}{"wizard": WizardName})

	wiz, err := wizard.New(WizardName,
		wizard.Step{
			Name:            "TicketSelect",
			NotReadyMessage: TicketRequiredMessage,
			Guard:           requireSelection(SelectedTicket, TicketRequiredMessage),
			Effect:          s.openingAccount,
		},
		wizard.Step{
			Name:            "AccountForm",
			NotReadyMessage: AccountRequiredMessage,
			Guard:           requireSelection(SelectedAccount, AccountRequiredMessage),
		},
		wizard.Step{Name: "DocumentBackup"},
		wizard.Step{
			Name:   "ApplicationForm",
			Effect: s.accountOpened,
		},
		wizard.Step{Name: "Final"},
	)
	if err != nil {
		panic(err) // static step list
	}
	s.wiz = wiz
	return s
}

func (s *Service) Wizard() *wizard.Wizard { return s.wiz }

func requireSelection(key, message string) wizard.Guard {
	return func(_ context.Context, st wizard.State) error {
		if st.Selection(key) == "" {
			return &wizard.PreconditionError{Step: st.Step, Message: message}
		}
		return nil
	}
}

func (s *Service) Start(ctx context.Context, userID, userEmail string) (wizard.State, error) {
	st := s.wiz.Start(uuid.NewString(), s.now())
	st.UserID = userID
	st.UserEmail = userEmail
	if err := s.repo.Save(ctx, &st); err != nil {
		return wizard.State{}, err
	}
	return st, nil
}

func (s *Service) Load(ctx context.Context, id string) (wizard.State, error) {
	return s.repo.Load(ctx, id)
}

// SelectTicket stores the ticket choice. On the ticket step the step is
// reported ready. The choice is fixed once the wizard has started the
// selected ticket, so no ticket is left behind in Started.
func (s *Service) SelectTicket(ctx context.Context, id, ticketID string) (wizard.State, error) {
	st, err := s.repo.Load(ctx, id)
	if err != nil {
		return st, err
	}
	t, err := s.tickets.ReadByID(ctx, ticketID)
	if err != nil {
		return st, err
	}
	if t.Status == models.TicketClosed {
		return st, fmt.Errorf("%w: %s", ErrTicketClosed, ticketID)
	}
	if err := s.checkReselect(ctx, st, ticketID); err != nil {
		return st, err
	}

	st = st.WithSelection(SelectedTicket, ticketID)
	if st.Step == StepTicketSelect {
		st.Readiness = wizard.Ready()
	}
	return s.save(ctx, st)
}

func (s *Service) checkReselect(ctx context.Context, st wizard.State, ticketID string) error {
	cur := st.Selection(SelectedTicket)
	if cur == "" || cur == ticketID {
		return nil
	}
	if st.Step != StepTicketSelect {
		return fmt.Errorf("%w: %s selected at step %d", ErrTicketLocked, cur, st.Step)
	}
	prev, err := s.tickets.ReadByID(ctx, cur)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if prev.Status != models.TicketOpen {
		return fmt.Errorf("%w: %s is %s", ErrTicketLocked, cur, prev.Status)
	}
	return nil
}

// LinkAccount stores the account for the selected ticket. On the account
// step the step is reported ready.
func (s *Service) LinkAccount(ctx context.Context, id, accountID string) (wizard.State, error) {
	st, err := s.repo.Load(ctx, id)
	if err != nil {
		return st, err
	}
	ticketID := st.Selection(SelectedTicket)
	if ticketID == "" {
		return st, ErrNoTicket
	}
	acct, err := s.accounts.ReadByID(ctx, accountID)
	if err != nil {
		return st, err
	}
	if acct.TicketID != "" && acct.TicketID != ticketID {
		return st, fmt.Errorf("%w: account %s, ticket %s", ErrAccountMismatch, accountID, ticketID)
	}

	st = st.WithSelection(SelectedAccount, accountID)
	if st.Step == StepAccountForm {
		st.Readiness = wizard.Ready()
	}
	return s.save(ctx, st)
}

func (s *Service) Report(ctx context.Context, id string, step int, r wizard.Readiness) (wizard.State, error) {
	st, err := s.repo.Load(ctx, id)
	if err != nil {
		return st, err
	}
	next, err := s.wiz.Report(st, step, r)
	if err != nil {
		return st, err
	}
	return s.save(ctx, next)
}

// Forward advances the persisted state. Nothing is saved when the
// transition is blocked or its effect fails.
func (s *Service) Forward(ctx context.Context, id string) (wizard.State, error) {
	st, err := s.repo.Load(ctx, id)
	if err != nil {
		return st, err
	}
	next, err := s.wiz.Forward(ctx, st)
	if err != nil {
		return st, err
	}
	return s.save(ctx, next)
}

func (s *Service) Backward(ctx context.Context, id string) (wizard.State, error) {
	st, err := s.repo.Load(ctx, id)
	if err != nil {
		return st, err
	}
	return s.save(ctx, s.wiz.Backward(st))
}

func (s *Service) save(ctx context.Context, st wizard.State) (wizard.State, error) {
	st.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, &st); err != nil {
		return st, err
	}
	return st, nil
}
