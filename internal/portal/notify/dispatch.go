package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"brokerage-portal/internal/models"
)

type EmailSender interface {
	SendPlainText(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type DispatchConfig struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AdvisorDesk  []string
	AlertNumber  string
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New("subject").Parse(subject)),
		body:    template.Must(template.New("body").Parse(body)),
	}
}

var templates = map[models.NotificationType]messageTemplate{
	models.NotificationOpeningAccount: mustTemplate(
		"Account opening started for ticket {{.TicketID}}",
		"{{.UserEmail}} started the account opening for ticket {{.TicketID}}.\nTicket status: {{.TicketStatus}}\n",
	),
	models.NotificationAccountOpened: mustTemplate(
		"Account opened for ticket {{.TicketID}}",
		"{{.UserEmail}} completed the application for ticket {{.TicketID}}.\nTicket status: {{.TicketStatus}}\n",
	),
}

type DispatchResult struct {
	EmailMessageID string   `json:"emailMessageId,omitempty"`
	SMSMessageID   string   `json:"smsMessageId,omitempty"`
	Channels       []string `json:"channels"`
}

// Dispatcher renders a notification and sends it to the advisor desk.
// SMS goes out only for account_opened.
type Dispatcher struct {
	email EmailSender
	sms   SMSSender
	cfg   DispatchConfig
}

func NewDispatcher(email EmailSender, sms SMSSender, cfg DispatchConfig) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, cfg: cfg}
}

func render(t *template.Template, n models.Notification) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Dispatch sends n to the desk plus extra recipients. An empty channel list
// in the result means every channel was disabled.
func (d *Dispatcher) Dispatch(ctx context.Context, n models.Notification, extra []string) (*DispatchResult, error) {
	tmpl, ok := templates[n.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, n.Type)
	}
	subject, err := render(tmpl.subject, n)
	if err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	body, err := render(tmpl.body, n)
	if err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	res := &DispatchResult{Channels: []string{}}

	recipients := append(append([]string(nil), d.cfg.AdvisorDesk...), extra...)
	if d.cfg.EmailEnabled && d.email != nil && len(recipients) > 0 {
		id, err := d.email.SendPlainText(ctx, d.cfg.FromEmail, recipients, subject, body)
		if err != nil {
			return nil, fmt.Errorf("email %s notification: %w", n.Type, err)
		}
		res.EmailMessageID = id
		res.Channels = append(res.Channels, "email")
	}

	if n.Type == models.NotificationAccountOpened && d.cfg.SMSEnabled && d.sms != nil && d.cfg.AlertNumber != "" {
		id, err := d.sms.SendSMS(ctx, d.cfg.AlertNumber, subject)
		if err != nil {
			return nil, fmt.Errorf("sms %s notification: %w", n.Type, err)
		}
		res.SMSMessageID = id
		res.Channels = append(res.Channels, "sms")
	}
	return res, nil
}
