// internal/workers/application/send-notification/config.go
package sendnotification

import (
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/portal/notify"
)

// DispatchConfigFrom reads the notification channels from the app config.
// SES or SNS being disabled under integrations switches its channel off.
func DispatchConfigFrom(cfg *config.Config) notify.DispatchConfig {
	n := cfg.Notifications
	from := n.Email.FromEmail
	if from == "" {
		from = cfg.Integrations.AWS.SES.FromEmail
	}
	return notify.DispatchConfig{
		EmailEnabled: n.Email.Enabled && cfg.Integrations.AWS.SES.Enabled,
		SMSEnabled:   n.SMS.Enabled && cfg.Integrations.AWS.SNS.Enabled,
		FromEmail:    from,
		AdvisorDesk:  n.Email.AdvisorDesk,
		AlertNumber:  n.SMS.AlertNumber,
	}
}
