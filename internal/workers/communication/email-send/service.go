package emailsend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/common/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const provider = "SES"

// Sender is the SES call the service makes. aws.SESClient satisfies it.
type Sender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type Service struct {
	config *Config
	sender Sender
	logger logger.Logger
	now    func() time.Time
}

func NewService(config *Config, sender Sender, log logger.Logger) *Service {
	return &Service{config: config, sender: sender, logger: log, now: time.Now}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	from := input.From
	if from == "" {
		from = s.config.DefaultFrom
	}

	to, err := addressList("to", input.To)
	if err != nil {
		return nil, err
	}
	cc, err := addressList("cc", input.CC)
	if err != nil {
		return nil, err
	}
	bcc, err := addressList("bcc", input.BCC)
	if err != nil {
		return nil, err
	}
	if !validation.ValidateEmail(from) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid 'from' email address: %s", from))
	}

	body := &types.Body{}
	if input.IsHTML {
		body.Html = &types.Content{Data: aws.String(input.Body), Charset: aws.String("UTF-8")}
	} else {
		body.Text = &types.Content{Data: aws.String(input.Body), Charset: aws.String("UTF-8")}
	}
	req := &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: to, CcAddresses: cc, BccAddresses: bcc},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(input.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	if input.ReplyTo != "" {
		if !validation.ValidateEmail(input.ReplyTo) {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid 'replyTo' email address: %s", input.ReplyTo))
		}
		req.ReplyToAddresses = []string{input.ReplyTo}
	}

	out, err := s.sender.SendEmail(ctx, req)
	if err != nil {
		return nil, errors.NewEmailSendFailedError(err)
	}
	messageID := aws.ToString(out.MessageId)

	s.logger.Info("email sent", map[string]interface{}{
		"to":        to,
		"messageId": messageID,
	})
	return &Output{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: messageID,
		Provider:  provider,
		SentAt:    s.now().UTC(),
	}, nil
}

func addressList(field, raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		addr = strings.TrimSpace(addr)
		if !validation.ValidateEmail(addr) {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid '%s' email address: %s", field, addr))
		}
		out = append(out, addr)
	}
	return out, nil
}
