package emailsend

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	stderrors "brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Sender Implementation
// ==========================

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

// ==========================
// Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:           key,
		Type:          TaskType,
		CustomHeaders: "{}",
		Worker:        "test-worker",
		Retries:       3,
		Variables:     string(variablesJSON),
	}}
}

func createValidInput() *Input {
	return &Input{
		To:      "advisor@portal.example",
		Subject: "Account opened",
		Body:    "Ticket t-1 is now Opened.",
	}
}

func newService(sender Sender) *Service {
	s := NewService(DefaultConfig(), sender, logger.NewNoOpLogger())
	s.now = func() time.Time { return time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC) }
	return s
}

// ==========================
// Tests
// ==========================

func TestService_SendsPlainText(t *testing.T) {
	sender := new(MockSender)
	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "noreply@example.com" &&
			in.Message.Body.Text != nil && in.Message.Body.Html == nil &&
			len(in.Destination.ToAddresses) == 1
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil)

	out, err := newService(sender).Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "m-1", out.MessageID)
	assert.Equal(t, provider, out.Provider)
	sender.AssertExpectations(t)
}

func TestService_HTMLWithCopies(t *testing.T) {
	sender := new(MockSender)
	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return in.Message.Body.Html != nil &&
			assert.ObjectsAreEqual([]string{"a@portal.example", "b@portal.example"}, in.Destination.CcAddresses) &&
			assert.ObjectsAreEqual([]string{"desk@portal.example"}, in.ReplyToAddresses)
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("m-2")}, nil)

	in := createValidInput()
	in.IsHTML = true
	in.CC = "a@portal.example, b@portal.example"
	in.ReplyTo = "desk@portal.example"
	_, err := newService(sender).Execute(context.Background(), in)
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestService_InvalidAddresses(t *testing.T) {
	sender := new(MockSender)
	svc := newService(sender)

	for name, mutate := range map[string]func(*Input){
		"to":      func(in *Input) { in.To = "not-an-address" },
		"bcc":     func(in *Input) { in.BCC = "ok@portal.example,broken" },
		"from":    func(in *Input) { in.From = "nobody" },
		"replyTo": func(in *Input) { in.ReplyTo = "@" },
	} {
		t.Run(name, func(t *testing.T) {
			in := createValidInput()
			mutate(in)
			_, err := svc.Execute(context.Background(), in)
			assert.Equal(t, stderrors.ErrCodeValidationFailed, stderrors.Normalize(err).Code)
		})
	}
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestService_SESFailure(t *testing.T) {
	sender := new(MockSender)
	sender.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("MessageRejected"))

	_, err := newService(sender).Execute(context.Background(), createValidInput())
	std := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeEmailSendFailed, std.Code)
	assert.True(t, std.Retryable)
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	app := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, MaxJobsActive: 2, Timeout: 5000},
	}}
	app.Integrations.AWS.SES.Enabled = true
	app.Integrations.AWS.SES.FromEmail = "portal@portal.example"

	cfg := createConfigFromAppConfig(app)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2, cfg.MaxJobsActive)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "portal@portal.example", cfg.DefaultFrom)
	assert.NoError(t, cfg.Validate())

	app.Integrations.AWS.SES.Enabled = false
	assert.False(t, createConfigFromAppConfig(app).Enabled)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DefaultFrom = ""
	assert.Error(t, cfg.Validate())
}

func TestParseInput(t *testing.T) {
	job := createMockJob(1, map[string]interface{}{
		"to":      "a@portal.example,b@portal.example",
		"subject": "Hi",
		"body":    "<p>Hi</p>",
		"isHtml":  true,
	})
	vars, err := job.GetVariablesAsMap()
	require.NoError(t, err)

	var in Input
	require.NoError(t, camunda.DecodeVariables(vars, GetInputSchema(), &in))
	assert.True(t, in.IsHTML)

	missing := createMockJob(2, map[string]interface{}{"to": "a@portal.example"})
	vars, err = missing.GetVariablesAsMap()
	require.NoError(t, err)
	assert.Error(t, camunda.DecodeVariables(vars, GetInputSchema(), &in))
}
