package aws

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct{ mock.Mock }

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

type mockSES struct{ mock.Mock }

func (m *mockSES) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ses.SendEmailOutput)
	return out, args.Error(1)
}

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestS3Client_Put(t *testing.T) {
	api := &mockS3{}
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "portal-documents" &&
			aws.ToString(in.Key) == "uploads/t-1/poa.pdf" &&
			aws.ToString(in.ContentType) == "application/pdf" &&
			string(body) == "%PDF" &&
			in.Metadata["checksum"] == "abc"
	})).Return(&s3.PutObjectOutput{}, nil)

	c := NewS3ClientFrom(api, "portal-documents", "uploads")
	ref, err := c.Put(context.Background(), "t-1", "poa.pdf", "application/pdf", []byte("%PDF"), map[string]string{"checksum": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "s3://portal-documents/uploads/t-1/poa.pdf", ref)
	api.AssertExpectations(t)
}

func TestS3Client_PutError(t *testing.T) {
	api := &mockS3{}
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := NewS3ClientFrom(api, "b", "").Put(context.Background(), "t-1", "x.png", "image/png", nil, nil)
	assert.ErrorContains(t, err, "s3 put t-1/x.png")
}

func TestSESClient_SendPlainText(t *testing.T) {
	api := &mockSES{}
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "noreply@broker.example" &&
			len(in.Destination.ToAddresses) == 1 &&
			aws.ToString(in.Message.Subject.Data) == "Account opened" &&
			aws.ToString(in.Message.Body.Text.Data) == "Welcome"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil)

	id, err := NewSESClientFrom(api).SendPlainText(context.Background(), "noreply@broker.example", []string{"ada@example.com"}, "Account opened", "Welcome")
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
}

func TestSNSClient_SendSMS(t *testing.T) {
	api := &mockSNS{}
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+3161234" && aws.ToString(in.Message) == "code 1234"
	})).Return(&sns.PublishOutput{MessageId: aws.String("sns-1")}, nil)

	id, err := NewSNSClientFrom(api).SendSMS(context.Background(), "+3161234", "code 1234")
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)

	failing := &mockSNS{}
	failing.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
	_, err = NewSNSClientFrom(failing).SendSMS(context.Background(), "+1", "x")
	assert.EqualError(t, err, "throttled")
}
