package listdocuments

import (
	"context"
	"errors"
	"testing"

	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReader struct {
	mock.Mock
}

func (m *MockReader) ReadDocuments(ctx context.Context, ownerID string) ([]models.Bucket, error) {
	args := m.Called(ctx, ownerID)
	if b := args.Get(0); b != nil {
		return b.([]models.Bucket), args.Error(1)
	}
	return nil, args.Error(1)
}

func sampleBuckets() []models.Bucket {
	return []models.Bucket{
		{ID: "address", Type: models.DocumentPOA, Documents: []models.Document{{
			ID:      "d-1",
			Name:    "bill.pdf",
			Payload: &models.DocumentPayload{MimeType: "application/pdf", Data: "aGVsbG8="},
		}}},
		{ID: "identity", Type: models.DocumentPOI, Documents: []models.Document{}},
		{ID: "wealth", Type: models.DocumentSOW, Documents: []models.Document{}},
	}
}

func TestExecute(t *testing.T) {
	reader := new(MockReader)
	buckets := sampleBuckets()
	reader.On("ReadDocuments", mock.Anything, "t-1").Return(buckets, nil)
	h := NewHandler(&config.Config{}, reader, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{OwnerID: "t-1"})
	require.NoError(t, err)
	assert.Len(t, out.Buckets, 3)
	assert.Equal(t, 1, out.DocumentCount)
	assert.Equal(t, []string{"identity", "wealth"}, out.Missing)
	assert.Nil(t, out.Buckets[0].Documents[0].Payload)
	assert.NotNil(t, buckets[0].Documents[0].Payload, "source buckets are not modified")
}

func TestExecute_IncludePayload(t *testing.T) {
	reader := new(MockReader)
	reader.On("ReadDocuments", mock.Anything, "t-1").Return(sampleBuckets(), nil)
	h := NewHandler(&config.Config{}, reader, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{OwnerID: "t-1", IncludePayload: true})
	require.NoError(t, err)
	assert.NotNil(t, out.Buckets[0].Documents[0].Payload)
}

func TestExecute_ReadError(t *testing.T) {
	reader := new(MockReader)
	reader.On("ReadDocuments", mock.Anything, "t-1").Return(nil, errors.New("boom"))
	h := NewHandler(&config.Config{}, reader, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{OwnerID: "t-1"})
	assert.Error(t, err)
}
