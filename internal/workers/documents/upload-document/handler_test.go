package uploaddocument

import (
	"context"
	"encoding/base64"
	"testing"

	"brokerage-portal/internal/common/config"
	stderrors "brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/documents"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Uploader
// ==========================

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, ownerID, bucketID string, f documents.File, metadata map[string]string) (*models.Document, error) {
	args := m.Called(ctx, ownerID, bucketID, f, metadata)
	if doc := args.Get(0); doc != nil {
		return doc.(*models.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func encoded(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestExecute_StoresInBucket(t *testing.T) {
	mem := store.NewMemoryStore()
	gw := gateway.NewGateways(mem, nil, nil)
	svc := documents.NewService(config.DocumentsConfig{MaxUploadSize: 1 << 20}, gw.Documents, nil, nil)
	h := NewHandler(&config.Config{}, svc, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		OwnerID:  "t-1",
		BucketID: "address",
		Name:     "utility-bill.pdf",
		MimeType: "application/pdf",
		Content:  encoded("hello"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.DocumentID)
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", out.Checksum)
	assert.Nil(t, out.Document.Payload)

	buckets, err := svc.ReadDocuments(context.Background(), "t-1")
	require.NoError(t, err)
	for _, b := range buckets {
		if b.ID == "address" {
			require.Len(t, b.Documents, 1)
			assert.Equal(t, "utility-bill.pdf", b.Documents[0].Name)
		}
	}
}

func TestExecute_BadBase64(t *testing.T) {
	uploader := new(MockUploader)
	h := NewHandler(&config.Config{}, uploader, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{OwnerID: "t-1", BucketID: "address", Name: "x", Content: "%%%"})
	std := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeDocumentRejected, std.Code)
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_UnknownBucket(t *testing.T) {
	uploader := new(MockUploader)
	uploader.On("Upload", mock.Anything, "t-1", "tax", mock.Anything, mock.Anything).
		Return(nil, documents.ErrUnknownBucket)
	h := NewHandler(&config.Config{}, uploader, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{OwnerID: "t-1", BucketID: "tax", Name: "x", Content: encoded("x")})
	require.ErrorIs(t, err, documents.ErrUnknownBucket)

	std := stderrors.Normalize(faults.ToStandard(err))
	assert.Equal(t, stderrors.ErrCodeUnknownBucket, std.Code)
	uploader.AssertExpectations(t)
}
