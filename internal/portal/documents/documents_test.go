package documents

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func newService(files FileStore, maxSize int64) *Service {
	gw := gateway.NewGateways(store.NewMemoryStore(), nil, func() time.Time { return now })
	return NewService(config.DocumentsConfig{MaxUploadSize: maxSize}, gw.Documents, files, func() time.Time { return now })
}

func counts(t *testing.T, svc *Service, owner string) map[string]int {
	t.Helper()
	buckets, err := svc.ReadDocuments(context.Background(), owner)
	require.NoError(t, err)
	out := map[string]int{}
	for _, b := range buckets {
		out[b.ID] = len(b.Documents)
	}
	return out
}

func TestReadDocuments_AllBucketsInOrder(t *testing.T) {
	svc := newService(nil, 0)

	buckets, err := svc.ReadDocuments(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "address", buckets[0].ID)
	assert.Equal(t, models.DocumentPOA, buckets[0].Type)
	assert.Equal(t, "identity", buckets[1].ID)
	assert.Equal(t, "wealth", buckets[2].ID)
	for _, b := range buckets {
		assert.NotNil(t, b.Documents)
		assert.Empty(t, b.Documents)
	}
}

func TestUpload_OnlyTargetBucketGrows(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil, 0)
	content := []byte("utility bill")

	for _, bucket := range []string{"address", "identity", "address", "wealth"} {
		before := counts(t, svc, "owner-1")

		doc, err := svc.Upload(ctx, "owner-1", bucket, File{Name: "scan.pdf", MimeType: "application/pdf", Content: content}, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, doc.ID)

		after := counts(t, svc, "owner-1")
		for id, n := range before {
			if id == bucket {
				assert.Equal(t, n+1, after[id], id)
			} else {
				assert.Equal(t, n, after[id], id)
			}
		}
	}
}

func TestUpload_ConcurrentUploadsAllKept(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil, 0)

	const uploads = 6
	errs := make(chan error, uploads)
	var wg sync.WaitGroup
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Upload(ctx, "owner-1", "identity", File{Name: fmt.Sprintf("passport-%d.png", i), Content: []byte("scan")}, nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, uploads, counts(t, svc, "owner-1")["identity"])
	rec, err := svc.records.ReadByID(ctx, "owner-1")
	require.NoError(t, err)
	assert.EqualValues(t, uploads, rec.Version)
}

func TestUpload_UnversionedRecord(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil, 0)
	_, err := svc.records.Create(ctx, &models.DocumentRecord{
		ID:      "owner-1",
		OwnerID: "owner-1",
		Buckets: map[string][]models.Document{"wealth": {{ID: "d-0", Name: "payslip.pdf"}}},
	})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, "owner-1", "wealth", File{Name: "payslip-2.pdf", Content: []byte("x")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, counts(t, svc, "owner-1")["wealth"])

	rec, err := svc.records.ReadByID(ctx, "owner-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rec.Version)
}

func TestUpload_Envelope(t *testing.T) {
	svc := newService(nil, 0)
	content := []byte("hello")

	doc, err := svc.Upload(context.Background(), "owner-1", "address", File{Name: "bill.pdf", MimeType: "application/pdf", IssuedDate: "2025-12-01", Content: content}, map[string]string{"source": "portal"})
	require.NoError(t, err)

	assert.Equal(t, models.DocumentPOA, doc.Type)
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", doc.Checksum)
	require.NotNil(t, doc.Payload)
	assert.Equal(t, base64.StdEncoding.EncodeToString(content), doc.Payload.Data)
	assert.Equal(t, "application/pdf", doc.Payload.MimeType)
	assert.Equal(t, "portal", doc.Metadata["source"])
	assert.Equal(t, "Proof of Address", doc.Metadata["category"])
	assert.Equal(t, now, doc.CreatedAt)

	id, err := svc.Upload(context.Background(), "owner-1", "identity", File{Name: "passport.jpg", Content: content}, nil)
	require.NoError(t, err)
	assert.Empty(t, id.Checksum, "identity bucket has no checksum")
}

func TestUpload_Rejections(t *testing.T) {
	svc := newService(nil, 4)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "o", "selfie", File{Name: "a", Content: []byte("x")}, nil)
	assert.ErrorIs(t, err, ErrUnknownBucket)

	_, err = svc.Upload(ctx, "o", "address", File{Name: "a"}, nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.Upload(ctx, "o", "address", File{Content: []byte("x")}, nil)
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = svc.Upload(ctx, "o", "address", File{Name: "a", Content: []byte("too big")}, nil)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Equal(t, map[string]int{"address": 0, "identity": 0, "wealth": 0}, counts(t, svc, "o"))
}

type fakeFiles struct {
	folder string
	err    error
}

func (f *fakeFiles) Put(ctx context.Context, folder, name, contentType string, content []byte, metadata map[string]string) (string, error) {
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	return "s3://docs/" + folder + "/" + name, nil
}

func TestUpload_MirrorsToFileStore(t *testing.T) {
	files := &fakeFiles{}
	svc := newService(files, 0)

	doc, err := svc.Upload(context.Background(), "owner-1", "wealth", File{Name: "statement.pdf", MimeType: "application/pdf", Content: []byte("x")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "owner-1/wealth", files.folder)
	assert.Contains(t, doc.StorageRef, "s3://docs/owner-1/wealth/")
	assert.Empty(t, doc.Payload.Data)
}

func TestUpload_FileStoreFailureLeavesRecord(t *testing.T) {
	svc := newService(&fakeFiles{err: errors.New("access denied")}, 0)

	_, err := svc.Upload(context.Background(), "owner-1", "wealth", File{Name: "s.pdf", Content: []byte("x")}, nil)
	assert.ErrorIs(t, err, ErrFileStorage)
	assert.Equal(t, 0, counts(t, svc, "owner-1")["wealth"])
}
