// Package documents files uploaded client documents into the configured
// buckets of an owner's document record.
package documents

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/metrics"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/store"

	"github.com/google/uuid"
)

var (
	ErrUnknownBucket = errors.New("unknown document bucket")
	ErrEmptyFile     = errors.New("document file is empty")
	ErrFileTooLarge  = errors.New("document file exceeds the upload limit")
	ErrMissingName   = errors.New("document name is required")
	ErrFileStorage   = errors.New("file storage upload failed")
)

// FileStore keeps the raw bytes outside the document record. aws.S3Client
// satisfies it.
type FileStore interface {
	Put(ctx context.Context, folder, name, contentType string, content []byte, metadata map[string]string) (string, error)
}

type File struct {
	Name       string
	MimeType   string
	IssuedDate string
	Content    []byte
}

type Service struct {
	buckets []config.BucketConfig
	records *gateway.Gateway[models.DocumentRecord]
	files   FileStore
	maxSize int64
	now     func() time.Time
}

// NewService wires the bucket list. files may be nil, in which case the
// payload stays inline in the record.
func NewService(cfg config.DocumentsConfig, records *gateway.Gateway[models.DocumentRecord], files FileStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = config.DefaultBuckets
	}
	return &Service{buckets: buckets, records: records, files: files, maxSize: cfg.MaxUploadSize, now: now}
}

func (s *Service) bucket(id string) (config.BucketConfig, bool) {
	for _, b := range s.buckets {
		if b.ID == id {
			return b, true
		}
	}
	return config.BucketConfig{}, false
}

func (s *Service) load(ctx context.Context, ownerID string) (*models.DocumentRecord, error) {
	rec, err := s.records.ReadByID(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// ReadDocuments returns every configured bucket in configuration order,
// empty ones included.
func (s *Service) ReadDocuments(ctx context.Context, ownerID string) ([]models.Bucket, error) {
	rec, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Bucket, 0, len(s.buckets))
	for _, b := range s.buckets {
		docs := []models.Document{}
		if rec != nil {
			docs = append(docs, rec.Buckets[b.ID]...)
		}
		out = append(out, models.Bucket{
			ID:        b.ID,
			Type:      models.DocumentType(b.Type),
			Category:  b.Category,
			Documents: docs,
		})
	}
	return out, nil
}

func checksum(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

// Upload appends one document to bucketID and returns it.
func (s *Service) Upload(ctx context.Context, ownerID, bucketID string, f File, metadata map[string]string) (*models.Document, error) {
	b, ok := s.bucket(bucketID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBucket, bucketID)
	}
	switch {
	case f.Name == "":
		return nil, ErrMissingName
	case len(f.Content) == 0:
		return nil, ErrEmptyFile
	case s.maxSize > 0 && int64(len(f.Content)) > s.maxSize:
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, len(f.Content), s.maxSize)
	}

	now := s.now().UTC()
	meta := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["bucket"] = b.ID
	meta["category"] = b.Category

	doc := models.Document{
		ID:         uuid.NewString(),
		Name:       f.Name,
		Type:       models.DocumentType(b.Type),
		IssuedDate: f.IssuedDate,
		Metadata:   meta,
		Payload: &models.DocumentPayload{
			MimeType: f.MimeType,
			Data:     base64.StdEncoding.EncodeToString(f.Content),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if b.RequiresChecksum {
		doc.Checksum = checksum(f.Content)
	}

	if s.files != nil {
		ref, err := s.files.Put(ctx, ownerID+"/"+b.ID, doc.ID+"-"+f.Name, f.MimeType, f.Content, meta)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFileStorage, err)
		}
		doc.StorageRef = ref
		doc.Payload.Data = ""
	}

	if err := s.appendDocument(ctx, ownerID, b.ID, doc, now); err != nil {
		return nil, err
	}
	metrics.DocumentsUploaded.WithLabelValues(b.ID).Inc()
	return &doc, nil
}

// maxAppendAttempts bounds retries when concurrent uploads for one owner
// keep moving the record version.
const maxAppendAttempts = 8

// appendDocument adds doc to the owner's bucket map. Each write is
// conditional on the version that was read, so concurrent uploads retry
// instead of overwriting each other.
func (s *Service) appendDocument(ctx context.Context, ownerID, bucketID string, doc models.Document, now time.Time) error {
	var err error
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		err = s.tryAppend(ctx, ownerID, bucketID, doc, now)
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("append to %s/%s after %d attempts: %w", ownerID, bucketID, maxAppendAttempts, err)
}

func (s *Service) tryAppend(ctx context.Context, ownerID, bucketID string, doc models.Document, now time.Time) error {
	rec, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	if rec == nil {
		_, err := s.records.Create(ctx, &models.DocumentRecord{
			ID:        ownerID,
			OwnerID:   ownerID,
			Buckets:   map[string][]models.Document{bucketID: {doc}},
			Version:   1,
			UpdatedAt: now,
		})
		if errors.Is(err, store.ErrRejected) {
			// Another upload created the record first; retry as an append.
			if again, lerr := s.load(ctx, ownerID); lerr == nil && again != nil {
				return fmt.Errorf("%w: %s created concurrently", store.ErrConflict, ownerID)
			}
		}
		return err
	}

	buckets := make(map[string][]models.Document, len(rec.Buckets)+1)
	for k, v := range rec.Buckets {
		buckets[k] = v
	}
	buckets[bucketID] = append(append([]models.Document(nil), buckets[bucketID]...), doc)
	changes := map[string]interface{}{
		"buckets":   buckets,
		"version":   rec.Version + 1,
		"updatedAt": now,
	}
	if rec.Version == 0 {
		// Records written before versioning have no version to match.
		return s.records.Update(ctx, rec.ID, changes)
	}
	return s.records.UpdateIf(ctx, rec.ID, store.Filter{"version": rec.Version}, changes)
}
