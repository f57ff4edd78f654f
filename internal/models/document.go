// internal/models/document.go
package models

import "time"

type DocumentType string

const (
	DocumentPOA DocumentType = "POA"
	DocumentPOI DocumentType = "POI"
	DocumentSOW DocumentType = "SOW"
)

// DocumentPayload is the transport-safe file body.
type DocumentPayload struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type Document struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       DocumentType      `json:"type"`
	IssuedDate string            `json:"issuedDate,omitempty"`
	Checksum   string            `json:"checksum,omitempty"`
	Metadata   map[string]string `json:"metadata"`
	Payload    *DocumentPayload  `json:"payload,omitempty"`
	StorageRef string            `json:"storageRef,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Bucket groups an owner's documents of one type.
type Bucket struct {
	ID        string       `json:"id"`
	Type      DocumentType `json:"type"`
	Category  string       `json:"category"`
	Documents []Document   `json:"documents"`
}

// DocumentRecord is the stored per-owner document set, keyed by bucket ID.
type DocumentRecord struct {
	ID        string                `json:"id"`
	OwnerID   string                `json:"ownerId"`
	Buckets   map[string][]Document `json:"buckets"`
	// Version increases with every write and guards concurrent appends.
	Version   int64                 `json:"version"`
	UpdatedAt time.Time             `json:"updatedAt"`
}
