// Package store is the generic document contract every entity gateway
// funnels through. Documents are JSON objects addressed by collection path
// and an "id" field.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/common/metrics"
)

// Collection paths.
const (
	Tickets       = "db/clients/tickets"
	Accounts      = "db/clients/accounts"
	Advisors      = "db/advisors"
	Leads         = "db/clients/leads"
	Contacts      = "db/clients/contacts"
	RiskProfiles  = "db/clients/riskProfiles"
	Documents     = "db/clients/documents"
	Notifications = "db/notifications"
	NAVReports    = "db/reports/nav"
)

// KnownCollections lists every path accepted by the query worker.
var KnownCollections = []string{
	Tickets, Accounts, Advisors, Leads, Contacts, RiskProfiles, Documents, Notifications, NAVReports,
}

var (
	ErrNotFound    = errors.New("document not found")
	ErrUnavailable = errors.New("document store unavailable")
	ErrRejected    = errors.New("document store rejected the request")
	// ErrConflict means the stored document no longer matched the expected
	// state of a conditional update.
	ErrConflict = errors.New("document changed concurrently")
)

// Filter matches documents containing every key/value pair.
type Filter map[string]interface{}

type Store interface {
	Read(ctx context.Context, collection string, filter Filter) ([]json.RawMessage, error)
	// Create stores doc, which must marshal to an object with a non-empty
	// "id", and returns that id.
	Create(ctx context.Context, collection string, doc interface{}) (string, error)
	// Update merges partial's top-level keys into the stored document.
	Update(ctx context.Context, collection, id string, partial interface{}) error
	// UpdateIf applies partial only while the stored document contains
	// match, and returns ErrConflict otherwise. The check and the write are
	// one atomic step.
	UpdateIf(ctx context.Context, collection, id string, match Filter, partial interface{}) error
}

// documentID extracts the "id" member of an encoded document.
func documentID(raw []byte) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("%w: document is not a JSON object: %v", ErrRejected, err)
	}
	if probe.ID == "" {
		return "", fmt.Errorf("%w: document has no id", ErrRejected)
	}
	return probe.ID, nil
}

// Instrument records per-call latency for s under backend.
func Instrument(backend string, s Store) Store {
	return &instrumented{backend: backend, next: s}
}

type instrumented struct {
	backend string
	next    Store
}

func (i *instrumented) observe(verb, collection string, start time.Time) {
	metrics.StoreRequestDuration.WithLabelValues(i.backend, verb, collection).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Read(ctx context.Context, collection string, filter Filter) ([]json.RawMessage, error) {
	defer i.observe("read", collection, time.Now())
	return i.next.Read(ctx, collection, filter)
}

func (i *instrumented) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	defer i.observe("create", collection, time.Now())
	return i.next.Create(ctx, collection, doc)
}

func (i *instrumented) Update(ctx context.Context, collection, id string, partial interface{}) error {
	defer i.observe("update", collection, time.Now())
	return i.next.Update(ctx, collection, id, partial)
}

func (i *instrumented) UpdateIf(ctx context.Context, collection, id string, match Filter, partial interface{}) error {
	defer i.observe("update", collection, time.Now())
	return i.next.UpdateIf(ctx, collection, id, match, partial)
}
