// Package gateway provides typed read/write access to each portal entity
// on top of a store.Store.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/store"
)

// Gateway is the typed CRUD surface for one collection.
type Gateway[T any] struct {
	store      store.Store
	collection string
}

func New[T any](s store.Store, collection string) *Gateway[T] {
	return &Gateway[T]{store: s, collection: collection}
}

func (g *Gateway[T]) Collection() string { return g.collection }

func (g *Gateway[T]) Read(ctx context.Context, filter store.Filter) ([]T, error) {
	docs, err := g.store.Read(ctx, g.collection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, raw := range docs {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: decode %s document: %v", store.ErrRejected, g.collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadByID returns store.ErrNotFound when no document has the id.
func (g *Gateway[T]) ReadByID(ctx context.Context, id string) (*T, error) {
	items, err := g.Read(ctx, store.Filter{"id": id})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, g.collection, id)
	}
	return &items[0], nil
}

func (g *Gateway[T]) Create(ctx context.Context, doc *T) (string, error) {
	return g.store.Create(ctx, g.collection, doc)
}

func (g *Gateway[T]) Update(ctx context.Context, id string, partial interface{}) error {
	return g.store.Update(ctx, g.collection, id, partial)
}

// UpdateIf writes partial only while the document still contains match.
func (g *Gateway[T]) UpdateIf(ctx context.Context, id string, match store.Filter, partial interface{}) error {
	return g.store.UpdateIf(ctx, g.collection, id, match, partial)
}

// IDGenerator issues strictly increasing timestamp-derived IDs.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UnixMicro()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	return strconv.FormatInt(ts, 10)
}

// Gateways bundles one gateway per entity.
type Gateways struct {
	Tickets       *TicketGateway
	Accounts      *Gateway[models.Account]
	Advisors      *Gateway[models.Advisor]
	Leads         *Gateway[models.Lead]
	Contacts      *Gateway[models.Contact]
	RiskProfiles  *Gateway[models.RiskProfile]
	Documents     *Gateway[models.DocumentRecord]
	Notifications *Gateway[models.Notification]
	NAVReports    *Gateway[models.NAVReport]
}

func NewGateways(s store.Store, ids *IDGenerator, now func() time.Time) *Gateways {
	return &Gateways{
		Tickets:       NewTicketGateway(s, ids, now),
		Accounts:      New[models.Account](s, store.Accounts),
		Advisors:      New[models.Advisor](s, store.Advisors),
		Leads:         New[models.Lead](s, store.Leads),
		Contacts:      New[models.Contact](s, store.Contacts),
		RiskProfiles:  New[models.RiskProfile](s, store.RiskProfiles),
		Documents:     New[models.DocumentRecord](s, store.Documents),
		Notifications: New[models.Notification](s, store.Notifications),
		NAVReports:    New[models.NAVReport](s, store.NAVReports),
	}
}
