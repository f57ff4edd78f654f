// internal/workers/data-access/query-entities/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/store"
)

var (
	ErrMissingParam      = errors.New("missing required parameter")
	ErrUnknownQueryType  = errors.New("unknown query type")
	ErrUnknownCollection = errors.New("unknown collection")
)

type QueryType string

const (
	QueryCollection            QueryType = "collection"
	QueryTicket                QueryType = "ticket"
	QueryTicketsByAdvisor      QueryType = "tickets-by-advisor"
	QueryTicketsByStatus       QueryType = "tickets-by-status"
	QueryOpenLeads             QueryType = "open-leads"
	QueryAccountsByTicket      QueryType = "accounts-by-ticket"
	QueryRiskProfilesByOwner   QueryType = "risk-profiles-by-owner"
	QueryNotificationsByTicket QueryType = "notifications-by-ticket"
)

// QueryFunc returns: documents, count, execution time (ms), error
type QueryFunc func(ctx context.Context, s store.Store, params map[string]interface{}) ([]json.RawMessage, int, int64, error)

var Registry = map[QueryType]QueryFunc{
	QueryCollection:            Collection,
	QueryTicket:                byParam(store.Tickets, "ticketId", "id", nil),
	QueryTicketsByAdvisor:      byParam(store.Tickets, "advisorId", "advisorId", nil),
	QueryTicketsByStatus:       byParam(store.Tickets, "status", "status", nil),
	QueryOpenLeads:             byParam(store.Leads, "advisorId", "advisorId", store.Filter{"status": string(models.LeadOpen)}),
	QueryAccountsByTicket:      byParam(store.Accounts, "ticketId", "ticketId", nil),
	QueryRiskProfilesByOwner:   byParam(store.RiskProfiles, "ownerId", "ownerId", nil),
	QueryNotificationsByTicket: byParam(store.Notifications, "ticketId", "ticketId", nil),
}

func Execute(ctx context.Context, s store.Store, queryType QueryType, params map[string]interface{}) ([]json.RawMessage, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, s, params)
}

// IsKnownCollection reports whether path is one of the store's collections.
func IsKnownCollection(path string) bool {
	for _, c := range store.KnownCollections {
		if c == path {
			return true
		}
	}
	return false
}

// Collection reads any known collection with a caller-supplied filter.
func Collection(ctx context.Context, s store.Store, params map[string]interface{}) ([]json.RawMessage, int, int64, error) {
	collection, _ := params["collection"].(string)
	if collection == "" {
		return nil, 0, 0, fmt.Errorf("%w: collection", ErrMissingParam)
	}
	if !IsKnownCollection(collection) {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	filter := store.Filter{}
	if f, ok := params["filters"].(map[string]interface{}); ok {
		for k, v := range f {
			filter[k] = v
		}
	}
	return read(ctx, s, collection, filter)
}

// byParam builds a query matching field against the named parameter.
func byParam(collection, param, field string, fixed store.Filter) QueryFunc {
	return func(ctx context.Context, s store.Store, params map[string]interface{}) ([]json.RawMessage, int, int64, error) {
		value, _ := params[param].(string)
		if value == "" {
			return nil, 0, 0, fmt.Errorf("%w: %s", ErrMissingParam, param)
		}
		filter := store.Filter{field: value}
		for k, v := range fixed {
			filter[k] = v
		}
		return read(ctx, s, collection, filter)
	}
}

func read(ctx context.Context, s store.Store, collection string, filter store.Filter) ([]json.RawMessage, int, int64, error) {
	start := time.Now()
	docs, err := s.Read(ctx, collection, filter)
	if err != nil {
		return nil, 0, 0, err
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	return docs, len(docs), time.Since(start).Milliseconds(), nil
}
