package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// MemoryStore is an in-process Store for local runs and tests. Filtering
// follows JSONB containment on top-level keys.
type MemoryStore struct {
	mu    sync.RWMutex
	order map[string][]string
	docs  map[string]map[string]map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		order: map[string][]string{},
		docs:  map[string]map[string]map[string]interface{}{},
	}
}

func toObject(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (m *MemoryStore) Read(_ context.Context, collection string, filter Filter) ([]json.RawMessage, error) {
	want, err := toObject(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: encode filter: %v", ErrRejected, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []json.RawMessage
	for _, id := range m.order[collection] {
		doc := m.docs[collection][id]
		if !contains(doc, want) {
			continue
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (m *MemoryStore) Create(_ context.Context, collection string, doc interface{}) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: encode document: %v", ErrRejected, err)
	}
	id, err := documentID(raw)
	if err != nil {
		return "", err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.docs[collection] == nil {
		m.docs[collection] = map[string]map[string]interface{}{}
	}
	if _, exists := m.docs[collection][id]; exists {
		return "", fmt.Errorf("%w: %s/%s already exists", ErrRejected, collection, id)
	}
	m.docs[collection][id] = obj
	m.order[collection] = append(m.order[collection], id)
	return id, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, partial interface{}) error {
	return m.UpdateIf(ctx, collection, id, nil, partial)
}

func (m *MemoryStore) UpdateIf(_ context.Context, collection, id string, match Filter, partial interface{}) error {
	changes, err := toObject(partial)
	if err != nil {
		return fmt.Errorf("%w: encode update: %v", ErrRejected, err)
	}
	want, err := toObject(match)
	if err != nil {
		return fmt.Errorf("%w: encode match: %v", ErrRejected, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if !contains(doc, want) {
		return fmt.Errorf("%w: %s/%s", ErrConflict, collection, id)
	}
	for k, v := range changes {
		doc[k] = v
	}
	return nil
}

// Count returns the number of documents in collection.
func (m *MemoryStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order[collection])
}

// contains reports JSONB-style containment of want in have.
func contains(have, want interface{}) bool {
	switch w := want.(type) {
	case map[string]interface{}:
		h, ok := have.(map[string]interface{})
		if !ok {
			return false
		}
		for k, wv := range w {
			hv, ok := h[k]
			if !ok || !contains(hv, wv) {
				return false
			}
		}
		return true
	case []interface{}:
		h, ok := have.([]interface{})
		if !ok {
			return false
		}
		for _, wv := range w {
			found := false
			for _, hv := range h {
				if contains(hv, wv) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(have, want)
	}
}
