package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	chttp "brokerage-portal/internal/common/http"
)

// RemoteStore speaks the portal data API: POST {base}/{verb}/{collection}
// with a {status, content} response envelope.
type RemoteStore struct {
	baseURL string
	token   string
	http    *chttp.Client
}

type envelope struct {
	Status  string          `json:"status"`
	Content json.RawMessage `json:"content"`
}

type remoteFault struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewRemoteStore(baseURL, token string, client *chttp.Client) *RemoteStore {
	return &RemoteStore{baseURL: strings.TrimSuffix(baseURL, "/"), token: token, http: client}
}

func (s *RemoteStore) call(ctx context.Context, verb, collection string, body interface{}) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", s.baseURL, verb, collection)
	headers := map[string]string{}
	if s.token != "" {
		headers["Authorization"] = "Bearer " + s.token
	}

	var env envelope
	if _, err := s.http.DoJSON(ctx, http.MethodPost, endpoint, headers, body, &env); err != nil {
		var se *chttp.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			switch se.StatusCode {
			case http.StatusNotFound:
				return nil, fmt.Errorf("%w: %s %s", ErrNotFound, verb, collection)
			case http.StatusConflict, http.StatusPreconditionFailed:
				return nil, fmt.Errorf("%w: %s %s", ErrConflict, verb, collection)
			}
			return nil, fmt.Errorf("%w: %s %s: %v", ErrRejected, verb, collection, err)
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, verb, collection, err)
	}

	if env.Status != "success" {
		var fault remoteFault
		_ = json.Unmarshal(env.Content, &fault)
		switch {
		case strings.EqualFold(fault.Code, "not_found"):
			return nil, fmt.Errorf("%w: %s %s: %s", ErrNotFound, verb, collection, fault.Message)
		case strings.EqualFold(fault.Code, "conflict"):
			return nil, fmt.Errorf("%w: %s %s: %s", ErrConflict, verb, collection, fault.Message)
		}
		return nil, fmt.Errorf("%w: %s %s: %s", ErrRejected, verb, collection, faultText(fault, env.Content))
	}
	return env.Content, nil
}

func faultText(f remoteFault, raw json.RawMessage) string {
	if f.Message != "" {
		return f.Message
	}
	return string(raw)
}

func (s *RemoteStore) Read(ctx context.Context, collection string, filter Filter) ([]json.RawMessage, error) {
	if filter == nil {
		filter = Filter{}
	}
	content, err := s.call(ctx, "read", collection, map[string]interface{}{"filter": filter})
	if err != nil {
		return nil, err
	}
	var docs []json.RawMessage
	if len(content) > 0 && string(content) != "null" {
		if err := json.Unmarshal(content, &docs); err != nil {
			return nil, fmt.Errorf("%w: read %s: content is not a list: %v", ErrRejected, collection, err)
		}
	}
	return docs, nil
}

func (s *RemoteStore) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: encode document: %v", ErrRejected, err)
	}
	id, err := documentID(raw)
	if err != nil {
		return "", err
	}

	content, err := s.call(ctx, "create", collection, map[string]json.RawMessage{"document": raw})
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if len(content) > 0 && json.Unmarshal(content, &created) == nil && created.ID != "" {
		return created.ID, nil
	}
	return id, nil
}

func (s *RemoteStore) Update(ctx context.Context, collection, id string, partial interface{}) error {
	_, err := s.call(ctx, "update", collection, map[string]interface{}{"id": id, "changes": partial})
	return err
}

// UpdateIf sends the expected state as "match"; the data API answers a
// mismatch with 409 or a "conflict" fault.
func (s *RemoteStore) UpdateIf(ctx context.Context, collection, id string, match Filter, partial interface{}) error {
	_, err := s.call(ctx, "update", collection, map[string]interface{}{"id": id, "match": match, "changes": partial})
	return err
}
