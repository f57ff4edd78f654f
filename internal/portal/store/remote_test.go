package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chttp "brokerage-portal/internal/common/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T, h http.HandlerFunc) *RemoteStore {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRemoteStore(srv.URL+"/", "secret", chttp.NewClient(5*time.Second))
}

func TestRemoteStore_Read(t *testing.T) {
	s := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/read/db/clients/tickets", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "adv-1", body["filter"]["advisorId"])

		w.Write([]byte(`{"status":"success","content":[{"id":"t-1"},{"id":"t-2"}]}`))
	})

	docs, err := s.Read(context.Background(), Tickets, Filter{"advisorId": "adv-1"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestRemoteStore_Create(t *testing.T) {
	s := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/create/db/notifications", r.URL.Path)
		w.Write([]byte(`{"status":"success","content":{"id":"n-1"}}`))
	})

	id, err := s.Create(context.Background(), Notifications, map[string]string{"id": "n-1", "type": "account_opened"})
	require.NoError(t, err)
	assert.Equal(t, "n-1", id)
}

func TestRemoteStore_Update_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"not found", `{"code":"NOT_FOUND","message":"no such ticket"}`, ErrNotFound},
		{"rejected", `{"code":"INVALID","message":"bad field"}`, ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"error","content":` + tt.content + `}`))
			})
			err := s.Update(context.Background(), Tickets, "t-1", map[string]string{"status": "Started"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRemoteStore_ServerError(t *testing.T) {
	s := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := s.Read(context.Background(), Accounts, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRemoteStore_UpdateIf(t *testing.T) {
	s := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/update/db/clients/tickets", r.URL.Path)
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `{"status":"Open"}`, string(body["match"]))
		w.Write([]byte(`{"status":"success","content":null}`))
	})

	err := s.UpdateIf(context.Background(), Tickets, "t-1", Filter{"status": "Open"}, map[string]string{"status": "Started"})
	assert.NoError(t, err)
}

func TestRemoteStore_UpdateIf_Conflict(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"status 409", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}},
		{"conflict fault", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"error","content":{"code":"CONFLICT","message":"status changed"}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRemote(t, tt.h)
			err := s.UpdateIf(context.Background(), Tickets, "t-1", Filter{"status": "Open"}, map[string]string{"status": "Started"})
			assert.ErrorIs(t, err, ErrConflict)
		})
	}
}
