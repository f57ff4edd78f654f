package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	var out map[string]string
	status, err := c.DoJSON(context.Background(), http.MethodPost, srv.URL, map[string]string{"Authorization": "Bearer token"}, map[string]string{"name": "acme"}, &out)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "acme", out["echo"])
}

func TestDoJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("down"))
	}))
	defer srv.Close()

	c := NewClientFrom(srv.Client())
	status, err := c.DoJSON(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)

	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Retryable())
	assert.Equal(t, "down", se.Body)
}
