package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"brokerage-portal/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_EnsureDocumentTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	pg := newPostgres(db, config.PostgresConfig{})
	defer pg.Close()

	assert.Equal(t, defaultMaxOpen, db.Stats().MaxOpenConnections)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS portal_documents")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS portal_documents_body_gin")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, pg.EnsureDocumentTable(context.Background(), "portal_documents"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_EnsureDocumentTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	pg := newPostgres(db, config.PostgresConfig{MaxConnections: 4, MaxIdle: 8})
	defer pg.Close()

	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err = pg.EnsureDocumentTable(context.Background(), "docs")
	assert.ErrorContains(t, err, "prepare table docs")
}

func TestRedis(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	rdb, err := NewRedis(config.RedisConfig{Address: addr})
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(context.Background()))

	mr.Close()
	assert.ErrorContains(t, rdb.Ping(context.Background()), addr)
}

func newES(t *testing.T, h http.HandlerFunc) *ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestElasticsearch_Ping(t *testing.T) {
	status := "yellow"
	es := newES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_cluster/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"`+status+`"}`)
	})

	assert.NoError(t, es.Ping(context.Background()))
	status = "red"
	assert.ErrorContains(t, es.Ping(context.Background()), "red")
}

func TestElasticsearch_EnsureIndex(t *testing.T) {
	var created []byte
	es := newES(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created, _ = io.ReadAll(r.Body)
			_, _ = io.WriteString(w, `{"acknowledged":true}`)
		}
	})

	require.NoError(t, es.EnsureIndex(context.Background(), "contacts"))
	assert.Contains(t, string(created), `"advisorId"`)
}

func TestElasticsearch_EnsureIndexExisting(t *testing.T) {
	calls := 0
	es := newES(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodHead, r.Method)
	})

	require.NoError(t, es.EnsureIndex(context.Background(), "contacts"))
	assert.Equal(t, 1, calls)
}

func TestNewElasticsearch_NoAddresses(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.Error(t, err)
}
