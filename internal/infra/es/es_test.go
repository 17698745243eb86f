package es

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCluster struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	indexed  bool
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies[r.Method+" "+r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/users":
		if !f.indexed {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/users":
		f.indexed = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case r.URL.Path == "/users/_search":
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"u1","user_name":"neo"}}]}}`))
	case r.URL.Path == "/missing/_search":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"index_not_found_exception"}`))
	default:
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}
}

func newClient(t *testing.T) (*Client, *fakeCluster) {
	t.Helper()
	cluster := &fakeCluster{bodies: map[string]string{}}
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)
	c, err := New(Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return c, cluster
}

func TestEnsureIndexCreatesOnce(t *testing.T) {
	c, cluster := newClient(t)
	ctx := context.Background()

	mapping := map[string]any{"mappings": map[string]any{"properties": map[string]any{"user_name": map[string]string{"type": "text"}}}}
	require.NoError(t, c.EnsureIndex(ctx, "users", mapping))
	require.NoError(t, c.EnsureIndex(ctx, "users", mapping))

	assert.Equal(t, []string{"HEAD /users", "PUT /users", "HEAD /users"}, cluster.requests)
	assert.JSONEq(t, `{"mappings":{"properties":{"user_name":{"type":"text"}}}}`, cluster.bodies["PUT /users"])
}

func TestUpsertAndSearch(t *testing.T) {
	c, cluster := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, "users", "u1", map[string]string{"user_name": "neo"}))
	assert.JSONEq(t, `{"user_name":"neo"}`, cluster.bodies["PUT /users/_doc/u1"])

	res, err := c.Search(ctx, "users", SearchQuery{Query: map[string]any{"match": map[string]string{"user_name": "neo"}}, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Hits, 1)
	assert.JSONEq(t, `{"id":"u1","user_name":"neo"}`, string(res.Hits[0]))

	_, err = c.Search(ctx, "missing", SearchQuery{})
	assert.ErrorContains(t, err, "es: search")
}

func TestPing(t *testing.T) {
	c, cluster := newClient(t)
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, []string{"HEAD /"}, cluster.requests)
}
