package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memByteCache is an in-memory ByteCache for loader tests.
type memByteCache struct {
	entries map[string][]byte
	stores  int
}

func newMemByteCache() *memByteCache {
	return &memByteCache{entries: make(map[string][]byte)}
}

func (c *memByteCache) RemoteBytes(url string) ([]byte, bool) {
	content, ok := c.entries[url]
	return content, ok
}

func (c *memByteCache) StoreRemoteBytes(url string, content []byte, ttl time.Duration) {
	c.entries[url] = content
	c.stores++
}

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.js")
	content := []byte("const x = a ?? b;")
	require.NoError(t, os.WriteFile(path, content, 0644))

	l := NewLoader(nil)
	u, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, u.Ref)
	assert.Equal(t, OriginLocal, u.Origin)
	assert.Equal(t, content, u.Content)
	assert.Equal(t, HashBytes(content), u.Hash)
}

func TestLoad_LocalMissing(t *testing.T) {
	l := NewLoader(nil)
	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "nope.js"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_Remote(t *testing.T) {
	content := []byte("fetch('/api')")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	l := NewLoader(nil)
	u, err := l.Load(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, u.Ref)
	assert.Equal(t, OriginRemote, u.Origin)
	assert.Equal(t, content, u.Content)
}

func TestLoad_RemoteNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	l := NewLoader(nil)
	_, err := l.Load(context.Background(), srv.URL)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "404")
}

func TestLoad_RemoteCacheHitSkipsFetch(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	cache := newMemByteCache()
	l := NewLoader(cache)

	u1, err := l.Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, 1, cache.stores)

	u2, err := l.Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load(), "second load must come from the cache")
	assert.Equal(t, u1.Hash, u2.Hash)
}

func TestLoad_RemoteContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	l := NewLoader(nil)
	_, err := l.Load(ctx, srv.URL)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://cdn.example.com/app.js"))
	assert.True(t, IsRemote("http://example.com/x.js"))
	assert.False(t, IsRemote("src/app.js"))
	assert.False(t, IsRemote("/abs/path.js"))
}
