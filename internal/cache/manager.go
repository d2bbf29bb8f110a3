// Package cache is the content-hash-keyed result cache with single-flight
// concurrency control. It layers a bounded in-process LRU over an optional
// SQLite store; every cache failure is non-fatal and falls back to
// recomputation.
package cache

import (
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jward/jscompat/internal/feature"
)

// DefaultCapacity bounds the in-process LRU for long-lived processes.
const DefaultCapacity = 500

// Manager coordinates the result cache. It is the only shared mutable
// structure across concurrent analyses; the singleflight group guarantees
// at most one parse+detect pass per distinct content hash.
type Manager struct {
	lru    *lruCache[string, []feature.Occurrence]
	flight singleflight.Group
	store  *Store // nil when persistence is disabled
	logger *slog.Logger
}

// NewManager builds a Manager. store may be nil; capacity <= 0 uses
// DefaultCapacity.
func NewManager(capacity int, store *Store, logger *slog.Logger) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		lru:    newLRU[string, []feature.Occurrence](capacity),
		store:  store,
		logger: logger,
	}
}

// Close releases the persistent store, if any.
func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

// Results returns the occurrence set for a content hash, computing it at
// most once per hash across concurrent callers. hit reports whether any
// cache layer answered without running compute.
func (m *Manager) Results(hash string, ttl time.Duration, compute func() ([]feature.Occurrence, error)) (occs []feature.Occurrence, hit bool, err error) {
	if occs, ok := m.lru.get(hash); ok {
		return occs, true, nil
	}
	if occs, ok := m.persistedResults(hash); ok {
		m.lru.put(hash, occs)
		return occs, true, nil
	}

	v, err, shared := m.flight.Do(hash, func() (any, error) {
		occs, err := compute()
		if err != nil {
			return nil, err
		}
		m.lru.put(hash, occs)
		m.persistResults(hash, occs, ttl)
		return occs, nil
	})
	if err != nil {
		return nil, false, err
	}
	// A caller that joined an in-flight computation did not trigger a
	// second pass; that counts as a hit.
	return v.([]feature.Occurrence), shared, nil
}

// persistedResults reads and decodes a result payload from the SQLite
// store. Read or decode failures are logged and treated as a miss.
func (m *Manager) persistedResults(hash string) ([]feature.Occurrence, bool) {
	if m.store == nil {
		return nil, false
	}
	payload, ok, err := m.store.GetResult(hash)
	if err != nil {
		m.logger.Warn("cache read failed, recomputing", "hash", hash, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var occs []feature.Occurrence
	if err := json.Unmarshal(payload, &occs); err != nil {
		m.logger.Warn("cache payload corrupt, recomputing", "hash", hash, "error", err)
		return nil, false
	}
	return occs, true
}

func (m *Manager) persistResults(hash string, occs []feature.Occurrence, ttl time.Duration) {
	if m.store == nil {
		return
	}
	payload, err := json.Marshal(occs)
	if err == nil {
		err = m.store.PutResult(hash, payload, ttl)
	}
	if err != nil {
		m.logger.Warn("cache write failed", "hash", hash, "error", err)
	}
}

// RemoteBytes returns a cached remote payload for a URL, if present and
// unexpired. Store errors are a miss.
func (m *Manager) RemoteBytes(url string) ([]byte, bool) {
	if m.store == nil {
		return nil, false
	}
	content, ok, err := m.store.GetRemote(url)
	if err != nil {
		m.logger.Warn("remote cache read failed, refetching", "url", url, "error", err)
		return nil, false
	}
	return content, ok
}

// StoreRemoteBytes caches a fetched remote payload for a URL.
func (m *Manager) StoreRemoteBytes(url string, content []byte, ttl time.Duration) {
	if m.store == nil {
		return
	}
	if err := m.store.PutRemote(url, content, ttl); err != nil {
		m.logger.Warn("remote cache write failed", "url", url, "error", err)
	}
}
