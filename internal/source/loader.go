package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultRemoteTTL is how long fetched URL payloads stay valid in the byte
// cache before a refetch.
const DefaultRemoteTTL = 24 * time.Hour

// maxRemoteBytes bounds a single remote payload (16 MiB).
const maxRemoteBytes = 16 << 20

// ByteCache is the slice of the cache manager the loader needs: URL-keyed
// storage of fetched payloads. A nil ByteCache disables remote caching.
type ByteCache interface {
	RemoteBytes(url string) ([]byte, bool)
	StoreRemoteBytes(url string, content []byte, ttl time.Duration)
}

// Loader resolves refs to Units. Local paths are read from disk; http(s)
// URLs are fetched, consulting the byte cache first.
type Loader struct {
	Client    *http.Client
	Cache     ByteCache
	RemoteTTL time.Duration
}

// NewLoader builds a Loader with the default HTTP client and remote TTL.
// cache may be nil.
func NewLoader(cache ByteCache) *Loader {
	return &Loader{
		Client:    http.DefaultClient,
		Cache:     cache,
		RemoteTTL: DefaultRemoteTTL,
	}
}

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load resolves ref to a Unit. All failures come back as *LoadError.
func (l *Loader) Load(ctx context.Context, ref string) (*Unit, error) {
	if IsRemote(ref) {
		return l.loadRemote(ctx, ref)
	}
	return l.loadLocal(ref)
}

func (l *Loader) loadLocal(ref string) (*Unit, error) {
	content, err := os.ReadFile(ref)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	return NewUnit(ref, OriginLocal, content), nil
}

func (l *Loader) loadRemote(ctx context.Context, url string) (*Unit, error) {
	if l.Cache != nil {
		if content, ok := l.Cache.RemoteBytes(url); ok {
			return NewUnit(url, OriginRemote, content), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{Ref: url, Err: err}
	}
	req.Header.Set("Accept", "application/javascript, text/javascript, */*")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Ref: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{Ref: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes+1))
	if err != nil {
		return nil, &LoadError{Ref: url, Err: err}
	}
	if len(content) > maxRemoteBytes {
		return nil, &LoadError{Ref: url, Err: fmt.Errorf("payload exceeds %d bytes", maxRemoteBytes)}
	}

	if l.Cache != nil {
		ttl := l.RemoteTTL
		if ttl <= 0 {
			ttl = DefaultRemoteTTL
		}
		l.Cache.StoreRemoteBytes(url, content, ttl)
	}
	return NewUnit(url, OriginRemote, content), nil
}
