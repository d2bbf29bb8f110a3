// Package source resolves analysis inputs (local files and remote URLs)
// into immutable SourceUnits carrying raw bytes and a stable content hash.
package source

import (
	"crypto/sha256"
	"fmt"
)

// Origin distinguishes where a unit's bytes came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Unit is one piece of JavaScript source to analyze. It is immutable once
// constructed: the hash is computed from Content at construction time and
// never recomputed.
type Unit struct {
	Ref     string // path or URL as the user supplied it
	Origin  Origin
	Content []byte
	Hash    string // sha256 hex of Content
}

// NewUnit builds a Unit, computing the content hash.
func NewUnit(ref string, origin Origin, content []byte) *Unit {
	return &Unit{
		Ref:     ref,
		Origin:  origin,
		Content: content,
		Hash:    HashBytes(content),
	}
}

// HashBytes returns the sha256 hex digest used as cache key and content
// identity everywhere in the engine.
func HashBytes(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// LoadError wraps any failure to resolve a ref to bytes: missing file,
// network failure, timeout, non-2xx response. It is fatal for the unit it
// belongs to and for that unit only.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
