package source

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytes_MatchesSHA256Hex(t *testing.T) {
	content := []byte("const x = 1;")
	want := fmt.Sprintf("%x", sha256.Sum256(content))
	assert.Equal(t, want, HashBytes(content))
}

func TestHashBytes_Stable(t *testing.T) {
	content := []byte("let y = 2;")
	assert.Equal(t, HashBytes(content), HashBytes(content))
	assert.NotEqual(t, HashBytes(content), HashBytes([]byte("let y = 3;")))
}

func TestNewUnit(t *testing.T) {
	u := NewUnit("app.js", OriginLocal, []byte("fetch('/x')"))
	assert.Equal(t, "app.js", u.Ref)
	assert.Equal(t, OriginLocal, u.Origin)
	assert.Equal(t, HashBytes([]byte("fetch('/x')")), u.Hash)
}

func TestLoadError_Unwrap(t *testing.T) {
	inner := fs.ErrNotExist
	err := &LoadError{Ref: "missing.js", Err: inner}
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "missing.js")
	require.ErrorAs(t, error(err), new(*LoadError))
}
