package ast

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identifierAt returns the n-th identifier (0-based) whose text is name.
func identifierAt(t *testing.T, h *Handle, name string, nth int) *sitter.Node {
	t.Helper()
	var found *sitter.Node
	seen := 0
	h.Walk(func(n *sitter.Node) {
		if found != nil || n.Type() != "identifier" || h.Content(n) != name {
			return
		}
		if seen == nth {
			found = n
		}
		seen++
	})
	require.NotNil(t, found, "identifier %q #%d not found", name, nth)
	return found
}

func TestIsDeclared_ConstShadowsGlobal(t *testing.T) {
	h := parseSource(t, "function f() { const fetch = 1; return fetch; }")

	ref := identifierAt(t, h, "fetch", 1)
	assert.True(t, h.Scopes.IsDeclared("fetch", ref))
}

func TestIsDeclared_UndeclaredGlobal(t *testing.T) {
	h := parseSource(t, "fetch('/api');")

	ref := identifierAt(t, h, "fetch", 0)
	assert.False(t, h.Scopes.IsDeclared("fetch", ref))
}

func TestIsDeclared_LetIsBlockScoped(t *testing.T) {
	h := parseSource(t, "{ let Promise = null; }\nPromise.resolve();")

	inside := identifierAt(t, h, "Promise", 0)
	assert.True(t, h.Scopes.IsDeclared("Promise", inside))

	outside := identifierAt(t, h, "Promise", 1)
	assert.False(t, h.Scopes.IsDeclared("Promise", outside))
}

func TestIsDeclared_VarHoistsToFunction(t *testing.T) {
	h := parseSource(t, "function f() { { var fetch = 1; } return fetch; }")

	ref := identifierAt(t, h, "fetch", 1)
	assert.True(t, h.Scopes.IsDeclared("fetch", ref), "var must hoist past the block")
}

func TestIsDeclared_Parameter(t *testing.T) {
	h := parseSource(t, "function f(fetch) { return fetch(1); }")

	ref := identifierAt(t, h, "fetch", 1)
	assert.True(t, h.Scopes.IsDeclared("fetch", ref))
}

func TestIsDeclared_ArrowParameter(t *testing.T) {
	h := parseSource(t, "const g = (fetch) => fetch(1);")

	ref := identifierAt(t, h, "fetch", 1)
	assert.True(t, h.Scopes.IsDeclared("fetch", ref))
}

func TestIsDeclared_DestructuredParameter(t *testing.T) {
	h := parseSource(t, "function f({ fetch, rest = 2 }) { return fetch + rest; }")

	// Inside the pattern both names are shorthand_property_identifier_pattern
	// nodes, so the body references are the first plain identifiers.
	assert.True(t, h.Scopes.IsDeclared("fetch", identifierAt(t, h, "fetch", 0)))
	assert.True(t, h.Scopes.IsDeclared("rest", identifierAt(t, h, "rest", 0)))
}

func TestIsDeclared_ImportBindsModuleScope(t *testing.T) {
	h := parseSource(t, "import fetch from 'node-fetch';\nfetch('/api');")

	ref := identifierAt(t, h, "fetch", 1)
	assert.True(t, h.Scopes.IsDeclared("fetch", ref))
}

func TestIsDeclared_NamedImportAlias(t *testing.T) {
	h := parseSource(t, "import { request as fetch } from 'lib';\nfetch('/api');")

	ref := identifierAt(t, h, "fetch", 1)
	assert.True(t, h.Scopes.IsDeclared("fetch", ref))
	assert.False(t, h.Scopes.IsDeclared("request", ref))
}

func TestIsDeclared_CatchBinding(t *testing.T) {
	h := parseSource(t, "try { a(); } catch (fetch) { fetch.message; }")

	ref := identifierAt(t, h, "fetch", 1)
	assert.True(t, h.Scopes.IsDeclared("fetch", ref))
}

func TestIsDeclared_SiblingScopesDoNotLeak(t *testing.T) {
	h := parseSource(t, "function a() { const fetch = 1; }\nfunction b() { return fetch; }")

	ref := identifierAt(t, h, "fetch", 1)
	assert.False(t, h.Scopes.IsDeclared("fetch", ref))
}

func TestInFunction(t *testing.T) {
	h := parseSource(t, "const top = 1;\nasync function f() { await g(); }")

	topRef := identifierAt(t, h, "top", 0)
	assert.False(t, h.Scopes.InFunction(topRef))

	gRef := identifierAt(t, h, "g", 0)
	assert.True(t, h.Scopes.InFunction(gRef))
}
