package ast

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) *Handle {
	t.Helper()
	h, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func TestParse_ValidSource(t *testing.T) {
	h := parseSource(t, "const x = 1;\nfunction f() { return x; }\n")
	assert.Equal(t, "program", h.Root().Type())
	assert.NotNil(t, h.Scopes)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse(context.Background(), []byte("const = ;"))
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
	assert.Contains(t, pe.Error(), "parse error")
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse(context.Background(), []byte("let ok = 1;\nconst = ;"))
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestWalk_PreOrderDocumentOrder(t *testing.T) {
	h := parseSource(t, "let a = 1; let b = 2;")

	var kinds []string
	h.Walk(func(n *sitter.Node) {
		kinds = append(kinds, n.Type())
	})

	require.NotEmpty(t, kinds)
	assert.Equal(t, "program", kinds[0])

	// The same source walks identically every time.
	var again []string
	h.Walk(func(n *sitter.Node) {
		again = append(again, n.Type())
	})
	assert.Equal(t, kinds, again)
}

func TestContent(t *testing.T) {
	h := parseSource(t, "foo(bar);")

	var found string
	h.Walk(func(n *sitter.Node) {
		if n.Type() == "identifier" && found == "" {
			found = h.Content(n)
		}
	})
	assert.Equal(t, "foo", found)
}

func TestClose_Idempotent(t *testing.T) {
	h, err := Parse(context.Background(), []byte("1;"))
	require.NoError(t, err)
	h.Close()
	h.Close()
}
