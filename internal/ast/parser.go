// Package ast wraps the tree-sitter JavaScript parser and builds the
// scope/binding graph the feature detector consults. A Handle is transient:
// it exists for one analysis pass and is closed immediately after.
package ast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// ParseError reports malformed input. It is fatal for the unit being
// analyzed: no partial result is produced.
type ParseError struct {
	Line   int // 1-based
	Column int // 0-based, tree-sitter convention
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Detail)
}

// Handle is one parsed source unit: syntax tree, the bytes it was parsed
// from, and the scope graph built over it.
type Handle struct {
	tree   *sitter.Tree
	Source []byte
	Scopes *ScopeGraph
}

// Parse parses JavaScript source and builds its scope graph. Trees with
// syntax errors are rejected with *ParseError.
func Parse(ctx context.Context, content []byte) (*Handle, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		defer tree.Close()
		if bad := firstErrorNode(root); bad != nil {
			pt := bad.StartPoint()
			detail := "invalid syntax"
			if bad.IsMissing() {
				detail = fmt.Sprintf("missing %s", bad.Type())
			}
			return nil, &ParseError{Line: int(pt.Row) + 1, Column: int(pt.Column), Detail: detail}
		}
		return nil, &ParseError{Line: 1, Column: 0, Detail: "invalid syntax"}
	}

	return &Handle{
		tree:   tree,
		Source: content,
		Scopes: BuildScopes(root, content),
	}, nil
}

// Root returns the tree's root node.
func (h *Handle) Root() *sitter.Node {
	return h.tree.RootNode()
}

// Close releases the underlying tree. The Handle must not be used after.
func (h *Handle) Close() {
	if h.tree != nil {
		h.tree.Close()
		h.tree = nil
	}
}

// Walk visits every named node in pre-order, which is source document
// order. The traversal itself is the detector's single pass.
func (h *Handle) Walk(visit func(n *sitter.Node)) {
	walk(h.tree.RootNode(), visit)
}

func walk(n *sitter.Node, visit func(n *sitter.Node)) {
	visit(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}

// firstErrorNode finds the first ERROR or MISSING node in document order.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

// Content returns the source text covered by n.
func (h *Handle) Content(n *sitter.Node) string {
	return n.Content(h.Source)
}
