package ast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// scopeOwners are node kinds that introduce a lexical scope.
var scopeOwners = map[string]bool{
	"program":                        true,
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function":                       true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
	"statement_block":                true,
	"class_body":                     true,
	"class_static_block":             true,
	"for_statement":                  true,
	"for_in_statement":               true,
	"catch_clause":                   true,
}

// functionKinds are the scope owners that form a function boundary; `var`
// declarations hoist to the nearest one, and `await` outside all of them is
// top-level await.
var functionKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function":                       true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
	"class_static_block":             true,
}

// nodeKey identifies a node by position and kind; tree-sitter nodes are not
// directly usable as map keys.
type nodeKey struct {
	start, end uint32
	kind       string
}

func keyFor(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), kind: n.Type()}
}

// Scope is one lexical scope with the names bound in it.
type Scope struct {
	parent   *Scope
	function bool
	bindings map[string]bool
}

func (s *Scope) bind(name string) {
	if name != "" {
		s.bindings[name] = true
	}
}

// ScopeGraph maps scope-owning nodes to their scopes. It is built in a
// single pass and read-only afterwards.
type ScopeGraph struct {
	scopes map[nodeKey]*Scope
	root   *Scope
}

// BuildScopes constructs the binding graph for a parsed tree.
func BuildScopes(root *sitter.Node, source []byte) *ScopeGraph {
	g := &ScopeGraph{scopes: make(map[nodeKey]*Scope)}
	g.root = g.enter(root, nil)
	g.collect(root, g.root, source)
	return g
}

func (g *ScopeGraph) enter(n *sitter.Node, parent *Scope) *Scope {
	s := &Scope{
		parent:   parent,
		function: functionKinds[n.Type()],
		bindings: make(map[string]bool),
	}
	g.scopes[keyFor(n)] = s
	return s
}

// collect walks the tree binding declared names as it goes. current is the
// scope the node lives in; scope-owning nodes push a child scope before
// their children are visited, but bind their own name into current.
func (g *ScopeGraph) collect(n *sitter.Node, current *Scope, source []byte) {
	kind := n.Type()

	switch kind {
	case "variable_declarator":
		target := current
		if p := n.Parent(); p != nil && p.Type() == "variable_declaration" {
			target = nearestFunction(current)
		}
		if name := n.ChildByFieldName("name"); name != nil {
			bindPattern(name, target, source)
		}
	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			nearestFunction(current).bind(name.Content(source))
		}
	case "class_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			current.bind(name.Content(source))
		}
	case "import_statement":
		bindImports(n, g.root, source)
	}

	next := current
	if scopeOwners[kind] && kind != "program" {
		next = g.enter(n, current)
		bindOwnNames(n, next, source)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		g.collect(n.NamedChild(i), next, source)
	}
}

// bindOwnNames binds the names a scope-owning node declares into itself:
// parameters, a named function expression's own name, a catch binding.
func bindOwnNames(n *sitter.Node, s *Scope, source []byte) {
	switch n.Type() {
	case "function", "function_expression", "generator_function":
		if name := n.ChildByFieldName("name"); name != nil {
			s.bind(name.Content(source))
		}
		bindParams(n, s, source)
	case "function_declaration", "generator_function_declaration", "method_definition":
		bindParams(n, s, source)
	case "arrow_function":
		if p := n.ChildByFieldName("parameter"); p != nil {
			bindPattern(p, s, source)
		}
		bindParams(n, s, source)
	case "catch_clause":
		if p := n.ChildByFieldName("parameter"); p != nil {
			bindPattern(p, s, source)
		}
	}
}

func bindParams(n *sitter.Node, s *Scope, source []byte) {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		bindPattern(params.NamedChild(i), s, source)
	}
}

// bindPattern binds every identifier introduced by a binding pattern:
// plain identifiers, object/array destructuring, defaults, rest.
func bindPattern(n *sitter.Node, s *Scope, source []byte) {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		s.bind(n.Content(source))
	case "assignment_pattern", "object_assignment_pattern":
		if left := n.ChildByFieldName("left"); left != nil {
			bindPattern(left, s, source)
		}
	case "pair_pattern":
		if value := n.ChildByFieldName("value"); value != nil {
			bindPattern(value, s, source)
		}
	case "rest_pattern", "object_pattern", "array_pattern":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			bindPattern(n.NamedChild(i), s, source)
		}
	}
}

// bindImports binds an import statement's local names into the module scope.
func bindImports(n *sitter.Node, root *Scope, source []byte) {
	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		switch node.Type() {
		case "import_clause", "named_imports", "namespace_import":
			for i := 0; i < int(node.NamedChildCount()); i++ {
				visit(node.NamedChild(i))
			}
		case "identifier":
			root.bind(node.Content(source))
		case "import_specifier":
			// `import {a as b}` binds b; `import {a}` binds a.
			if alias := node.ChildByFieldName("alias"); alias != nil {
				root.bind(alias.Content(source))
			} else if name := node.ChildByFieldName("name"); name != nil {
				root.bind(name.Content(source))
			}
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		visit(n.NamedChild(i))
	}
}

func nearestFunction(s *Scope) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.function || cur.parent == nil {
			return cur
		}
	}
	return s
}

// IsDeclared reports whether name is bound by any scope enclosing at,
// including the module scope. A true result means a reference to name at
// that position resolves to a local binding, not the global.
func (g *ScopeGraph) IsDeclared(name string, at *sitter.Node) bool {
	for n := at; n != nil; n = n.Parent() {
		if s, ok := g.scopes[keyFor(n)]; ok && s.bindings[name] {
			return true
		}
	}
	return false
}

// InFunction reports whether at sits inside any function-like boundary.
func (g *ScopeGraph) InFunction(at *sitter.Node) bool {
	for n := at.Parent(); n != nil; n = n.Parent() {
		if functionKinds[n.Type()] {
			return true
		}
	}
	return false
}
