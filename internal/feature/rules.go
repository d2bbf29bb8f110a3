package feature

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/jscompat/internal/ast"
)

// typedArrayCtors maps typed-array constructor names to their feature IDs.
var typedArrayCtors = map[string]string{
	"Int8Array":      "int8array",
	"Uint8Array":     "uint8array",
	"Int16Array":     "int16array",
	"Uint16Array":    "uint16array",
	"Int32Array":     "int32array",
	"Uint32Array":    "uint32array",
	"Float32Array":   "float32array",
	"Float64Array":   "float64array",
	"BigInt64Array":  "bigint64array",
	"BigUint64Array": "biguint64array",
}

// DefaultRegistry returns the built-in rule set. The set is closed: rules
// are declared here, keyed to tree-sitter node kinds, and dispatched via
// the registry's kind index.
func DefaultRegistry() *Registry {
	rules := []*Rule{
		{
			ID:       "optional-chaining",
			Name:     "Optional chaining (?.)",
			Category: CategorySyntax,
			Kinds:    []string{"member_expression", "subscript_expression", "call_expression"},
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				return hasChildOfType(n, "optional_chain")
			},
		},
		{
			ID:       "nullish-coalescing",
			Name:     "Nullish coalescing (??)",
			Category: CategorySyntax,
			Kinds:    []string{"binary_expression"},
			Match:    operatorIs("??"),
		},
		{
			ID:       "logical-assignment",
			Name:     "Logical assignment (&&=, ||=, ??=)",
			Category: CategorySyntax,
			Kinds:    []string{"augmented_assignment_expression"},
			Match:    operatorIs("&&=", "||=", "??="),
		},
		{
			ID:       "exponentiation",
			Name:     "Exponentiation operator (**)",
			Category: CategorySyntax,
			Kinds:    []string{"binary_expression"},
			Match:    operatorIs("**"),
		},
		{
			ID:       "numeric-separators",
			Name:     "Numeric separators",
			Category: CategorySyntax,
			Kinds:    []string{"number"},
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				return strings.Contains(h.Content(n), "_")
			},
		},
		{
			ID:       "bigint-literal",
			Name:     "BigInt literal",
			Category: CategorySyntax,
			Kinds:    []string{"number"},
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				return strings.HasSuffix(h.Content(n), "n")
			},
		},
		{
			ID:       "private-class-fields",
			Name:     "Private class fields",
			Category: CategorySyntax,
			Kinds:    []string{"field_definition"},
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				prop := n.ChildByFieldName("property")
				return prop != nil && prop.Type() == "private_property_identifier"
			},
		},
		{
			ID:       "private-class-methods",
			Name:     "Private class methods",
			Category: CategorySyntax,
			Kinds:    []string{"method_definition"},
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				name := n.ChildByFieldName("name")
				return name != nil && name.Type() == "private_property_identifier"
			},
		},
		{
			ID:       "class-static-blocks",
			Name:     "Class static initialization blocks",
			Category: CategorySyntax,
			Kinds:    []string{"class_static_block"},
			Match:    matchAlways,
		},
		{
			ID:          "await",
			Name:        "Await expression",
			Category:    CategorySyntax,
			Kinds:       []string{"await_expression"},
			Group:       "await",
			Specificity: 1,
			Match:       matchAlways,
		},
		{
			ID:          "top-level-await",
			Name:        "Top-level await",
			Category:    CategorySyntax,
			Kinds:       []string{"await_expression"},
			Group:       "await",
			Specificity: 2,
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				return !h.Scopes.InFunction(n)
			},
		},
		{
			ID:       "async-iteration",
			Name:     "Async iteration (for await...of)",
			Category: CategorySyntax,
			Kinds:    []string{"for_in_statement"},
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				return hasChildOfType(n, "await")
			},
		},
		{
			ID:       "optional-catch-binding",
			Name:     "Optional catch binding",
			Category: CategorySyntax,
			Kinds:    []string{"catch_clause"},
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				return n.ChildByFieldName("parameter") == nil
			},
		},
		{
			ID:       "spread",
			Name:     "Spread and rest syntax (...)",
			Category: CategorySyntax,
			Kinds:    []string{"spread_element", "rest_pattern"},
			Match:    matchAlways,
		},
		{
			ID:       "dynamic-import",
			Name:     "Dynamic import()",
			Category: CategorySyntax,
			Kinds:    []string{"call_expression"},
			Match: func(n *sitter.Node, h *ast.Handle) bool {
				fn := n.ChildByFieldName("function")
				return fn != nil && fn.Type() == "import"
			},
		},

		// Member APIs. The object identifier is scope-checked: a local
		// `navigator` binding suppresses the match.
		memberRule("service-worker", "Service Worker API", "navigator", "serviceWorker"),
		memberRule("performance-now", "performance.now()", "performance", "now"),
	}

	// Tracked global identifiers. Registration order is fixed so traversal
	// output is deterministic.
	for _, g := range []struct{ id, name, ident string }{
		{"fetch", "Fetch API", "fetch"},
		{"promise", "Promise", "Promise"},
		{"bigint", "BigInt global", "BigInt"},
		{"queuemicrotask", "queueMicrotask()", "queueMicrotask"},
		{"structuredclone", "structuredClone()", "structuredClone"},
		{"requestidlecallback", "requestIdleCallback()", "requestIdleCallback"},
		{"globalthis", "globalThis", "globalThis"},
		{"weakref", "WeakRef", "WeakRef"},
	} {
		rules = append(rules, globalRule(g.id, g.name, g.ident, "", 0))
	}

	// Typed arrays: a generic concept rule plus one specific rule per
	// constructor. Both match the same identifier span; the specific rule's
	// higher specificity subsumes the generic match.
	rules = append(rules, &Rule{
		ID:          "typed-arrays",
		Name:        "Typed arrays",
		Category:    CategoryGlobalAPI,
		Kinds:       []string{"identifier"},
		Group:       "typed-arrays",
		Specificity: 1,
		Match: func(n *sitter.Node, h *ast.Handle) bool {
			name := h.Content(n)
			_, tracked := typedArrayCtors[name]
			return tracked && !h.Scopes.IsDeclared(name, n)
		},
	})
	ctors := make([]string, 0, len(typedArrayCtors))
	for ctor := range typedArrayCtors {
		ctors = append(ctors, ctor)
	}
	sort.Strings(ctors)
	for _, ctor := range ctors {
		rules = append(rules, globalRule(typedArrayCtors[ctor], ctor, ctor, "typed-arrays", 2))
	}

	return NewRegistry(rules...)
}

func matchAlways(*sitter.Node, *ast.Handle) bool { return true }

// operatorIs matches nodes whose "operator" field is one of the given
// spellings.
func operatorIs(ops ...string) func(n *sitter.Node, h *ast.Handle) bool {
	return func(n *sitter.Node, h *ast.Handle) bool {
		op := n.ChildByFieldName("operator")
		if op == nil {
			return false
		}
		text := h.Content(op)
		for _, want := range ops {
			if text == want {
				return true
			}
		}
		return false
	}
}

// globalRule detects a reference to a tracked global identifier. A binding
// anywhere in the enclosing scope chain (declaration, parameter, import)
// shadows the global and suppresses the match.
func globalRule(id, name, ident, group string, specificity int) *Rule {
	return &Rule{
		ID:          id,
		Name:        name,
		Category:    CategoryGlobalAPI,
		Kinds:       []string{"identifier"},
		Group:       group,
		Specificity: specificity,
		Match: func(n *sitter.Node, h *ast.Handle) bool {
			return h.Content(n) == ident && !h.Scopes.IsDeclared(ident, n)
		},
	}
}

// memberRule detects object.property member access on a tracked global
// object.
func memberRule(id, name, object, property string) *Rule {
	return &Rule{
		ID:       id,
		Name:     name,
		Category: CategoryMemberAPI,
		Kinds:    []string{"member_expression"},
		Match: func(n *sitter.Node, h *ast.Handle) bool {
			obj := n.ChildByFieldName("object")
			prop := n.ChildByFieldName("property")
			if obj == nil || prop == nil {
				return false
			}
			if obj.Type() != "identifier" || h.Content(obj) != object {
				return false
			}
			if prop.Type() != "property_identifier" || h.Content(prop) != property {
				return false
			}
			return !h.Scopes.IsDeclared(object, obj)
		},
	}
}

func hasChildOfType(n *sitter.Node, kind string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == kind {
			return true
		}
	}
	return false
}
