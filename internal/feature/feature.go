// Package feature holds the detection rule set and the single-pass rule
// engine that produces feature occurrences from a parsed source unit.
package feature

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/jscompat/internal/ast"
)

// Category classifies what kind of construct a rule detects.
type Category string

const (
	CategorySyntax    Category = "syntax"
	CategoryGlobalAPI Category = "global-api"
	CategoryMemberAPI Category = "member-api"
)

// Rule is one feature detection rule. Rules are matched only against the
// node kinds they declare, and never see nodes of other kinds.
//
// Group names the concept the rule detects. When two rules of the same
// group match overlapping spans, the one with the higher Specificity wins
// and the other match is dropped, so one construct is reported once.
type Rule struct {
	ID          string
	Name        string
	Category    Category
	Kinds       []string
	Group       string
	Specificity int
	Match       func(n *sitter.Node, h *ast.Handle) bool
}

// Occurrence records one detected feature at a source span. Line is
// 1-based, Column 0-based (tree-sitter convention). Occurrences are
// serializable so they can live in the cache.
type Occurrence struct {
	FeatureID   string `json:"feature_id"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line"`
	EndColumn   int    `json:"end_column"`
}

// Fault records a rule that failed internally on one node. Faults are
// diagnostics: the rule is skipped for that node and the pass continues.
type Fault struct {
	RuleID   string
	NodeKind string
	Line     int
	Err      error
}

func (f Fault) String() string {
	return fmt.Sprintf("rule %s on %s at line %d: %v", f.RuleID, f.NodeKind, f.Line, f.Err)
}

// Registry indexes rules by the node kinds they match, so each visited
// node is checked only against its compatible subset.
type Registry struct {
	byKind map[string][]*Rule
	byID   map[string]*Rule
	order  []*Rule
}

// NewRegistry builds a registry from the given rules. Duplicate IDs panic:
// the rule set is a closed, compile-time artifact.
func NewRegistry(rules ...*Rule) *Registry {
	r := &Registry{
		byKind: make(map[string][]*Rule),
		byID:   make(map[string]*Rule, len(rules)),
	}
	for _, rule := range rules {
		if _, dup := r.byID[rule.ID]; dup {
			panic(fmt.Sprintf("feature: duplicate rule id %q", rule.ID))
		}
		if rule.Group == "" {
			rule.Group = rule.ID
		}
		r.byID[rule.ID] = rule
		r.order = append(r.order, rule)
		for _, kind := range rule.Kinds {
			r.byKind[kind] = append(r.byKind[kind], rule)
		}
	}
	return r
}

// ForKind returns the rules interested in a node kind.
func (r *Registry) ForKind(kind string) []*Rule {
	return r.byKind[kind]
}

// Lookup finds a rule by feature ID.
func (r *Registry) Lookup(id string) (*Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// Rules returns all rules in registration order.
func (r *Registry) Rules() []*Rule {
	return r.order
}
