package feature

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/jscompat/internal/ast"
)

// candidate is a raw rule match before subsumption resolution.
type candidate struct {
	rule       *Rule
	start, end uint32
	occ        Occurrence
	dropped    bool
}

// Detect runs the registry's rules over the handle in exactly one pre-order
// traversal and returns occurrences in document order, plus any rule faults
// that were recovered during the pass. Identical input bytes always produce
// identical output: traversal order, rule order per kind, and subsumption
// resolution are all deterministic.
func Detect(h *ast.Handle, reg *Registry) ([]Occurrence, []Fault) {
	var cands []candidate
	var faults []Fault

	h.Walk(func(n *sitter.Node) {
		for _, rule := range reg.ForKind(n.Type()) {
			matched, err := safeMatch(rule, n, h)
			if err != nil {
				faults = append(faults, Fault{
					RuleID:   rule.ID,
					NodeKind: n.Type(),
					Line:     int(n.StartPoint().Row) + 1,
					Err:      err,
				})
				continue
			}
			if !matched {
				continue
			}
			start, end := n.StartPoint(), n.EndPoint()
			cands = append(cands, candidate{
				rule:  rule,
				start: n.StartByte(),
				end:   n.EndByte(),
				occ: Occurrence{
					FeatureID:   rule.ID,
					StartLine:   int(start.Row) + 1,
					StartColumn: int(start.Column),
					EndLine:     int(end.Row) + 1,
					EndColumn:   int(end.Column),
				},
			})
		}
	})

	resolveSubsumption(cands)

	occs := make([]Occurrence, 0, len(cands))
	for _, c := range cands {
		if !c.dropped {
			occs = append(occs, c.occ)
		}
	}
	return occs, faults
}

// resolveSubsumption drops the lower-specificity match wherever two
// different rules of the same group matched overlapping spans. Repeated
// matches of one rule at distinct nodes are distinct occurrences and all
// survive, so nested constructs keep their full count. Equal specificity
// keeps the earlier candidate: the leftmost span, or the outer node when
// one span contains the other.
func resolveSubsumption(cands []candidate) {
	for i := range cands {
		if cands[i].dropped {
			continue
		}
		for j := i + 1; j < len(cands); j++ {
			if cands[j].dropped {
				continue
			}
			if cands[i].rule == cands[j].rule {
				continue
			}
			if cands[i].rule.Group != cands[j].rule.Group {
				continue
			}
			if cands[i].end <= cands[j].start || cands[j].end <= cands[i].start {
				continue // disjoint spans
			}
			if cands[j].rule.Specificity > cands[i].rule.Specificity {
				cands[i].dropped = true
				break
			}
			cands[j].dropped = true
		}
	}
}

// safeMatch invokes a rule's matcher, converting a panic into an error so
// one faulty rule cannot fail the whole unit.
func safeMatch(rule *Rule, n *sitter.Node, h *ast.Handle) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = fmt.Errorf("rule panicked: %v", r)
		}
	}()
	return rule.Match(n, h), nil
}
