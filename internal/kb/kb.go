// Package kb implements the knowledge-base manager: an
// insertion-ordered fact set with consistency checking on insert.
//
// Grounded on original_source/backend/core/fol_core.py's K list and its
// add_fact/retract_fact/check_consistency methods (the file also
// contains what spec.md 4.7 splits out as the kernel's verify_logical,
// implemented separately by internal/kernel).
package kb

import (
	"context"
	"fmt"

	"reasonkernel/internal/grammar"
	"reasonkernel/internal/logic"
	"reasonkernel/internal/normalize"
	"reasonkernel/internal/provers"
	"reasonkernel/internal/verdict"
)

// ConsistencyChecker decides whether a candidate fact contradicts the
// current KB, independent of the full prover portfolio — the kernel
// supplies one backed by the pattern prover (negation check) and the
// functional-constraint prover (functional-dependency check), per
// spec.md 4.7's two-part consistency rule.
type ConsistencyChecker interface {
	// NegationProvable reports whether the syntactic negation of f is
	// provable from facts (the Pattern-prover negation check).
	NegationProvable(facts []logic.Formula, f logic.Formula) (bool, string)
	// FunctionalVerdict runs the functional-constraint prover directly
	// with f as goal.
	FunctionalVerdict(facts []logic.Formula, f logic.Formula) (verdict.Verdict, string)
}

// KB is an insertion-ordered set of facts. It is not safe for
// concurrent use; the kernel is its sole owner (spec.md 5).
type KB struct {
	order []string
	facts map[string]logic.Formula
	norm  *normalize.Normalizer
}

// New constructs an empty knowledge base using norm to canonicalize
// incoming formula strings.
func New(norm *normalize.Normalizer) *KB {
	return &KB{
		facts: make(map[string]logic.Formula),
		norm:  norm,
	}
}

// Facts returns the current fact set in insertion order, as parsed
// Formula values.
func (kb *KB) Facts() []logic.Formula {
	out := make([]logic.Formula, len(kb.order))
	for i, key := range kb.order {
		out[i] = kb.facts[key]
	}
	return out
}

// Snapshot returns the current fact set in insertion order, as
// canonical period-terminated strings that grammar.Parse accepts — the
// form the persistence layer stores.
func (kb *KB) Snapshot() []string {
	out := make([]string, len(kb.order))
	for i, key := range kb.order {
		out[i] = key + "."
	}
	return out
}

// Len reports the number of facts currently held.
func (kb *KB) Len() int { return len(kb.order) }

// AddFact normalizes and parses raw, runs the consistency check against
// the current KB, and inserts it if consistent and not already
// present. It returns whether the fact was accepted and a
// human-readable reason. The proof cache is the kernel's
// responsibility to clear after a successful insert (spec.md 5: the KB
// and proof cache are both exclusively kernel-owned). A fact already in
// the KB is not inserted again; AddFact then returns (true, "fact
// already present") rather than treating it as an error.
func (kb *KB) AddFact(checker ConsistencyChecker, raw string) (accepted bool, reason string) {
	canonical := kb.norm.Normalize(raw)
	formula, err := grammar.Parse(canonical)
	if err != nil {
		return false, fmt.Sprintf("parse error: %v", err)
	}
	key := formula.String()

	if _, exists := kb.facts[key]; exists {
		return true, "fact already present"
	}

	if ok, why := checker.NegationProvable(kb.Facts(), formula); ok {
		return false, fmt.Sprintf("contradicts KB: %s", why)
	}
	if v, why := checker.FunctionalVerdict(kb.Facts(), formula); v == verdict.Refuted {
		return false, fmt.Sprintf("functional contradiction: %s", why)
	}

	kb.order = append(kb.order, key)
	kb.facts[key] = formula
	return true, "accepted"
}

// RetractFact removes a fact (by its canonical form after
// normalization) if present. It reports whether anything was removed.
func (kb *KB) RetractFact(raw string) bool {
	canonical := kb.norm.Normalize(raw)
	formula, err := grammar.Parse(canonical)
	if err != nil {
		return false
	}
	key := formula.String()

	if _, exists := kb.facts[key]; !exists {
		return false
	}
	delete(kb.facts, key)
	for i, k := range kb.order {
		if k == key {
			kb.order = append(kb.order[:i], kb.order[i+1:]...)
			break
		}
	}
	return true
}

// CheckConsistency reports whether formula is consistent with the
// current KB, without mutating anything (spec.md 4.7: "never
// mutates").
func (kb *KB) CheckConsistency(checker ConsistencyChecker, formula logic.Formula) (consistent bool, reason string) {
	if ok, why := checker.NegationProvable(kb.Facts(), formula); ok {
		return false, fmt.Sprintf("contradicts KB: %s", why)
	}
	if v, why := checker.FunctionalVerdict(kb.Facts(), formula); v == verdict.Refuted {
		return false, fmt.Sprintf("functional contradiction: %s", why)
	}
	return true, "consistent"
}

// StandardConsistencyChecker implements ConsistencyChecker against a
// pattern prover (for the negation check) and a functional-constraint
// prover, matching spec.md 4.7's two checks exactly.
type StandardConsistencyChecker struct {
	Pattern    provers.Prover
	Functional provers.Prover
}

func (c StandardConsistencyChecker) NegationProvable(facts []logic.Formula, f logic.Formula) (bool, string) {
	negated := logic.Negate(f)
	v, reason := c.Pattern.Prove(context.Background(), facts, negated)
	return v == verdict.Proved, reason
}

func (c StandardConsistencyChecker) FunctionalVerdict(facts []logic.Formula, f logic.Formula) (verdict.Verdict, string) {
	return c.Functional.Prove(context.Background(), facts, f)
}
