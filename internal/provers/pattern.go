package provers

import (
	"context"
	"fmt"

	"reasonkernel/internal/logic"
	"reasonkernel/internal/verdict"
)

// PatternProver returns Proved iff the goal appears verbatim (by canonical
// string) in the assumption list, Refuted iff its syntactic negation does,
// and Unknown otherwise. Complexity is linear in len(assumptions).
//
// Grounded on original_source/backend/adapters/provers/pattern.py.
type PatternProver struct{}

// NewPatternProver constructs the pattern matcher.
func NewPatternProver() *PatternProver { return &PatternProver{} }

func (p *PatternProver) Name() string { return "Pattern Matcher" }

func (p *PatternProver) Prove(_ context.Context, assumptions []logic.Formula, goal logic.Formula) (verdict.Verdict, string) {
	goalText := goal.String()
	negatedText := logic.Negate(goal).String()

	for _, a := range assumptions {
		if a.String() == goalText {
			return verdict.Proved, fmt.Sprintf("%s found an exact match for %q.", p.Name(), goalText)
		}
	}
	for _, a := range assumptions {
		if a.String() == negatedText {
			return verdict.Refuted, fmt.Sprintf("%s found a contradiction for %q.", p.Name(), goalText)
		}
	}
	return verdict.Unknown, fmt.Sprintf("%s found no match.", p.Name())
}

func (p *PatternProver) ValidateSyntax(logic.Formula) (bool, string) {
	// Any well-formed logic.Formula is already within the pattern
	// matcher's fragment: it only ever compares canonical strings.
	return true, "ok"
}
