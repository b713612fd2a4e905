// Package normalize canonicalizes the surface syntax of a formula string
// before it is parsed, stored as a fact, or used as a proof goal. Two
// formulas that differ only in these surface variations normalize to the
// same canonical string and are therefore the same fact.
package normalize

import (
	"regexp"
	"strings"
)

// DiagnosticLogger receives a record of every normalization that actually
// changed its input. It is satisfied by *zap.SugaredLogger without this
// package importing zap directly.
type DiagnosticLogger interface {
	Debugf(template string, args ...interface{})
}

// SynonymRule maps a surface predicate-name pattern to its canonical
// spelling. The driver may extend the default table with domain-specific
// rules (spec.md 4.2 step 5 calls the table "driver-extensible").
type SynonymRule struct {
	Pattern   *regexp.Regexp
	Canonical string
}

// DefaultSynonyms is the initial synonym table, grounded on the variant
// spellings the source system accumulated for its legacy-system predicates.
func DefaultSynonyms() []SynonymRule {
	return []SynonymRule{
		{regexp.MustCompile(`IsTechnicalLegacy(System)?`), "IsLegacy"},
		{regexp.MustCompile(`ShouldBeConsideredForRefactoring`), "ShouldRefactor"},
		{regexp.MustCompile(`ShouldBeIdentifiedAndRefactored`), "ShouldRefactor"},
		{regexp.MustCompile(`IsBasedOnCobolMainframe`), "IsCobolMainframe"},
		{regexp.MustCompile(`BasedOnCobolMainframe`), "IsCobolMainframe"},
		{regexp.MustCompile(`BasedOnModernJavaMicroservice`), "IsJavaMicroservice"},
		{regexp.MustCompile(`IsBasedOnJavaMicroservice`), "IsJavaMicroservice"},
		{regexp.MustCompile(`HasLowOperatingCosts`), "HasLowOperatingCost"},
	}
}

var hyphenatedIdentifier = regexp.MustCompile(`([A-ZÄÖÜ][A-Za-zÄÖÜäöüß0-9]*)-([A-Za-zÄÖÜäöüß0-9]+)`)

var bareIdentifier = regexp.MustCompile(`^[A-ZÄÖÜ][A-Za-zÄÖÜäöüß0-9_]*\.$`)

// Normalizer applies the ordered normalization pipeline with a configurable
// synonym table.
type Normalizer struct {
	synonyms []SynonymRule
	log      DiagnosticLogger
}

// New constructs a Normalizer with the given synonym table. Pass
// DefaultSynonyms() to start from the shipped table, or append driver rules
// to it first.
func New(synonyms []SynonymRule, log DiagnosticLogger) *Normalizer {
	return &Normalizer{synonyms: synonyms, log: log}
}

// Normalize applies the six-step pipeline (spec.md 4.2) in order:
//  1. strip trailing whitespace, ensure a terminal period
//  2. map legacy ':-' -> '->' and '~' -> '-'
//  3. collapse leading '--' pairs
//  4. remove hyphens inside identifier-like tokens
//  5. apply the synonym table
//  6. rewrite a bare capitalized identifier into a nullary predicate
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func (n *Normalizer) Normalize(s string) string {
	original := s
	corrected := trimTrailingSpace(s)
	if len(corrected) == 0 || corrected[len(corrected)-1] != '.' {
		corrected += "."
	}

	corrected = strings.ReplaceAll(corrected, ":-", "->")
	corrected = strings.ReplaceAll(corrected, "~", "-")

	for len(corrected) >= 2 && corrected[:2] == "--" {
		corrected = corrected[2:]
	}

	for hyphenatedIdentifier.MatchString(corrected) {
		corrected = hyphenatedIdentifier.ReplaceAllString(corrected, "$1$2")
	}

	for _, rule := range n.synonyms {
		corrected = rule.Pattern.ReplaceAllString(corrected, rule.Canonical)
	}

	if bareIdentifier.MatchString(corrected) {
		corrected = corrected[:len(corrected)-1] + "()."
	}

	if corrected != original && n.log != nil {
		n.log.Debugf("normalize: %q -> %q", original, corrected)
	}
	return corrected
}

func trimTrailingSpace(s string) string {
	return strings.TrimRight(s, " \t\n\r")
}
