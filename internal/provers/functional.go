package provers

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"

	"reasonkernel/internal/axioms"
	"reasonkernel/internal/logic"
	"reasonkernel/internal/verdict"
)

// DefaultFunctionalPredicates is the shipped set of predicates declared
// functional in their last argument (spec.md 6, "Functional-dependency
// axioms"). The driver may extend this set. It delegates to
// internal/axioms, the single source of truth also used to render the
// functional-dependency axioms themselves at startup.
func DefaultFunctionalPredicates() map[string]bool {
	return axioms.DefaultFunctionalPredicates()
}

// FunctionalProver detects functional-dependency contradictions: a goal
// atom P(x1,...,xn-1,y) contradicts an assumption P(x1,...,xn-1,z) with
// z != y, for any predicate P declared functional in its last argument.
//
// Grounded on original_source/backend/adapters/provers/functional_constraint.py
// for the detection semantics (compare goal against each assumption sharing
// predicate and prefix args). Unlike the original, which does this with a
// regex scan, this implementation compiles the check into a tiny generated
// Mangle program and evaluates it with the real google/mangle engine, in
// the spirit of _examples/theRebelliousNerd-codenerd's internal/mangle
// wrapper (parse.Unit -> analysis.AnalyzeOneUnit -> engine.EvalProgramWithStats
// against a factstore.SimpleInMemoryStore).
type FunctionalProver struct {
	functional map[string]bool
}

// NewFunctionalProver constructs the prover with the given functional
// predicate set. Pass DefaultFunctionalPredicates() for the shipped set.
func NewFunctionalProver(functional map[string]bool) *FunctionalProver {
	return &FunctionalProver{functional: functional}
}

func (p *FunctionalProver) Name() string { return "Functional Constraint Prover" }

func (p *FunctionalProver) Prove(_ context.Context, assumptions []logic.Formula, goal logic.Formula) (verdict.Verdict, string) {
	goalAtom, ok := goal.(*logic.Atom)
	if !ok {
		return verdict.Unknown, fmt.Sprintf("%s: goal is not an atomic predicate", p.Name())
	}
	if !p.functional[goalAtom.Predicate] {
		return verdict.Unknown, fmt.Sprintf("%s: %q is not functional", p.Name(), goalAtom.Predicate)
	}
	if len(goalAtom.Args) < 2 {
		return verdict.Unknown, fmt.Sprintf("%s: %q has fewer than 2 arguments, no last-argument dependency to check", p.Name(), goalAtom.Predicate)
	}

	var matching []*logic.Atom
	for _, a := range assumptions {
		atom, ok := a.(*logic.Atom)
		if !ok || atom.Predicate != goalAtom.Predicate || len(atom.Args) != len(goalAtom.Args) {
			continue
		}
		matching = append(matching, atom)
	}
	if len(matching) == 0 {
		return verdict.Unknown, fmt.Sprintf("%s: no assumptions share predicate %q", p.Name(), goalAtom.Predicate)
	}

	violation, err := evalFunctionalViolation(goalAtom, matching)
	if err != nil {
		return verdict.Unknown, fmt.Sprintf("%s: %v", p.Name(), err)
	}
	if violation == nil {
		return verdict.Unknown, fmt.Sprintf("%s: no functional contradiction found", p.Name())
	}
	return verdict.Refuted, fmt.Sprintf(
		"%s: functional contradiction - %s cannot be both %s and %s for %s",
		p.Name(), goalAtom.Predicate, violation.existing, violation.candidate, violation.prefix,
	)
}

func (p *FunctionalProver) ValidateSyntax(formula logic.Formula) (bool, string) {
	atom, ok := formula.(*logic.Atom)
	if !ok {
		return true, "not an atom, outside this prover's fragment but not malformed"
	}
	if p.functional[atom.Predicate] && len(atom.Args) < 2 {
		return false, fmt.Sprintf("%q is declared functional but was applied with fewer than 2 arguments", atom.Predicate)
	}
	return true, "ok"
}

type functionalViolation struct {
	prefix    string
	existing  string
	candidate string
}

// evalFunctionalViolation builds and evaluates a self-contained Mangle
// program: the matching assumption facts and the goal (as a distinct
// "candidate" relation of the same arity) are asserted under two fixed,
// lowercase predicate symbols — predicate symbols in Mangle are
// lowercase-initial; an uppercase-initial token is a variable, never a
// relation name, so the FOL predicate's own (always uppercase-initial,
// per the grammar) spelling can never be used as the Mangle symbol
// directly. A single rule joins the two relations on their shared
// prefix arguments into "shared_prefix"; the last-argument equality or
// inequality is then decided back in Go on the joined pairs' literal
// text, since Mangle has no generic disequality builtin in this corpus
// to lean on and the join is the only part that actually needs the
// engine.
func evalFunctionalViolation(goal *logic.Atom, matching []*logic.Atom) (*functionalViolation, error) {
	arity := len(goal.Args)
	schema := buildFunctionalSchema(arity)

	unit, err := parse.Unit(bytes.NewReader([]byte(schema)))
	if err != nil {
		return nil, fmt.Errorf("compile functional-dependency program: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(parse.SourceUnit{Clauses: unit.Clauses, Decls: unit.Decls}, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze functional-dependency program: %w", err)
	}

	store := factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore())

	factSym, err := lookupDeclared(programInfo, functionalFactRelation)
	if err != nil {
		return nil, err
	}
	candidateSym, err := lookupDeclared(programInfo, functionalCandidateRelation)
	if err != nil {
		return nil, err
	}
	sharedPrefixSym, err := lookupDeclared(programInfo, functionalSharedPrefixRelation)
	if err != nil {
		return nil, err
	}

	for _, a := range matching {
		store.Add(ast.Atom{Predicate: factSym, Args: stringTerms(a.Args)})
	}
	store.Add(ast.Atom{Predicate: candidateSym, Args: stringTerms(goal.Args)})

	if _, err := mengine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("evaluate functional-dependency program: %w", err)
	}

	var found *functionalViolation
	err = store.GetFacts(ast.NewQuery(sharedPrefixSym), func(atom ast.Atom) error {
		if found != nil {
			return nil
		}
		parts := make([]string, len(atom.Args))
		for i, t := range atom.Args {
			parts[i] = fmt.Sprintf("%v", t)
		}
		n := len(parts)
		existing, candidate := parts[n-2], parts[n-1]
		if existing == candidate {
			return nil
		}
		found = &functionalViolation{
			prefix:    strings.Join(parts[:n-2], ","),
			existing:  existing,
			candidate: candidate,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read shared-prefix facts: %w", err)
	}
	return found, nil
}

func lookupDeclared(info *analysis.ProgramInfo, name string) (ast.PredicateSym, error) {
	for sym := range info.Decls {
		if sym.Symbol == name {
			return sym, nil
		}
	}
	return ast.PredicateSym{}, fmt.Errorf("predicate %q not declared in generated program", name)
}

func stringTerms(args []logic.Term) []ast.BaseTerm {
	out := make([]ast.BaseTerm, len(args))
	for i, t := range args {
		out[i] = ast.String(t.String())
	}
	return out
}

// functionalFactRelation, functionalCandidateRelation, and
// functionalSharedPrefixRelation are the fixed, lowercase Mangle
// predicate symbols the generated program declares. The FOL predicate
// under test is never used as the Mangle symbol itself — every FOL
// predicate name is uppercase-initial (§4.1's grammar), and an
// uppercase-initial token in Mangle source is a variable, not a
// predicate symbol, the same convention every Mangle program in the
// corpus follows (lowercase relation names such as `parent`,
// `ancestor`, `user_intent`; uppercase-initial tokens only ever appear
// as `Decl` argument/variable names).
const (
	functionalFactRelation         = "fol_fact"
	functionalCandidateRelation    = "candidate"
	functionalSharedPrefixRelation = "shared_prefix"
)

// buildFunctionalSchema generates a Mangle program declaring
// functionalFactRelation and functionalCandidateRelation (both arity n,
// bound as /string) and a join rule deriving functionalSharedPrefixRelation
// (arity n+1) for every pair agreeing on the first n-1 arguments,
// regardless of whether the two carry the same or a different last
// argument — the equality comparison that decides an actual violation
// is done in Go on the resulting pairs' literal text, since Mangle has
// no generic disequality builtin used anywhere else in the corpus to
// build a safer rule body on.
func buildFunctionalSchema(arity int) string {
	prefixVars := make([]string, arity-1)
	for i := range prefixVars {
		prefixVars[i] = fmt.Sprintf("X%d", i)
	}
	prefix := strings.Join(prefixVars, ", ")

	callArgsWith := func(last string) string {
		if prefix == "" {
			return last
		}
		return prefix + ", " + last
	}

	bounds := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = "/string"
		}
		return strings.Join(parts, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Decl %s(%s) bound[%s].\n", functionalFactRelation, callArgsWith("Y"), bounds(arity))
	fmt.Fprintf(&b, "Decl %s(%s) bound[%s].\n", functionalCandidateRelation, callArgsWith("Z"), bounds(arity))
	fmt.Fprintf(&b, "Decl %s(%s) bound[%s].\n", functionalSharedPrefixRelation, callArgsWith("Y, Z"), bounds(arity+1))
	fmt.Fprintf(&b, "%s(%s) :- %s(%s), %s(%s).\n",
		functionalSharedPrefixRelation, callArgsWith("Y, Z"),
		functionalFactRelation, callArgsWith("Y"),
		functionalCandidateRelation, callArgsWith("Z"))
	return b.String()
}
