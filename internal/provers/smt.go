package provers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"reasonkernel/internal/logic"
	"reasonkernel/internal/verdict"
)

// SyntaxRejection is the error translateFormula returns (ValidateSyntax
// reports its message) for translation failures that keep a formula outside the SMT adapter's fragment (spec.md
// 7: "SyntaxRejection | SMT translation | surfaced; the SMT prover returns
// unknown").
type SyntaxRejection struct {
	Reason string
}

func (e *SyntaxRejection) Error() string { return e.Reason }

// SMTProver decides a goal by checking, via an external z3 process, whether
// assumptions ∧ ¬goal is unsatisfiable (Proved) or assumptions ∧ goal is
// unsatisfiable (Refuted); otherwise Unknown.
//
// Grounded on original_source/backend/adapters/provers/z3_adapter.py for
// the translation shape (recursive operator-to-Z3 mapping, uniform integer
// sort for every term per spec.md's explicit "do not silently widen sorts"
// note) and on _examples/other_examples's vasic-digital formal_verifier.go
// (a FormalVerifierConfig.Z3Path field shelling out to a configured z3
// binary) together with _examples/theRebelliousNerd-codenerd's
// internal/tactile/direct.go (os/exec.CommandContext subprocess idiom) for
// the decision to invoke the z3 binary as a subprocess rather than a
// native Go SMT binding — no such binding appears anywhere in the corpus.
//
// Nested universal quantification (e.g. the shipped functional-dependency
// axioms, "all x (all y (all z (...)))") needs no special-case rewriting
// here: the grammar already produces nested logic.ForAll regardless of
// whether the input used the dotted or legacy space-chained surface, so
// translateFormula only ever has to handle one ForAll at a time.
type SMTProver struct {
	z3Path string
}

// NewSMTProver constructs the adapter. z3Path is the path to (or bare name
// of, if on PATH) the z3 executable.
func NewSMTProver(z3Path string) *SMTProver {
	if z3Path == "" {
		z3Path = "z3"
	}
	return &SMTProver{z3Path: z3Path}
}

func (s *SMTProver) Name() string { return "SMT Adapter" }

func (s *SMTProver) Prove(ctx context.Context, assumptions []logic.Formula, goal logic.Formula) (verdict.Verdict, string) {
	provedScript, err := buildEntailmentScript(assumptions, logic.Negate(goal))
	if err != nil {
		return verdict.Unknown, fmt.Sprintf("%s: %v", s.Name(), err)
	}
	provedResult, err := s.runZ3(ctx, provedScript)
	if err != nil {
		return verdict.Unknown, fmt.Sprintf("%s: %v", s.Name(), err)
	}
	if provedResult == "unsat" {
		return verdict.Proved, fmt.Sprintf("%s proved the goal unsatisfiable under negation.", s.Name())
	}

	refutedScript, err := buildEntailmentScript(assumptions, goal)
	if err != nil {
		return verdict.Unknown, fmt.Sprintf("%s: %v", s.Name(), err)
	}
	refutedResult, err := s.runZ3(ctx, refutedScript)
	if err != nil {
		return verdict.Unknown, fmt.Sprintf("%s: %v", s.Name(), err)
	}
	if refutedResult == "unsat" {
		return verdict.Refuted, fmt.Sprintf("%s proved the goal unsatisfiable with the assumptions.", s.Name())
	}

	return verdict.Unknown, fmt.Sprintf("%s: neither the goal nor its negation is entailed.", s.Name())
}

func (s *SMTProver) ValidateSyntax(formula logic.Formula) (bool, string) {
	if _, err := translateFormula(formula, map[string]bool{}); err != nil {
		return false, err.Error()
	}
	return true, "ok"
}

func (s *SMTProver) runZ3(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, s.z3Path, "-in", "-smt2")
	cmd.Stdin = strings.NewReader(script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("z3 invocation failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	lines := strings.Fields(stdout.String())
	if len(lines) == 0 {
		return "", fmt.Errorf("z3 produced no output")
	}
	return lines[0], nil
}

// buildEntailmentScript emits an SMT-LIB2 script asserting every assumption
// and extra, then checking satisfiability.
func buildEntailmentScript(assumptions []logic.Formula, extra logic.Formula) (string, error) {
	all := append(append([]logic.Formula{}, assumptions...), extra)

	predicates := map[string]int{}
	constants := map[string]bool{}
	for _, f := range all {
		collectDeclarations(f, predicates, constants)
	}

	var b strings.Builder
	b.WriteString("(set-logic UFLIA)\n")

	constNames := make([]string, 0, len(constants))
	for name := range constants {
		constNames = append(constNames, name)
	}
	sort.Strings(constNames)
	for _, name := range constNames {
		fmt.Fprintf(&b, "(declare-fun %s () Int)\n", sanitizeSymbol(name))
	}

	predNames := make([]string, 0, len(predicates))
	for name := range predicates {
		predNames = append(predNames, name)
	}
	sort.Strings(predNames)
	for _, name := range predNames {
		arity := predicates[name]
		sorts := strings.TrimSpace(strings.Repeat("Int ", arity))
		fmt.Fprintf(&b, "(declare-fun %s (%s) Bool)\n", sanitizeSymbol(name), sorts)
	}

	for _, f := range all {
		expr, err := translateFormula(f, map[string]bool{})
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "(assert %s)\n", expr)
	}
	b.WriteString("(check-sat)\n")
	return b.String(), nil
}

func collectDeclarations(f logic.Formula, predicates map[string]int, constants map[string]bool) {
	switch n := f.(type) {
	case *logic.Atom:
		predicates[n.Predicate] = len(n.Args)
		for _, t := range n.Args {
			if t.Kind == logic.Constant {
				constants[t.Name] = true
			}
		}
	case *logic.Not:
		collectDeclarations(n.Operand, predicates, constants)
	case *logic.And:
		collectDeclarations(n.Left, predicates, constants)
		collectDeclarations(n.Right, predicates, constants)
	case *logic.Or:
		collectDeclarations(n.Left, predicates, constants)
		collectDeclarations(n.Right, predicates, constants)
	case *logic.Implies:
		collectDeclarations(n.Left, predicates, constants)
		collectDeclarations(n.Right, predicates, constants)
	case *logic.ForAll:
		collectDeclarations(n.Body, predicates, constants)
	case *logic.Equal:
		for _, t := range []logic.Term{n.Left, n.Right} {
			if t.Kind == logic.Constant {
				constants[t.Name] = true
			}
		}
	}
}

// translateFormula renders f as an SMT-LIB2 boolean expression. bound
// tracks variable names currently in scope under a quantifier; a free
// variable outside any quantifier is a SyntaxRejection, so Prove returns
// Unknown for an open goal or assumption.
func translateFormula(f logic.Formula, bound map[string]bool) (string, error) {
	switch n := f.(type) {
	case *logic.Atom:
		if len(n.Args) == 0 {
			return sanitizeSymbol(n.Predicate), nil
		}
		args := make([]string, len(n.Args))
		for i, t := range n.Args {
			s, err := translateTerm(t, bound)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return fmt.Sprintf("(%s %s)", sanitizeSymbol(n.Predicate), strings.Join(args, " ")), nil
	case *logic.Not:
		inner, err := translateFormula(n.Operand, bound)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(not %s)", inner), nil
	case *logic.And:
		l, err := translateFormula(n.Left, bound)
		if err != nil {
			return "", err
		}
		r, err := translateFormula(n.Right, bound)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(and %s %s)", l, r), nil
	case *logic.Or:
		l, err := translateFormula(n.Left, bound)
		if err != nil {
			return "", err
		}
		r, err := translateFormula(n.Right, bound)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(or %s %s)", l, r), nil
	case *logic.Implies:
		l, err := translateFormula(n.Left, bound)
		if err != nil {
			return "", err
		}
		r, err := translateFormula(n.Right, bound)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(=> %s %s)", l, r), nil
	case *logic.ForAll:
		inner := map[string]bool{n.Var: true}
		for k := range bound {
			inner[k] = true
		}
		body, err := translateFormula(n.Body, inner)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(forall ((%s Int)) %s)", sanitizeSymbol(n.Var), body), nil
	case *logic.Equal:
		l, err := translateTerm(n.Left, bound)
		if err != nil {
			return "", err
		}
		r, err := translateTerm(n.Right, bound)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(= %s %s)", l, r), nil
	default:
		return "", &SyntaxRejection{Reason: "unrecognized formula node"}
	}
}

func translateTerm(t logic.Term, bound map[string]bool) (string, error) {
	switch t.Kind {
	case logic.Variable:
		if !bound[t.Name] {
			return "", &SyntaxRejection{Reason: fmt.Sprintf("variable %q is free outside any quantifier", t.Name)}
		}
		return sanitizeSymbol(t.Name), nil
	case logic.Constant:
		return sanitizeSymbol(t.Name), nil
	case logic.Integer:
		return fmt.Sprintf("%d", t.Num), nil
	default:
		return "", &SyntaxRejection{Reason: "unrecognized term kind"}
	}
}

// sanitizeSymbol guards against SMT-LIB2 reserved/pipe-needing characters;
// identifiers from the grammar are already alphanumeric plus underscore, so
// this is a defensive no-op in practice.
func sanitizeSymbol(name string) string {
	if strings.ContainsAny(name, " ()|\\") {
		return "|" + strings.ReplaceAll(name, "|", "") + "|"
	}
	return name
}
