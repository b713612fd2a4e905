// Package provers implements the prover portfolio's common contract
// (spec.md 4.4) and its four concrete members: the pattern matcher, the
// functional-constraint detector, the SMT adapter, and the external-oracle
// adapter.
package provers

import (
	"context"
	"fmt"

	"reasonkernel/internal/logic"
	"reasonkernel/internal/verdict"
)

// Prover is the capability set every portfolio member implements. It
// replaces the source's informal duck-typed interface with an explicit one
// (spec.md Design Notes: "specify it as the single prover capability set
// {prove, validate_syntax, name}").
type Prover interface {
	// Name identifies the prover in reason strings and statistics.
	Name() string
	// Prove attempts to decide goal given assumptions, within the
	// deadline carried by ctx. It must never panic or return an error
	// across this boundary — any internal failure is reported as
	// (Unknown, "<name>: <cause>").
	Prove(ctx context.Context, assumptions []logic.Formula, goal logic.Formula) (verdict.Verdict, string)
	// ValidateSyntax reports whether formula is within the fragment this
	// prover can reason about, independent of whether it can decide it.
	ValidateSyntax(formula logic.Formula) (bool, string)
}

// Safe wraps a Prover so that any panic raised inside Prove is recovered
// and converted to (Unknown, "<name>: <cause>"), matching spec.md 4.4:
// "provers never raise across the boundary." Every concrete prover in this
// package is registered with the portfolio through Safe, rather than each
// prover implementing its own recover(), so the boundary is enforced in
// exactly one place.
func Safe(p Prover) Prover {
	return &safeProver{inner: p}
}

type safeProver struct {
	inner Prover
}

func (s *safeProver) Name() string { return s.inner.Name() }

func (s *safeProver) Prove(ctx context.Context, assumptions []logic.Formula, goal logic.Formula) (v verdict.Verdict, reason string) {
	defer func() {
		if r := recover(); r != nil {
			v = verdict.Unknown
			reason = fmt.Sprintf("%s: %v", s.inner.Name(), r)
		}
	}()
	return s.inner.Prove(ctx, assumptions, goal)
}

func (s *safeProver) ValidateSyntax(formula logic.Formula) (bool, string) {
	return s.inner.ValidateSyntax(formula)
}

// ClearCache forwards to the wrapped prover's own ClearCache, if it has
// one (currently only the oracle adapter does). internal/kernel's
// ClearCaches type-asserts every portfolio member to the optional
// cacheClearer interface {ClearCache()}; without this forwarding method,
// wrapping the oracle adapter in Safe (as every prover is, per the
// single-recovery-point rule above) would hide its ClearCache behind the
// wrapper and the assertion would always fail.
func (s *safeProver) ClearCache() {
	if clearer, ok := s.inner.(interface{ ClearCache() }); ok {
		clearer.ClearCache()
	}
}
