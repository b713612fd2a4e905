package kernel

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reasonkernel/internal/normalize"
	"reasonkernel/internal/provers"
	"reasonkernel/internal/verdict"
)

func newTestKernel() *Kernel {
	pattern := provers.Safe(provers.NewPatternProver())
	functional := provers.Safe(provers.NewFunctionalProver(provers.DefaultFunctionalPredicates()))
	smt := provers.Safe(provers.NewSMTProver(""))

	return New(Config{
		Normalizer:       normalize.New(normalize.DefaultSynonyms(), nil),
		Pattern:          pattern,
		Functional:       functional,
		AllProvers:       []provers.Prover{functional, smt, pattern},
		OraclePredicates: map[string]bool{},
	})
}

// Scenario 1: pattern-match hit.
func TestScenarioPatternMatchHit(t *testing.T) {
	k := newTestKernel()
	_, _ = k.AddFact("IsPhilosopher(Socrates).")

	v, reason := k.Prove(context.Background(), "IsPhilosopher(Socrates).")

	assert.Equal(t, verdict.Proved, v)
	assert.Contains(t, reason, "Pattern Matcher")
}

// Scenario 2: pattern-match refutation.
func TestScenarioPatternMatchRefutation(t *testing.T) {
	k := newTestKernel()
	_, _ = k.AddFact("-IsOnline(ServerA).")

	v, reason := k.Prove(context.Background(), "IsOnline(ServerA).")

	assert.Equal(t, verdict.Refuted, v)
	assert.Contains(t, reason, "Pattern Matcher")
}

// Scenario 3: functional contradiction detected at insertion.
func TestScenarioFunctionalContradictionAtInsertion(t *testing.T) {
	k := newTestKernel()
	_, _ = k.AddFact("Capital(France, Paris).")

	accepted, reason := k.AddFact("Capital(France, Berlin).")

	require.False(t, accepted)
	assert.Contains(t, reason, "Capital")
	assert.Contains(t, reason, "France")
	assert.Contains(t, reason, "Paris")
	assert.Contains(t, reason, "Berlin")
}

// Scenario 4: SMT-proved universal. Requires a z3 binary on PATH; skips
// cleanly in environments that don't carry one (CI without z3 installed).
func TestScenarioSMTProvedUniversal(t *testing.T) {
	if _, err := exec.LookPath("z3"); err != nil {
		t.Skip("z3 binary not available on PATH")
	}

	k := newTestKernel()
	_, _ = k.AddFact("all x (IsLegacy(x) -> ShouldRefactor(x)).")
	_, _ = k.AddFact("IsLegacy(BillingSystem).")

	v, reason := k.Prove(context.Background(), "ShouldRefactor(BillingSystem).")

	assert.Equal(t, verdict.Proved, v)
	assert.Contains(t, reason, "SMT Adapter")
}

// Scenario 5: all provers unknown, and the miss is not cached.
func TestScenarioAllProversUnknownIsNotCached(t *testing.T) {
	k := newTestKernel()

	v, reason := k.Prove(context.Background(), "Likes(Alice,Bob).")
	assert.Equal(t, verdict.Unknown, v)
	assert.Equal(t, "no prover found a definitive answer", reason)

	missesBefore := k.cache.Stats().Misses
	_, _ = k.Prove(context.Background(), "Likes(Alice,Bob).")
	missesAfter := k.cache.Stats().Misses

	assert.Equal(t, missesBefore+1, missesAfter, "an uncached Unknown verdict must be recomputed, not served from cache")
}

// Scenario 6: cache hit after a positive verdict.
func TestScenarioCacheHitAfterPositiveVerdict(t *testing.T) {
	k := newTestKernel()
	_, _ = k.AddFact("IsPhilosopher(Socrates).")
	_, _ = k.Prove(context.Background(), "IsPhilosopher(Socrates).")

	hitsBefore := k.cache.Stats().Hits
	v, _ := k.Prove(context.Background(), "IsPhilosopher(Socrates).")
	hitsAfter := k.cache.Stats().Hits

	assert.Equal(t, verdict.Proved, v)
	assert.Equal(t, hitsBefore+1, hitsAfter)
}

func TestAddFactClearsProofCacheOnMutation(t *testing.T) {
	k := newTestKernel()
	_, _ = k.AddFact("IsPhilosopher(Socrates).")
	_, _ = k.Prove(context.Background(), "IsPhilosopher(Socrates).")
	require.Equal(t, 1, k.cache.Len())

	_, _ = k.AddFact("IsPhilosopher(Plato).")

	assert.Equal(t, 0, k.cache.Len())
}

func TestRetractFactClearsProofCacheOnRemoval(t *testing.T) {
	k := newTestKernel()
	_, _ = k.AddFact("IsPhilosopher(Socrates).")
	_, _ = k.Prove(context.Background(), "IsPhilosopher(Socrates).")
	require.Equal(t, 1, k.cache.Len())

	removed := k.RetractFact("IsPhilosopher(Socrates).")

	assert.True(t, removed)
	assert.Equal(t, 0, k.cache.Len())
}

func TestCheckConsistencyDoesNotMutateKB(t *testing.T) {
	k := newTestKernel()
	_, _ = k.AddFact("Capital(France, Paris).")

	consistent, _ := k.CheckConsistency("Capital(France, Berlin).")

	assert.False(t, consistent)
	assert.Equal(t, 1, len(k.Snapshot()))
}

func TestStatsReportsFactsAndCacheSize(t *testing.T) {
	k := newTestKernel()
	_, _ = k.AddFact("IsPhilosopher(Socrates).")
	_, _ = k.Prove(context.Background(), "IsPhilosopher(Socrates).")

	stats := k.Stats()

	assert.Equal(t, 1, stats.Facts)
	assert.Equal(t, 1, stats.CacheSize)
}
