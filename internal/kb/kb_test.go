package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reasonkernel/internal/normalize"
	"reasonkernel/internal/provers"
)

func newTestKB() *KB {
	return New(normalize.New(normalize.DefaultSynonyms(), nil))
}

func newTestChecker() StandardConsistencyChecker {
	return StandardConsistencyChecker{
		Pattern:    provers.NewPatternProver(),
		Functional: provers.NewFunctionalProver(provers.DefaultFunctionalPredicates()),
	}
}

func TestAddFactAcceptsNovelConsistentFact(t *testing.T) {
	k := newTestKB()
	checker := newTestChecker()

	accepted, reason := k.AddFact(checker, "IsPhilosopher(Socrates).")

	assert.True(t, accepted, reason)
	assert.Equal(t, 1, k.Len())
}

func TestAddFactRejectsNegationOfExistingFact(t *testing.T) {
	k := newTestKB()
	checker := newTestChecker()

	_, _ = k.AddFact(checker, "IsOnline(ServerA).")
	accepted, reason := k.AddFact(checker, "-IsOnline(ServerA).")

	assert.False(t, accepted)
	assert.Contains(t, reason, "contradicts")
	assert.Equal(t, 1, k.Len())
}

func TestAddFactRejectsFunctionalContradiction(t *testing.T) {
	k := newTestKB()
	checker := newTestChecker()

	_, _ = k.AddFact(checker, "Capital(France, Paris).")
	accepted, reason := k.AddFact(checker, "Capital(France, Berlin).")

	require.False(t, accepted)
	assert.Contains(t, reason, "Capital")
	assert.Contains(t, reason, "France")
	assert.Contains(t, reason, "Paris")
	assert.Contains(t, reason, "Berlin")
	assert.Equal(t, 1, k.Len())
}

func TestAddFactIsIdempotentForExactDuplicates(t *testing.T) {
	k := newTestKB()
	checker := newTestChecker()

	_, _ = k.AddFact(checker, "IsPhilosopher(Socrates).")
	accepted, _ := k.AddFact(checker, "IsPhilosopher(Socrates).")

	assert.True(t, accepted)
	assert.Equal(t, 1, k.Len())
}

func TestRetractFactRemovesPresentFact(t *testing.T) {
	k := newTestKB()
	checker := newTestChecker()
	_, _ = k.AddFact(checker, "IsPhilosopher(Socrates).")

	removed := k.RetractFact("IsPhilosopher(Socrates).")

	assert.True(t, removed)
	assert.Equal(t, 0, k.Len())
}

func TestRetractFactReportsFalseForAbsentFact(t *testing.T) {
	k := newTestKB()

	removed := k.RetractFact("IsPhilosopher(Socrates).")

	assert.False(t, removed)
}

func TestSnapshotPreservesInsertionOrder(t *testing.T) {
	k := newTestKB()
	checker := newTestChecker()
	_, _ = k.AddFact(checker, "IsPhilosopher(Socrates).")
	_, _ = k.AddFact(checker, "IsPhilosopher(Plato).")

	snap := k.Snapshot()

	require.Len(t, snap, 2)
	assert.Equal(t, "IsPhilosopher(Socrates).", snap[0])
	assert.Equal(t, "IsPhilosopher(Plato).", snap[1])
}
