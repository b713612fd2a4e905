package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reasonkernel/internal/verdict"
)

func TestProofCacheStoresOnlyDefinitiveVerdicts(t *testing.T) {
	c := New()
	now := time.Unix(0, 0)

	c.Put("fp", "goal", verdict.Unknown, "no prover decided", now)
	_, ok := c.Get("fp", "goal")
	assert.False(t, ok, "Unknown verdicts must not be cached")

	c.Put("fp", "goal", verdict.Refuted, "pattern prover", now)
	entry, ok := c.Get("fp", "goal")
	assert.True(t, ok, "Refuted verdicts must be cached, unlike the source's Proved-only cache")
	assert.Equal(t, verdict.Refuted, entry.Verdict)
}

func TestProofCacheHitMissCounters(t *testing.T) {
	c := New()
	now := time.Unix(0, 0)
	c.Put("fp", "goal", verdict.Proved, "smt", now)

	c.Get("fp", "goal")     // hit
	c.Get("fp", "other")    // miss
	c.Get("other-fp", "goal") // miss

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestProofCacheClearEmptiesEntries(t *testing.T) {
	c := New()
	c.Put("fp", "goal", verdict.Proved, "smt", time.Unix(0, 0))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("fp", "goal")
	assert.False(t, ok)
}

func TestFingerprintIsOrderIndependent(t *testing.T) {
	a := Fingerprint([]string{"P(x).", "Q(y)."})
	b := Fingerprint([]string{"Q(y).", "P(x)."})
	assert.Equal(t, a, b)
}

func TestProofCacheSnapshotRestoreRoundTrips(t *testing.T) {
	c := New()
	now := time.Unix(1700000000, 0)
	c.Put("fp", "goal", verdict.Proved, "smt", now)

	snap := c.Snapshot()

	restored := New()
	restored.Restore(snap)

	entry, ok := restored.Get("fp", "goal")
	assert.True(t, ok)
	assert.Equal(t, verdict.Proved, entry.Verdict)
	assert.Equal(t, "smt", entry.Reason)
	assert.True(t, now.Equal(entry.Timestamp))
}
