// Package kernel implements the reasoning kernel's central routine:
// cache-then-portfolio proof search over a knowledge base, and the
// mutating operations (add_fact, retract_fact) that keep the proof
// cache coherent with the KB.
//
// Grounded on original_source/backend/core/fol_core.py's
// verify_logical (cache lookup, portfolio-ordered sequential prover
// invocation, performance-record updates, the "no prover found a
// definitive answer" terminal case) — the fact-storage and
// consistency-check half of that same file is internal/kb's
// responsibility instead, per spec.md 5's explicit ownership split
// between the KB/proof-cache (kernel) and the fact set (KB manager).
package kernel

import (
	"context"
	"fmt"
	"time"

	"reasonkernel/internal/cache"
	"reasonkernel/internal/complexity"
	"reasonkernel/internal/grammar"
	"reasonkernel/internal/kb"
	"reasonkernel/internal/normalize"
	"reasonkernel/internal/portfolio"
	"reasonkernel/internal/provers"
	"reasonkernel/internal/verdict"
)

// DiagnosticLogger receives one record per prover invocation inside a
// single prove call, satisfied by *zap.SugaredLogger.
type DiagnosticLogger interface {
	Debugf(template string, args ...interface{})
}

// cacheClearer is implemented by provers (currently only the oracle
// adapter) that keep their own invalidation-capable cache.
type cacheClearer interface {
	ClearCache()
}

// Kernel ties together the knowledge base, the proof cache, the
// prover portfolio, and the complexity analyzer into the single
// `prove` routine. It is the sole owner of the KB and proof cache
// (spec.md 5) and is not safe for concurrent use — a driver serving
// concurrent callers must wrap it in its own mutex.
type Kernel struct {
	kb         *kb.KB
	cache      *cache.ProofCache
	portfolio  *portfolio.Manager
	norm       *normalize.Normalizer
	log        DiagnosticLogger
	budget     time.Duration

	pattern    provers.Prover
	functional provers.Prover
	all        []provers.Prover

	oraclePredicates map[string]bool
}

// Config collects a Kernel's fixed dependencies.
type Config struct {
	Normalizer           *normalize.Normalizer
	Pattern              provers.Prover
	Functional           provers.Prover
	AllProvers           []provers.Prover
	OraclePredicates     map[string]bool
	ProverBudget         time.Duration
	Log                  DiagnosticLogger
}

// New constructs a Kernel with an empty knowledge base. Every prover in
// cfg.AllProvers should already be wrapped with provers.Safe, so a
// panicking prover degrades to Unknown rather than aborting prove
// (spec.md 4.4).
func New(cfg Config) *Kernel {
	budget := cfg.ProverBudget
	if budget <= 0 {
		budget = 10 * time.Second
	}
	return &Kernel{
		kb:               kb.New(cfg.Normalizer),
		cache:            cache.New(),
		portfolio:        portfolio.New(),
		norm:             cfg.Normalizer,
		log:              cfg.Log,
		budget:           budget,
		pattern:          cfg.Pattern,
		functional:       cfg.Functional,
		all:              cfg.AllProvers,
		oraclePredicates: cfg.OraclePredicates,
	}
}

func (k *Kernel) checker() kb.StandardConsistencyChecker {
	return kb.StandardConsistencyChecker{Pattern: k.pattern, Functional: k.functional}
}

// AddFact normalizes, parses, consistency-checks, and inserts raw into
// the knowledge base, clearing the proof cache on any actual mutation
// (spec.md 4.7, P5).
func (k *Kernel) AddFact(raw string) (accepted bool, reason string) {
	before := k.kb.Len()
	accepted, reason = k.kb.AddFact(k.checker(), raw)
	if accepted && k.kb.Len() != before {
		k.cache.Clear()
	}
	return accepted, reason
}

// RetractFact removes raw from the knowledge base if present, clearing
// the proof cache on removal.
func (k *Kernel) RetractFact(raw string) bool {
	removed := k.kb.RetractFact(raw)
	if removed {
		k.cache.Clear()
	}
	return removed
}

// CheckConsistency reports whether raw is consistent with the current
// KB without mutating anything.
func (k *Kernel) CheckConsistency(raw string) (consistent bool, reason string) {
	canonical := k.norm.Normalize(raw)
	formula, err := grammar.Parse(canonical)
	if err != nil {
		return false, fmt.Sprintf("parse error: %v", err)
	}
	return k.kb.CheckConsistency(k.checker(), formula)
}

// oracleAvailability, as built by hasOracle, reports whether this
// kernel's provers include one named "Oracle Adapter", so the complexity
// analyzer only recommends it when it is actually wired in.
type oracleAvailability struct{ available bool }

func (o oracleAvailability) OracleAvailable() bool { return o.available }

func (k *Kernel) hasOracle() oracleAvailability {
	for _, p := range k.all {
		if p.Name() == "Oracle Adapter" {
			return oracleAvailability{true}
		}
	}
	return oracleAvailability{false}
}

// Prove is the kernel's central routine (spec.md 4.7): normalize and
// parse goal, consult the proof cache, and on a miss ask the portfolio
// for an ordered prover list and invoke each sequentially until one
// returns a definitive verdict. If every prover returns Unknown, the
// result is not cached (P5 is about KB mutation, not this case; P6
// still holds vacuously since nothing was stored).
func (k *Kernel) Prove(ctx context.Context, goalRaw string) (verdict.Verdict, string) {
	canonical := k.norm.Normalize(goalRaw)
	goalFormula, err := grammar.Parse(canonical)
	if err != nil {
		return verdict.Unknown, fmt.Sprintf("parse error: %v", err)
	}
	goalKey := goalFormula.String()

	facts := k.kb.Facts()
	fingerprint := cache.Fingerprint(k.kb.Snapshot())

	if entry, hit := k.cache.Get(fingerprint, goalKey); hit {
		return entry.Verdict, entry.Reason
	}

	report := complexity.Analyze(goalKey, k.oraclePredicates, k.hasOracle())
	ordered := portfolio.Order(report, k.all)

	for _, p := range ordered {
		proveCtx, cancel := context.WithTimeout(ctx, k.budget)
		start := time.Now()
		v, reason := p.Prove(proveCtx, facts, goalFormula)
		duration := time.Since(start)
		cancel()

		definitive := v.Definitive()
		k.portfolio.RecordAttempt(p.Name(), definitive, duration.Seconds())

		if k.log != nil {
			k.log.Debugf("prove: %s -> %s (%s) in %s", p.Name(), v, reason, duration)
		}

		if definitive {
			k.cache.Put(fingerprint, goalKey, v, reason, time.Now())
			return v, reason
		}
	}

	return verdict.Unknown, "no prover found a definitive answer"
}

// Snapshot returns the current fact set in insertion order.
func (k *Kernel) Snapshot() []string { return k.kb.Snapshot() }

// Stats reports the sizes and hit rates the external API exposes
// (spec.md 6: "stats() -> {facts: n, cache: {size, hit_rate},
// portfolio: map<prover, record>}").
type Stats struct {
	Facts          int
	CacheSize      int
	CacheHitRate   float64
	PortfolioStats map[string]portfolio.Record
}

func (k *Kernel) Stats() Stats {
	cacheStats := k.cache.Stats()
	return Stats{
		Facts:          k.kb.Len(),
		CacheSize:      k.cache.Len(),
		CacheHitRate:   cacheStats.HitRate(),
		PortfolioStats: k.portfolio.Snapshot(),
	}
}

// SetOraclePredicates replaces the driver-extensible oracle predicate
// set used by the complexity analyzer.
func (k *Kernel) SetOraclePredicates(names map[string]bool) {
	k.oraclePredicates = names
}

// ClearCaches clears the proof cache and, if the portfolio includes an
// oracle adapter, its own TTL cache too (spec.md 6: "clear_caches()").
func (k *Kernel) ClearCaches() {
	k.cache.Clear()
	for _, p := range k.all {
		if clearer, ok := p.(cacheClearer); ok {
			clearer.ClearCache()
		}
	}
}

// PortfolioManager exposes the underlying portfolio manager for
// persistence (restoring/snapshotting prover performance records
// survives restarts per spec.md 4.6).
func (k *Kernel) PortfolioManager() *portfolio.Manager { return k.portfolio }

// ProofCache exposes the underlying proof cache for persistence.
func (k *Kernel) ProofCache() *cache.ProofCache { return k.cache }
