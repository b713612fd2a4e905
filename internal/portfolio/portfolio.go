// Package portfolio holds per-prover performance records and orders a
// portfolio's members for a given goal.
//
// Grounded on
// original_source/backend/services/prover_portfolio_manager.py.
package portfolio

import (
	"sync"

	"reasonkernel/internal/complexity"
	"reasonkernel/internal/provers"
)

// Record is a prover's running performance statistics (spec.md 4.6).
type Record struct {
	SuccessRate float64
	AvgDuration float64
	Count       uint64
}

// Manager orders a portfolio's provers for a goal and tracks their
// running performance. It owns its records exclusively; the kernel is
// the only caller (spec.md 5: "Prover performance records: exclusively
// owned by the portfolio manager").
type Manager struct {
	mu      sync.Mutex
	records map[string]Record
}

// New constructs an empty Manager.
func New() *Manager {
	return &Manager{records: make(map[string]Record)}
}

// Order returns available in the order recommended by the complexity
// report for formula, with any prover not named by the report appended
// at the tail in its original relative order (spec.md 4.6: "returns the
// available provers ordered by the recommended list, appending any
// unreferenced provers at the tail").
func Order(report complexity.Report, available []provers.Prover) []provers.Prover {
	byName := make(map[string]provers.Prover, len(available))
	for _, p := range available {
		byName[p.Name()] = p
	}

	seen := make(map[string]bool, len(available))
	ordered := make([]provers.Prover, 0, len(available))

	for _, name := range report.RecommendedProvers {
		if p, ok := byName[name]; ok && !seen[name] {
			ordered = append(ordered, p)
			seen[name] = true
		}
	}
	for _, p := range available {
		if !seen[p.Name()] {
			ordered = append(ordered, p)
			seen[p.Name()] = true
		}
	}
	return ordered
}

// RecordAttempt folds one prover invocation's outcome into its running
// record, per spec.md 4.6's incremental-average formulas. definitive is
// true iff the verdict returned was Proved or Refuted (not Unknown).
func (m *Manager) RecordAttempt(proverName string, definitive bool, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.records[proverName]
	successTerm := 0.0
	if definitive {
		successTerm = 1.0
	}

	n := float64(rec.Count)
	rec.SuccessRate = (rec.SuccessRate*n + successTerm) / (n + 1)
	rec.AvgDuration = (rec.AvgDuration*n + duration) / (n + 1)
	rec.Count++

	m.records[proverName] = rec
}

// Snapshot returns a copy of every prover's current record, suitable
// for persistence or reporting.
func (m *Manager) Snapshot() map[string]Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Record, len(m.records))
	for name, rec := range m.records {
		out[name] = rec
	}
	return out
}

// Restore replaces the manager's records wholesale, used when loading
// persisted state.
func (m *Manager) Restore(records map[string]Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]Record, len(records))
	for name, rec := range records {
		m.records[name] = rec
	}
}
