// Package persistence reads and writes the kernel's on-disk state as a
// single versioned JSON artifact (spec.md 6, 9: "a portable, explicit
// schema ... Use a tagged binary or JSON format with a version field" —
// the original's pickle-based save/load is explicitly rejected).
//
// Grounded on original_source/backend/infrastructure/persistence.py's
// save/load/migrate_old_format (same four top-level keys, same legacy
// rag_data.chunks migration), rendered in the write-then-rename,
// os.WriteFile/json.MarshalIndent idiom used throughout
// internal/autopoiesis/prompt_evolution (evolver.go's atom files) and
// cmd/nerd/chat/northstar_persistence.go's JSON backup.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reasonkernel/internal/cache"
	"reasonkernel/internal/portfolio"
	"reasonkernel/internal/reasonerr"
	"reasonkernel/internal/verdict"
)

// SchemaVersion is the current artifact format version. Loaders reject
// no file (treated as empty state) but accept any version value found
// on disk — there is only one version so far, but the field exists
// from the start per spec.md 9's instruction.
const SchemaVersion = 1

// ProofCacheEntry is the JSON form of one internal/cache.Entry, keyed
// by the fingerprint and goal strings rather than a struct key, since
// JSON object keys must be strings.
type ProofCacheEntry struct {
	Fingerprint string    `json:"fingerprint"`
	Goal        string    `json:"goal"`
	Verdict     string    `json:"verdict"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// RagChunk is the migrated form of a legacy rag_data.chunks pair. RAG
// retrieval itself is out of scope (spec.md Non-goals), but the
// migration is a persistence-layer concern and the chunks are carried
// through unevaluated so a later artifact save round-trips them rather
// than silently discarding a field this package doesn't otherwise use.
type RagChunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Artifact is the full on-disk shape (spec.md 6's four required keys
// plus SchemaVersion). ParserStats is carried opaquely (map[string]any)
// since no package in this codebase currently emits parser statistics;
// it round-trips on save/load without interpretation.
type Artifact struct {
	SchemaVersion  int                    `json:"schema_version"`
	Facts          []string               `json:"facts"`
	ParserStats    map[string]any         `json:"parser_stats,omitempty"`
	ProofCache     []ProofCacheEntry      `json:"proof_cache"`
	PortfolioStats map[string]portfolio.Record `json:"portfolio_stats"`
	RagChunks      []RagChunk             `json:"rag_chunks,omitempty"`
}

// Save writes artifact to path as indented JSON, using a write-to-temp,
// fsync-free rename discipline: the new content lands at path+".tmp"
// first and is only renamed over path once fully written, so a crash
// mid-write never leaves a truncated or half-written file in place.
// Grounded on internal/autopoiesis/prompt_evolution/evolver.go's
// promote/reject rename pattern (os.Rename, with a same-directory temp
// file so the rename is same-filesystem and therefore atomic on POSIX).
func Save(path string, artifact Artifact) error {
	if artifact.SchemaVersion == 0 {
		artifact.SchemaVersion = SchemaVersion
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return reasonerr.New(reasonerr.PersistenceError, fmt.Sprintf("marshal: %v", err))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return reasonerr.New(reasonerr.PersistenceError, fmt.Sprintf("write %s: %v", tmp, err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return reasonerr.New(reasonerr.PersistenceError, fmt.Sprintf("rename %s to %s: %v", tmp, path, err))
	}
	return nil
}

// Load reads and migrates the artifact at path. A missing file is not
// an error: it yields an empty Artifact carrying only SchemaVersion, matching spec.md 7's
// PersistenceError policy ("load: ignored, empty KB"). A present but
// unparsable file is likewise treated as empty rather than surfaced,
// for the same reason — load failures never block startup.
func Load(path string) (Artifact, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Artifact{SchemaVersion: SchemaVersion}, nil
	}
	if err != nil {
		return Artifact{SchemaVersion: SchemaVersion}, nil
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Artifact{SchemaVersion: SchemaVersion}, nil
	}
	migrateRagChunks(generic)

	migrated, err := json.Marshal(generic)
	if err != nil {
		return Artifact{SchemaVersion: SchemaVersion}, nil
	}

	var artifact Artifact
	// Unknown keys in generic are silently ignored by Unmarshal into a
	// concrete struct (spec.md 6: "Unknown keys are ignored on load").
	if err := json.Unmarshal(migrated, &artifact); err != nil {
		return Artifact{SchemaVersion: SchemaVersion}, nil
	}
	if artifact.SchemaVersion == 0 {
		artifact.SchemaVersion = SchemaVersion
	}
	return artifact, nil
}

// migrateRagChunks converts a legacy rag_data.chunks field — a list of
// [text, source] pairs — into the current rag_chunks list-of-objects
// form, in place on the raw generic map. Grounded directly on
// migrate_old_format: detect the old shape (first element is an array,
// not an object), convert element by element, leave untouched data
// alone otherwise.
func migrateRagChunks(generic map[string]json.RawMessage) {
	raw, ok := generic["rag_data"]
	if !ok {
		return
	}

	var ragData struct {
		Chunks []json.RawMessage `json:"chunks"`
	}
	if err := json.Unmarshal(raw, &ragData); err != nil || len(ragData.Chunks) == 0 {
		return
	}

	var probe []json.RawMessage
	if err := json.Unmarshal(ragData.Chunks[0], &probe); err != nil {
		// Already object-shaped (or something else entirely); nothing to migrate.
		return
	}

	converted := make([]RagChunk, 0, len(ragData.Chunks))
	for _, chunkRaw := range ragData.Chunks {
		var pair []string
		if err := json.Unmarshal(chunkRaw, &pair); err != nil || len(pair) != 2 {
			continue
		}
		converted = append(converted, RagChunk{Text: pair[0], Source: pair[1]})
	}

	out, err := json.Marshal(converted)
	if err != nil {
		return
	}
	generic["rag_chunks"] = out
	delete(generic, "rag_data")
}

// BuildProofCache converts a cache.Snapshot map into the artifact's
// slice form for stable JSON encoding (a Go map has no fixed key
// order, and cache.Key cannot itself be a JSON object key).
func BuildProofCache(snapshot map[cache.Key]cache.Entry) []ProofCacheEntry {
	out := make([]ProofCacheEntry, 0, len(snapshot))
	for k, e := range snapshot {
		out = append(out, ProofCacheEntry{
			Fingerprint: k.Fingerprint,
			Goal:        k.Goal,
			Verdict:     e.Verdict.String(),
			Reason:      e.Reason,
			Timestamp:   e.Timestamp,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fingerprint != out[j].Fingerprint {
			return out[i].Fingerprint < out[j].Fingerprint
		}
		return out[i].Goal < out[j].Goal
	})
	return out
}

// RestoreProofCache converts the artifact's proof-cache slice back into
// the map[cache.Key]cache.Entry form cache.ProofCache.Restore expects,
// silently dropping entries whose verdict string doesn't match one of
// the three known spellings (a corrupt or hand-edited artifact degrades
// to fewer cached proofs rather than failing the whole load).
func RestoreProofCache(entries []ProofCacheEntry) map[cache.Key]cache.Entry {
	out := make(map[cache.Key]cache.Entry, len(entries))
	for _, e := range entries {
		v, ok := parseVerdict(e.Verdict)
		if !ok {
			continue
		}
		out[cache.Key{Fingerprint: e.Fingerprint, Goal: e.Goal}] = cache.Entry{
			Verdict:   v,
			Reason:    e.Reason,
			Timestamp: e.Timestamp,
		}
	}
	return out
}

func parseVerdict(s string) (verdict.Verdict, bool) {
	switch strings.TrimSpace(s) {
	case "Proved":
		return verdict.Proved, true
	case "Refuted":
		return verdict.Refuted, true
	case "Unknown":
		return verdict.Unknown, true
	default:
		return verdict.Unknown, false
	}
}

// DefaultPath returns the conventional artifact location under dir
// (e.g. a workspace's .nerd directory, following
// cmd/nerd/chat/northstar_persistence.go's filepath.Join(workspace,
// ".nerd", ...) convention), named after the kernel it persists.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "kernel_state.json")
}
