package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reasonkernel/internal/cache"
	"reasonkernel/internal/portfolio"
	"reasonkernel/internal/verdict"
)

func TestSaveThenLoadRoundTripsFacts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	artifact := Artifact{
		Facts: []string{"LocatedIn(Berlin,Germany)", "Capital(Germany,Berlin)"},
		PortfolioStats: map[string]portfolio.Record{
			"Pattern Matcher": {SuccessRate: 0.5, AvgDuration: 0.01, Count: 2},
		},
	}

	require.NoError(t, Save(path, artifact))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, artifact.Facts, loaded.Facts)
	assert.Equal(t, artifact.PortfolioStats, loaded.PortfolioStats)
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	require.NoError(t, Save(path, Artifact{Facts: []string{"P(a)"}}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadOnMissingFileReturnsEmptyArtifactWithoutError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does_not_exist.json")

	artifact, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, artifact.SchemaVersion)
	assert.Empty(t, artifact.Facts)
}

func TestLoadOnCorruptFileReturnsEmptyArtifactWithoutError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0644))

	artifact, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, artifact.Facts)
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	raw := `{"schema_version":1,"facts":["P(a)"],"proof_cache":[],"portfolio_stats":{},"some_future_field":{"x":1}}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	artifact, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"P(a)"}, artifact.Facts)
}

func TestLoadMigratesLegacyRagDataChunksTupleForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	raw := `{
		"schema_version": 1,
		"facts": [],
		"proof_cache": [],
		"portfolio_stats": {},
		"rag_data": {"chunks": [["hello world", "doc1.txt"], ["second chunk", "doc2.txt"]]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	artifact, err := Load(path)
	require.NoError(t, err)
	require.Len(t, artifact.RagChunks, 2)
	assert.Equal(t, RagChunk{Text: "hello world", Source: "doc1.txt"}, artifact.RagChunks[0])
	assert.Equal(t, RagChunk{Text: "second chunk", Source: "doc2.txt"}, artifact.RagChunks[1])
}

func TestLoadLeavesAlreadyMigratedRagChunksUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	raw := `{
		"schema_version": 1,
		"facts": [],
		"proof_cache": [],
		"portfolio_stats": {},
		"rag_chunks": [{"text": "already new form", "source": "doc.txt"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	artifact, err := Load(path)
	require.NoError(t, err)
	require.Len(t, artifact.RagChunks, 1)
	assert.Equal(t, "already new form", artifact.RagChunks[0].Text)
}

func TestBuildProofCacheThenRestoreRoundTrips(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	snapshot := map[cache.Key]cache.Entry{
		{Fingerprint: "fp1", Goal: "Capital(Germany,Berlin)"}: {Verdict: verdict.Proved, Reason: "pattern match", Timestamp: now},
		{Fingerprint: "fp2", Goal: "Capital(Germany,Munich)"}: {Verdict: verdict.Refuted, Reason: "functional dependency", Timestamp: now},
	}

	entries := BuildProofCache(snapshot)
	require.Len(t, entries, 2)
	// Deterministic order: sorted by (fingerprint, goal).
	assert.Equal(t, "fp1", entries[0].Fingerprint)
	assert.Equal(t, "fp2", entries[1].Fingerprint)

	restored := RestoreProofCache(entries)
	assert.Equal(t, snapshot, restored)
}

func TestRestoreProofCacheDropsEntriesWithUnknownVerdictSpelling(t *testing.T) {
	entries := []ProofCacheEntry{
		{Fingerprint: "fp", Goal: "P(a)", Verdict: "Proved"},
		{Fingerprint: "fp", Goal: "Q(a)", Verdict: "garbage"},
	}

	restored := RestoreProofCache(entries)
	assert.Len(t, restored, 1)
	_, ok := restored[cache.Key{Fingerprint: "fp", Goal: "P(a)"}]
	assert.True(t, ok)
}

func TestSaveDefaultsSchemaVersionWhenUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, Save(path, Artifact{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var generic map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &generic))

	var version int
	require.NoError(t, json.Unmarshal(generic["schema_version"], &version))
	assert.Equal(t, SchemaVersion, version)
}

func TestDefaultPathJoinsWorkspaceDirectory(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp/workspace", "kernel_state.json"), DefaultPath("/tmp/workspace"))
}
