package provers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reasonkernel/internal/logic"
	"reasonkernel/internal/verdict"
)

func atom(pred string, args ...logic.Term) *logic.Atom {
	return &logic.Atom{Predicate: pred, Args: args}
}

func TestOracleProverRejectsNonAtomicGoal(t *testing.T) {
	p := NewOracleProver(DefaultOracleConfig("http://unused.invalid"))
	goal := &logic.Not{Operand: atom("Capital", logic.NewConstant("France"), logic.NewConstant("Paris"))}

	v, reason := p.Prove(context.Background(), nil, goal)

	assert.Equal(t, verdict.Unknown, v)
	assert.Equal(t, "oracle supports atomic facts only", reason)
}

func TestOracleProverQueriesEndpointAndCachesResult(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(oracleResponse{Answers: []string{"Paris"}})
	}))
	defer server.Close()

	cfg := DefaultOracleConfig(server.URL)
	p := NewOracleProver(cfg)
	goal := atom("CapitalOf", logic.NewConstant("France"), logic.NewVariable("x"))

	v, reason := p.Prove(context.Background(), nil, goal)
	require.Equal(t, verdict.Proved, v)
	assert.Contains(t, reason, "Paris")

	v2, reason2 := p.Prove(context.Background(), nil, goal)
	assert.Equal(t, verdict.Proved, v2)
	assert.Contains(t, reason2, "from cache")
	assert.Equal(t, 1, hits, "second call must be served from cache, not a second HTTP round trip")
}

func TestOracleProverExpiresCacheEntriesPastTTL(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(oracleResponse{Answers: []string{"Paris"}})
	}))
	defer server.Close()

	cfg := DefaultOracleConfig(server.URL)
	cfg.CacheTTL = time.Millisecond
	p := NewOracleProver(cfg)
	goal := atom("CapitalOf", logic.NewConstant("France"), logic.NewVariable("x"))

	_, _ = p.Prove(context.Background(), nil, goal)
	time.Sleep(5 * time.Millisecond)
	_, reason := p.Prove(context.Background(), nil, goal)

	assert.NotContains(t, reason, "from cache")
	assert.Equal(t, 2, hits)
}

func TestOracleProverClearCacheForcesRefetch(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(oracleResponse{Answers: []string{"Paris"}})
	}))
	defer server.Close()

	p := NewOracleProver(DefaultOracleConfig(server.URL))
	goal := atom("CapitalOf", logic.NewConstant("France"), logic.NewVariable("x"))

	_, _ = p.Prove(context.Background(), nil, goal)
	p.ClearCache()
	_, reason := p.Prove(context.Background(), nil, goal)

	assert.NotContains(t, reason, "from cache")
	assert.Equal(t, 2, hits)
}

func TestOracleProverReturnsUnknownOnHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOracleProver(DefaultOracleConfig(server.URL))
	goal := atom("Population", logic.NewConstant("Vienna"), logic.NewVariable("x"))

	v, reason := p.Prove(context.Background(), nil, goal)

	assert.Equal(t, verdict.Unknown, v)
	assert.NotEmpty(t, reason)
}

func TestExtractAnswerAppliesCapitalHeuristic(t *testing.T) {
	answer := extractAnswer("what is the capital of france", []string{"A small town", "Paris"})
	assert.Equal(t, "Paris", answer)
}

func TestExtractAnswerAppliesPopulationHeuristic(t *testing.T) {
	answer := extractAnswer("population of vienna", []string{"quite large", "1,897,491"})
	assert.Equal(t, "1,897,491", answer)
}

func TestExtractAnswerFallsBackToFirstLongAnswer(t *testing.T) {
	answer := extractAnswer("derivative of x squared", []string{"no", "2x, by the power rule"})
	assert.Equal(t, "2x, by the power rule", answer)
}

func TestTranslateBuildsFreeVariableQuestion(t *testing.T) {
	p := NewOracleProver(DefaultOracleConfig("http://unused.invalid"))
	query := p.translate(atom("CapitalOf", logic.NewConstant("France"), logic.NewVariable("x")))
	assert.Equal(t, "what is the capital of france", query)
}

func TestTranslateBuildsGroundQuery(t *testing.T) {
	p := NewOracleProver(DefaultOracleConfig("http://unused.invalid"))
	query := p.translate(atom("Population", logic.NewConstant("Vienna")))
	assert.Equal(t, "population of vienna", query)
}
