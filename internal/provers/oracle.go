package provers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"reasonkernel/internal/axioms"
	"reasonkernel/internal/cache"
	"reasonkernel/internal/logic"
	"reasonkernel/internal/verdict"
)

// DefaultOraclePredicates is the shipped, driver-extensible set of
// predicates the oracle adapter will attempt to answer (spec.md 6). It
// delegates to internal/axioms, the single source of truth also
// consulted by the complexity analyzer's caller when deciding whether
// a goal requires the oracle.
func DefaultOraclePredicates() map[string]bool {
	return axioms.DefaultOraclePredicates()
}

// phraseLabels translates an oracle predicate name to the noun phrase used
// to build a natural-language query, grounded on
// original_source/backend/adapters/provers/wolfram.py's `patterns`/`queries`
// tables, translated from the original's German-oriented predicate names to
// spec.md's English oracle predicate set.
var phraseLabels = map[string]string{
	"PopulationDensity": "population density",
	"CapitalOf":         "capital",
	"WeatherIn":         "weather",
	"TemperatureIn":     "temperature",
	"Integral":          "integral",
	"DerivativeOf":      "derivative",
	"CurrencyOf":        "currency",
	"AreaOf":            "area",
	"Population":        "population",
	"TimezoneOf":        "timezone",
	"CurrentTime":       "current time",
	"Unit":              "unit",
	"Solution":          "solution",
	"Factorization":     "factorization",
	"Inhabitant":        "population",
	"Capital":           "capital",
}

// legacyTermTranslations carries forward the original's German->English word
// table (wolfram.py's _translate_german_terms) so oracle queries built from
// facts imported under the legacy surface still translate sensibly.
var legacyTermTranslations = map[string]string{
	"bevölkerung":      "population",
	"hauptstadt":       "capital",
	"wetter":           "weather",
	"währung":          "currency",
	"fläche":           "area",
	"temperatur":       "temperature",
	"zeitzone":         "timezone",
	"deutschland":      "germany",
	"frankreich":       "france",
	"italien":          "italy",
	"spanien":          "spain",
	"großbritannien":   "united kingdom",
	"österreich":       "austria",
	"schweiz":          "switzerland",
}

var camelWordBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// OracleConfig configures the external-knowledge oracle adapter.
type OracleConfig struct {
	Endpoint       string
	HTTPTimeout    time.Duration
	CacheTTL       time.Duration
	OraclePredicates map[string]bool
}

// DefaultOracleConfig returns the shipped defaults: a 5s HTTP timeout and a
// 1-hour cache TTL (spec.md 4.4.4, and the Data Model's oracle cache entry
// note: "TTL configurable (default one hour)").
func DefaultOracleConfig(endpoint string) OracleConfig {
	return OracleConfig{
		Endpoint:         endpoint,
		HTTPTimeout:      5 * time.Second,
		CacheTTL:         time.Hour,
		OraclePredicates: DefaultOraclePredicates(),
	}
}

type oracleCacheEntry struct {
	verdict   verdict.Verdict
	reason    string
	insertedAt time.Time
}

// OracleProver answers atomic goals by translating them to a natural
// language query and consulting an external HTTP knowledge endpoint.
//
// Grounded on original_source/backend/adapters/provers/wolfram.py for the
// workflow (atomic-only guard, translation table, cache-then-HTTP,
// heuristic answer extraction) with the HTTP transport itself rewritten
// per _examples/theRebelliousNerd-codenerd/internal/perception/
// client_openrouter.go's long-lived *http.Client and context.WithTimeout
// fallback. The XML response parsing in the original is specific to the
// Wolfram|Alpha API; this adapter targets a generic JSON oracle endpoint
// instead, since spec.md describes "the oracle endpoint" generically
// rather than naming a specific provider.
type OracleProver struct {
	cfg        OracleConfig
	httpClient *http.Client

	mu      sync.Mutex
	entries map[string]oracleCacheEntry
	stats   cache.Stats

	group singleflight.Group
}

// NewOracleProver constructs the adapter against the given configuration.
func NewOracleProver(cfg OracleConfig) *OracleProver {
	return &OracleProver{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		entries:    make(map[string]oracleCacheEntry),
	}
}

func (o *OracleProver) Name() string { return "Oracle Adapter" }

func (o *OracleProver) Prove(ctx context.Context, _ []logic.Formula, goal logic.Formula) (verdict.Verdict, string) {
	atom, ok := goal.(*logic.Atom)
	if !ok {
		return verdict.Unknown, "oracle supports atomic facts only"
	}

	query := o.translate(atom)
	if query == "" {
		return verdict.Unknown, "could not translate formula to a query"
	}

	if entry, ok := o.lookupFresh(query); ok {
		return entry.verdict, entry.reason + " (from cache)"
	}

	// singleflight collapses duplicate concurrent queries for the same
	// translated string onto one HTTP call, supporting P7 (oracle purity)
	// under concurrent callers without widening the cache's own locking.
	result, err, _ := o.group.Do(query, func() (interface{}, error) {
		return o.query(ctx, query)
	})
	if err != nil {
		return verdict.Unknown, fmt.Sprintf("oracle error: %v", err)
	}
	answer := result.(string)
	if answer == "" {
		return verdict.Unknown, "no usable answer from oracle"
	}

	v := verdict.Proved
	reason := fmt.Sprintf("oracle: %s", answer)
	o.cacheResult(query, v, reason)
	return v, reason
}

func (o *OracleProver) ValidateSyntax(formula logic.Formula) (bool, string) {
	if _, ok := formula.(*logic.Atom); !ok {
		return false, "oracle supports atomic facts only"
	}
	return true, "ok"
}

// ClearCache empties the oracle's own TTL cache (spec.md 4.4.4: "The
// adapter exposes clear_cache() for invalidation").
func (o *OracleProver) ClearCache() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = make(map[string]oracleCacheEntry)
}

func (o *OracleProver) lookupFresh(query string) (oracleCacheEntry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	entry, ok := o.entries[query]
	if !ok {
		o.stats.Misses++
		return oracleCacheEntry{}, false
	}
	if time.Since(entry.insertedAt) >= o.cfg.CacheTTL {
		o.stats.Misses++
		return oracleCacheEntry{}, false
	}
	o.stats.Hits++
	return entry, true
}

func (o *OracleProver) cacheResult(query string, v verdict.Verdict, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries[query] = oracleCacheEntry{verdict: v, reason: reason, insertedAt: time.Now()}
}

type oracleResponse struct {
	Answers []string `json:"answers"`
}

func (o *OracleProver) query(ctx context.Context, query string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.HTTPTimeout)
		defer cancel()
	}

	reqURL := fmt.Sprintf("%s?q=%s", o.cfg.Endpoint, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle endpoint returned status %d", resp.StatusCode)
	}

	var parsed oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode oracle response: %w", err)
	}
	return extractAnswer(query, parsed.Answers), nil
}

// extractAnswer applies the heuristic extraction rules from spec.md
// 4.4.4 step 3: a capital query needs a city-looking token, a population
// query needs a digit, otherwise the first answer longer than 5 chars
// wins.
func extractAnswer(query string, answers []string) string {
	lowerQuery := strings.ToLower(query)
	for _, answer := range answers {
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		switch {
		case strings.Contains(lowerQuery, "capital"):
			if looksLikeCity(lower) {
				return trimmed
			}
		case strings.Contains(lowerQuery, "population"):
			if containsDigit(trimmed) {
				return trimmed
			}
		default:
			if len(trimmed) > 5 {
				return trimmed
			}
		}
	}
	return ""
}

var knownCityTokens = []string{
	"london", "berlin", "paris", "madrid", "rome", "moscow", "vienna",
}

func looksLikeCity(lowerAnswer string) bool {
	for _, city := range knownCityTokens {
		if strings.Contains(lowerAnswer, city) {
			return true
		}
	}
	return !strings.Contains(lowerAnswer, " ") && len(lowerAnswer) > 2
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// translate renders an atomic goal as a natural-language query, following
// spec.md 4.4.4 step 1: an enumerated predicate-to-phrase mapping, with
// free variables turning the query into "what is the ... of ...".
func (o *OracleProver) translate(atom *logic.Atom) string {
	hasVariable := false
	var constArgs []string
	for _, arg := range atom.Args {
		switch arg.Kind {
		case logic.Variable:
			hasVariable = true
		default:
			constArgs = append(constArgs, strings.ToLower(arg.String()))
		}
	}

	label, known := phraseLabels[atom.Predicate]
	var query string
	switch {
	case known && hasVariable:
		query = fmt.Sprintf("what is the %s of %s", label, strings.Join(constArgs, " and "))
	case known:
		query = fmt.Sprintf("%s of %s", label, strings.Join(constArgs, " and "))
	default:
		query = fallbackTranslate(atom)
	}
	return translateLegacyTerms(query)
}

// fallbackTranslate mirrors wolfram.py's fallback: turn "Foo(a,b)" into
// "foo of a and b" by inserting spaces at camelCase boundaries.
func fallbackTranslate(atom *logic.Atom) string {
	args := make([]string, len(atom.Args))
	for i, a := range atom.Args {
		args[i] = strings.ToLower(a.String())
	}
	spaced := camelWordBoundary.ReplaceAllString(atom.Predicate, "$1 $2")
	return strings.ToLower(spaced) + " of " + strings.Join(args, " and ")
}

func translateLegacyTerms(text string) string {
	for german, english := range legacyTermTranslations {
		text = strings.ReplaceAll(text, german, english)
	}
	return text
}
