package match

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/poiesic/faqbot/core"
)

// Default acceptance thresholds for the two lexical passes, on the 0-100
// ratio scale. Partial-ratio scores of exactly 70 are accepted.
const (
	DefaultPartialThreshold   float32 = 70
	DefaultTokenSortThreshold float32 = 75
)

// LexicalMatcher scores candidates by fuzzy string similarity. It runs two
// independent passes in a fixed order: partial-ratio first, then token-sort
// over candidates only if the first pass accepts nothing. Each pass has its
// own threshold.
type LexicalMatcher struct {
	partialThreshold   float32
	tokenSortThreshold float32
	logger             *slog.Logger
}

// LexicalOption configures a LexicalMatcher.
type LexicalOption func(*LexicalMatcher)

// WithPartialThreshold overrides the partial-ratio acceptance threshold.
func WithPartialThreshold(threshold float32) LexicalOption {
	return func(m *LexicalMatcher) {
		m.partialThreshold = threshold
	}
}

// WithTokenSortThreshold overrides the token-sort acceptance threshold.
func WithTokenSortThreshold(threshold float32) LexicalOption {
	return func(m *LexicalMatcher) {
		m.tokenSortThreshold = threshold
	}
}

// WithLexicalLogger sets a custom logger. Default is slog.Default().
func WithLexicalLogger(logger *slog.Logger) LexicalOption {
	return func(m *LexicalMatcher) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// NewLexicalMatcher creates a lexical matcher with the default thresholds.
func NewLexicalMatcher(opts ...LexicalOption) *LexicalMatcher {
	m := &LexicalMatcher{
		partialThreshold:   DefaultPartialThreshold,
		tokenSortThreshold: DefaultTokenSortThreshold,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements Strategy.
func (m *LexicalMatcher) Name() string { return "lexical" }

// Match runs the partial-ratio pass and, only if it yields nothing, the
// token-sort pass. An empty query or candidate list yields no candidate.
func (m *LexicalMatcher) Match(ctx context.Context, query string, candidates []Candidate) (*core.MatchCandidate, error) {
	if query == "" || len(candidates) == 0 {
		return nil, nil
	}

	if c := bestOfPass(query, candidates, partialRatio, m.partialThreshold, core.MethodLexicalPartial); c != nil {
		m.logger.Debug("partial-ratio pass accepted candidate",
			"record", c.Record.Id, "score", c.Score)
		return c, nil
	}

	if c := bestOfPass(query, candidates, tokenSortRatio, m.tokenSortThreshold, core.MethodLexicalToken); c != nil {
		m.logger.Debug("token-sort pass accepted candidate",
			"record", c.Record.Id, "score", c.Score)
		return c, nil
	}

	return nil, nil
}

// bestOfPass scans candidates in snapshot order and keeps the first one with
// the maximum score. The strictly-greater comparison is what makes the
// tie-break deterministic: a later candidate with an equal score never
// displaces an earlier one.
func bestOfPass(query string, candidates []Candidate, score func(a, b string) float32, threshold float32, method core.MatchMethod) *core.MatchCandidate {
	var best *core.MatchCandidate
	for i := range candidates {
		s := score(query, candidates[i].Normalized)
		if best == nil || s > best.Score {
			best = &core.MatchCandidate{
				Record: candidates[i].Record,
				Score:  s,
				Method: method,
			}
		}
	}
	if best == nil || best.Score < threshold {
		return nil
	}
	return best
}

// ratio is the plain similarity score between two strings on a 0-100 scale,
// rounded to the nearest integer value like the classic fuzzy-matching
// ratio. Backed by go-edlib's normalized Levenshtein similarity.
func ratio(a, b string) float32 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float32(math.Round(float64(sim) * 100))
}

// partialRatio slides a window the length of the shorter string across the
// longer one and returns the best window ratio. This rewards the
// best-aligned contiguous overlap, so a short query scores highly against a
// longer stored question that contains it (and vice versa).
func partialRatio(a, b string) float32 {
	ra, rb := []rune(a), []rune(b)
	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}
	if len(shorter) == len(longer) {
		return ratio(string(shorter), string(longer))
	}

	s := string(shorter)
	var best float32
	for i := 0; i+len(shorter) <= len(longer); i++ {
		if score := ratio(s, string(longer[i:i+len(shorter)])); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// tokenSortRatio compares the two strings after independently sorting each
// string's whitespace-delimited tokens alphabetically. This tolerates
// word-order differences ("exam schedule library" vs "library exam schedule").
func tokenSortRatio(a, b string) float32 {
	return ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
