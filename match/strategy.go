package match

import (
	"context"

	"github.com/poiesic/faqbot/core"
)

// FallbackAnswer is the fixed apology rendered by collaborators when the
// engine returns an Unmatched verdict.
const FallbackAnswer = "Sorry, I don't know the answer to that question yet."

// Candidate pairs a stored FAQ record with the normalized form of its
// question. Candidate slices preserve snapshot order; strategies rely on that
// order for deterministic tie-breaking.
type Candidate struct {
	Record     *core.FaqRecord
	Normalized string
}

// Strategy is a single matching pass over the candidate set.
//
// A strategy returns (nil, nil) when no candidate clears its threshold; an
// error is reserved for operational failures such as an unreachable
// embedding service. The query argument is the normalized query text.
type Strategy interface {
	// Name identifies the strategy in logs and monitor callbacks.
	Name() string

	// Match scores candidates against the query and returns the winning
	// candidate, or nil if none is accepted.
	Match(ctx context.Context, query string, candidates []Candidate) (*core.MatchCandidate, error)
}

// BuildCandidates normalizes the questions of a snapshot into a candidate
// list, preserving snapshot order. Records whose question normalizes to the
// empty string are skipped; they can never match and would pollute scoring.
func BuildCandidates(snapshot []*core.FaqRecord) []Candidate {
	candidates := make([]Candidate, 0, len(snapshot))
	for _, record := range snapshot {
		if record == nil {
			continue
		}
		normalized := core.NormalizeText(record.Question)
		if normalized == "" {
			continue
		}
		candidates = append(candidates, Candidate{Record: record, Normalized: normalized})
	}
	return candidates
}
