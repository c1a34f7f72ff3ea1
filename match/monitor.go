package match

import "github.com/poiesic/faqbot/core"

// MatchMonitor provides hooks to observe the matching process.
// Implement this interface to track intermediate steps and the final verdict.
type MatchMonitor interface {
	Start(rawQuery string)
	AfterNormalize(query string, candidateCount int)
	AfterStrategy(name string, candidate *core.MatchCandidate)
	Finish(verdict core.MatchVerdict)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                {}
func (n *noopMonitor) AfterNormalize(_ string, _ int)                {}
func (n *noopMonitor) AfterStrategy(_ string, _ *core.MatchCandidate) {}
func (n *noopMonitor) Finish(_ core.MatchVerdict)                    {}
