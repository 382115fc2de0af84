package search

import (
	"iter"

	"github.com/poiesic/rankit/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterExpansion(sq *core.SemanticQuery)
	AfterLexicalSearch(hits int)
	AfterVectorSearch(hits int)
	AfterCandidateMerge(ids iter.Seq[core.ID])
	Fallback(err error)
	Finish(results *Results)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterExpansion(_ *core.SemanticQuery)    {}
func (n *noopMonitor) AfterLexicalSearch(_ int)                {}
func (n *noopMonitor) AfterVectorSearch(_ int)                 {}
func (n *noopMonitor) AfterCandidateMerge(_ iter.Seq[core.ID]) {}
func (n *noopMonitor) Fallback(_ error)                        {}
func (n *noopMonitor) Finish(_ *Results)                       {}
