package match

import (
	"github.com/cssmatch/cssmatch/internal/bitset"
	"github.com/cssmatch/cssmatch/internal/dom"
	"github.com/cssmatch/cssmatch/internal/nfa"
)

// Scheduler drives the top-down incremental traversal described in §4.5.
// DebugAssertions, when true, forces a re-evaluation after every skip
// decision and panics if the result differs from the cached output (§7's
// debug-assertion point: "cache invariant after every skip decision").
type Scheduler struct {
	NFA              nfa.NFA
	Arena            *dom.Arena
	DebugAssertions  bool
	missCount        int
}

// MissCount reports how many nodes the Match Evaluator actually ran for
// during the most recent Recompute call (reset at the start of each call).
// Used by scenario S4/S6 assertions in §8.
func (s *Scheduler) MissCount() int { return s.missCount }

// Recompute implements `recompute(root)` (§4.5): top-down traversal,
// consulting each node's cache to decide recompute vs skip, maintaining
// self_dirty/recursive_dirty as it goes.
func (s *Scheduler) Recompute() {
	s.missCount = 0
	root, ok := s.Arena.Root()
	if !ok {
		return
	}
	zero := bitset.New(s.NFA.CellCount)
	s.visit(root, zero)
}

func (s *Scheduler) visit(id dom.NodeID, incoming bitset.Set) {
	n := s.Arena.Get(id)
	if n == nil {
		return
	}

	if !n.RecursiveDirty {
		// Entire subtree is valid per the cache invariant; nothing below
		// this node can have changed either.
		return
	}

	if !n.SelfDirty && n.ParentTrace.Matches(incoming) {
		// Skip test passed: the cached propagated_out is authoritative.
		if s.DebugAssertions {
			s.assertSkipWasSafe(n, incoming)
		}
	} else {
		before := n.PropagatedOut.Clone()
		Evaluate(s.NFA, n, incoming)
		n.SelfDirty = false
		s.missCount++

		if !before.Equals(n.PropagatedOut) {
			// This node's output just changed, so a child's parent_trace may
			// no longer hold (§3's cache invariant): force each child through
			// the skip test on this pass instead of trusting its own
			// recursive_dirty, which only tracks dirt that originated at or
			// below the child itself.
			for _, child := range n.Children {
				if c := s.Arena.Get(child); c != nil {
					c.RecursiveDirty = true
				}
			}
		}
	}

	for _, child := range n.Children {
		s.visit(child, n.PropagatedOut)
	}

	n.RecursiveDirty = false
}

// assertSkipWasSafe re-evaluates a node whose skip test passed and panics
// if the result differs from the cached output, per §7's debug-assertion
// point. It does not count toward MissCount: it exists only to validate
// the skip decision, not to perform real work.
func (s *Scheduler) assertSkipWasSafe(n *dom.Node, incoming bitset.Set) {
	cachedOut := n.PropagatedOut.Clone()

	shadow := *n
	shadow.PropagatedOut = bitset.New(s.NFA.CellCount)
	shadow.IntrinsicOut = bitset.New(s.NFA.CellCount)
	shadow.ParentTrace = bitset.NewTrace(s.NFA.CellCount)
	Evaluate(s.NFA, &shadow, incoming)

	if !shadow.PropagatedOut.Equals(cachedOut) {
		panic("match: cache invariant violated: skip test passed but re-evaluation produced a different output")
	}
}
