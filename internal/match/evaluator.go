// Package match implements the per-node Match Evaluator (§4.4) and the
// Incremental Scheduler (§4.5) that drives it across a DOM Arena.
package match

import (
	"github.com/cssmatch/cssmatch/internal/bitset"
	"github.com/cssmatch/cssmatch/internal/dom"
	"github.com/cssmatch/cssmatch/internal/nfa"
)

// matchesPredicate reports whether a node satisfies the simple selector a predicate
// refers to. A wildcard predicate always matches.
func matchesPredicate(n *dom.Node, p nfa.Predicate) bool {
	if p.Wildcard {
		return true
	}
	if n.HasTagID && n.TagID == p.Sid {
		return true
	}
	if n.HasIdID && n.IdID == p.Sid {
		return true
	}
	for _, c := range n.ClassIDs {
		if c == p.Sid {
			return true
		}
	}
	for _, c := range n.AttrIDs {
		if c == p.Sid {
			return true
		}
	}
	return false
}

// Evaluate implements §4.4's evaluate(node, parent_output) → (node_output,
// parent_trace). It writes directly into the node's own IntrinsicOut (used
// only internally, kept for debugging/tests) and PropagatedOut/ParentTrace
// cache slots, matching the teacher's preference for reusing a
// preallocated slot over returning a fresh allocation per node.
func Evaluate(n nfa.NFA, node *dom.Node, parentOutput bitset.Set) {
	node.PropagatedOut.Clear()
	node.ParentTrace.Clear()
	node.IntrinsicOut.Clear()

	// Intrinsic pass (§4.4 step 2): rules anchored at Start need no parent
	// information at all.
	for _, rule := range n.IntrinsicRules {
		if matchesPredicate(node, rule.Predicate) {
			node.IntrinsicOut.Set(int(rule.To))
			node.PropagatedOut.Set(int(rule.To))
		}
	}

	// Propagated pass (§4.4 step 3): every read of a parent bit is
	// recorded in parent_trace, whether or not the predicate then matches.
	for _, rule := range n.PropagatedRules {
		from := int(rule.From)
		observed := parentOutput.Get(from)
		node.ParentTrace.Record(from, observed)
		if observed && matchesPredicate(node, rule.Predicate) {
			node.PropagatedOut.Set(int(rule.To))
		}
	}

	// Accept materialization (§4.4 step 4) is a no-op here: PropagatedOut
	// already holds concrete bit values for every accept cell, since the
	// passes above write plain bits rather than deferred "from parent f"
	// markers. Reads of parentOutput are already traced above.
}
