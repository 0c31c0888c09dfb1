package nfa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cssmatch/cssmatch/internal/interner"
	"github.com/cssmatch/cssmatch/internal/nfa"
	"github.com/cssmatch/cssmatch/internal/selector"
)

func compile(t *testing.T, texts ...string) (*interner.Interner, nfa.NFA, []nfa.Cell) {
	t.Helper()
	in := interner.New()
	b := nfa.NewBuilder(in)
	var accepts []nfa.Cell
	for _, text := range texts {
		c, err := selector.Parse(text)
		require.NoError(t, err)
		accepts = append(accepts, b.Add(c))
	}
	return in, b.Build(accepts), accepts
}

func TestSingleTagSelectorIsIntrinsicOnly(t *testing.T) {
	_, n, accepts := compile(t, "div")
	require.Len(t, n.IntrinsicRules, 1)
	require.Empty(t, n.PropagatedRules)
	require.True(t, n.IsAccept(accepts[0]))
	require.False(t, n.IsAccept(nfa.Start))
}

func TestDescendantSelectorEmitsSelfLoop(t *testing.T) {
	_, n, accepts := compile(t, "body a")
	// body's cell, a self-loop, and a's cell-from-body rule: 3 rules total.
	require.Len(t, n.Rules, 3)
	require.Len(t, n.IntrinsicRules, 1) // body's own cell
	require.Len(t, n.PropagatedRules, 2) // the self-loop + a's rule

	foundSelfLoop := false
	for _, r := range n.PropagatedRules {
		if r.From == r.To {
			foundSelfLoop = true
			require.True(t, r.Predicate.Wildcard)
		}
	}
	require.True(t, foundSelfLoop)
	require.True(t, n.IsAccept(accepts[0]))
}

func TestChildCombinatorEmitsNoSelfLoop(t *testing.T) {
	_, n, _ := compile(t, "div > span")
	for _, r := range n.Rules {
		require.False(t, r.From == r.To && r.HasFrom, "child combinator must not produce a self-loop")
	}
}

func TestWildcardPredicateIsUnconditional(t *testing.T) {
	_, n, _ := compile(t, "*")
	require.Len(t, n.IntrinsicRules, 1)
	require.True(t, n.IntrinsicRules[0].Predicate.Wildcard)
}

func TestAcceptCellsAreNeverUsedAsFrom(t *testing.T) {
	_, n, accepts := compile(t, "div", ".x", "div > span")
	for _, accept := range accepts {
		for _, r := range n.Rules {
			require.False(t, r.HasFrom && r.From == accept, "accept cell used as From")
		}
	}
}
