package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cssmatch/cssmatch/internal/dom"
	"github.com/cssmatch/cssmatch/internal/engine"
	"github.com/cssmatch/cssmatch/internal/interner"
	"github.com/cssmatch/cssmatch/internal/match"
	"github.com/cssmatch/cssmatch/internal/nfa"
	"github.com/cssmatch/cssmatch/internal/selector"
)

func buildScheduler(t *testing.T, texts ...string) (*match.Scheduler, []nfa.Cell) {
	t.Helper()
	in := interner.New()
	b := nfa.NewBuilder(in)
	var accepts []nfa.Cell
	for _, text := range texts {
		c, err := selector.Parse(text)
		require.NoError(t, err)
		accepts = append(accepts, b.Add(c))
	}
	n := b.Build(accepts)
	a := dom.NewArena(in, n.CellCount)
	return &match.Scheduler{NFA: n, Arena: a}, accepts
}

// TestOracleAgreesWithScheduler replays §8 scenario S1 through both the
// incremental scheduler and the from-scratch oracle and checks they agree on
// which nodes match "div" and ".x".
func TestOracleAgreesWithScheduler(t *testing.T) {
	s, accepts := buildScheduler(t, "div", ".x")
	s.Arena.Init(dom.Tree{
		ID: 1, Name: "div",
		Children: []dom.Tree{
			{ID: 2, Name: "span", Attributes: map[string]string{"class": "x"}},
		},
	})
	s.Recompute()

	div, err := selector.Parse("div")
	require.NoError(t, err)
	class, err := selector.Parse(".x")
	require.NoError(t, err)

	o := &engine.Oracle{Arena: s.Arena}
	require.Equal(t, []dom.NodeID{1}, o.CollectMatches(div))
	require.Equal(t, []dom.NodeID{2}, o.CollectMatches(class))
	require.True(t, s.Arena.Get(1).PropagatedOut.Get(int(accepts[0])))
	require.True(t, s.Arena.Get(2).PropagatedOut.Get(int(accepts[1])))
}

// TestOracleAgreesOnChildCombinator mirrors S2: the oracle must not match
// across an intervening element for a child combinator.
func TestOracleAgreesOnChildCombinator(t *testing.T) {
	s, accepts := buildScheduler(t, "div > span")
	s.Arena.Init(dom.Tree{
		ID: 1, Name: "div",
		Children: []dom.Tree{
			{ID: 2, Name: "section", Children: []dom.Tree{
				{ID: 3, Name: "span"},
			}},
		},
	})
	s.Recompute()

	sel, err := selector.Parse("div > span")
	require.NoError(t, err)

	o := &engine.Oracle{Arena: s.Arena}
	require.Empty(t, o.CollectMatches(sel))
	require.False(t, s.Arena.Get(3).PropagatedOut.Get(int(accepts[0])))
}

// TestOracleAgreesOnDescendantCombinator mirrors S3: "body a" must match
// across any depth of intervening ancestors for both the oracle and the
// incremental engine.
func TestOracleAgreesOnDescendantCombinator(t *testing.T) {
	s, accepts := buildScheduler(t, "body a")
	s.Arena.Init(dom.Tree{
		ID: 1, Name: "body",
		Children: []dom.Tree{
			{ID: 2, Name: "div", Children: []dom.Tree{
				{ID: 3, Name: "a"},
			}},
		},
	})
	s.Recompute()

	sel, err := selector.Parse("body a")
	require.NoError(t, err)

	o := &engine.Oracle{Arena: s.Arena}
	require.Equal(t, []dom.NodeID{3}, o.CollectMatches(sel))
	require.True(t, s.Arena.Get(3).PropagatedOut.Get(int(accepts[0])))
}

// TestOracleAgreesOnAttrEq exercises an attribute-equals selector end to end
// through the scheduler, and after a mutation flips the attribute value,
// checking the oracle agrees at both points.
func TestOracleAgreesOnAttrEq(t *testing.T) {
	s, accepts := buildScheduler(t, `[data-test="value"]`)
	s.Arena.Init(dom.Tree{
		ID: 1, Name: "div",
		Children: []dom.Tree{
			{ID: 2, Name: "span", Attributes: map[string]string{"data-test": "value"}},
			{ID: 3, Name: "a", Attributes: map[string]string{"data-test": "other"}},
		},
	})
	s.Recompute()

	sel, err := selector.Parse(`[data-test="value"]`)
	require.NoError(t, err)

	o := &engine.Oracle{Arena: s.Arena}
	require.Equal(t, []dom.NodeID{2}, o.CollectMatches(sel))
	require.True(t, s.Arena.Get(2).PropagatedOut.Get(int(accepts[0])))
	require.False(t, s.Arena.Get(3).PropagatedOut.Get(int(accepts[0])))

	require.NoError(t, s.Arena.SetAttr([]int{1}, dom.ReplaceValue, "data-test", "value", true, "other"))
	s.Recompute()

	require.ElementsMatch(t, []dom.NodeID{2, 3}, o.CollectMatches(sel))
	require.True(t, s.Arena.Get(3).PropagatedOut.Get(int(accepts[0])))
}

// TestOracleAgreesAfterMutation mirrors S4: after the incremental engine
// applies a mutation and recomputes, the oracle (which has no cache to go
// stale) must agree with the fresh propagated_out bits.
func TestOracleAgreesAfterMutation(t *testing.T) {
	s, accepts := buildScheduler(t, "div", ".x")
	s.Arena.Init(dom.Tree{
		ID: 1, Name: "div",
		Children: []dom.Tree{
			{ID: 2, Name: "span", Attributes: map[string]string{"class": "x"}},
		},
	})
	s.Recompute()

	require.NoError(t, s.Arena.SetAttr([]int{}, dom.InsertValue, "class", "x", false, ""))
	s.Recompute()

	class, err := selector.Parse(".x")
	require.NoError(t, err)

	o := &engine.Oracle{Arena: s.Arena}
	require.ElementsMatch(t, []dom.NodeID{1, 2}, o.CollectMatches(class))
	require.True(t, s.Arena.Get(1).PropagatedOut.Get(int(accepts[1])))
}
