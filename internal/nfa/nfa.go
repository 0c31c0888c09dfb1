// Package nfa builds the tree-walking NFA described in §3/§4.2: one cell
// per prefix of every compound selector, with transition rules labeled by
// simple-selector predicates and a distinguished "from parent cell" marker
// for propagated matches.
package nfa

import (
	"sort"

	"github.com/cssmatch/cssmatch/internal/interner"
	"github.com/cssmatch/cssmatch/internal/selector"
)

// Cell is an NFA state, numbered 0..N-1. Cell 0 is the distinguished start
// state and is never itself an accept cell.
type Cell int

const Start Cell = 0

// Predicate identifies which simple selector must match the current node
// for a rule to fire. A Predicate with Wildcard=true is the
// unconditional predicate used for the wildcard selector and for descendant
// self-loops.
type Predicate struct {
	Wildcard bool
	Sid      interner.Id
}

// Rule is one NFA transition (predicate?, from?, to). From=HasFrom=false
// means the rule is anchored at the start (an intrinsic-match instruction,
// §4.4 step 2); From=HasFrom=true means the rule requires cell From to be
// active in the *parent's* output (a propagated-match instruction, §4.4
// step 3).
type Rule struct {
	Predicate Predicate
	HasFrom   bool
	From      Cell
	To        Cell
}

// NFA is the compiled matcher: every rule plus which cells are accept cells
// and which selector (by index into the original Compound list) each accept
// cell corresponds to.
type NFA struct {
	CellCount int
	Rules     []Rule

	// IntrinsicRules and PropagatedRules partition Rules by HasFrom, so the
	// Match Evaluator never has to re-sort or filter at evaluation time.
	IntrinsicRules  []Rule
	PropagatedRules []Rule

	// AcceptCells[k] is the cell whose activity means selector k matches.
	AcceptCells []Cell
}

// Builder accumulates rules while compiling a list of compound selectors.
type Builder struct {
	interner *interner.Interner
	nextCell Cell
	rules    []Rule
	usedFrom map[Cell]bool
}

// NewBuilder returns a Builder that interns simple selectors through in.
func NewBuilder(in *interner.Interner) *Builder {
	return &Builder{
		interner: in,
		nextCell: Start + 1,
		usedFrom: make(map[Cell]bool),
	}
}

func predicateFor(b *Builder, s selector.Simple) Predicate {
	if s.IsWildcard() {
		return Predicate{Wildcard: true}
	}
	return Predicate{Sid: b.interner.Intern(s)}
}

// Add compiles one compound selector into the builder's rule set and
// returns the accept cell for it, following the algorithm in §4.2: a fresh
// cell per part, chained from the previous cell, with a descendant
// self-loop emitted immediately after any part whose outgoing combinator is
// Descendant.
func (b *Builder) Add(c selector.Compound) Cell {
	prev := Start
	var last Cell

	for _, part := range c.Parts {
		cell := b.nextCell
		b.nextCell++

		// The first part of a compound is anchored at Start (an intrinsic
		// instruction, §4.4 step 2); every later part reads the previous
		// part's cell from the parent's output (a propagated instruction,
		// §4.4 step 3). Start itself is never a valid "from parent" cell.
		rule := Rule{Predicate: predicateFor(b, part.Simple), HasFrom: prev != Start, From: prev, To: cell}
		b.rules = append(b.rules, rule)
		if rule.HasFrom {
			b.usedFrom[rule.From] = true
		}

		if part.Combinator == selector.Descendant {
			b.rules = append(b.rules, Rule{
				Predicate: Predicate{Wildcard: true},
				HasFrom:   true,
				From:      cell,
				To:        cell,
			})
			b.usedFrom[cell] = true
		}

		prev = cell
		last = cell
	}

	return last
}

// Build finalizes the NFA. Cells never used as From are the accept cells by
// construction (§4.2); accepts is the list of accept cells returned by Add,
// in the same order as the original Compound list, so callers can zip it
// with selector text for the Result Collector.
func (b *Builder) Build(accepts []Cell) NFA {
	n := NFA{
		CellCount:   int(b.nextCell),
		Rules:       b.rules,
		AcceptCells: accepts,
	}

	for _, r := range b.rules {
		if r.HasFrom {
			n.PropagatedRules = append(n.PropagatedRules, r)
		} else {
			n.IntrinsicRules = append(n.IntrinsicRules, r)
		}
	}

	// Stable ordering makes evaluation order deterministic and test output
	// reproducible regardless of map iteration order upstream.
	sort.SliceStable(n.IntrinsicRules, func(i, j int) bool { return n.IntrinsicRules[i].To < n.IntrinsicRules[j].To })
	sort.SliceStable(n.PropagatedRules, func(i, j int) bool { return n.PropagatedRules[i].To < n.PropagatedRules[j].To })

	return n
}

// IsAccept reports whether cell is an accept cell: by construction (§4.2)
// this holds iff no rule ever uses it as From. Start, the implicit origin
// of every intrinsic rule, is never an accept cell.
func (n NFA) IsAccept(cell Cell) bool {
	if cell == Start {
		return false
	}
	for _, r := range n.Rules {
		if r.HasFrom && r.From == cell {
			return false
		}
	}
	return true
}
