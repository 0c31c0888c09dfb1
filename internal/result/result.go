// Package result implements the Result Collector (§4.7): after a
// recalculate, enumerate each accept cell's matching node ids and render
// them as the deterministic text dump described in §6.
package result

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cssmatch/cssmatch/internal/dom"
	"github.com/cssmatch/cssmatch/internal/nfa"
	"github.com/cssmatch/cssmatch/internal/selector"
)

// Match pairs a compiled selector's text with its accept cell.
type Match struct {
	Text   string
	Accept nfa.Cell
}

// Collect walks every live node in the arena and, for each accept cell,
// gathers the sorted, distinct list of node ids whose propagated_out bit is
// set. Selectors with no matches are elided entirely (§4.7).
func Collect(arena *dom.Arena, matches []Match) map[string][]dom.NodeID {
	out := make(map[string][]dom.NodeID)
	root, ok := arena.Root()
	if !ok {
		return out
	}

	var walk func(id dom.NodeID)
	walk = func(id dom.NodeID) {
		n := arena.Get(id)
		if n == nil {
			return
		}
		for _, m := range matches {
			if n.PropagatedOut.Get(int(m.Accept)) {
				// Two selectors can render the same text; record each node
				// once per text.
				if ids := out[m.Text]; len(ids) > 0 && ids[len(ids)-1] == id {
					continue
				}
				out[m.Text] = append(out[m.Text], id)
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)

	for text, ids := range out {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out[text] = ids
	}
	return out
}

// CompoundText renders a Compound's selector text the way §6's results
// output expects: " > " around child combinators, a single space around
// descendant combinators, matching how the original selector was authored
// closely enough to round-trip through sorted comparison.
func CompoundText(c selector.Compound) string {
	var sb strings.Builder
	for i, part := range c.Parts {
		sb.WriteString(part.Simple.String())
		switch part.Combinator {
		case selector.Child:
			sb.WriteString(" > ")
		case selector.Descendant:
			if i != len(c.Parts)-1 {
				sb.WriteString(" ")
			}
		}
	}
	return sb.String()
}

// Write prints the deterministic text dump between BEGIN/END markers: one
// line per selector with at least one match, selectors in sorted textual
// order, node ids ascending.
func Write(w io.Writer, matches map[string][]dom.NodeID) error {
	if _, err := fmt.Fprintln(w, "BEGIN"); err != nil {
		return err
	}

	texts := make([]string, 0, len(matches))
	for text, ids := range matches {
		if len(ids) == 0 {
			continue
		}
		texts = append(texts, text)
	}
	sort.Strings(texts)

	for _, text := range texts {
		ids := matches[text]
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("%d", id)
		}
		if _, err := fmt.Fprintf(w, "%s -> [%s]\n", text, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "END"); err != nil {
		return err
	}
	return nil
}
