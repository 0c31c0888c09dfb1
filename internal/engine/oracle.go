package engine

import (
	"github.com/cssmatch/cssmatch/internal/dom"
	"github.com/cssmatch/cssmatch/internal/selector"
)

// Oracle is the from-scratch matcher used only by tests as the equivalence
// baseline for §8 properties 1 and 5. It ignores every cache the
// incremental engine maintains and walks the ancestor chain directly,
// grounded on original_source/src/naive.rs's matches_complex_selector. It
// is never part of the production recalculate path.
type Oracle struct {
	Arena *dom.Arena
}

func matchesSimple(n *dom.Node, s selector.Simple) bool {
	switch s.Kind {
	case selector.Tag:
		if s.Name == "*" {
			return true
		}
		return n.TagName == s.Name
	case selector.Class:
		for _, c := range n.Classes {
			if c == s.Name {
				return true
			}
		}
		return false
	case selector.Id:
		return n.HasIdAttr && n.IdAttr == s.Name
	case selector.AttrEq:
		v, ok := n.Attrs[s.Name]
		return ok && v == s.Value
	default:
		return false
	}
}

// Matches reports whether node matches the compound selector c, via a
// direct ancestor walk with no caching whatsoever.
func (o *Oracle) Matches(node dom.NodeID, c selector.Compound) bool {
	return o.matchesParts(node, c.Parts)
}

// matchesParts mirrors naive.rs's matches_complex_selector: parts[len-1] is
// the simple selector anchored at node itself; parts[len-2].Combinator says
// how node's match connects to the rest of the chain walking upward.
func (o *Oracle) matchesParts(nodeID dom.NodeID, parts []selector.Part) bool {
	if len(parts) == 0 {
		return true
	}

	node := o.Arena.Get(nodeID)
	if node == nil {
		return false
	}

	last := parts[len(parts)-1]
	if !matchesSimple(node, last.Simple) {
		return false
	}
	if len(parts) == 1 {
		return true
	}

	if !node.HasParent {
		return false
	}
	rest := parts[:len(parts)-1]

	switch parts[len(parts)-2].Combinator {
	case selector.Child:
		return o.matchesParts(node.Parent, rest)
	default: // Descendant
		return o.matchesAncestorWalk(node.Parent, rest)
	}
}

// matchesAncestorWalk mirrors naive.rs's matches_complex_selector_recursive:
// try matching rest at nodeID, and if that fails, retry at every ancestor
// in turn — this is how a descendant combinator tolerates any number of
// intervening levels.
func (o *Oracle) matchesAncestorWalk(nodeID dom.NodeID, parts []selector.Part) bool {
	if o.matchesParts(nodeID, parts) {
		return true
	}
	node := o.Arena.Get(nodeID)
	if node == nil || !node.HasParent {
		return false
	}
	return o.matchesAncestorWalk(node.Parent, parts)
}

// CollectMatches returns every live node id that matches c, for use as the
// equivalence baseline against internal/result.Collect's output.
func (o *Oracle) CollectMatches(c selector.Compound) []dom.NodeID {
	var out []dom.NodeID
	root, ok := o.Arena.Root()
	if !ok {
		return out
	}
	var walk func(id dom.NodeID)
	walk = func(id dom.NodeID) {
		if o.Matches(id, c) {
			out = append(out, id)
		}
		n := o.Arena.Get(id)
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	return out
}
