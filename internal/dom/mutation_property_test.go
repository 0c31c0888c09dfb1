package dom_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/cssmatch/cssmatch/internal/dom"
	"github.com/cssmatch/cssmatch/internal/interner"
)

// reachableIDs walks the arena from its root and returns every node actually
// reachable through Children links.
func reachableIDs(a *dom.Arena) map[dom.NodeID]bool {
	out := make(map[dom.NodeID]bool)
	root, ok := a.Root()
	if !ok {
		return out
	}
	var walk func(id dom.NodeID)
	walk = func(id dom.NodeID) {
		out[id] = true
		for _, child := range a.Get(id).Children {
			walk(child)
		}
	}
	walk(root)
	return out
}

// TestPropertyTreeStaysConsistentUnderRandomMutations generates random
// sequences of Add/Remove against a small tree and checks two invariants
// that must hold after every mutation, regardless of which path was touched:
// every node reachable from the root is actually present in the arena (no
// dangling child ids), and the arena never holds a node unreachable from the
// root (Remove must delete the whole subtree, never leave orphans behind).
func TestPropertyTreeStaysConsistentUnderRandomMutations(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := interner.New()
		a := dom.NewArena(in, 1)
		a.Init(dom.Tree{ID: 1, Name: "div"})

		var nextID dom.NodeID = 2
		steps := rapid.IntRange(0, 8).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			ids := reachableIDsSlice(a)
			if len(ids) == 0 {
				break
			}
			parentID := rapid.SampledFrom(ids).Draw(t, "parent")
			path, ok := pathToNode(a, parentID)
			if !ok {
				continue
			}

			if rapid.Bool().Draw(t, "addOrRemove") || len(a.Get(parentID).Children) == 0 {
				childIndex := rapid.IntRange(0, len(a.Get(parentID).Children)).Draw(t, "childIndex")
				subtree := dom.Tree{ID: nextID, Name: "span"}
				nextID++
				if err := a.Add(path, childIndex, subtree); err != nil {
					t.Fatalf("unexpected Add error: %v", err)
				}
			} else {
				children := a.Get(parentID).Children
				childIndex := rapid.IntRange(0, len(children)-1).Draw(t, "removeIndex")
				removePath := append(append([]int{}, path...), childIndex)
				if err := a.Remove(removePath); err != nil {
					t.Fatalf("unexpected Remove error: %v", err)
				}
			}

			reachable := reachableIDs(a)
			for id := range reachable {
				if a.Get(id) == nil {
					t.Fatalf("node %d is reachable but absent from the arena", id)
				}
			}
			if a.Len() != len(reachable) {
				t.Fatalf("arena holds %d nodes but only %d are reachable from the root: the arena is leaking orphans", a.Len(), len(reachable))
			}
		}
	})
}

func reachableIDsSlice(a *dom.Arena) []dom.NodeID {
	m := reachableIDs(a)
	out := make([]dom.NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

func pathToNode(a *dom.Arena, target dom.NodeID) ([]int, bool) {
	root, ok := a.Root()
	if !ok {
		return nil, false
	}
	var path []int
	var walk func(id dom.NodeID) bool
	walk = func(id dom.NodeID) bool {
		if id == target {
			return true
		}
		for i, child := range a.Get(id).Children {
			path = append(path, i)
			if walk(child) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if !walk(root) {
		return nil, false
	}
	return path, true
}
