// Package dom implements the arena-backed DOM tree (§3 "DOM node", §4.3
// DOM Arena): nodes are keyed by stable 64-bit id, parent/child links are
// ids rather than pointers so the tree never forms an owning cycle, and
// every node carries the cache slots the incremental scheduler depends on.
package dom

import (
	"fmt"
	"strings"

	"github.com/cssmatch/cssmatch/internal/bitset"
	"github.com/cssmatch/cssmatch/internal/interner"
)

// NodeID is the stable 64-bit id assigned to a node by its source tree.
type NodeID uint64

// Node is one element in the arena. Relationships to other nodes are
// NodeIDs, re-resolved through the Arena on every traversal, never raw
// pointers — this is what keeps the structure acyclic under arbitrary
// mutation.
type Node struct {
	ID NodeID

	TagID    interner.Id
	HasTagID bool
	ClassIDs []interner.Id
	IdID     interner.Id
	HasIdID  bool
	AttrIDs  []interner.Id
	Attrs    map[string]string

	// TagName/Classes/IdAttr hold the raw, uninterned values the intrinsic
	// fields above are derived from. The production match path never reads
	// them (interned ids are cheaper to compare), but the from-scratch
	// oracle (internal/engine/oracle.go) needs plain string comparisons
	// that don't depend on what the stylesheet happened to intern.
	TagName string
	Classes []string
	IdAttr  string
	HasIdAttr bool

	Parent   NodeID
	HasParent bool
	Children []NodeID

	// Cache slots consulted by the incremental scheduler and match
	// evaluator (§3).
	IntrinsicOut   bitset.Set
	PropagatedOut  bitset.Set
	ParentTrace    bitset.Trace
	SelfDirty      bool
	RecursiveDirty bool
}

// Tree is the externally-supplied node-tree shape used by `init` and `add`
// commands (§6): plain data, not yet materialized into arena Nodes.
type Tree struct {
	ID         NodeID
	Name       string
	Attributes map[string]string
	Children   []Tree
}

// Arena owns every live node, keyed by NodeID. It has no notion of "the
// NFA" — class/tag/id simple-selector ids are resolved through the
// Interner it was constructed with, so intrinsic bitsets stay in sync
// with whatever selectors are actually in play.
type Arena struct {
	interner  *interner.Interner
	cellCount int
	nodes     map[NodeID]*Node
	root      NodeID
	hasRoot   bool
}

// NewArena returns an empty arena. cellCount is the NFA's cell count
// (bitset.Set/Trace width); it must be known before any node is
// materialized, since every node's cache slots are sized by it.
func NewArena(in *interner.Interner, cellCount int) *Arena {
	return &Arena{interner: in, cellCount: cellCount, nodes: make(map[NodeID]*Node)}
}

// Get returns the node with the given id, or nil if none exists.
func (a *Arena) Get(id NodeID) *Node {
	return a.nodes[id]
}

// Root returns the arena's root node id. ok is false if Init was never
// called or the tree is empty.
func (a *Arena) Root() (NodeID, bool) {
	return a.root, a.hasRoot
}

// Len reports how many live nodes the arena holds.
func (a *Arena) Len() int { return len(a.nodes) }

func (a *Arena) freshNode(id NodeID) *Node {
	return &Node{
		ID:             id,
		IntrinsicOut:   bitset.New(a.cellCount),
		PropagatedOut:  bitset.New(a.cellCount),
		ParentTrace:    bitset.NewTrace(a.cellCount),
		SelfDirty:      true,
		RecursiveDirty: true,
	}
}

// materialize walks a Tree, inserting every node into the arena and wiring
// parent/children links, returning the new subtree's root id.
func (a *Arena) materialize(t Tree, parent NodeID, hasParent bool) NodeID {
	n := a.freshNode(t.ID)
	n.Parent = parent
	n.HasParent = hasParent
	a.setIntrinsicFields(n, t.Name, t.Attributes)
	a.nodes[t.ID] = n

	for _, childTree := range t.Children {
		childID := a.materialize(childTree, t.ID, true)
		n.Children = append(n.Children, childID)
	}

	return t.ID
}

func (a *Arena) setIntrinsicFields(n *Node, tagName string, attrs map[string]string) {
	n.Attrs = make(map[string]string, len(attrs))
	for k, v := range attrs {
		n.Attrs[k] = v
	}

	n.TagName = strings.ToLower(tagName)
	if sid, ok := a.interner.TagId(n.TagName); ok {
		n.TagID, n.HasTagID = sid, true
	} else {
		n.HasTagID = false
	}

	n.ClassIDs = nil
	n.Classes = nil
	if classAttr, ok := attrs["class"]; ok {
		for _, name := range splitClasses(classAttr) {
			n.Classes = append(n.Classes, name)
			if sid, ok := a.interner.ClassId(name); ok {
				n.ClassIDs = append(n.ClassIDs, sid)
			}
		}
	}

	n.HasIdID = false
	n.HasIdAttr = false
	if idAttr, ok := attrs["id"]; ok {
		n.IdAttr, n.HasIdAttr = idAttr, true
		if sid, ok := a.interner.IdSelectorId(idAttr); ok {
			n.IdID, n.HasIdID = sid, true
		}
	}

	n.AttrIDs = a.attrIDs(n.Attrs)
}

// attrIDs resolves every (key, value) pair on a node against the interner's
// attribute-equals table, per §3's AttrEq(name,value) simple selector. Every
// attribute is checked, not just the ones some other selector kind already
// covers (class, id): `[id="x"]` and `[class="y"]` are syntactically valid
// AttrEq selectors even though `#x`/`.y` are the idiomatic spellings.
func (a *Arena) attrIDs(attrs map[string]string) []interner.Id {
	var out []interner.Id
	for k, v := range attrs {
		if sid, ok := a.interner.AttrId(k, v); ok {
			out = append(out, sid)
		}
	}
	return out
}

func splitClasses(value string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(value); i++ {
		if i < len(value) && value[i] != ' ' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			out = append(out, value[start:i])
			start = -1
		}
	}
	return out
}

// Init rebuilds the arena from scratch (§4.3, §4.6 `init`). Every node
// starts dirty per the lifecycle rule in §3.
func (a *Arena) Init(tree Tree) {
	a.nodes = make(map[NodeID]*Node)
	a.root = a.materialize(tree, 0, false)
	a.hasRoot = true
}

// resolvePath walks a child-index path from the root and returns the node
// it points to. Callers that need to splice a parent's Children slice use
// resolveParentPath, which returns the parent and the child index instead.
// Per SPEC_FULL.md's Open Question decision, paths are re-resolved against
// the arena's *current* state every time, never cached across commands.
func (a *Arena) resolvePath(path []int) (*Node, error) {
	root, ok := a.Root()
	if !ok {
		return nil, fmt.Errorf("dom: path resolution with no root")
	}
	cur := a.Get(root)
	for _, idx := range path {
		if idx < 0 || idx >= len(cur.Children) {
			return nil, fmt.Errorf("dom: path index %d out of bounds (node %d has %d children)", idx, cur.ID, len(cur.Children))
		}
		cur = a.Get(cur.Children[idx])
	}
	return cur, nil
}

func (a *Arena) resolveParentPath(path []int) (parent *Node, childIndex int, err error) {
	if len(path) == 0 {
		return nil, 0, fmt.Errorf("dom: empty path has no parent")
	}
	parent, err = a.resolvePath(path[:len(path)-1])
	if err != nil {
		return nil, 0, err
	}
	childIndex = path[len(path)-1]
	return parent, childIndex, nil
}
