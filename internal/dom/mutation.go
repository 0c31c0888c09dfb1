package dom

import "fmt"

// Add inserts subtree at the given child index under the node found by
// walking path (the *parent's* path; §4.3 `add`). It marks the newly
// inserted subtree's root dirty and also dirties the structural parent,
// since a new child can change the parent's propagated matches.
func (a *Arena) Add(path []int, childIndex int, subtree Tree) error {
	parent, err := a.resolvePath(path)
	if err != nil {
		return err
	}
	if childIndex < 0 || childIndex > len(parent.Children) {
		return fmt.Errorf("dom: add index %d out of bounds (parent %d has %d children)", childIndex, parent.ID, len(parent.Children))
	}

	newID := a.materialize(subtree, parent.ID, true)

	parent.Children = append(parent.Children, 0)
	copy(parent.Children[childIndex+1:], parent.Children[childIndex:])
	parent.Children[childIndex] = newID

	a.MarkDirty(newID)
	a.MarkDirty(parent.ID)
	return nil
}

// Remove deletes the subtree at path (§4.3 `remove`); children after it
// shift left. The structural parent is dirtied; the removed nodes are
// simply forgotten since a deleted subtree is never visited again.
func (a *Arena) Remove(path []int) error {
	parent, childIndex, err := a.resolveParentPath(path)
	if err != nil {
		return err
	}
	if childIndex < 0 || childIndex >= len(parent.Children) {
		return fmt.Errorf("dom: remove index %d out of bounds (parent %d has %d children)", childIndex, parent.ID, len(parent.Children))
	}

	removedID := parent.Children[childIndex]
	parent.Children = append(parent.Children[:childIndex], parent.Children[childIndex+1:]...)
	a.deleteSubtree(removedID)

	a.MarkDirty(parent.ID)
	return nil
}

func (a *Arena) deleteSubtree(id NodeID) {
	n := a.Get(id)
	if n == nil {
		return
	}
	for _, child := range n.Children {
		a.deleteSubtree(child)
	}
	delete(a.nodes, id)
}

// AttrMutation names which of the three attribute commands is being applied.
type AttrMutation uint8

const (
	ReplaceValue AttrMutation = iota
	InsertValue
	DeleteValue
)

// SetAttr applies one attribute mutation to the node found at path (§4.3
// `set_attr`, §6 replace_value/insert_value/delete_value). When oldValue is
// supplied (hasOldValue), it is asserted against the current value and a
// mismatch is reported as a fatal error — the trace is considered
// inconsistent (§7). Only the target node is dirtied: its intrinsic matches
// may change, but its parent's output did not (§4.6).
func (a *Arena) SetAttr(path []int, mutation AttrMutation, key, value string, hasOldValue bool, oldValue string) error {
	node, err := a.resolvePath(path)
	if err != nil {
		return err
	}

	if hasOldValue {
		current, ok := node.Attrs[key]
		if mutation == DeleteValue && !ok {
			return fmt.Errorf("dom: old_value assertion failed on node %d: key %q absent, expected %q", node.ID, key, oldValue)
		}
		if ok && current != oldValue {
			return fmt.Errorf("dom: old_value assertion failed on node %d: key %q is %q, expected %q", node.ID, key, current, oldValue)
		}
	}

	switch mutation {
	case DeleteValue:
		delete(node.Attrs, key)
	case InsertValue, ReplaceValue:
		// Per SPEC_FULL.md's Open Question decision, insert_value on an
		// existing key silently upserts rather than erroring.
		node.Attrs[key] = value
	}

	a.refreshIntrinsicFields(node, key)
	a.MarkDirty(node.ID)
	return nil
}

// refreshIntrinsicFields recomputes the simple-selector-derived fields of a
// node (tag id, class ids, id-selector id) after an attribute mutation.
// Tag id never changes after materialization (the tag name isn't an
// attribute a trace can mutate); only class/id/attribute-equals
// derivations need to be refreshed.
func (a *Arena) refreshIntrinsicFields(n *Node, key string) {
	switch key {
	case "class":
		n.ClassIDs = nil
		n.Classes = nil
		if classAttr, ok := n.Attrs["class"]; ok {
			for _, name := range splitClasses(classAttr) {
				n.Classes = append(n.Classes, name)
				if sid, ok := a.interner.ClassId(name); ok {
					n.ClassIDs = append(n.ClassIDs, sid)
				}
			}
		}
	case "id":
		n.HasIdID = false
		n.HasIdAttr = false
		if idAttr, ok := n.Attrs["id"]; ok {
			n.IdAttr, n.HasIdAttr = idAttr, true
			if sid, ok := a.interner.IdSelectorId(idAttr); ok {
				n.IdID, n.HasIdID = sid, true
			}
		}
	}

	// AttrEq selectors can target any key, not only class/id, so the full
	// set is recomputed regardless of which key changed.
	n.AttrIDs = a.attrIDs(n.Attrs)
}

// MarkDirty implements §4.3's mark_dirty: sets self_dirty on target, then
// walks the parent chain setting recursive_dirty until it finds an
// ancestor that already has it set (monotonic propagation stops early).
func (a *Arena) MarkDirty(target NodeID) {
	n := a.Get(target)
	if n == nil {
		return
	}
	n.SelfDirty = true
	n.RecursiveDirty = true

	cur := n
	for cur.HasParent {
		parent := a.Get(cur.Parent)
		if parent == nil {
			return
		}
		if parent.RecursiveDirty {
			return
		}
		parent.RecursiveDirty = true
		cur = parent
	}
}
