// Package interner implements the append-only simple-selector interner
// (§4.1): a bidirectional map from Simple selectors to dense ids, plus
// fast string-keyed lookup tables so matching a node's tag/class/id against
// the interned universe is a map lookup instead of a scan.
package interner

import "github.com/cssmatch/cssmatch/internal/selector"

// Id is a dense simple-selector id in [0, K).
type Id int

// Interner maps every distinct simple selector seen during NFA construction
// to a stable, monotonically assigned Id. It never removes an entry: ids
// stay valid for the lifetime of the program. The wildcard selector
// Type("*") is never interned — per the open-question decision in
// SPEC_FULL.md it is represented as predicate-None everywhere, so it never
// needs an id.
type Interner struct {
	bySimple map[selector.Simple]Id
	simples  []selector.Simple

	tags    map[string]Id
	classes map[string]Id
	ids     map[string]Id
	attrs   map[[2]string]Id // [name, value] -> id
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{
		bySimple: make(map[selector.Simple]Id),
		tags:     make(map[string]Id),
		classes:  make(map[string]Id),
		ids:      make(map[string]Id),
		attrs:    make(map[[2]string]Id),
	}
}

// Intern returns the Id for sel, allocating a fresh one on first sight.
// Calling Intern twice with an equal Simple returns the same Id
// (idempotent). Panics if asked to intern the wildcard: callers must check
// Simple.IsWildcard() first and treat it as predicate-None instead.
func (in *Interner) Intern(sel selector.Simple) Id {
	if sel.IsWildcard() {
		panic("interner: the wildcard selector is never interned")
	}
	if id, ok := in.bySimple[sel]; ok {
		return id
	}

	id := Id(len(in.simples))
	in.simples = append(in.simples, sel)
	in.bySimple[sel] = id

	switch sel.Kind {
	case selector.Tag:
		in.tags[sel.Name] = id
	case selector.Class:
		in.classes[sel.Name] = id
	case selector.Id:
		in.ids[sel.Name] = id
	case selector.AttrEq:
		in.attrs[[2]string{sel.Name, sel.Value}] = id
	}

	return id
}

// Lookup returns the Simple a previously interned Id refers to.
func (in *Interner) Lookup(id Id) selector.Simple {
	return in.simples[id]
}

// Len reports how many distinct simple selectors have been interned.
func (in *Interner) Len() int { return len(in.simples) }

// TagId looks up a tag name's id without allocating a new one. The second
// return value is false if no selector ever interned that tag.
func (in *Interner) TagId(name string) (Id, bool) {
	id, ok := in.tags[name]
	return id, ok
}

// ClassId looks up a class name's id without allocating a new one.
func (in *Interner) ClassId(name string) (Id, bool) {
	id, ok := in.classes[name]
	return id, ok
}

// IdSelectorId looks up an #id selector's id without allocating a new one.
func (in *Interner) IdSelectorId(name string) (Id, bool) {
	id, ok := in.ids[name]
	return id, ok
}

// AttrId looks up an attribute-equals selector's id without allocating one.
func (in *Interner) AttrId(name, value string) (Id, bool) {
	id, ok := in.attrs[[2]string{name, value}]
	return id, ok
}
