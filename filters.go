package nif

import "errors"

// Filterer inspects a node and determines if it should be kept in a result
// set. A Filterer should return true if the node should be kept.
type Filterer interface {
	Filter(arena *Arena, ref, parent NodeRef) bool
}

// accumWalker appends every child matching its Filterer to its refs slice.
// It does not recurse into compounds.
type accumWalker struct {
	arena  *Arena
	parent NodeRef
	refs   []NodeRef
	Filterer
}

func (f *accumWalker) Atom(arena *Arena, ref NodeRef) error {
	if f.Filter(arena, ref, f.parent) {
		f.refs = append(f.refs, ref)
	}
	return nil
}

func (f *accumWalker) EnterCompound(arena *Arena, ref NodeRef) (Walker, error) {
	if f.Filter(arena, ref, f.parent) {
		f.refs = append(f.refs, ref)
	}
	return nil, nil
}

// lastWalker is similar to accumWalker, but only keeps the last match it
// saw. If stopAfterFirst is true, it stops the walk as soon as its Filterer
// matches once.
type lastWalker struct {
	arena          *Arena
	parent         NodeRef
	last           NodeRef
	found          bool
	stopAfterFirst bool
	Filterer
}

var errWalkStopped = errors.New("walk stopped")

func (f *lastWalker) Atom(arena *Arena, ref NodeRef) error {
	if f.Filter(arena, ref, f.parent) {
		f.last, f.found = ref, true
		if f.stopAfterFirst {
			return errWalkStopped
		}
	}
	return nil
}

func (f *lastWalker) EnterCompound(arena *Arena, ref NodeRef) (Walker, error) {
	if f.Filter(arena, ref, f.parent) {
		f.last, f.found = ref, true
		if f.stopAfterFirst {
			return nil, errWalkStopped
		}
	}
	return nil, nil
}

func singleFilter(fs []Filterer) Filterer {
	if len(fs) == 0 {
		return filterAlways
	}
	f := fs[0]
	if len(fs) > 1 {
		f = FilterAnd(fs...)
	}
	return f
}

// Filter returns every child of parent for which all of fs match. It does
// not recurse into compounds.
func Filter(arena *Arena, parent NodeRef, fs ...Filterer) []NodeRef {
	f := singleFilter(fs)
	w := accumWalker{arena: arena, parent: parent, refs: make([]NodeRef, 0, len(arena.Children(parent))), Filterer: f}
	_ = Walk(arena, parent, &w)
	return w.refs
}

// First returns the first child of parent for which all of fs match, and
// whether one was found.
//
// If no Filterer is passed, it returns the first child of parent.
func First(arena *Arena, parent NodeRef, fs ...Filterer) (NodeRef, bool) {
	f := singleFilter(fs)
	w := lastWalker{arena: arena, parent: parent, stopAfterFirst: true, Filterer: f}
	_ = Walk(arena, parent, &w)
	return w.last, w.found
}

// Last returns the last child of parent for which all of fs match, and
// whether one was found.
//
// If no Filterer is passed, it returns the last child of parent.
func Last(arena *Arena, parent NodeRef, fs ...Filterer) (NodeRef, bool) {
	f := singleFilter(fs)
	w := lastWalker{arena: arena, parent: parent, Filterer: f}
	_ = Walk(arena, parent, &w)
	return w.last, w.found
}

// FilterFunc is a general-purpose Filterer function.
type FilterFunc func(arena *Arena, ref, parent NodeRef) bool

// Filter implements Filterer.
func (f FilterFunc) Filter(arena *Arena, ref, parent NodeRef) bool {
	return f(arena, ref, parent)
}

var filterAlways FilterFunc = func(*Arena, NodeRef, NodeRef) bool { return true }

type onlyAtoms int

// FilterAtoms is a Filterer that selects only atom nodes.
const FilterAtoms = onlyAtoms(0)

func (onlyAtoms) Filter(_ *Arena, ref, _ NodeRef) bool { return ref.IsAtom() }

type onlyCompounds int

// FilterCompounds is a Filterer that selects only compound nodes.
const FilterCompounds = onlyCompounds(0)

func (onlyCompounds) Filter(_ *Arena, ref, _ NodeRef) bool { return ref.IsCompound() }

// FilterTag is a Filterer that selects compound nodes whose tag equals
// itself.
type FilterTag string

// Filter implements Filterer.
func (t FilterTag) Filter(arena *Arena, ref, _ NodeRef) bool {
	return ref.IsCompound() && arena.Tag(ref) == string(t)
}

// FilterKind is a Filterer that selects atom nodes of a given AtomKind.
type FilterKind AtomKind

// Filter implements Filterer.
func (k FilterKind) Filter(arena *Arena, ref, _ NodeRef) bool {
	return ref.IsAtom() && arena.AtomKind(ref) == AtomKind(k)
}

type filterAnd []Filterer

// FilterAnd creates a Filterer that is the conjunction of multiple
// Filterers.
func FilterAnd(and ...Filterer) Filterer { return filterAnd(and) }

func (c filterAnd) Filter(arena *Arena, ref, parent NodeRef) bool {
	for _, f := range c {
		if !f.Filter(arena, ref, parent) {
			return false
		}
	}
	return true
}

type filterOr []Filterer

// FilterOr creates a Filterer that is the disjunction of multiple
// Filterers.
func FilterOr(or ...Filterer) Filterer { return filterOr(or) }

func (c filterOr) Filter(arena *Arena, ref, parent NodeRef) bool {
	for _, f := range c {
		if f.Filter(arena, ref, parent) {
			return true
		}
	}
	return false
}
