package nif

import "strconv"

// IndexCodec is the contract an on-disk index representation must satisfy.
// The textual `.index` form implemented by textIndexCodec is the only
// implementation in this package; a binary (KIF) codec is an external
// collaborator's concern and is modeled here only as this interface, never
// implemented.
type IndexCodec interface {
	// EncodeIndex appends idx's entries as children of a ".index" compound
	// under the given Arena, returning the new compound's NodeRef.
	EncodeIndex(arena *Arena, idx *Index) NodeRef
	// DecodeIndex interprets an already-parsed ".index" compound's children
	// as an Index.
	DecodeIndex(arena *Arena, ref NodeRef) (*Index, error)
}

// textIndexCodec implements IndexCodec for the textual `(.index (x sym
// +delta) ...)` form described by this package's Parser and Writer.
type textIndexCodec struct{}

// TextIndexCodec is the IndexCodec for the textual `.index` form. Parser and
// Writer read and write that form directly rather than through this value.
var TextIndexCodec IndexCodec = textIndexCodec{}

func (textIndexCodec) EncodeIndex(arena *Arena, idx *Index) NodeRef {
	children := make([]NodeRef, 0, len(idx.Entries))
	prev := 0
	for _, e := range idx.Entries {
		tag := "x"
		if e.Visibility == Hidden {
			tag = "h"
		}
		delta := e.Offset - prev
		prev = e.Offset
		sign := 1
		if delta < 0 {
			sign = -1
			delta = -delta
		}
		symRef := arena.NewSymbol(e.Symbol, false, Prefix{})
		deltaRef := arena.NewInt(sign, strconv.Itoa(delta), Prefix{})
		entryRef := arena.NewCompound(tag, []NodeRef{symRef, deltaRef}, Prefix{})
		children = append(children, entryRef)
	}
	return arena.NewCompound(".index", children, Prefix{})
}

func (textIndexCodec) DecodeIndex(arena *Arena, ref NodeRef) (*Index, error) {
	st := &parseState{arena: arena, p: &Parser{}}
	return st.parseIndexFromCompound(ref)
}
