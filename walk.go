package nif

import "fmt"

// Walker is used by Walk to consume atoms and compounds, recursively, within
// an Arena.
//
// Optionally, Walkers may also implement WalkExiter to receive an
// ExitCompound call when exiting a compound.
type Walker interface {
	Atom(arena *Arena, ref NodeRef) error
	EnterCompound(arena *Arena, ref NodeRef) (Walker, error)
}

// WalkExiter is an optional interface implemented for a Walker to have Walk
// call ExitCompound when it has finished visiting all children of a
// compound.
type WalkExiter interface {
	Walker

	// ExitCompound is called with the parent Walker, the exited compound,
	// and the ref of its parent (the root ref given to Walk, or an
	// enclosing compound).
	ExitCompound(Walker, *Arena, NodeRef, NodeRef) error
}

// Walk walks the tree rooted at ref, not including ref itself, calling
// walker.Atom for each atom child and walker.EnterCompound for each compound
// child (recursing into it if EnterCompound returns a non-nil Walker).
//
// Walk returns a *WalkError if any error occurs during the walk.
func Walk(arena *Arena, ref NodeRef, walker Walker) (err error) {
	return walkChildren(arena, ref, ref, walker)
}

func walkChildren(arena *Arena, context, parent NodeRef, walker Walker) (err error) {
	for _, child := range arena.Children(parent) {
		if child.IsCompound() {
			var sub Walker
			if sub, err = walker.EnterCompound(arena, child); err != nil || sub == nil {
				if err != nil {
					return walkErr(context, parent, child, err)
				}
				continue
			}
			if err = walkChildren(arena, context, child, sub); err != nil {
				return walkErr(context, parent, child, err)
			}
			if ex, ok := sub.(WalkExiter); ok {
				if err = ex.ExitCompound(walker, arena, child, parent); err != nil {
					return walkErr(context, parent, child, err)
				}
			}
			continue
		}
		if err = walker.Atom(arena, child); err != nil {
			return walkErr(context, parent, child, err)
		}
	}
	return nil
}

// WalkError is an error returned by Walk if an error occurs during a Walk
// call.
type WalkError struct {
	// Context is the ref that Walk was originally called with.
	Context NodeRef
	// Parent is the compound that Node is a child of.
	Parent NodeRef
	// Node is the node that was encountered when the error occurred.
	Node NodeRef
	// Err is the error that a Walker returned.
	Err error
}

func walkErr(context, parent, node NodeRef, err error) *WalkError {
	if we, ok := err.(*WalkError); ok {
		return we
	}
	return &WalkError{Context: context, Parent: parent, Node: node, Err: err}
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk: node %v in %v: %v", e.Node, e.Parent, e.Err)
}
