package nif

import "testing"

type collectWalker struct {
	atoms     []NodeRef
	compounds []NodeRef
}

func (w *collectWalker) Atom(arena *Arena, ref NodeRef) error {
	w.atoms = append(w.atoms, ref)
	return nil
}

func (w *collectWalker) EnterCompound(arena *Arena, ref NodeRef) (Walker, error) {
	w.compounds = append(w.compounds, ref)
	return w, nil
}

func TestWalkVisitsAllDescendants(t *testing.T) {
	m := mustParse(t, `(.nif26)(stmts (call :a.0.m +1) (call :b.0.m +2))`, "m.nif")

	w := &collectWalker{}
	if err := Walk(m.Arena, m.Body[0], w); err != nil {
		t.Fatalf("Walk error: %v", err)
	}
	if len(w.compounds) != 2 {
		t.Fatalf("len(compounds) = %d; want 2 (two call nodes)", len(w.compounds))
	}
	if len(w.atoms) != 4 {
		t.Fatalf("len(atoms) = %d; want 4 (two SymbolDefs, two int args)", len(w.atoms))
	}
}

type exitTrackingWalker struct {
	collectWalker
	exited bool
}

func (w *exitTrackingWalker) EnterCompound(arena *Arena, ref NodeRef) (Walker, error) {
	w.compounds = append(w.compounds, ref)
	return w, nil
}

func (w *exitTrackingWalker) ExitCompound(parent Walker, arena *Arena, ref, parentRef NodeRef) error {
	w.exited = true
	return nil
}

func TestWalkCallsExitCompoundWhenImplemented(t *testing.T) {
	m := mustParse(t, `(.nif26)(stmts (call :a.0.m))`, "m.nif")

	w := &exitTrackingWalker{}
	if err := Walk(m.Arena, m.Body[0], w); err != nil {
		t.Fatalf("Walk error: %v", err)
	}
	if !w.exited {
		t.Fatalf("ExitCompound was never called")
	}
}

type stoppingWalker struct {
	stopErr error
}

func (w *stoppingWalker) Atom(arena *Arena, ref NodeRef) error { return w.stopErr }
func (w *stoppingWalker) EnterCompound(arena *Arena, ref NodeRef) (Walker, error) {
	return w, nil
}

func TestWalkPropagatesErrorAsWalkError(t *testing.T) {
	m := mustParse(t, `(.nif26)(stmts (call :a.0.m +1))`, "m.nif")

	sentinel := errWalkStopped
	err := Walk(m.Arena, m.Body[0], &stoppingWalker{stopErr: sentinel})
	if err == nil {
		t.Fatalf("Walk succeeded; want propagated error")
	}
	we, ok := err.(*WalkError)
	if !ok {
		t.Fatalf("error = %T; want *WalkError", err)
	}
	if we.Err != sentinel {
		t.Fatalf("WalkError.Err = %v; want sentinel", we.Err)
	}
}
