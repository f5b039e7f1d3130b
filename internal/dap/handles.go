package dap

import (
	"sync"

	"github.com/perl-language-tools/perl-ls/internal/dbgparse"
)

// HandleTag distinguishes the four kinds of variablesReference a
// VariableHandle can carry (spec.md §4.9's "Locals | Globals |
// Nested(kind, payload)" tagged union).
type HandleTag int

const (
	HandleLocals HandleTag = iota + 1
	HandleGlobals
	HandleNested
)

// VariableHandle is the value behind one variablesReference integer.
type VariableHandle struct {
	Tag        HandleTag
	NestedKind dbgparse.Kind // only meaningful when Tag == HandleNested
	Raw        string        // only meaningful when Tag == HandleNested
}

// handleTable mints and resolves variablesReference integers for one
// stopped state. It is reset by the facade's event pump (on every
// stopped event) each time the debuggee stops again, since a handle's
// Raw payload is only valid
// for the stopped state it was minted in.
type handleTable struct {
	mu      sync.Mutex
	next    int
	handles map[int]VariableHandle
}

func newHandleTable() *handleTable {
	return &handleTable{next: 1000, handles: make(map[int]VariableHandle)}
}

// reset discards every minted handle, keeping the counter monotonic so
// a stale reference from a previous stop never aliases a live one.
func (t *handleTable) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handles = make(map[int]VariableHandle)
}

func (t *handleTable) mint(h VariableHandle) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	t.handles[id] = h
	return id
}

func (t *handleTable) resolve(id int) (VariableHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.handles[id]
	return h, ok
}
