// Package mmapgov implements the reference-count-style accountant that
// forbids closing a Reader's mapping while any buffer view derived from
// it is still live.
package mmapgov

import "sync/atomic"

// Governor tracks the number of outstanding mapped views for one Reader.
// The zero value is ready to use. Increment (via Acquire) always happens
// on the thread that vends a view; Release may be called from any
// goroutine.
type Governor struct {
	count atomic.Int64
}

// Acquire records one new live view and returns a Token the caller must
// Release exactly once when it is done with the view.
func (g *Governor) Acquire() *Token {
	g.count.Add(1)
	return &Token{gov: g}
}

// Count returns the current number of live views. Close should refuse to
// unmap while this is nonzero.
func (g *Governor) Count() int64 {
	return g.count.Load()
}

// Token represents one outstanding mapped view. Release must be called
// exactly once; calling it more than once is a no-op after the first.
type Token struct {
	gov      *Governor
	released atomic.Bool
}

// Release decrements the governor's live count. Safe to call from any
// goroutine, and safe to call more than once.
func (t *Token) Release() {
	if t.released.CompareAndSwap(false, true) {
		t.gov.count.Add(-1)
	}
}
