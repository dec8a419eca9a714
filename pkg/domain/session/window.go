package session

import "github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"

// Entry is one finalized verdict kept in the escalation window.
type Entry struct {
	Verdict    verdict.Verdict `json:"verdict"`
	AttackType string          `json:"attack_type,omitempty"`
}

func (e Entry) Blocked() bool {
	return e.Verdict.IsBlock()
}

// Window is a fixed-capacity FIFO of the most recent entries.
type Window struct {
	size    int
	entries []Entry
}

func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{
		size:    size,
		entries: make([]Entry, 0, size),
	}
}

func (w *Window) Push(e Entry) {
	if len(w.entries) == w.size {
		copy(w.entries, w.entries[1:])
		w.entries = w.entries[:w.size-1]
	}
	w.entries = append(w.entries, e)
}

func (w *Window) Len() int {
	return len(w.entries)
}

func (w *Window) Size() int {
	return w.size
}

// Entries returns a copy, oldest first.
func (w *Window) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

func (w *Window) Blocked() []bool {
	out := make([]bool, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.Blocked()
	}
	return out
}

func (w *Window) BlockedCount() int {
	n := 0
	for _, e := range w.entries {
		if e.Blocked() {
			n++
		}
	}
	return n
}
