// Package history keeps a bounded linear undo/redo log of full buffer
// snapshots.
package history

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 50

// Entry is one recorded buffer state. Its pixels must be treated as
// read-only by everyone, including the caller that pushed them.
type Entry struct {
	Label string
	Pix   []byte
}

// Stack is a linear undo history. Entry 0 is the oldest state still
// recoverable; pos is the entry currently shown.
type Stack struct {
	entries  []Entry
	pos      int
	capacity int
}

// New returns an empty stack holding at most capacity entries.
func New(capacity int) *Stack {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Stack{pos: -1, capacity: capacity}
}

// Reset drops all history and records pix as the initial state.
func (s *Stack) Reset(label string, pix []byte) {
	clear(s.entries)
	s.entries = append(s.entries[:0], Entry{Label: label, Pix: pix})
	s.pos = 0
}

// Push records a new state after the current one. Any redo-able states are
// discarded, and once the stack is over capacity the oldest entries go.
func (s *Stack) Push(label string, pix []byte) {
	clear(s.entries[s.pos+1:])
	s.entries = append(s.entries[:s.pos+1], Entry{Label: label, Pix: pix})
	if over := len(s.entries) - s.capacity; over > 0 {
		clear(s.entries[:over])
		s.entries = append(s.entries[:0], s.entries[over:]...)
	}
	s.pos = len(s.entries) - 1
}

// Undo steps back one entry and returns it. It is a no-op at the oldest entry.
func (s *Stack) Undo() (Entry, bool) {
	if !s.CanUndo() {
		return Entry{}, false
	}
	s.pos--
	return s.entries[s.pos], true
}

// Redo steps forward one entry and returns it. It is a no-op at the newest entry.
func (s *Stack) Redo() (Entry, bool) {
	if !s.CanRedo() {
		return Entry{}, false
	}
	s.pos++
	return s.entries[s.pos], true
}

// Current returns the entry currently shown.
func (s *Stack) Current() (Entry, bool) {
	if s.pos < 0 {
		return Entry{}, false
	}
	return s.entries[s.pos], true
}

func (s *Stack) CanUndo() bool { return s.pos > 0 }
func (s *Stack) CanRedo() bool { return s.pos >= 0 && s.pos < len(s.entries)-1 }

// Len returns the number of stored entries.
func (s *Stack) Len() int { return len(s.entries) }

// Position returns the index of the current entry, -1 when empty.
func (s *Stack) Position() int { return s.pos }

// Capacity returns the maximum number of entries.
func (s *Stack) Capacity() int { return s.capacity }
