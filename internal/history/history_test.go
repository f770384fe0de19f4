package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(v byte) []byte { return []byte{v, v, v, v} }

func TestEmptyStack(t *testing.T) {
	s := New(0)
	assert.Equal(t, DefaultCapacity, s.Capacity())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	_, ok := s.Undo()
	assert.False(t, ok)
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestUndoAfterSingleActionReturnsInitialState(t *testing.T) {
	s := New(10)
	s.Reset("load", state(0))
	assert.False(t, s.CanUndo())

	s.Push("fill", state(1))
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	e, ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, "load", e.Label)
	assert.Equal(t, state(0), e.Pix)
	assert.False(t, s.CanUndo())
	assert.True(t, s.CanRedo())

	_, ok = s.Undo()
	assert.False(t, ok, "undo at head is a no-op")
}

func TestPushAfterUndoTruncatesRedo(t *testing.T) {
	s := New(10)
	s.Reset("load", state(0))
	s.Push("a", state(1))
	s.Push("b", state(2))
	s.Undo()
	s.Undo()

	s.Push("c", state(3))
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.CanRedo())

	e, _ := s.Current()
	assert.Equal(t, "c", e.Label)
	e, _ = s.Undo()
	assert.Equal(t, "load", e.Label)
}

func TestCapacityEvictsOldest(t *testing.T) {
	const n = 8
	s := New(n)
	s.Reset("load", state(0))
	for i := 1; i <= n+5; i++ {
		s.Push("step", state(byte(i)))
	}

	assert.Equal(t, n, s.Len())
	assert.Equal(t, n-1, s.Position())
	assert.True(t, s.CanUndo())

	var oldest Entry
	for s.CanUndo() {
		oldest, _ = s.Undo()
	}
	// States 0..5 are gone; the oldest survivor is state 6.
	assert.Equal(t, state(n+5-(n-1)), oldest.Pix)
}

func TestRoundTrip(t *testing.T) {
	s := New(50)
	s.Reset("load", state(0))
	const k = 7
	for i := 1; i <= k; i++ {
		s.Push("step", state(byte(i)))
	}

	var e Entry
	for i := 0; i < k; i++ {
		var ok bool
		e, ok = s.Undo()
		require.True(t, ok)
	}
	assert.Equal(t, state(0), e.Pix)

	for i := 0; i < k; i++ {
		var ok bool
		e, ok = s.Redo()
		require.True(t, ok)
	}
	assert.Equal(t, state(k), e.Pix)
	_, ok := s.Redo()
	assert.False(t, ok, "redo at tail is a no-op")
}
