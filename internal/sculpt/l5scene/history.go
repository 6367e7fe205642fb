package l5scene

import (
	"github.com/banshee-data/handvox/internal/sculpt/l3space"
)

// Voxel is one occupied cell and its palette index.
type Voxel struct {
	Pos   l3space.GridCoord
	Color int
}

// EntryKind tags a history entry.
type EntryKind string

const (
	EntryAdded   EntryKind = "added"
	EntryRemoved EntryKind = "removed"
	EntryPalette EntryKind = "palette"
	EntryCleared EntryKind = "cleared"
)

// Entry is a reversible diff. Voxel is set for added and removed entries,
// From and To for palette changes. A clear sets Voxels to the cells it
// removed and Added to the cells the demo platform rebuild put back.
type Entry struct {
	Kind   EntryKind
	Voxel  Voxel
	From   int
	To     int
	Voxels []Voxel
	Added  []Voxel
}

// History is a bounded undo stack with a redo stack of undone entries.
// It is not safe for concurrent use; the Engine serialises access.
type History struct {
	limit   int
	undo    []Entry
	redo    []Entry
	evicted uint64
}

// NewHistory returns an empty history holding at most limit entries.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Record pushes a new edit, discarding the redo stack and evicting the
// oldest entry when full.
func (h *History) Record(e Entry) {
	h.redo = h.redo[:0]
	h.undo = append(h.undo, e)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = append(h.undo[:0], h.undo[over:]...)
		h.evicted += uint64(over)
	}
}

// Undo moves the newest entry to the redo stack and returns it.
func (h *History) Undo() (Entry, bool) {
	n := len(h.undo)
	if n == 0 {
		return Entry{}, false
	}
	e := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, e)
	return e, true
}

// Redo moves the newest undone entry back onto the undo stack.
func (h *History) Redo() (Entry, bool) {
	n := len(h.redo)
	if n == 0 {
		return Entry{}, false
	}
	e := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, e)
	return e, true
}

func (h *History) UndoDepth() int  { return len(h.undo) }
func (h *History) RedoDepth() int  { return len(h.redo) }
func (h *History) Evicted() uint64 { return h.evicted }

// Entries returns the undo stack, oldest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.undo...)
}
