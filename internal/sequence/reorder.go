package sequence

import "scene-studio/internal/models"

// Drag-and-drop reordering is an index-array operation over value types.
// The cursor arithmetic lives here, isolated from any UI drag specifics,
// so the scheduler can keep "currently playing" pointing at the same
// logical item across a move.

// MoveItem performs the standard remove-then-insert array move: the item
// at from is removed, then inserted at to in the RESULTING array (to is
// interpreted post-removal, splice semantics).
func MoveItem(items []models.SequenceItem, from, to int) []models.SequenceItem {
	moved := items[from]
	out := make([]models.SequenceItem, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	out = append(out[:to], append([]models.SequenceItem{moved}, out[to:]...)...)
	return out
}

// AdjustCursor recomputes an externally-held index pointer so it keeps
// referring to the same logical item after MoveItem(items, from, to).
//
//   - the pointed-at item itself moved: follow it to its new slot
//   - an earlier item slid past the pointer rightward: everything in
//     (from, to] shifted down one slot
//   - a later item slid past the pointer leftward: symmetric shift up
//   - the move happened entirely on one side: pointer untouched
func AdjustCursor(current, from, to int) int {
	switch {
	case current < 0:
		return current
	case current == from:
		return to
	case from < current && current <= to:
		return current - 1
	case to <= current && current < from:
		return current + 1
	default:
		return current
	}
}

// Renumber keeps the persisted order fields dense and ascending so that
// items[i].Order == i. The field is redundant with array position but
// older frontends sort by it.
func Renumber(items []models.SequenceItem) {
	for i := range items {
		items[i].Order = i
	}
}
