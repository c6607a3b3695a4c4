package sequence

import (
	"testing"

	"scene-studio/internal/models"
)

func mkItems(ids ...string) []models.SequenceItem {
	out := make([]models.SequenceItem, len(ids))
	for i, id := range ids {
		out[i] = models.SequenceItem{ID: id, SceneID: "scene-" + id, Order: i}
	}
	return out
}

func TestMoveItem(t *testing.T) {
	tests := []struct {
		name string
		from int
		to   int
		want []string
	}{
		{"forward move", 0, 3, []string{"B", "C", "D", "A", "E"}},
		{"backward move", 4, 1, []string{"A", "E", "B", "C", "D"}},
		{"adjacent swap", 2, 3, []string{"A", "B", "D", "C", "E"}},
		{"to front", 3, 0, []string{"D", "A", "B", "C", "E"}},
		{"to back", 1, 4, []string{"A", "C", "D", "E", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := mkItems("A", "B", "C", "D", "E")
			got := MoveItem(base, tt.from, tt.to)
			for i, want := range tt.want {
				if got[i].ID != want {
					t.Errorf("MoveItem(%d, %d)[%d] = %s, want %s", tt.from, tt.to, i, got[i].ID, want)
				}
			}
			// The input slice must not be touched; callers hold it.
			for i, id := range []string{"A", "B", "C", "D", "E"} {
				if base[i].ID != id {
					t.Errorf("MoveItem mutated its input at %d: %s", i, base[i].ID)
				}
			}
		})
	}
}

// The four relative orderings of (from, to, current) from the playback
// engine's point of view: items = [A,B,C,D,E], cursor on C (index 2).
func TestAdjustCursor(t *testing.T) {
	tests := []struct {
		name    string
		from    int
		to      int
		current int
		want    int
	}{
		{"earlier item moved past the cursor", 0, 3, 2, 1},
		{"later item moved before the cursor", 4, 1, 2, 3},
		{"the pointed-at item itself moved", 2, 4, 2, 4},
		{"move entirely beyond the cursor", 3, 4, 2, 2},
		{"move entirely before the cursor", 0, 1, 3, 3},
		{"nothing selected stays nothing", 1, 3, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustCursor(tt.current, tt.from, tt.to)
			if got != tt.want {
				t.Errorf("AdjustCursor(%d, %d, %d) = %d, want %d",
					tt.current, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// Exhaustive agreement check: after any move, the corrected cursor must
// land on the same logical item it pointed at before.
func TestAdjustCursorTracksMoveItem(t *testing.T) {
	base := mkItems("A", "B", "C", "D", "E")
	for from := 0; from < len(base); from++ {
		for to := 0; to < len(base); to++ {
			for cur := 0; cur < len(base); cur++ {
				moved := MoveItem(base, from, to)
				got := AdjustCursor(cur, from, to)
				if got < 0 || got >= len(moved) {
					t.Fatalf("AdjustCursor(%d, %d, %d) = %d out of range", cur, from, to, got)
				}
				if moved[got].ID != base[cur].ID {
					t.Errorf("move(%d→%d) cursor %d: corrected to %d (%s), want item %s",
						from, to, cur, got, moved[got].ID, base[cur].ID)
				}
			}
		}
	}
}

func TestRenumber(t *testing.T) {
	items := mkItems("A", "B", "C")
	items[0].Order = 7
	items[2].Order = 99
	Renumber(items)
	for i := range items {
		if items[i].Order != i {
			t.Errorf("items[%d].Order = %d, want %d", i, items[i].Order, i)
		}
	}
}
