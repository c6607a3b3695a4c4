package sequence

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scene-studio/internal/models"
)

type stubScenes struct {
	count int64
}

func (s *stubScenes) Count() (int64, error) { return s.count, nil }

func newTestStore(t *testing.T, sceneCount int64) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.SequenceRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	store := NewStore(db, &stubScenes{count: sceneCount})
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t, 1)

	created, err := store.Create("Evening Loop", "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.DefaultFadeType != models.TransitionCrossfade {
		t.Errorf("default fade = %s, want crossfade", created.DefaultFadeType)
	}
	if created.SchemaVersion != models.CurrentSchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", created.SchemaVersion, models.CurrentSchemaVersion)
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Evening Loop" {
		t.Errorf("Name = %q, want Evening Loop", got.Name)
	}
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t, 1)
	if _, err := store.Get("nope"); !errors.Is(err, ErrSequenceNotFound) {
		t.Errorf("expected ErrSequenceNotFound, got %v", err)
	}
}

func TestAddItemWithEmptyCatalog(t *testing.T) {
	store := newTestStore(t, 0)
	seq, err := store.Create("S", "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.AddItem(seq, "scene-1"); !errors.Is(err, ErrNoScenesAvailable) {
		t.Errorf("expected ErrNoScenesAvailable, got %v", err)
	}
}

func TestOrderStaysDense(t *testing.T) {
	store := newTestStore(t, 1)
	seq, err := store.Create("S", "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := store.AddItem(seq, "scene"); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
	}

	if err := store.DeleteItem(seq, seq.Items[1].ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if err := store.Reorder(seq, 2, 0); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	// Reload from disk and check the numbering is 0..n-1 with no gaps.
	got, err := store.Get(seq.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(got.Items))
	}
	for i, item := range got.Items {
		if item.Order != i {
			t.Errorf("items[%d].Order = %d, want %d", i, item.Order, i)
		}
	}
}

func TestReorderBadIndex(t *testing.T) {
	store := newTestStore(t, 1)
	seq, _ := store.Create("S", "", "")
	store.AddItem(seq, "scene")

	if err := store.Reorder(seq, 0, 5); !errors.Is(err, ErrBadIndex) {
		t.Errorf("expected ErrBadIndex, got %v", err)
	}
	if err := store.Reorder(seq, -1, 0); !errors.Is(err, ErrBadIndex) {
		t.Errorf("expected ErrBadIndex, got %v", err)
	}
}

func TestUpdateItemNoOpSuppressed(t *testing.T) {
	store := newTestStore(t, 1)
	seq, _ := store.Create("S", "", "")
	item, err := store.AddItem(seq, "scene-1")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	notifications := 0
	store.OnChange(func(*models.Sequence) { notifications++ })

	// Patch that restates the current values exactly.
	mode := item.DurationMode
	secs := item.DurationSeconds
	changed, err := store.UpdateItem(seq, item.ID, ItemPatch{
		DurationMode:    &mode,
		DurationSeconds: &secs,
	})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if changed {
		t.Error("no-op patch reported as a change")
	}
	if notifications != 0 {
		t.Errorf("no-op patch fired %d notifications, want 0", notifications)
	}

	// A real edit persists and notifies once.
	newSecs := 9
	changed, err = store.UpdateItem(seq, item.ID, ItemPatch{DurationSeconds: &newSecs})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if !changed {
		t.Error("real edit reported as a no-op")
	}
	if notifications != 1 {
		t.Errorf("real edit fired %d notifications, want 1", notifications)
	}

	got, _ := store.Get(seq.ID)
	if got.Items[0].DurationSeconds != 9 {
		t.Errorf("DurationSeconds = %d, want 9", got.Items[0].DurationSeconds)
	}
}

func TestUpdateItemNormalizes(t *testing.T) {
	store := newTestStore(t, 1)
	seq, _ := store.Create("S", "", "")
	item, _ := store.AddItem(seq, "scene-1")

	// Setting seconds to zero flips the item to manual.
	zero := 0
	changed, err := store.UpdateItem(seq, item.ID, ItemPatch{DurationSeconds: &zero})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if !changed {
		t.Fatal("expected a change")
	}
	if seq.Items[0].DurationMode != models.DurationManual {
		t.Errorf("mode = %s, want manual", seq.Items[0].DurationMode)
	}
}

func TestUpdateItemMissing(t *testing.T) {
	store := newTestStore(t, 1)
	seq, _ := store.Create("S", "", "")
	if _, err := store.UpdateItem(seq, "ghost", ItemPatch{}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestImportRejectsBadPayload(t *testing.T) {
	store := newTestStore(t, 1)

	if _, err := store.Import([]byte(`{"broken`)); !errors.Is(err, ErrMalformedImport) {
		t.Errorf("expected ErrMalformedImport for truncated JSON, got %v", err)
	}
	if _, err := store.Import([]byte(`{"items": []}`)); !errors.Is(err, ErrMalformedImport) {
		t.Errorf("expected ErrMalformedImport for nameless payload, got %v", err)
	}

	// Nothing should have been written.
	all, err := store.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected imports left %d sequences behind", len(all))
	}
}

func TestImportAssignsFreshID(t *testing.T) {
	store := newTestStore(t, 1)
	existing, _ := store.Create("Local", "", "")

	payload := `{"id": "` + existing.ID + `", "name": "Imported", "items": [
		{"id": "i1", "sceneId": "s1", "duration": 2, "transition": "fade"}
	]}`
	imported, err := store.Import([]byte(payload))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported.ID == existing.ID {
		t.Error("import reused the incoming id and clobbered a local sequence")
	}

	all, _ := store.GetAll()
	if len(all) != 2 {
		t.Errorf("got %d sequences, want 2", len(all))
	}
}

func TestExportRoundTrips(t *testing.T) {
	store := newTestStore(t, 1)
	seq, _ := store.Create("Show", "#101010", models.TransitionCut)
	store.AddItem(seq, "scene-1")

	data, err := store.Export(seq.ID)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("export is not pretty-printed")
	}

	var out models.Sequence
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("export does not parse: %v", err)
	}
	if out.SchemaVersion != models.CurrentSchemaVersion {
		t.Errorf("exported SchemaVersion = %d, want %d", out.SchemaVersion, models.CurrentSchemaVersion)
	}
}

func TestDeleteSequence(t *testing.T) {
	store := newTestStore(t, 1)
	seq, _ := store.Create("Gone", "", "")

	if err := store.Delete(seq.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(seq.ID); !errors.Is(err, ErrSequenceNotFound) {
		t.Errorf("expected ErrSequenceNotFound, got %v", err)
	}
}
