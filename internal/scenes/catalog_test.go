package scenes

import (
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scene-studio/internal/models"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Scene{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewCatalog(db)
}

func TestSaveAndGet(t *testing.T) {
	cat := newTestCatalog(t)

	saved, err := cat.Save(&models.Scene{Name: "Waves", State: `{"seed": 1}`}, false)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved scene has no id")
	}

	got, err := cat.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Waves" {
		t.Errorf("Name = %q, want Waves", got.Name)
	}

	n, err := cat.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	cat := newTestCatalog(t)

	if _, err := cat.Save(&models.Scene{State: `{}`}, false); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := cat.Save(&models.Scene{Name: "X", State: `not json`}, false); err == nil {
		t.Error("expected error for invalid state JSON")
	}
}

func TestSaveNameConflict(t *testing.T) {
	cat := newTestCatalog(t)

	original, err := cat.Save(&models.Scene{Name: "Sunset", State: `{"seed": 1}`}, false)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Same name from a different scene without consent: refused.
	_, err = cat.Save(&models.Scene{Name: "Sunset", State: `{"seed": 2}`}, false)
	if !errors.Is(err, ErrNameConflict) {
		t.Fatalf("expected ErrNameConflict, got %v", err)
	}

	// With consent the existing record absorbs the new state and keeps its id.
	updated, err := cat.Save(&models.Scene{Name: "Sunset", State: `{"seed": 2}`}, true)
	if err != nil {
		t.Fatalf("Save with updateExisting failed: %v", err)
	}
	if updated.ID != original.ID {
		t.Errorf("update changed the id: %s -> %s", original.ID, updated.ID)
	}
	if updated.State != `{"seed": 2}` {
		t.Errorf("State = %q, want updated payload", updated.State)
	}

	n, _ := cat.Count()
	if n != 1 {
		t.Errorf("Count = %d, want 1 after overwrite", n)
	}
}

func TestResaveOwnName(t *testing.T) {
	cat := newTestCatalog(t)

	sc, err := cat.Save(&models.Scene{Name: "Drift", State: `{"v": 1}`}, false)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A scene re-saving under its own name is never a conflict.
	sc.State = `{"v": 2}`
	if _, err := cat.Save(sc, false); err != nil {
		t.Errorf("re-save of own name failed: %v", err)
	}
}

func TestDelete(t *testing.T) {
	cat := newTestCatalog(t)
	sc, _ := cat.Save(&models.Scene{Name: "Gone", State: `{}`}, false)

	if err := cat.Delete(sc.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := cat.Delete(sc.ID); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("expected ErrSceneNotFound, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	cat := newTestCatalog(t)
	sc, _ := cat.Save(&models.Scene{Name: "Bloom", State: `{"seed": 42}`}, false)

	// Catalog reference resolves to the stored blob.
	blob, err := cat.Resolve(models.SequenceItem{SceneID: sc.ID})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if string(blob) != `{"seed": 42}` {
		t.Errorf("blob = %s, want stored state", blob)
	}

	// Inline blob wins without touching the catalog.
	inline := json.RawMessage(`{"seed": 7}`)
	blob, err = cat.Resolve(models.SequenceItem{SceneID: "does-not-matter", SceneState: inline})
	if err != nil {
		t.Fatalf("Resolve inline failed: %v", err)
	}
	if string(blob) != string(inline) {
		t.Errorf("blob = %s, want inline state", blob)
	}

	// Dangling reference.
	if _, err := cat.Resolve(models.SequenceItem{SceneID: "ghost"}); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("expected ErrSceneNotFound, got %v", err)
	}
	if _, err := cat.Resolve(models.SequenceItem{}); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("expected ErrSceneNotFound for empty item, got %v", err)
	}
}
