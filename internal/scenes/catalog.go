package scenes

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"scene-studio/internal/models"
)

var (
	// ErrSceneNotFound marks a dangling reference. Per-item and non-fatal:
	// validation collects it, the player skips the load and keeps going.
	ErrSceneNotFound = errors.New("scene not found")

	// ErrNameConflict is returned when saving a scene under a name that
	// already belongs to a different scene. The caller must make an
	// explicit choice (update the existing one, or save under a new name);
	// the catalog never silently overwrites.
	ErrNameConflict = errors.New("scene name already exists")
)

// Catalog owns the saved scenes. Sequences reference entries here by id;
// the renderer consumes the opaque state blobs.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// GetAllScenes lists the catalog, newest first.
func (c *Catalog) GetAllScenes() ([]models.Scene, error) {
	var out []models.Scene
	if err := c.db.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one scene by id.
func (c *Catalog) Get(id string) (*models.Scene, error) {
	var sc models.Scene
	if err := c.db.First(&sc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSceneNotFound
		}
		return nil, err
	}
	return &sc, nil
}

// Count reports how many scenes exist. The sequence store gates AddItem
// on this.
func (c *Catalog) Count() (int64, error) {
	var n int64
	err := c.db.Model(&models.Scene{}).Count(&n).Error
	return n, err
}

// Save stores a scene snapshot. When another scene already holds the name,
// the behavior depends on updateExisting: false returns ErrNameConflict so
// the UI can ask, true writes the new state into the existing record and
// keeps its id (so sequences referencing it pick up the change).
func (c *Catalog) Save(sc *models.Scene, updateExisting bool) (*models.Scene, error) {
	if sc.Name == "" {
		return nil, fmt.Errorf("scene name is required")
	}
	if !json.Valid([]byte(sc.State)) {
		return nil, fmt.Errorf("scene state is not valid JSON")
	}

	var existing models.Scene
	err := c.db.First(&existing, "name = ?", sc.Name).Error
	switch {
	case err == nil && existing.ID != sc.ID:
		if !updateExisting {
			return nil, ErrNameConflict
		}
		existing.State = sc.State
		existing.Thumbnail = sc.Thumbnail
		if err := c.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if err := c.db.Save(sc).Error; err != nil {
		return nil, err
	}
	return sc, nil
}

// Delete removes a scene. Sequences referencing it keep their items;
// they degrade to dangling references the validator reports.
func (c *Catalog) Delete(id string) error {
	res := c.db.Delete(&models.Scene{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSceneNotFound
	}
	return nil
}

// LoadSceneState returns the renderable blob for a catalog scene, or nil
// when the stored payload is unusable.
func (c *Catalog) LoadSceneState(sc *models.Scene) json.RawMessage {
	if sc == nil || sc.State == "" || !json.Valid([]byte(sc.State)) {
		return nil
	}
	return json.RawMessage(sc.State)
}

// Resolve maps a sequence item to its renderable state: the embedded blob
// for portable items, a catalog lookup otherwise.
func (c *Catalog) Resolve(item models.SequenceItem) (json.RawMessage, error) {
	if item.Inline() {
		return item.SceneState, nil
	}
	if item.SceneID == "" {
		return nil, ErrSceneNotFound
	}
	sc, err := c.Get(item.SceneID)
	if err != nil {
		return nil, err
	}
	blob := c.LoadSceneState(sc)
	if blob == nil {
		return nil, fmt.Errorf("%w: %s has no loadable state", ErrSceneNotFound, item.SceneID)
	}
	return blob, nil
}
