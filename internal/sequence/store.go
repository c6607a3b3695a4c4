package sequence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"scene-studio/internal/models"
)

// SceneCounter is the slice of the scene catalog the store needs: just
// enough to know whether there is anything to add.
type SceneCounter interface {
	Count() (int64, error)
}

// Store is the single source of truth for sequences. All mutation goes
// through it; every mutating call persists the FULL sequence JSON back to
// the record keyed by the sequence id. No field-level merges.
type Store struct {
	db     *gorm.DB
	scenes SceneCounter
	notify func(seq *models.Sequence)
	now    func() time.Time
}

func NewStore(db *gorm.DB, scenes SceneCounter) *Store {
	return &Store{
		db:     db,
		scenes: scenes,
		now:    time.Now,
	}
}

// OnChange registers a listener invoked after every persisted mutation.
// No-op updates (see UpdateItem) never notify; the UI round-trips derived
// values and would otherwise feed back into itself.
func (s *Store) OnChange(fn func(seq *models.Sequence)) {
	s.notify = fn
}

// Create makes a new empty sequence in the current schema.
func (s *Store) Create(name, backgroundColour, defaultFade string) (*models.Sequence, error) {
	nowMs := s.now().UnixMilli()
	seq := &models.Sequence{
		ID:               uuid.NewString(),
		SchemaVersion:    models.CurrentSchemaVersion,
		Name:             name,
		BackgroundColour: backgroundColour,
		DefaultFadeType:  defaultFade,
		Items:            []models.SequenceItem{},
		CreatedAt:        nowMs,
		UpdatedAt:        nowMs,
	}
	if seq.DefaultFadeType == "" {
		seq.DefaultFadeType = models.TransitionCrossfade
	}
	if seq.BackgroundColour == "" {
		seq.BackgroundColour = "#000000"
	}
	if err := s.persist(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// Get loads and normalizes one sequence.
func (s *Store) Get(id string) (*models.Sequence, error) {
	var rec models.SequenceRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSequenceNotFound
		}
		return nil, err
	}
	return Normalize([]byte(rec.Payload))
}

// GetAll loads every stored sequence. Rows whose payload no longer parses
// are skipped with a warning rather than poisoning the whole listing.
func (s *Store) GetAll() ([]models.Sequence, error) {
	var recs []models.SequenceRecord
	if err := s.db.Order("name asc").Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]models.Sequence, 0, len(recs))
	for _, rec := range recs {
		seq, err := Normalize([]byte(rec.Payload))
		if err != nil {
			log.Printf("⚠️ Skipping unreadable sequence %s: %v", rec.ID, err)
			continue
		}
		out = append(out, *seq)
	}
	return out, nil
}

// Save persists metadata edits (name, colour, default fade) made directly
// on the sequence value.
func (s *Store) Save(seq *models.Sequence) error {
	return s.persist(seq)
}

// Delete removes the sequence record.
func (s *Store) Delete(id string) error {
	res := s.db.Delete(&models.SequenceRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSequenceNotFound
	}
	return nil
}

// AddItem appends a catalog reference at the end of the playback order.
func (s *Store) AddItem(seq *models.Sequence, sceneID string) (*models.SequenceItem, error) {
	n, err := s.scenes.Count()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoScenesAvailable
	}

	item := models.SequenceItem{
		ID:           uuid.NewString(),
		SceneID:      sceneID,
		DurationMode: models.DurationSeconds,
		// Single-digit-second granularity is the norm for these playlists.
		DurationSeconds: 5,
		Transition:      models.Transition{Type: seq.DefaultFadeType},
		Order:           len(seq.Items),
	}
	seq.Items = append(seq.Items, item)

	if err := s.persist(seq); err != nil {
		return nil, err
	}
	return &seq.Items[len(seq.Items)-1], nil
}

// ItemPatch carries the fields an item edit may change. Nil means "leave
// alone".
type ItemPatch struct {
	SceneID         *string            `json:"sceneId"`
	DurationMode    *string            `json:"durationMode"`
	DurationSeconds *int               `json:"durationSeconds"`
	Transition      *models.Transition `json:"transition"`
}

// UpdateItem applies a patch to one item. If the patch produces no
// observable change the call short-circuits: nothing is persisted and no
// change notification fires. The returned bool reports whether anything
// actually changed.
func (s *Store) UpdateItem(seq *models.Sequence, itemID string, patch ItemPatch) (bool, error) {
	idx := seq.ItemIndex(itemID)
	if idx < 0 {
		return false, ErrItemNotFound
	}

	before := seq.Items[idx]
	after := before

	if patch.SceneID != nil {
		after.SceneID = *patch.SceneID
		after.SceneState = nil
	}
	if patch.DurationMode != nil {
		after.DurationMode = *patch.DurationMode
	}
	if patch.DurationSeconds != nil {
		after.DurationSeconds = *patch.DurationSeconds
	}
	if patch.Transition != nil {
		after.Transition = *patch.Transition
	}

	normalized := normalizeItems([]models.SequenceItem{after}, seq.DefaultFadeType)
	after = normalized[0]
	after.Order = before.Order

	if reflect.DeepEqual(before, after) {
		return false, nil
	}

	seq.Items[idx] = after
	if err := s.persist(seq); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteItem removes one item and closes the gap in the order numbering.
func (s *Store) DeleteItem(seq *models.Sequence, itemID string) error {
	idx := seq.ItemIndex(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}
	seq.Items = append(seq.Items[:idx], seq.Items[idx+1:]...)
	Renumber(seq.Items)
	return s.persist(seq)
}

// Reorder moves the item at from to the slot to (post-removal indexing)
// and renumbers. Cursor correction is the caller's business: the player
// runs AdjustCursor inside the same critical section as this call.
func (s *Store) Reorder(seq *models.Sequence, from, to int) error {
	n := len(seq.Items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrBadIndex
	}
	if from == to {
		return nil
	}
	seq.Items = MoveItem(seq.Items, from, to)
	Renumber(seq.Items)
	return s.persist(seq)
}

// Import accepts a sequence JSON payload (either schema), runs the same
// normalize path as load-from-store, and persists it as a new record.
// A bad payload aborts before anything is written.
func (s *Store) Import(data []byte) (*models.Sequence, error) {
	seq, err := Normalize(data)
	if err != nil {
		return nil, err
	}
	if seq.Name == "" {
		return nil, fmt.Errorf("%w: sequence name is required", ErrMalformedImport)
	}

	// Imported sequences always get a fresh identity so they can never
	// clobber a local sequence that happens to share an id.
	seq.ID = uuid.NewString()
	nowMs := s.now().UnixMilli()
	if seq.CreatedAt == 0 {
		seq.CreatedAt = nowMs
	}

	if err := s.persist(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// Export renders the sequence as pretty-printed JSON in the current schema.
func (s *Store) Export(id string) ([]byte, error) {
	seq, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(seq, "", "  ")
}

// persist writes the whole sequence object back, bumps UpdatedAt and
// notifies listeners. Last writer wins.
func (s *Store) persist(seq *models.Sequence) error {
	seq.UpdatedAt = s.now().UnixMilli()

	payload, err := json.Marshal(seq)
	if err != nil {
		return err
	}

	rec := models.SequenceRecord{
		ID:      seq.ID,
		Name:    seq.Name,
		Payload: string(payload),
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return err
	}

	if s.notify != nil {
		s.notify(seq)
	}
	return nil
}
