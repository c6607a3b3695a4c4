package models

import (
	"encoding/json"
	"time"
)

// Duration modes for a sequence item.
const (
	DurationSeconds = "seconds"
	DurationManual  = "manual" // never auto-advances; waits for explicit next/jump
)

// Transition types. "custom" carries its own fade duration.
const (
	TransitionCut         = "cut"
	TransitionCrossfade   = "crossfade"
	TransitionFadeToBlack = "fadeToBlack"
	TransitionCustom      = "custom"
)

// CurrentSchemaVersion tags sequences written in the rich "scenes" format.
const CurrentSchemaVersion = 2

// Transition describes how one scene hands over to the next.
type Transition struct {
	Type       string `json:"type"`
	DurationMs int    `json:"durationMs,omitempty"` // only meaningful for "custom"
}

// SequenceItem is one playlist entry: a scene reference, a duration policy
// and a transition override. Items reference a catalog Scene by id OR carry
// an embedded state blob (portable sequences that were imported from another
// installation), never both.
type SequenceItem struct {
	ID              string          `json:"id"`
	SceneID         string          `json:"sceneId,omitempty"`
	SceneState      json.RawMessage `json:"sceneState,omitempty"`
	DurationMode    string          `json:"durationMode"`
	DurationSeconds int             `json:"durationSeconds,omitempty"`
	Transition      Transition      `json:"transition"`
	Order           int             `json:"order"`
}

// Inline reports whether the item carries an embedded scene blob instead of
// a catalog reference.
func (it SequenceItem) Inline() bool {
	return len(it.SceneState) > 0
}

// Sequence is an ordered, timed playlist of scene references.
// Items order IS the playback order; Order fields are kept dense and
// ascending (items[i].Order == i) and persisted for backward compatibility
// with older frontends that sort by it.
type Sequence struct {
	ID               string         `json:"id"`
	SchemaVersion    int            `json:"schemaVersion"`
	Name             string         `json:"name"`
	BackgroundColour string         `json:"backgroundColour"`
	DefaultFadeType  string         `json:"defaultFadeType"`
	Items            []SequenceItem `json:"scenes"`
	CreatedAt        int64          `json:"createdAt"` // epoch ms
	UpdatedAt        int64          `json:"updatedAt"` // epoch ms
}

// ItemIndex returns the position of the item with the given id, or -1.
func (s *Sequence) ItemIndex(itemID string) int {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// SequenceRecord is the persisted row for a sequence. The full sequence
// JSON is written back on every mutation (last-writer-wins, no field-level
// merge) keyed by the sequence id.
type SequenceRecord struct {
	ID        string         `gorm:"primaryKey"`
	Name      string         `gorm:"index"`
	Payload   string         `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default pluralization
func (SequenceRecord) TableName() string {
	return "sequences"
}
