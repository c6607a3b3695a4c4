package sequence

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"scene-studio/internal/models"
)

// Two on-disk shapes exist in the wild. The current one keeps rich entries
// under "scenes"; the legacy one kept a flat array under "items" where a
// duration of 0 meant "wait for the user" and transitions were the old
// "instant"/"fade" pair. Everything downstream of this file only ever sees
// the unified shape; schema variants must not leak past the store boundary.

// legacyItem is the flat pre-v2 entry.
type legacyItem struct {
	ID         string `json:"id"`
	SceneID    string `json:"sceneId"`
	Duration   int    `json:"duration"`
	Transition string `json:"transition"` // "instant" | "fade"
}

// rawSequence accepts either schema. Both arrays are decoded; which one
// wins is decided by the version tag, not by guessing from lengths.
type rawSequence struct {
	ID               string                `json:"id"`
	SchemaVersion    int                   `json:"schemaVersion"`
	Name             string                `json:"name"`
	BackgroundColour string                `json:"backgroundColour"`
	DefaultFadeType  string                `json:"defaultFadeType"`
	Scenes           []models.SequenceItem `json:"scenes"`
	Items            []legacyItem          `json:"items"`
	CreatedAt        int64                 `json:"createdAt"`
	UpdatedAt        int64                 `json:"updatedAt"`
}

// Normalize decodes a persisted or imported sequence payload, whichever
// schema it carries, into the unified in-memory shape. It is idempotent:
// feeding its own output back produces a deep-equal result.
func Normalize(data []byte) (*models.Sequence, error) {
	var raw rawSequence
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	seq := &models.Sequence{
		ID:               raw.ID,
		SchemaVersion:    models.CurrentSchemaVersion,
		Name:             raw.Name,
		BackgroundColour: raw.BackgroundColour,
		DefaultFadeType:  raw.DefaultFadeType,
		CreatedAt:        raw.CreatedAt,
		UpdatedAt:        raw.UpdatedAt,
	}

	if seq.ID == "" {
		seq.ID = uuid.NewString()
	}
	if seq.DefaultFadeType == "" {
		seq.DefaultFadeType = models.TransitionCrossfade
	}
	if seq.BackgroundColour == "" {
		seq.BackgroundColour = "#000000"
	}

	// Pick the schema. A version tag settles it outright; untagged payloads
	// are legacy only if they actually carry legacy entries. An empty
	// sequence of either vintage lands on the current schema, so the old
	// ambiguous length heuristic never applies.
	switch {
	case raw.SchemaVersion >= models.CurrentSchemaVersion:
		seq.Items = normalizeItems(raw.Scenes, seq.DefaultFadeType)
	case len(raw.Items) > 0:
		seq.Items = normalizeItems(upgradeLegacy(raw.Items), seq.DefaultFadeType)
	default:
		seq.Items = normalizeItems(raw.Scenes, seq.DefaultFadeType)
	}

	return seq, nil
}

// upgradeLegacy lifts flat entries into the rich shape before the common
// normalization pass.
func upgradeLegacy(items []legacyItem) []models.SequenceItem {
	out := make([]models.SequenceItem, 0, len(items))
	for _, li := range items {
		it := models.SequenceItem{
			ID:              li.ID,
			SceneID:         li.SceneID,
			DurationSeconds: li.Duration,
			DurationMode:    models.DurationSeconds,
		}
		switch li.Transition {
		case "fade":
			it.Transition.Type = models.TransitionCrossfade
		default: // "instant" and anything unrecognized
			it.Transition.Type = models.TransitionCut
		}
		out = append(out, it)
	}
	return out
}

// normalizeItems applies the defensive per-item rules and renumbers.
func normalizeItems(items []models.SequenceItem, defaultFade string) []models.SequenceItem {
	out := make([]models.SequenceItem, len(items))
	copy(out, items)

	for i := range out {
		it := &out[i]

		if it.ID == "" {
			it.ID = uuid.NewString()
		}

		if it.DurationSeconds < 0 {
			it.DurationSeconds = 0
		}
		switch it.DurationMode {
		case models.DurationManual:
			it.DurationSeconds = 0
		case models.DurationSeconds:
			// A zero duration cannot mean "advance immediately"; treat it
			// as manual so playback waits instead of spinning.
			if it.DurationSeconds == 0 {
				it.DurationMode = models.DurationManual
			}
		default:
			if it.DurationSeconds > 0 {
				it.DurationMode = models.DurationSeconds
			} else {
				it.DurationMode = models.DurationManual
			}
		}

		if it.Transition.Type == "" {
			it.Transition.Type = defaultFade
		}
		if it.Transition.Type != models.TransitionCustom {
			it.Transition.DurationMs = 0
		}
	}

	Renumber(out)
	return out
}
