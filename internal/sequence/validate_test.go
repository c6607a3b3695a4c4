package sequence

import (
	"encoding/json"
	"reflect"
	"testing"

	"scene-studio/internal/models"
)

func TestValidate(t *testing.T) {
	catalog := []models.Scene{
		{ID: "s1", Name: "Waves"},
		{ID: "s2", Name: "Particles"},
	}

	tests := []struct {
		name        string
		items       []models.SequenceItem
		wantValid   bool
		wantMissing []string
	}{
		{
			name:      "empty sequence",
			items:     nil,
			wantValid: true,
		},
		{
			name: "all references resolve",
			items: []models.SequenceItem{
				{ID: "i1", SceneID: "s1"},
				{ID: "i2", SceneID: "s2"},
			},
			wantValid: true,
		},
		{
			name: "dangling reference",
			items: []models.SequenceItem{
				{ID: "i1", SceneID: "s1"},
				{ID: "i2", SceneID: "deleted"},
			},
			wantValid:   false,
			wantMissing: []string{"deleted"},
		},
		{
			name: "duplicate dangling reference reported once",
			items: []models.SequenceItem{
				{ID: "i1", SceneID: "gone"},
				{ID: "i2", SceneID: "gone"},
				{ID: "i3", SceneID: "lost"},
			},
			wantValid:   false,
			wantMissing: []string{"gone", "lost"},
		},
		{
			name: "inline item needs no catalog entry",
			items: []models.SequenceItem{
				{ID: "i1", SceneState: json.RawMessage(`{"seed": 7}`)},
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := &models.Sequence{ID: "seq", Items: tt.items}
			report := Validate(seq, catalog)

			if report.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", report.Valid, tt.wantValid)
			}
			if tt.wantMissing == nil {
				tt.wantMissing = []string{}
			}
			if !reflect.DeepEqual(report.MissingSceneIDs, tt.wantMissing) {
				t.Errorf("MissingSceneIDs = %v, want %v", report.MissingSceneIDs, tt.wantMissing)
			}
		})
	}
}
