package sequence

import "scene-studio/internal/models"

// Report is the outcome of a reference check, shaped for the UI warning
// banner.
type Report struct {
	Valid           bool     `json:"valid"`
	MissingSceneIDs []string `json:"missing_scene_ids"`
}

// Validate checks that every catalog reference in the sequence resolves
// against the given scene listing. Items carrying an inline blob need no
// catalog entry. Pure function: call it on demand, it touches nothing.
func Validate(seq *models.Sequence, catalog []models.Scene) Report {
	known := make(map[string]bool, len(catalog))
	for _, sc := range catalog {
		known[sc.ID] = true
	}

	report := Report{Valid: true, MissingSceneIDs: []string{}}
	seen := make(map[string]bool)

	for _, it := range seq.Items {
		if it.Inline() {
			continue
		}
		if known[it.SceneID] || seen[it.SceneID] {
			continue
		}
		seen[it.SceneID] = true
		report.MissingSceneIDs = append(report.MissingSceneIDs, it.SceneID)
	}

	report.Valid = len(report.MissingSceneIDs) == 0
	return report
}
