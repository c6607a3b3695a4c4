package presets

import (
	"encoding/json"
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// A preset library ships starter scenes (palette/motion/blend defaults)
// so a fresh install has something to sequence before the user saves
// anything of their own.

type Defaults struct {
	FadeType         string `yaml:"fade_type"`
	BackgroundColour string `yaml:"background_colour"`
}

type Preset struct {
	Name      string         `yaml:"name"`
	Thumbnail string         `yaml:"thumbnail"`
	State     map[string]any `yaml:"state"`
}

type Library struct {
	Defaults Defaults `yaml:"defaults"`
	Presets  []Preset `yaml:"presets"`
}

var (
	currentLibrary *Library
	libraryMu      sync.RWMutex
	// Fallback if the file is missing or broken
	fallbackDefaults = Defaults{
		FadeType:         "crossfade",
		BackgroundColour: "#000000",
	}
)

func LoadLibrary(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return err
	}

	libraryMu.Lock()
	currentLibrary = &lib
	libraryMu.Unlock()

	log.Printf("🎨 Preset library loaded: %d starter scenes", len(lib.Presets))
	return nil
}

// CurrentDefaults returns the library defaults, or the hardcoded fallback
// when no library loaded.
func CurrentDefaults() Defaults {
	libraryMu.RLock()
	defer libraryMu.RUnlock()

	if currentLibrary == nil {
		return fallbackDefaults
	}
	d := currentLibrary.Defaults
	if d.FadeType == "" {
		d.FadeType = fallbackDefaults.FadeType
	}
	if d.BackgroundColour == "" {
		d.BackgroundColour = fallbackDefaults.BackgroundColour
	}
	return d
}

// ScenePresets returns the starter scenes, empty when no library loaded.
func ScenePresets() []Preset {
	libraryMu.RLock()
	defer libraryMu.RUnlock()

	if currentLibrary == nil {
		return nil
	}
	return currentLibrary.Presets
}

// StateJSON renders the preset's renderer state as a JSON blob suitable
// for the scene catalog.
func (p Preset) StateJSON() (string, error) {
	if p.State == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p.State)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
