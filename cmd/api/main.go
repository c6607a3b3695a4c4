package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scene-studio/internal/config"
	database "scene-studio/internal/db"
	"scene-studio/internal/models"
	"scene-studio/internal/player"
	"scene-studio/internal/presets"
	"scene-studio/internal/scenes"
	"scene-studio/internal/sequence"

	// Use an alias to prevent naming collisions with the 'server' variable
	apiserver "scene-studio/internal/api/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Scene Studio API Server...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Initialize Infrastructure
	db := database.New(cfg)

	// 3. Run Database Migrations
	db.AutoMigrate()
	database.SeedAdminUser(db.DB, cfg.Auth.AdminPassword)

	// 4. Catalog + starter presets
	catalog := scenes.NewCatalog(db.DB)
	if err := presets.LoadLibrary(cfg.Player.PresetsPath); err != nil {
		log.Printf("⚠️ No preset library (%v), continuing with built-in defaults", err)
	}
	seedPresets(catalog)

	// 5. Sequence store + playback engine
	store := sequence.NewStore(db.DB, catalog)
	feed := player.NewFeed()
	player.RegisterMetrics()
	sched := player.NewScheduler(store, catalog, feed.Publish, player.RealTimers{}, player.RealClock{})

	// 6. Setup Metrics
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 7. Start Server
	srv := apiserver.New(cfg, db, catalog, store, sched, feed)

	log.Printf("🚀 API Server starting on %s", cfg.Server.Port)
	if err := srv.Start(cfg.Server.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

// seedPresets copies the starter scenes into the catalog. Existing names
// are left alone so user edits survive restarts.
func seedPresets(catalog *scenes.Catalog) {
	list := presets.ScenePresets()
	if len(list) == 0 {
		return
	}
	seeded := 0
	for _, p := range list {
		state, err := p.StateJSON()
		if err != nil {
			log.Printf("⚠️ Preset %q has an unusable state: %v", p.Name, err)
			continue
		}
		sc := &models.Scene{Name: p.Name, State: state, Thumbnail: p.Thumbnail}
		if _, err := catalog.Save(sc, false); err != nil {
			if errors.Is(err, scenes.ErrNameConflict) {
				continue // already present, leave it alone
			}
			log.Printf("⚠️ Failed to seed preset %q: %v", p.Name, err)
			continue
		}
		seeded++
	}
	if seeded > 0 {
		log.Printf("🌱 Seeded %d preset scenes", seeded)
	}
}
