package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"scene-studio/internal/api/handlers"
	"scene-studio/internal/api/middleware"
	"scene-studio/internal/config"
	database "scene-studio/internal/db"
	"scene-studio/internal/player"
	"scene-studio/internal/scenes"
	"scene-studio/internal/sequence"
)

type Server struct {
	cfg     *config.Config
	db      *database.Client
	catalog *scenes.Catalog
	store   *sequence.Store
	sched   *player.Scheduler
	feed    *player.Feed
	router  *gin.Engine
}

func New(cfg *config.Config, db *database.Client, catalog *scenes.Catalog, store *sequence.Store, sched *player.Scheduler, feed *player.Feed) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode) // Set to Release for production
	}

	middleware.SetSecret(cfg.Auth.JWTSecret)

	router := gin.New()
	router.Use(middleware.SilentLogger(), gin.Recovery())

	s := &Server{
		cfg:     cfg,
		db:      db,
		catalog: catalog,
		store:   store,
		sched:   sched,
		feed:    feed,
		router:  router,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	// CORS Configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	// IMPORTANT: "Authorization" must be allowed so the frontend can send the JWT
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	// 1. Initialize Modular Handlers
	authHandler := handlers.NewAuthHandler(s.db.DB)
	sceneHandler := handlers.NewSceneHandler(s.catalog)
	sequenceHandler := handlers.NewSequenceHandler(s.store, s.catalog, s.sched)
	playerHandler := handlers.NewPlayerHandler(s.sched, s.feed)

	// Health Check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "scene-studio"})
	})

	// API Group
	v1 := s.router.Group("/api/v1")
	{
		// ==========================================
		// PUBLIC ROUTES (No Token Required)
		// ==========================================
		v1.POST("/auth/login", authHandler.Login)

		// ==========================================
		// PROTECTED ROUTES (JWT Token Required)
		// ==========================================
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth()) // Checks for valid JWT
		{
			// --- ADMIN ONLY ---
			protected.POST("/auth/register", middleware.RequireRole("admin"), authHandler.Register)

			// --- TRANSPORT (any signed-in user can drive playback) ---
			protected.GET("/player/status", playerHandler.Status)
			protected.GET("/player/scene", playerHandler.CurrentScene)
			protected.POST("/player/select", playerHandler.SelectSequence)
			protected.POST("/player/play", playerHandler.Play)
			protected.POST("/player/pause", playerHandler.Pause)
			protected.POST("/player/stop", playerHandler.Stop)
			protected.POST("/player/next", playerHandler.Next)
			protected.POST("/player/previous", playerHandler.Previous)
			protected.POST("/player/jump", playerHandler.Jump)

			// --- SCENE CATALOG (read for everyone, write for editors) ---
			protected.GET("/scenes", sceneHandler.GetScenes)
			protected.GET("/scenes/:id", sceneHandler.GetScene)
			protected.POST("/scenes", middleware.RequireRole("editor"), sceneHandler.SaveScene)
			protected.DELETE("/scenes/:id", middleware.RequireRole("editor"), sceneHandler.DeleteScene)

			// --- SEQUENCES ---
			protected.GET("/sequences", sequenceHandler.GetSequences)
			protected.GET("/sequences/:id", sequenceHandler.GetSequence)
			protected.GET("/sequences/:id/validate", sequenceHandler.ValidateSequence)
			protected.GET("/sequences/:id/export", sequenceHandler.ExportSequence)
			protected.POST("/sequences", middleware.RequireRole("editor"), sequenceHandler.CreateSequence)
			protected.POST("/sequences/import", middleware.RequireRole("editor"), sequenceHandler.ImportSequence)
			protected.PUT("/sequences/:id", middleware.RequireRole("editor"), sequenceHandler.UpdateSequence)
			protected.DELETE("/sequences/:id", middleware.RequireRole("editor"), sequenceHandler.DeleteSequence)
			protected.POST("/sequences/:id/items", middleware.RequireRole("editor"), sequenceHandler.AddItem)
			protected.PUT("/sequences/:id/items/:itemId", middleware.RequireRole("editor"), sequenceHandler.UpdateItem)
			protected.DELETE("/sequences/:id/items/:itemId", middleware.RequireRole("editor"), sequenceHandler.DeleteItem)
			protected.PUT("/sequences/:id/reorder", middleware.RequireRole("editor"), sequenceHandler.ReorderItems)
		}
	}
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
