package api

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/api/handlers"
	"github.com/playmatatu/billiards/internal/cache"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/middleware"
	"github.com/playmatatu/billiards/internal/store"
	"github.com/playmatatu/billiards/internal/ws"
	"github.com/rs/zerolog"
)

// Deps are the services the routes are wired to.
type Deps struct {
	Store  *store.Store
	Games  *game.Manager
	Frames *cache.Frames
	Hub    *ws.Hub
	Config *config.Config
	Log    zerolog.Logger
}

// SetupRoutes configures all routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config

	router.Use(middleware.CORSMiddleware(cfg, d.Log))
	router.Use(middleware.NoCache())
	router.SetHTMLTemplate(handlers.Templates())

	// Form pages
	router.POST("/display.html", handlers.Display(d.Games, cfg.StaticDir, d.Log))
	router.POST("/new.html", handlers.NewGame(d.Games))
	router.POST("/display2.html", handlers.DisplayShot(d.Games, cfg.ReplaySpeed))

	// GET *.html and *.svg from the static directory, 404 for the rest
	router.NoRoute(handlers.Static(cfg.StaticDir))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Store))

		frames := v1.Group("/frames")
		{
			frames.GET("/:id", handlers.GetFrame(d.Store, d.Frames))
			frames.GET("/:id/svg", handlers.GetFrameSVG(d.Store, d.Frames))
		}

		games := v1.Group("/games")
		{
			games.GET("/:id", handlers.GetGame(d.Store))
			games.GET("/:id/shots", handlers.GetGameShots(d.Store))
			games.GET("/:id/ws", handlers.HandleGameWebSocket(d.Store, d.Hub, d.Log))
		}

		shots := v1.Group("/shots")
		{
			shots.GET("/:id/frames", handlers.GetShotFrames(d.Store))
			shots.GET("/:id/ws", handlers.HandleShotReplay(d.Store, d.Frames, cfg.ReplaySpeed, d.Log))
		}
	}
}
