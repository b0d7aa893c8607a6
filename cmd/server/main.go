package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/billiards/internal/api"
	"github.com/playmatatu/billiards/internal/cache"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/database"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/logging"
	"github.com/playmatatu/billiards/internal/migrations"
	"github.com/playmatatu/billiards/internal/physics"
	"github.com/playmatatu/billiards/internal/redis"
	"github.com/playmatatu/billiards/internal/shot"
	"github.com/playmatatu/billiards/internal/store"
	"github.com/playmatatu/billiards/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Initialize configuration
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.IsProduction(), os.Stdout)
	if envErr != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run migrations on start if requested
	if cfg.MigrateOnStart && cfg.DatabaseDriver == database.Postgres {
		log.Info().Msg("running DB migrations on startup")
		if err := migrations.Run(cfg.DatabaseURL, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Initialize database
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}
	defer db.Close()

	st := store.New(db, log)
	if err := st.CreateSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	// Redis is optional: without it frames are always read from the
	// database and no shot events are pushed
	var rdb *goredis.Client
	var publisher game.Publisher
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()

		bus := redis.NewEventBus(rdb, log)
		publisher = bus
		if err := hub.StartShotEventSubscriber(ctx, bus); err != nil {
			log.Fatal().Err(err).Msg("failed to subscribe to shot events")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set; frame cache and shot events disabled")
	}

	frames := cache.NewFrames(rdb, time.Duration(cfg.FrameCacheTTLMinutes)*time.Minute, log)
	sim := shot.NewSimulator(physics.NewEngine(), log)
	games := game.NewManager(st, sim, publisher, log)

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(router, api.Deps{
		Store:  st,
		Games:  games,
		Frames: frames,
		Hub:    hub,
		Config: cfg,
		Log:    log,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("static_dir", cfg.StaticDir).Msg("starting billiards server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
