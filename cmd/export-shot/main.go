// Command export-shot writes every frame of a stored shot as numbered SVG
// files, the same table-N.svg files the display page produces.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/database"
	"github.com/playmatatu/billiards/internal/logging"
	"github.com/playmatatu/billiards/internal/render"
	"github.com/playmatatu/billiards/internal/store"
)

func main() {
	shotID := flag.Int("shot", -1, "id of the shot to export")
	dir := flag.String("dir", "", "output directory (default STATIC_DIR)")
	flag.Parse()

	// Load environment variables
	godotenv.Load()

	// Initialize configuration
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, false, os.Stderr)

	if *shotID < 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *dir == "" {
		*dir = cfg.StaticDir
	}

	// Initialize database
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	sess, err := store.New(db, log).Session(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session")
	}
	defer sess.Close()

	ids, err := sess.ShotFrames(ctx, *shotID)
	if err != nil {
		log.Fatal().Err(err).Int("shot_id", *shotID).Msg("cannot list shot frames")
	}

	frames := make([]billiards.Table, 0, len(ids))
	for _, id := range ids {
		t, err := sess.ReadFrame(ctx, id)
		if err != nil {
			log.Fatal().Err(err).Int("frame_id", id).Msg("cannot read frame")
		}
		frames = append(frames, t)
	}

	files, err := render.WriteFrames(*dir, frames)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("cannot write frames")
	}

	log.Info().Int("shot_id", *shotID).Int("files", len(files)).Str("dir", *dir).Msg("shot exported")
}
