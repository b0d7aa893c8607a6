package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/rs/zerolog"
)

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config, log zerolog.Logger) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Accept",
			"Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour, // Cache preflight responses
	}

	if cfg.IsProduction() {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		corsConfig.AllowOrigins = []string{
			cfg.FrontendURL,
			"http://localhost:" + cfg.Port,
			"http://127.0.0.1:" + cfg.Port,
		}
	}

	log.Info().Str("env", cfg.Environment).Strs("origins", corsConfig.AllowOrigins).Msg("CORS configured")
	return cors.New(corsConfig)
}

// NoCache disables browser caching; rendered frame files are rewritten on
// every shot under the same names.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}
