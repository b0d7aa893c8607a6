package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/cache"
	"github.com/playmatatu/billiards/internal/render"
	"github.com/playmatatu/billiards/internal/store"
)

// GetFrame returns a stored frame as JSON.
func GetFrame(st *store.Store, frames *cache.Frames) gin.HandlerFunc {
	load := frameLoader(st, frames)
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondJSONError(c, err)
			return
		}
		table, err := load(c.Request.Context(), id)
		if err != nil {
			respondJSONError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"frame_id": id, "table": table})
	}
}

// GetFrameSVG renders a stored frame.
func GetFrameSVG(st *store.Store, frames *cache.Frames) gin.HandlerFunc {
	load := frameLoader(st, frames)
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondJSONError(c, err)
			return
		}
		table, err := load(c.Request.Context(), id)
		if err != nil {
			respondJSONError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", []byte(render.SVG(table)))
	}
}

// GetGame returns a game and its players.
func GetGame(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondJSONError(c, err)
			return
		}

		sess, err := st.Session(c.Request.Context())
		if err != nil {
			respondJSONError(c, err)
			return
		}
		defer sess.Close()

		g, err := sess.GetGame(c.Request.Context(), id)
		if err != nil {
			respondJSONError(c, err)
			return
		}
		resp := gin.H{"game": g, "latest_frame": nil}
		latest, err := sess.LatestFrame(c.Request.Context(), id)
		switch {
		case err == nil:
			resp["latest_frame"] = latest
		case !errors.Is(err, store.ErrNotFound):
			respondJSONError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetGameShots lists the shots of a game.
func GetGameShots(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondJSONError(c, err)
			return
		}

		sess, err := st.Session(c.Request.Context())
		if err != nil {
			respondJSONError(c, err)
			return
		}
		defer sess.Close()

		shots, err := sess.GameShots(c.Request.Context(), id)
		if err != nil {
			respondJSONError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"game_id": id, "shots": shots})
	}
}

// GetShotFrames lists the frame ids of a shot in replay order.
func GetShotFrames(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondJSONError(c, err)
			return
		}

		sess, err := st.Session(c.Request.Context())
		if err != nil {
			respondJSONError(c, err)
			return
		}
		defer sess.Close()

		shot, err := sess.GetShot(c.Request.Context(), id)
		if err != nil {
			respondJSONError(c, err)
			return
		}
		ids, err := sess.ShotFrames(c.Request.Context(), id)
		if err != nil {
			respondJSONError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shot": shot, "frames": ids})
	}
}
