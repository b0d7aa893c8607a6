package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/cache"
	"github.com/playmatatu/billiards/internal/store"
	"github.com/playmatatu/billiards/internal/ws"
	"github.com/rs/zerolog"
)

// HandleGameWebSocket subscribes the client to the shot events of a game.
func HandleGameWebSocket(st *store.Store, hub *ws.Hub, log zerolog.Logger) gin.HandlerFunc {
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
		_, err = sess.GetGame(c.Request.Context(), id)
		sess.Close()
		if err != nil {
			respondJSONError(c, err)
			return
		}

		if err := hub.ServeGame(c.Writer, c.Request, id); err != nil {
			log.Debug().Err(err).Int("game_id", id).Msg("game websocket not opened")
		}
	}
}

// HandleShotReplay streams the frames of a shot over a websocket.
func HandleShotReplay(st *store.Store, frames *cache.Frames, speed float64, log zerolog.Logger) gin.HandlerFunc {
	replayer := ws.NewReplayer(speed, frameLoader(st, frames), log)
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
		ids, err := sess.ShotFrames(c.Request.Context(), id)
		sess.Close()
		if err != nil {
			respondJSONError(c, err)
			return
		}

		if err := replayer.Serve(c.Writer, c.Request, ids); err != nil {
			log.Debug().Err(err).Int("shot_id", id).Msg("replay ended early")
		}
	}
}
