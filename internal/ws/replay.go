package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/rs/zerolog"
)

// FrameMessage carries one frame of a replay.
type FrameMessage struct {
	Type    string          `json:"type"`
	Index   int             `json:"index"`
	FrameID int             `json:"frame_id"`
	Table   billiards.Table `json:"table"`
}

// ReplayDone closes a replay.
type ReplayDone struct {
	Type   string `json:"type"`
	Frames int    `json:"frames"`
}

// FrameLoader fetches a stored frame by id.
type FrameLoader func(ctx context.Context, id int) (billiards.Table, error)

// Replayer streams stored frames to a websocket at a fixed pace.
type Replayer struct {
	Interval time.Duration
	Load     FrameLoader
	Log      zerolog.Logger
}

// NewReplayer paces frames FrameRate/speed seconds apart. A non-positive
// speed plays in real time.
func NewReplayer(speed float64, load FrameLoader, log zerolog.Logger) *Replayer {
	if speed <= 0 {
		speed = 1
	}
	interval := time.Duration(billiards.FrameRate / speed * float64(time.Second))
	return &Replayer{Interval: interval, Load: load, Log: log.With().Str("component", "replay").Logger()}
}

// Serve upgrades the request and sends every frame in ids, then a
// replay_complete message, then closes the connection. It stops early when
// the client goes away.
func (r *Replayer) Serve(w http.ResponseWriter, req *http.Request, ids []int) error {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()
	go func() {
		// drains control frames and notices the close
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var tick <-chan time.Time
	if r.Interval > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i, id := range ids {
		if i > 0 && tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		table, err := r.Load(ctx, id)
		if err != nil {
			r.Log.Error().Err(err).Int("frame_id", id).Msg("replay aborted")
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "frame unavailable"),
				time.Now().Add(writeWait))
			return err
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(FrameMessage{Type: "frame", Index: i, FrameID: id, Table: table}); err != nil {
			return err
		}
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(ReplayDone{Type: "replay_complete", Frames: len(ids)}); err != nil {
		return err
	}
	return conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
