package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/models"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var errHubStopped = errors.New("websocket hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the HTTP routes
	},
}

// Client is one websocket watching a game.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	gameID int
	send   chan []byte
}

// Hub tracks which clients watch which game and fans game events out to them.
type Hub struct {
	rooms      map[int]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        zerolog.Logger
}

// NewHub creates a new Hub. Run must be started before clients connect.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[int]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws").Logger(),
	}
}

// Run processes joins and leaves until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, room := range h.rooms {
				for c := range room {
					close(c.send)
				}
			}
			h.rooms = make(map[int]map[*Client]struct{})
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.gameID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.gameID] = room
			}
			room[c] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			h.log.Debug().Int("game_id", c.gameID).Int("room_size", size).Msg("client joined")

		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.gameID]; ok {
				if _, ok := room[c]; ok {
					delete(room, c)
					close(c.send)
					if len(room) == 0 {
						delete(h.rooms, c.gameID)
					}
				}
			}
			h.mu.Unlock()
			h.log.Debug().Int("game_id", c.gameID).Msg("client left")
		}
	}
}

// RoomSize is the number of clients watching a game.
func (h *Hub) RoomSize(gameID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

// BroadcastToGame sends a message to every client watching a game. Clients
// whose buffer is full miss the message.
func (h *Hub) BroadcastToGame(gameID int, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("cannot marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[gameID] {
		select {
		case c.send <- data:
		default:
			h.log.Warn().Int("game_id", gameID).Msg("client send buffer full, dropping message")
		}
	}
}

// ServeGame upgrades the request and adds the connection to the game's room.
// The upgrade writes its own error response on failure.
func (h *Hub) ServeGame(w http.ResponseWriter, r *http.Request, gameID int) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{hub: h, conn: conn, gameID: gameID, send: make(chan []byte, 64)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return errHubStopped
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// Subscriber delivers shot events, for example the Redis event bus.
type Subscriber interface {
	Subscribe(ctx context.Context, handle func(models.ShotEvent)) error
}

// StartShotEventSubscriber forwards every shot event to the room of its game.
func (h *Hub) StartShotEventSubscriber(ctx context.Context, sub Subscriber) error {
	return sub.Subscribe(ctx, func(ev models.ShotEvent) {
		h.log.Debug().Str("type", ev.Type).Int("game_id", ev.GameID).Int("shot_id", ev.ShotID).Msg("event received")
		h.BroadcastToGame(ev.GameID, ev)
	})
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Debug().Err(err).Int("game_id", c.gameID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the client going away; game sockets are
// server-to-client.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Int("game_id", c.gameID).Msg("websocket closed unexpectedly")
			}
			return
		}
	}
}
