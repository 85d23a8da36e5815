// Package spectator serves a thin websocket endpoint that streams
// turn-by-turn board snapshots to any connected client while a simulated
// game runs. Grounded on the teacher's renderer.go, which dials the hosted
// battlesnake engine's websocket and decodes a FrameEvent/FrameSnake stream
// into game.Board replays; here the same wire shapes are repurposed
// server-side, broadcasting our own simulator's frames instead of
// consuming someone else's.
package spectator

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/grid"
	"github.com/brensch/battlesnake-engine/internal/wire"
)

// FrameSnake mirrors the teacher's FrameSnake shape, trimmed to the fields
// this engine can actually populate (no color/latency/author metadata).
type FrameSnake struct {
	ID     string       `json:"ID"`
	Body   []wire.Point `json:"Body"`
	Health int          `json:"Health"`
	Alive  bool         `json:"Alive"`
}

// Frame is one broadcast turn snapshot, the server-side counterpart of the
// teacher's FrameEvent.
type Frame struct {
	Type string `json:"Type"`
	Data struct {
		GameID string       `json:"GameID"`
		Turn   int          `json:"Turn"`
		Snakes []FrameSnake `json:"Snakes"`
		Food   []wire.Point `json:"Food"`
		Width  int          `json:"Width"`
		Height int          `json:"Height"`
	} `json:"Data"`
}

// NewFrame builds a Frame from the current game state, tagged with gameID
// and the frame type ("turn" or "game_end"), matching the teacher's
// discriminated event stream.
func NewFrame(frameType, gameID string, turn int, g *game.Game) Frame {
	var f Frame
	f.Type = frameType
	f.Data.GameID = gameID
	f.Data.Turn = turn
	f.Data.Width = g.Grid.Width
	f.Data.Height = g.Grid.Height

	for _, s := range g.Snakes {
		body := make([]wire.Point, len(s.Body))
		for i, p := range s.Body {
			body[i] = wire.FromGeom(p)
		}
		f.Data.Snakes = append(f.Data.Snakes, FrameSnake{
			ID:     strconv.Itoa(s.ID),
			Body:   body,
			Health: s.Health,
			Alive:  s.Alive(),
		})
	}
	for y := 0; y < g.Grid.Height; y++ {
		for x := 0; x < g.Grid.Width; x++ {
			cell := g.Grid.At(wire.Point{X: x, Y: y}.ToGeom())
			if cell.Tag == grid.Food {
				f.Data.Food = append(f.Data.Food, wire.Point{X: x, Y: y})
			}
		}
	}
	return f
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans out broadcast frames to every connected websocket client, the
// server-side mirror of the single client connection the teacher's
// collectGameFrames dials.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection as a broadcast recipient until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("spectator upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Drain and discard anything the client sends; we only ever write.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast sends frame as JSON to every currently connected client,
// dropping any connection that errors on write.
func (h *Hub) Broadcast(frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(frame); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
