package spectator

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
)

func TestNewFrameIncludesSnakesAndFood(t *testing.T) {
	g := game.New(5, 5)
	self := &game.Snake{ID: 0, Body: []geom.Point{{X: 1, Y: 1}, {X: 0, Y: 1}}, Health: 80}
	g.Reset([]*game.Snake{self}, []geom.Point{{X: 3, Y: 3}}, nil)

	f := NewFrame("turn", "game-1", 7, g)
	assert.Equal(t, "turn", f.Type)
	assert.Equal(t, "game-1", f.Data.GameID)
	assert.Equal(t, 7, f.Data.Turn)
	require.Len(t, f.Data.Snakes, 1)
	assert.Equal(t, "0", f.Data.Snakes[0].ID)
	assert.Equal(t, 80, f.Data.Snakes[0].Health)
	assert.True(t, f.Data.Snakes[0].Alive)
	require.Len(t, f.Data.Food, 1)
	assert.Equal(t, 3, f.Data.Food[0].X)
}

func TestHubBroadcastsToConnectedClient(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server a moment to register the connection before broadcasting.
	time.Sleep(20 * time.Millisecond)

	g := game.New(3, 3)
	self := &game.Snake{ID: 0, Body: []geom.Point{{X: 0, Y: 0}}, Health: 100}
	g.Reset([]*game.Snake{self}, nil, nil)
	hub.Broadcast(NewFrame("turn", "game-2", 1, g))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var got Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "game-2", got.Data.GameID)
	assert.Equal(t, 1, got.Data.Turn)
}
