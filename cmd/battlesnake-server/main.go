// Command battlesnake-server is the HTTP surface that receives turn
// requests and returns moves — an external collaborator per spec.md §1,
// shipped here as a thin layer over internal/agent, grounded on the
// teacher's main.go handler set.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/battlesnake-engine/internal/agent"
	"github.com/brensch/battlesnake-engine/internal/boardlog"
	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/wire"
)

type server struct {
	config agent.Config
}

func main() {
	configPath := flag.String("config", "", "path to a JSON agent.Config file (default: built-in defaults)")
	flag.Parse()

	slog.SetDefault(slog.New(boardlog.NewHandler(os.Stdout, slog.LevelInfo)))

	cfg := agent.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("failed to open config", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			slog.Error("failed to decode config", "err", err)
			os.Exit(1)
		}
	}

	s := &server{config: cfg}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/", s.handleIndex)
	http.HandleFunc("/start", s.handleStart)
	http.HandleFunc("/move", s.handleMove)
	http.HandleFunc("/end", s.handleEnd)

	slog.Info("starting battlesnake server", "port", port, "agent_kind", cfg.AgentKind)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, wire.IndexResponse{
		APIVersion: "1",
		Author:     "battlesnake-engine",
		Color:      "#888888",
		Head:       "default",
		Tail:       "default",
		Version:    "0.1.0",
	})
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req wire.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("game started", "game_id", req.Game.ID, "you", req.You.ID)
	writeJSON(w, map[string]string{})
}

func (s *server) handleMove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req wire.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("failed to decode move request", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	correlationID := uuid.NewString()
	budgetMs := req.Game.TimeoutMs - s.config.LatencyMs
	if budgetMs < 0 {
		budgetMs = 0
	}

	g := req.ToGame()
	if err := g.Invariants(); err != nil {
		slog.Error("invalid game state, falling back to safe move", "err", err, "correlation_id", correlationID)
		writeJSON(w, wire.NewMoveResponse(firstValidOrUp(g), ""))
		return
	}

	a := agent.New(agent.ParseKind(s.config.AgentKind), s.config, time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(budgetMs)*time.Millisecond)
	defer cancel()

	dir := a.Step(ctx, g, budgetMs)

	slog.Info("move processed",
		"correlation_id", correlationID,
		"game_id", req.Game.ID,
		"turn", req.Turn,
		"move", dir.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, wire.NewMoveResponse(dir, ""))
}

func (s *server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req wire.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("game ended", "game_id", req.Game.ID, "turn", req.Turn)
	writeJSON(w, map[string]string{})
}

// firstValidOrUp implements the §7 budget-exhaustion fallback: the first
// valid move, or the deterministic Up sentinel if none exists.
func firstValidOrUp(g *game.Game) geom.Direction {
	if moves := g.ValidMoves(0); len(moves) > 0 {
		return moves[0]
	}
	return geom.Up
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
