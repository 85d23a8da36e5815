// Command battlesnake-sim is the CLI simulator harness: an external
// collaborator per spec.md §1, playing repeated games between configured
// agents and printing win tallies, or decoding one request and printing
// the chosen move. Grounded on original_source/src/bin/simulate.rs and
// src/simulate.rs (food/hazard spawn loop, per-agent tallies, seeded RNG).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/battlesnake-engine/internal/agent"
	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/grid"
	"github.com/brensch/battlesnake-engine/internal/spectator"
	"github.com/brensch/battlesnake-engine/internal/wire"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: battlesnake-sim <move|simulate> ...")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "simulate":
		os.Exit(runSimulate(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		os.Exit(2)
	}
}

// runWatch serves a websocket spectator endpoint at /ws and plays one
// simulated game, broadcasting a frame after every turn to whichever
// clients are connected by then. A minimal analogue of the teacher's
// collectGameFrames, with the roles of dialer and listener swapped.
func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	width := fs.Int("width", 11, "board width")
	height := fs.Int("height", 11, "board height")
	addr := fs.String("addr", ":8090", "listen address for the spectator websocket")
	runtimeMs := fs.Int("runtime", 200, "per-turn budget handed to each agent, in ms")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	agentNames := fs.Args()
	if len(agentNames) == 0 || len(agentNames) > 4 {
		fmt.Fprintln(os.Stderr, "watch requires between 1 and 4 agent kinds")
		return 2
	}

	hub := spectator.NewHub()
	http.Handle("/ws", hub)
	go func() {
		slog.Info("spectator listening", "addr", *addr, "path", "/ws")
		if err := http.ListenAndServe(*addr, nil); err != nil {
			slog.Error("spectator server stopped", "err", err)
		}
	}()

	opts := simOpts{width: *width, height: *height, foodRate: 0.15, shrinkTurns: 0, runtimeMs: *runtimeMs, numAgents: len(agentNames)}
	agents := make([]*agent.Agent, len(agentNames))
	for i, name := range agentNames {
		agents[i] = agent.New(agent.ParseKind(name), agent.DefaultConfig(), int64(i)+1)
	}
	rng := rand.New(rand.NewSource(1))

	gameID := uuid.NewString()
	playGameWatched(agents, opts, rng, hub, gameID)
	return 0
}

// playGameWatched is playGame's counterpart that also broadcasts a frame
// to the spectator hub after every turn, including the final one.
func playGameWatched(agents []*agent.Agent, opts simOpts, rng *rand.Rand, hub *spectator.Hub, gameID string) {
	g := newGame(opts, nil, rng)
	hazardInsets := [4]int{}

	for turn := 0; ; turn++ {
		moves := make([]geom.Direction, len(g.Snakes))
		for _, s := range g.Snakes {
			if !s.Alive() {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.runtimeMs)*time.Millisecond)
			moves[s.ID] = agents[s.ID].Step(ctx, g, opts.runtimeMs)
			cancel()
		}
		g.Step(moves)
		hub.Broadcast(spectator.NewFrame("turn", gameID, turn, g))

		if outcome := g.Outcome(); outcome.Outcome != game.None {
			hub.Broadcast(spectator.NewFrame("game_end", gameID, turn, g))
			return
		}

		spawnFood(g, opts.foodRate, rng)
		shrinkHazards(g, turn, opts.shrinkTurns, &hazardInsets)

		if turn > opts.width*opts.height*4 {
			hub.Broadcast(spectator.NewFrame("game_end", gameID, turn, g))
			return
		}
	}
}

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a JSON agent.Config file")
	latency := fs.Int("latency", -1, "override the configured latency margin, in ms")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: battlesnake-sim move <json-request> [--config path] [--latency ms]")
		return 2
	}

	raw := fs.Arg(0)
	var req wire.Request
	var data []byte
	var err error
	if raw == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else if looksLikeJSON(raw) {
		data = []byte(raw)
	} else {
		data, err = os.ReadFile(raw)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := json.Unmarshal(data, &req); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg := agent.DefaultConfig()
	if *configPath != "" {
		cfgData, err := os.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := json.Unmarshal(cfgData, &cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *latency >= 0 {
		cfg.LatencyMs = *latency
	}

	budget := req.Game.TimeoutMs - cfg.LatencyMs
	if budget < 0 {
		budget = 0
	}

	g := req.ToGame()
	a := agent.New(agent.ParseKind(cfg.AgentKind), cfg, time.Now().UnixNano())
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(budget)*time.Millisecond)
	defer cancel()

	dir := a.Step(ctx, g, budget)
	fmt.Println(dir.String())
	return 0
}

func looksLikeJSON(s string) bool {
	return len(s) > 0 && (s[0] == '{' || s[0] == '[')
}

type simOpts struct {
	width       int
	height      int
	foodRate    float64
	shrinkTurns int
	gameCount   int
	seed        int64
	swap        bool
	runtimeMs   int
	numAgents   int
}

func runSimulate(args []string) int {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	width := fs.Int("width", 11, "board width")
	height := fs.Int("height", 11, "board height")
	foodRate := fs.Float64("food-rate", 0.15, "probability of spawning a new food tile each turn")
	shrinkTurns := fs.Int("shrink-turns", 25, "turns between each hazard-border shrink step")
	gameCount := fs.Int("game-count", 1, "number of games to play")
	seed := fs.Int64("seed", 1, "seed for the reproducible RNG")
	swap := fs.Bool("swap", false, "rotate starting positions between games")
	runtimeMs := fs.Int("runtime", 200, "per-turn budget handed to each agent, in ms")
	initPath := fs.String("init", "", "path to a JSON board to initialize from, instead of a random layout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	agentNames := fs.Args()
	if len(agentNames) == 0 || len(agentNames) > 4 {
		fmt.Fprintln(os.Stderr, "simulate requires between 1 and 4 agent kinds")
		return 2
	}

	opts := simOpts{
		width: *width, height: *height, foodRate: *foodRate,
		shrinkTurns: *shrinkTurns, gameCount: *gameCount, seed: *seed,
		swap: *swap, runtimeMs: *runtimeMs, numAgents: len(agentNames),
	}

	var initBoard *wire.Board
	if *initPath != "" {
		data, err := os.ReadFile(*initPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		var b wire.Board
		if err := json.Unmarshal(data, &b); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		initBoard = &b
	}

	wins := make([]int, len(agentNames))
	agents := make([]*agent.Agent, len(agentNames))
	for i, name := range agentNames {
		agents[i] = agent.New(agent.ParseKind(name), agent.DefaultConfig(), opts.seed+int64(i))
	}

	rng := rand.New(rand.NewSource(opts.seed))

	for gi := 0; gi < opts.gameCount; gi++ {
		gameID := uuid.NewString()
		// With --swap, game gi seats agents[(i+offset)%n] in starting slot i.
		offset := 0
		seated := agents
		if opts.swap {
			offset = gi % len(agents)
			seated = append(append([]*agent.Agent{}, agents[offset:]...), agents[:offset]...)
		}
		winner := playGame(seated, opts, initBoard, rng)
		if winner >= 0 {
			winner = (winner + offset) % len(agents)
			wins[winner]++
			fmt.Fprintf(os.Stderr, "game %s: winner=%s (%d)\n", gameID, agentNames[winner], winner)
		} else {
			fmt.Fprintf(os.Stderr, "game %s: draw\n", gameID)
		}
	}

	for i, name := range agentNames {
		fmt.Printf("%s (%d): %d/%d\n", name, i, wins[i], opts.gameCount)
	}
	return 0
}

// playGame runs one game to completion and returns the winning agent
// index, or -1 on a draw or stalemate.
func playGame(agents []*agent.Agent, opts simOpts, initBoard *wire.Board, rng *rand.Rand) int {
	g := newGame(opts, initBoard, rng)

	hazardInsets := [4]int{}

	for turn := 0; ; turn++ {
		moves := make([]geom.Direction, len(g.Snakes))
		for _, s := range g.Snakes {
			if !s.Alive() {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.runtimeMs)*time.Millisecond)
			moves[s.ID] = agents[s.ID].Step(ctx, g, opts.runtimeMs)
			cancel()
		}
		g.Step(moves)

		switch outcome := g.Outcome(); outcome.Outcome {
		case game.Winner:
			return outcome.WinnerID
		case game.Draw:
			return -1
		}

		spawnFood(g, opts.foodRate, rng)
		shrinkHazards(g, turn, opts.shrinkTurns, &hazardInsets)

		if turn > opts.width*opts.height*4 {
			// Stalemate backstop: no scenario in this engine should run
			// this long, but the harness must still terminate.
			return -1
		}
	}
}

func newGame(opts simOpts, initBoard *wire.Board, rng *rand.Rand) *game.Game {
	if initBoard != nil {
		snakes := make([]game.SnakeInput, len(initBoard.Snakes))
		for i, s := range initBoard.Snakes {
			snakes[i] = s.ToSnakeInput()
		}
		g := game.New(initBoard.Width, initBoard.Height)
		gameSnakes := make([]*game.Snake, len(snakes))
		for i, s := range snakes {
			gameSnakes[i] = &game.Snake{ID: i, Body: s.Body, Health: s.Health}
		}
		var food, hazards []geom.Point
		for _, p := range initBoard.Food {
			food = append(food, p.ToGeom())
		}
		for _, p := range initBoard.Hazards {
			hazards = append(hazards, p.ToGeom())
		}
		g.Reset(gameSnakes, food, hazards)
		return g
	}

	return initRandomGame(opts, rng)
}

// initRandomGame scatters snakes on even cells and drops one food near
// each head, matching original_source's init_game + food placement.
func initRandomGame(opts simOpts, rng *rand.Rand) *game.Game {
	numAgents := opts.numAgents
	if numAgents < 1 {
		numAgents = 1
	}
	g := game.New(opts.width, opts.height)

	cells := make([]geom.Point, 0, opts.width*opts.height/2)
	for y := 0; y < opts.height; y++ {
		for x := 0; x < opts.width; x++ {
			if (y*opts.width+x)%2 == 0 {
				cells = append(cells, geom.Point{X: x, Y: y})
			}
		}
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	snakes := make([]*game.Snake, numAgents)
	for i := range snakes {
		p := cells[i%len(cells)]
		snakes[i] = &game.Snake{ID: i, Body: []geom.Point{p, p, p}, Health: 100}
	}

	var food []geom.Point
	nearOffsets := []geom.Point{
		{X: -1, Y: -1}, {X: -2, Y: 0}, {X: -1, Y: 1}, {X: 0, Y: 2},
		{X: 1, Y: 1}, {X: 2, Y: 0}, {X: 1, Y: -1}, {X: 0, Y: -2},
	}
	for _, s := range snakes {
		order := rng.Perm(len(nearOffsets))
		for _, idx := range order {
			cand := geom.Point{X: s.Head().X + nearOffsets[idx].X, Y: s.Head().Y + nearOffsets[idx].Y}
			if cand.X >= 0 && cand.X < opts.width && cand.Y >= 0 && cand.Y < opts.height {
				food = append(food, cand)
				break
			}
		}
	}

	g.Reset(snakes, food, nil)
	return g
}

// spawnFood adds a single food tile to a random free, non-owned cell with
// probability foodRate per turn (always, if the board currently has none).
func spawnFood(g *game.Game, foodRate float64, rng *rand.Rand) {
	hasFood := false
	var free []geom.Point
	for y := 0; y < g.Grid.Height; y++ {
		for x := 0; x < g.Grid.Width; x++ {
			p := geom.Point{X: x, Y: y}
			switch g.Grid.At(p).Tag {
			case grid.Food:
				hasFood = true
			case grid.Free:
				free = append(free, p)
			}
		}
	}
	if !hasFood || rng.Float64() < foodRate {
		if len(free) > 0 {
			g.Grid.AddFood([]geom.Point{free[rng.Intn(len(free))]})
		}
	}
}

// shrinkHazards extends the hazard border by one row/column every
// shrinkTurns turns, taking the edges in a fixed rotation (left, top,
// right, bottom), in the style of the original's royale-style shrinking
// hazard implementation.
func shrinkHazards(g *game.Game, turn, shrinkTurns int, insets *[4]int) {
	if turn == 0 || shrinkTurns <= 0 || turn%shrinkTurns != 0 {
		return
	}
	if insets[0]+insets[2] >= g.Grid.Height || insets[1]+insets[3] >= g.Grid.Width {
		return
	}

	dir := turn / shrinkTurns % 4
	insets[dir]++

	if dir%2 == 0 {
		y := insets[dir] - 1
		if dir != 0 {
			y = g.Grid.Height - insets[dir]
		}
		var row []geom.Point
		for x := 0; x < g.Grid.Width; x++ {
			row = append(row, geom.Point{X: x, Y: y})
		}
		g.Grid.AddHazards(row)
	} else {
		x := insets[dir] - 1
		if dir != 1 {
			x = g.Grid.Width - insets[dir]
		}
		var col []geom.Point
		for y := 0; y < g.Grid.Height; y++ {
			col = append(col, geom.Point{X: x, Y: y})
		}
		g.Grid.AddHazards(col)
	}
}
