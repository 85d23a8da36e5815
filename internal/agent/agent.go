// Package agent is the composition layer: it owns a heuristic plus a
// search driver and exposes the single Step entry point the HTTP surface
// and CLI harness call once per turn, per spec.md §4.6.
package agent

import (
	"context"
	"math/rand"
	"time"

	"github.com/brensch/battlesnake-engine/internal/floodfill"
	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/grid"
	"github.com/brensch/battlesnake-engine/internal/heuristic"
	"github.com/brensch/battlesnake-engine/internal/search"
)

// Kind tags the dispatcher variant, matching the `agent_kind` config option.
type Kind int

const (
	Mobility Kind = iota
	Tree
	Flood
	FloodExp
	Solo
	Random
)

// ParseKind maps the config string form onto Kind.
func ParseKind(s string) Kind {
	switch s {
	case "Tree":
		return Tree
	case "Flood":
		return Flood
	case "FloodExp":
		return FloodExp
	case "Solo":
		return Solo
	case "Random":
		return Random
	default:
		return Mobility
	}
}

// MobilityConfig tunes the mobility agent's food-seeking fallback.
type MobilityConfig struct {
	HealthThreshold int     `json:"health_threshold"`
	MinLen          int     `json:"min_len"`
	FirstMoveCost   float64 `json:"first_move_cost"`
}

// DefaultMobilityConfig matches §6's documented defaults.
func DefaultMobilityConfig() MobilityConfig {
	return MobilityConfig{HealthThreshold: 35, MinLen: 10, FirstMoveCost: 1.0}
}

// Config is the single deserializable configuration object recognized by
// the engine (§6 Configuration).
type Config struct {
	AgentKind      string                `json:"agent_kind"`
	Mobility       MobilityConfig        `json:"mobility_agent"`
	TreeHeuristic  heuristic.TreeConfig  `json:"tree_heuristic"`
	FloodHeuristic heuristic.FloodConfig `json:"flood_heuristic"`
	SoloHeuristic  heuristic.SoloConfig  `json:"solo_heuristic"`
	LatencyMs      int                   `json:"latency"`
	MaxBoardSize   int                   `json:"max_board_size"`
	HazardDamage   int                   `json:"hazard_damage"`
}

// DefaultConfig matches §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		AgentKind:      "Mobility",
		Mobility:       DefaultMobilityConfig(),
		TreeHeuristic:  heuristic.DefaultTreeConfig(),
		FloodHeuristic: heuristic.DefaultFloodConfig(),
		SoloHeuristic:  heuristic.DefaultSoloConfig(),
		LatencyMs:      100,
		MaxBoardSize:   19,
		HazardDamage:   grid.HazardDamage,
	}
}

// Agent is a stateless value object: it owns a heuristic and configuration
// and is safe to clone into search workers (it holds no per-turn state).
type Agent struct {
	kind   Kind
	config Config
	rng    *rand.Rand
}

// New constructs an Agent for the given kind and configuration. rngSeed
// seeds a per-agent random source for reproducible fallback moves.
func New(kind Kind, cfg Config, rngSeed int64) *Agent {
	return &Agent{kind: kind, config: cfg, rng: rand.New(rand.NewSource(rngSeed))}
}

func (a *Agent) heuristicFor(kind Kind) heuristic.Heuristic {
	switch kind {
	case Tree:
		return heuristic.NewTree(a.config.TreeHeuristic)
	case Flood, FloodExp:
		return heuristic.NewFlood(a.config.FloodHeuristic)
	case Solo:
		return heuristic.NewSolo(a.config.SoloHeuristic)
	default:
		return heuristic.NewMobility()
	}
}

// rawArea evaluates to the raw (unnormalized) flood-fill cell count for
// self, matching the original mobility agent's `count_space_of` closure —
// unlike heuristic.Mobility, which normalizes by board area for use as a
// general-purpose leaf score.
type rawArea struct{}

func (rawArea) Eval(g *game.Game) float64 {
	if !g.Snakes[0].Alive() {
		return 0
	}
	return float64(floodfill.Flood(g).Area(0))
}

func randomMove(g *game.Game, rng *rand.Rand) geom.Direction {
	moves := g.ValidMoves(0)
	if len(moves) == 0 {
		return geom.Up
	}
	return moves[rng.Intn(len(moves))]
}

// Step is the dispatcher's single entry point: given the current game state
// and the remaining wall-clock budget (already reduced by the configured
// latency margin by the caller), it returns the chosen direction. It never
// blocks past budgetMs and never fails to return a direction.
func (a *Agent) Step(ctx context.Context, g *game.Game, budgetMs int) geom.Direction {
	if g.Grid.Width > a.config.MaxBoardSize || g.Grid.Height > a.config.MaxBoardSize {
		return randomMove(g, a.rng)
	}

	switch a.kind {
	case Random:
		return randomMove(g, a.rng)
	case Mobility:
		return a.stepMobility(g)
	case FloodExp:
		return a.stepSearch(ctx, g, budgetMs, search.ExpectimaxAlgo)
	default:
		return a.stepSearch(ctx, g, budgetMs, search.ChooseAlgorithm(g))
	}
}

func (a *Agent) stepSearch(ctx context.Context, g *game.Game, budgetMs int, algo search.Algorithm) geom.Direction {
	h := a.heuristicFor(a.kind)

	if budgetMs < search.FastPathThreshold {
		if dir, ok := search.FastPath(g, h); ok {
			return dir
		}
		return randomMove(g, a.rng)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(budgetMs)*time.Millisecond)
	defer cancel()

	dir, ok := search.IterativeDeepen(ctx, g, h, algo)
	if ok {
		return dir
	}
	if dir, ok := search.FastPath(g, h); ok {
		return dir
	}
	return randomMove(g, a.rng)
}

// stepMobility runs the mobility agent per §4.6: a depth-1 max-n sweep for
// per-direction reachable area, a fresh flood fill for ownership, and an
// A*-toward-food fallback when low on length or health, biased by the
// per-direction free area. Grounded on the original's mobility.rs.
func (a *Agent) stepMobility(g *game.Game) geom.Direction {
	you := g.Snakes[0]

	spaceAfterMove := search.MaxN(g, 1, rawArea{})

	flood := floodfill.Flood(g)

	// Avoid stepping next to a longer-or-equal enemy head: mark their
	// neighboring cells as if already owned so A* routes around them.
	biasedGrid := g.Grid.Clone()
	for _, s := range g.Snakes[1:] {
		if !s.Alive() || s.Length() < you.Length() {
			continue
		}
		for _, d := range geom.AllDirections {
			p := s.Head().Add(d)
			if biasedGrid.Has(p) {
				c := biasedGrid.At(p)
				c.Tag = grid.Owned
				biasedGrid.Set(p, c)
			}
		}
	}

	area := float64(g.Grid.Width * g.Grid.Height)
	var firstMoveCosts [4]float64
	for _, d := range geom.AllDirections {
		space := spaceAfterMove[d]
		if space < 0 {
			space = 0
		}
		firstMoveCosts[d] = (1.0 - space/area) * a.config.Mobility.FirstMoveCost
	}

	if you.Length() < a.config.Mobility.MinLen || you.Health < a.config.Mobility.HealthThreshold {
		if dir, ok := a.findFood(g, biasedGrid, flood, spaceAfterMove, firstMoveCosts); ok {
			return dir
		}
	}

	if dir, ok := bestArea(spaceAfterMove); ok {
		return dir
	}

	return randomMove(g, a.rng)
}

func bestArea(area [4]float64) (geom.Direction, bool) {
	best := geom.Up
	bestVal := 0.0
	found := false
	for i, v := range area {
		if v > bestVal {
			bestVal = v
			best = geom.Direction(i)
			found = true
		}
	}
	return best, found
}

type foodCandidate struct {
	cost int
	dir  geom.Direction
}

// findFood runs A* to every food tile and returns the cheapest direction
// whose resulting free area exceeds body length minus one, preferring
// paths through self-owned flood-fill territory (§4.6).
func (a *Agent) findFood(g *game.Game, biasedGrid *grid.Grid, flood *floodfill.Result, spaceAfterMove [4]float64, firstMoveCosts [4]float64) (geom.Direction, bool) {
	you := g.Snakes[0]
	var candidates []foodCandidate

	for y := 0; y < g.Grid.Height; y++ {
		for x := 0; x < g.Grid.Width; x++ {
			p := geom.Point{X: x, Y: y}
			if g.Grid.At(p).Tag != grid.Food {
				continue
			}
			path, ok := biasedGrid.AStar(you.Head(), p, &firstMoveCosts)
			if !ok || path.Len() < 2 {
				continue
			}
			cost := path.Len()
			owned := flood.At(p).Tag == floodfill.Owned && flood.At(p).OwnerID == 0
			if !owned {
				cost += 5
			}
			dir := directionBetween(path.Points[0], path.Points[1])
			candidates = append(candidates, foodCandidate{cost: cost, dir: dir})
		}
	}

	sortByCost(candidates)

	for _, c := range candidates {
		if int(spaceAfterMove[c.dir]) > you.Length()-1 {
			return c.dir, true
		}
	}
	return geom.Up, false
}

func sortByCost(c []foodCandidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].cost < c[j-1].cost; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

func directionBetween(from, to geom.Point) geom.Direction {
	for _, d := range geom.AllDirections {
		if from.Add(d) == to {
			return d
		}
	}
	return geom.Up
}
