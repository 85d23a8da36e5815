// Package heuristic implements the scoring functions search leaves
// evaluate: Tree, Flood, Solo, and Mobility, all sharing the same
// (Game, FloodFill) inputs and terminal-outcome handling.
package heuristic

import (
	"math"

	"github.com/brensch/battlesnake-engine/internal/floodfill"
	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/grid"
)

// Terminal score sentinels, strictly separated from in-game heuristic
// values which always fall in the open interval (Loss, Win).
const (
	Win  = 1e4
	Loss = -1e4
	Draw = 0.0
)

// Heuristic is the single capability search depends on: score a Game from
// self's (id 0) perspective.
type Heuristic interface {
	Eval(g *game.Game) float64
}

// terminal returns (score, true) if g's outcome bypasses the heuristic's
// in-game computation, per §4.4 "terminal outcomes bypass this and return
// WIN/LOSS/DRAW".
func terminal(g *game.Game) (float64, bool) {
	if len(g.Snakes) == 0 || !g.Snakes[0].Alive() {
		return Loss, true
	}
	switch res := g.Outcome(); res.Outcome {
	case game.Draw:
		return Draw, true
	case game.Winner:
		if res.WinnerID == 0 {
			return Win, true
		}
		return Loss, true
	default:
		return 0, false
	}
}

func maxEnemyLength(g *game.Game) int {
	max := 0
	for _, s := range g.Snakes[1:] {
		if s.Length() > max {
			max = s.Length()
		}
	}
	return max
}

func decay(weight, decayRate float64, turn int) float64 {
	return weight * math.Exp(-float64(turn)*decayRate)
}

// TreeConfig weights the Tree heuristic's five additive terms, each with
// an optional exponential decay over the turn counter.
type TreeConfig struct {
	Mobility      float64 `json:"mobility"`
	MobilityDecay float64 `json:"mobility_decay"`

	Health      float64 `json:"health"`
	HealthDecay float64 `json:"health_decay"`

	LenAdvantage      float64 `json:"len_advantage"`
	LenAdvantageDecay float64 `json:"len_advantage_decay"`

	FoodOwnership      float64 `json:"food_ownership"`
	FoodOwnershipDecay float64 `json:"food_ownership_decay"`

	Centrality      float64 `json:"centrality"`
	CentralityDecay float64 `json:"centrality_decay"`
}

// DefaultTreeConfig matches §6's documented defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		Mobility:      0.7,
		Health:        0.012,
		LenAdvantage:  1.0,
		FoodOwnership: 0.65,
		Centrality:    0.1,
	}
}

// Tree is the four-enemy general-purpose heuristic.
type Tree struct {
	Config TreeConfig
}

func NewTree(cfg TreeConfig) *Tree { return &Tree{Config: cfg} }

func (t *Tree) Eval(g *game.Game) float64 {
	if score, ok := terminal(g); ok {
		return score
	}

	self := g.Snakes[0]
	area := float64(g.Grid.Width * g.Grid.Height)
	turn := g.Turn

	flood := floodfill.Flood(g)
	mobility := float64(flood.Area(0)) / area

	health := float64(self.Health) / 100.0

	maxEnemy := maxEnemyLength(g)
	lenDenominator := 1.0
	if maxEnemy > 0 {
		lenDenominator = float64(maxEnemy)
	}
	lenAdvantage := float64(self.Length()) / lenDenominator

	foodOwnership := float64(ownedFoodCount(g, flood)) / float64(g.Grid.Width)

	center := geom.Point{X: g.Grid.Width / 2, Y: g.Grid.Height / 2}
	// Normalized by board width, not max(width, height).
	centrality := 1.0 - float64(self.Head().ManhattanDistance(center))/float64(g.Grid.Width)

	c := t.Config
	return mobility*decay(c.Mobility, c.MobilityDecay, turn) +
		health*decay(c.Health, c.HealthDecay, turn) +
		lenAdvantage*decay(c.LenAdvantage, c.LenAdvantageDecay, turn) +
		foodOwnership*decay(c.FoodOwnership, c.FoodOwnershipDecay, turn) +
		centrality*decay(c.Centrality, c.CentralityDecay, turn)
}

func ownedFoodCount(g *game.Game, flood *floodfill.Result) int {
	count := 0
	for y := 0; y < g.Grid.Height; y++ {
		for x := 0; x < g.Grid.Width; x++ {
			p := geom.Point{X: x, Y: y}
			if g.Grid.At(p).Tag != grid.Food {
				continue
			}
			if c := flood.At(p); c.Tag == floodfill.Owned && c.OwnerID == 0 {
				count++
			}
		}
	}
	return count
}

// FloodConfig weights the Flood (royale) heuristic's terms.
type FloodConfig struct {
	BoardControl float64 `json:"board_control"`

	Health float64 `json:"health"`

	LenAdvantage      float64 `json:"len_advantage"`
	LenAdvantageDecay float64 `json:"len_advantage_decay"`

	FoodDistance float64 `json:"food_distance"`
}

// DefaultFloodConfig matches the royale agent's documented defaults.
func DefaultFloodConfig() FloodConfig {
	return FloodConfig{
		BoardControl: 2.0,
		Health:       0.5,
		LenAdvantage: 0.5,
		FoodDistance: 0.5,
	}
}

// Flood is the royale-mode heuristic: health-weighted board control plus a
// food-distance-boosted length advantage.
type Flood struct {
	Config FloodConfig
}

func NewFlood(cfg FloodConfig) *Flood { return &Flood{Config: cfg} }

func (f *Flood) Eval(g *game.Game) float64 {
	if score, ok := terminal(g); ok {
		return score
	}

	self := g.Snakes[0]
	area := float64(g.Grid.Width * g.Grid.Height)
	turn := g.Turn

	flood := floodfill.Flood(g)

	boardControl := math.Sqrt(float64(flood.HealthSum(0)) / (area * 100.0))
	health := math.Sqrt(float64(self.Health) / 100.0)

	foodDistance := 0.0
	for _, d := range flood.FoodDistances {
		foodDistance += (area - float64(d)) / area
	}

	maxEnemy := maxEnemyLength(g)
	lenDenominator := 1.0
	if maxEnemy > 0 {
		lenDenominator = float64(maxEnemy)
	}
	lenAdvantage := math.Sqrt((float64(self.Length()) + foodDistance*f.Config.FoodDistance) / lenDenominator)

	c := f.Config
	return boardControl*c.BoardControl +
		health*c.Health +
		lenAdvantage*decay(c.LenAdvantage, c.LenAdvantageDecay, turn)
}

// SoloConfig weights the Solo heuristic's terms.
type SoloConfig struct {
	Saturated float64 `json:"saturated"`
	Space     float64 `json:"space"`
	Size      float64 `json:"size"`
}

// DefaultSoloConfig matches the solo agent's documented defaults.
func DefaultSoloConfig() SoloConfig {
	return SoloConfig{Saturated: 0.1, Space: 1.0, Size: 0.5}
}

// Solo is used on boards without opponents (or where survival, not
// competition, is the objective).
type Solo struct {
	Config SoloConfig
}

func NewSolo(cfg SoloConfig) *Solo { return &Solo{Config: cfg} }

func (s *Solo) Eval(g *game.Game) float64 {
	if score, ok := terminal(g); ok {
		return score
	}

	self := g.Snakes[0]
	area := float64(g.Grid.Width * g.Grid.Height)

	flood := floodfill.Flood(g)

	nearestFood := math.MaxInt32
	if len(flood.FoodDistances) > 0 {
		nearestFood = flood.FoodDistances[0]
	}

	saturated := 0.0
	if float64(nearestFood) < float64(self.Health) {
		saturated = 1.0
	}

	space := float64(flood.Area(0)) / area
	size := math.Sqrt(3.0 / float64(self.Length()))

	c := s.Config
	return c.Saturated*saturated + c.Space*space + c.Size*size
}

// Mobility is the pure area-control heuristic: own FloodFill area over
// board area, nothing else.
type Mobility struct{}

func NewMobility() *Mobility { return &Mobility{} }

func (m *Mobility) Eval(g *game.Game) float64 {
	if score, ok := terminal(g); ok {
		return score
	}
	area := float64(g.Grid.Width * g.Grid.Height)
	flood := floodfill.Flood(g)
	return float64(flood.Area(0)) / area
}
