// Package game implements the immutable-per-turn simulator: snakes, the
// board they live on, and the single-step state transition with its tie
// resolution and food semantics.
package game

import (
	"fmt"
	"sort"

	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/grid"
)

// Snake is an ordered body buffer, tail first and head last, plus health.
// Id equals the snake's index within its owning Game's snake list.
type Snake struct {
	ID     int
	Body   []geom.Point
	Health int
}

// Alive reports whether the snake is still in play.
func (s *Snake) Alive() bool {
	return s.Health > 0 && len(s.Body) > 0
}

// Head returns the snake's head position. Callers must ensure the body is
// non-empty.
func (s *Snake) Head() geom.Point {
	return s.Body[len(s.Body)-1]
}

// Length returns the current body length.
func (s *Snake) Length() int {
	return len(s.Body)
}

// Outcome classifies the terminal state of a Game.
type Outcome int

const (
	None Outcome = iota
	Draw
	Winner
)

// Result pairs an Outcome with the winning id, meaningful only when
// Outcome == Winner.
type Result struct {
	Outcome Outcome
	WinnerID int
}

// TieRule names the policy used to resolve head-to-head collisions beyond
// the exact pairwise case. PairwiseIndexOrder is the only implementation:
// pairs are compared in ascending index order, which is exact for two
// snakes and a documented approximation for three-or-more-way ties.
type TieRule int

const (
	PairwiseIndexOrder TieRule = iota
)

// Game composes a Grid with an ordered, index-stable snake list and a turn
// counter.
type Game struct {
	Grid    *grid.Grid
	Snakes  []*Snake
	Turn    int
	TieRule TieRule
}

// New allocates an empty Game of the given board size.
func New(width, height int) *Game {
	return &Game{Grid: grid.New(width, height)}
}

// SnakeInput is the minimal per-snake data needed to materialize a Game
// from a decoded request, independent of any wire representation.
type SnakeInput struct {
	ID   string
	Health int
	// Body is ordered head-to-tail, matching the battlesnake wire format.
	Body []geom.Point
}

// Reset repopulates the grid and snake list from food/hazards and a set of
// already-ordered Snakes (id must equal index). Turn is left untouched;
// callers constructing a fresh Game should set it explicitly.
func (g *Game) Reset(snakes []*Snake, food, hazards []geom.Point) {
	g.Grid.Clear()
	g.Grid.AddFood(food)
	g.Grid.AddHazards(hazards)
	for i, s := range snakes {
		if s.ID != i {
			panic("game: snake id must equal its list index")
		}
		g.Grid.AddSnake(s.Body)
	}
	g.Snakes = snakes
}

// NewFromRequest builds a Game from decoded request data: self becomes id
// 0; if more than four snakes are present, only self plus the three
// enemies whose bodies lie closest to self's head (minimum body-to-head
// Manhattan distance) are kept.
func NewFromRequest(width, height int, selfInput SnakeInput, others []SnakeInput, food, hazards []geom.Point) *Game {
	g := New(width, height)

	toSnake := func(id int, in SnakeInput) *Snake {
		body := make([]geom.Point, len(in.Body))
		for i, p := range in.Body {
			body[len(in.Body)-1-i] = p // wire is head-to-tail, Snake.Body is tail-to-head
		}
		return &Snake{ID: id, Body: body, Health: in.Health}
	}

	self := toSnake(0, selfInput)
	snakes := []*Snake{self}

	enemies := make([]SnakeInput, 0, len(others))
	for _, o := range others {
		if o.ID == selfInput.ID {
			continue
		}
		enemies = append(enemies, o)
	}

	if len(enemies) > 3 {
		selfHead := self.Head()
		sort.Slice(enemies, func(i, j int) bool {
			return closestBodyDistance(enemies[i], selfHead) < closestBodyDistance(enemies[j], selfHead)
		})
		enemies = enemies[:3]
	}

	for i, o := range enemies {
		snakes = append(snakes, toSnake(i+1, o))
	}

	g.Reset(snakes, food, hazards)
	return g
}

func closestBodyDistance(in SnakeInput, selfHead geom.Point) int {
	best := int(^uint(0) >> 1)
	for _, p := range in.Body {
		if d := p.ManhattanDistance(selfHead); d < best {
			best = d
		}
	}
	return best
}

// Step advances the game by one synchronous half-turn. moves must have at
// least len(Snakes) entries, indexed by snake id.
func (g *Game) Step(moves []geom.Direction) {
	// 1. Pop tails, respecting stacking from a previous turn's growth.
	for _, s := range g.Snakes {
		if !s.Alive() {
			continue
		}
		tail := s.Body[0]
		s.Body = s.Body[1:]
		if len(s.Body) == 0 {
			g.clearIfFree(tail)
			continue
		}
		if newTail := s.Body[0]; newTail != tail {
			g.clearIfFree(tail)
		}
	}

	// 2. Move heads and resolve food/hazard/health.
	for _, s := range g.Snakes {
		if !s.Alive() {
			continue
		}
		dir := geom.Up
		if int(s.ID) < len(moves) {
			dir = moves[s.ID]
		}
		head := s.Head().Add(dir)

		if !g.Grid.Has(head) || g.Grid.At(head).Tag == grid.Owned {
			s.Health = 0
			continue
		}

		cell := g.Grid.At(head)
		if cell.Tag == grid.Food {
			s.Body = append([]geom.Point{s.Body[0]}, s.Body...)
			s.Health = 100
		} else if cell.Hazard {
			s.Health = saturatingSub(s.Health, grid.HazardDamage)
		} else {
			s.Health = saturatingSub(s.Health, 1)
		}
		s.Body = append(s.Body, head)
	}

	// 3. Head-to-head resolution, pairwise in index order.
	for i := 0; i < len(g.Snakes)-1; i++ {
		a := g.Snakes[i]
		if !a.Alive() {
			continue
		}
		for j := i + 1; j < len(g.Snakes); j++ {
			b := g.Snakes[j]
			if !b.Alive() || a.Head() != b.Head() {
				continue
			}
			switch {
			case a.Length() < b.Length():
				a.Health = 0
			case a.Length() > b.Length():
				b.Health = 0
			default:
				a.Health = 0
				b.Health = 0
			}
		}
	}

	// 4 & 5. Clear dead snakes, mark survivors' heads Owned, clear Food there.
	for _, s := range g.Snakes {
		if s.Alive() {
			g.Grid.Set(s.Head(), grid.Cell{Tag: grid.Owned, Hazard: g.Grid.At(s.Head()).Hazard})
		} else if len(s.Body) > 0 {
			for _, p := range s.Body {
				g.Grid.Set(p, clearedCell(g.Grid.At(p)))
			}
			s.Body = nil
		}
	}

	g.Turn++
}

func clearedCell(c grid.Cell) grid.Cell {
	return grid.Cell{Hazard: c.Hazard}
}

func (g *Game) clearIfFree(p geom.Point) {
	g.Grid.Set(p, clearedCell(g.Grid.At(p)))
}

func saturatingSub(v, by int) int {
	if v <= by {
		return 0
	}
	return v - by
}

// ValidMoves yields every direction for which the new head is in bounds
// and either non-Owned, or coincides with some living snake's current
// tail that will vacate this turn (not stacked from growth).
func (g *Game) ValidMoves(id int) []geom.Direction {
	if id < 0 || id >= len(g.Snakes) || !g.Snakes[id].Alive() {
		return nil
	}
	head := g.Snakes[id].Head()

	var out []geom.Direction
	for _, d := range geom.AllDirections {
		p := head.Add(d)
		if !g.Grid.Has(p) {
			continue
		}
		if g.Grid.At(p).Tag != grid.Owned || g.vacatingTail(p) {
			out = append(out, d)
		}
	}
	return out
}

func (g *Game) vacatingTail(p geom.Point) bool {
	for _, s := range g.Snakes {
		if !s.Alive() || len(s.Body) == 0 {
			continue
		}
		tail := s.Body[0]
		stacked := len(s.Body) > 1 && s.Body[1] == tail
		if p == tail && !stacked {
			return true
		}
	}
	return false
}

// Outcome reports the terminal state: None while 2+ snakes are alive,
// Draw when all died in the same step, Winner when exactly one survives.
func (g *Game) Outcome() Result {
	alive := 0
	winner := -1
	for _, s := range g.Snakes {
		if s.Alive() {
			alive++
			winner = s.ID
		}
	}
	switch alive {
	case 0:
		return Result{Outcome: Draw}
	case 1:
		return Result{Outcome: Winner, WinnerID: winner}
	default:
		return Result{Outcome: None}
	}
}

// Invariants checks the grid/body consistency documented in the data
// model. Used by tests and by the HTTP server once per move request before
// the agent runs; never called inside search.
func (g *Game) Invariants() error {
	owned := make(map[geom.Point]int)
	for _, s := range g.Snakes {
		if !s.Alive() {
			continue
		}
		for _, p := range s.Body {
			if g.Grid.At(p).Tag != grid.Owned {
				return fmt.Errorf("game: body cell %v of snake %d is not tagged Owned", p, s.ID)
			}
			owned[p]++
		}
	}
	for y := 0; y < g.Grid.Height; y++ {
		for x := 0; x < g.Grid.Width; x++ {
			p := geom.Point{X: x, Y: y}
			if g.Grid.At(p).Tag == grid.Owned && owned[p] == 0 {
				return fmt.Errorf("game: cell %v is tagged Owned but no living snake occupies it", p)
			}
		}
	}
	return nil
}

// Clone returns a deep copy suitable for handing to a search worker.
func (g *Game) Clone() *Game {
	snakes := make([]*Snake, len(g.Snakes))
	for i, s := range g.Snakes {
		body := make([]geom.Point, len(s.Body))
		copy(body, s.Body)
		snakes[i] = &Snake{ID: s.ID, Body: body, Health: s.Health}
	}
	return &Game{Grid: g.Grid.Clone(), Snakes: snakes, Turn: g.Turn, TieRule: g.TieRule}
}
