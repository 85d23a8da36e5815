// Package floodfill implements the multi-source BFS area-control analyzer:
// every living snake's head expands simultaneously, and ties over shared
// territory are resolved with tail-vacation and health/length rules so the
// result reflects which snake would actually survive to claim each tile.
package floodfill

import (
	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/grid"
)

// Tag classifies an FCell the way the flood fill has settled it.
type Tag int

const (
	Free Tag = iota
	Occupied
	Owned
)

// FCell is a plain struct rather than the bit-packed u16 the original
// implementation uses — Go has no ergonomic bitfield sugar, and the rest
// of this codebase always represents cell state as a struct.
type FCell struct {
	Tag Tag

	// OwnerID is meaningful for Occupied and Owned cells.
	OwnerID int

	// TailDist is the 1-based index from the tail for Occupied cells (head
	// has TailDist == body length).
	TailDist int

	// Distance, Health and Length are set once a cell becomes Owned: the
	// BFS hop count from the owning head, the arriving snake's health, and
	// its body length at arrival.
	Distance int
	Health   int
	Length   int
}

// Result is the outcome of one flood fill over a Game: the per-cell
// ownership grid plus the distances at which self (id 0) first claimed
// each food cell it reached.
type Result struct {
	Width, Height int
	cells         []FCell

	// FoodDistances holds, for id 0 only, the BFS distance at which each
	// food cell it reaches was first claimed.
	FoodDistances []int
}

func newResult(width, height int) *Result {
	return &Result{Width: width, Height: height, cells: make([]FCell, width*height)}
}

func (r *Result) index(p geom.Point) int {
	return p.Y*r.Width + p.X
}

// At returns the FCell at p.
func (r *Result) At(p geom.Point) FCell {
	return r.cells[r.index(p)]
}

func (r *Result) set(p geom.Point, c FCell) {
	r.cells[r.index(p)] = c
}

// Area returns the number of cells owned by id.
func (r *Result) Area(id int) int {
	n := 0
	for _, c := range r.cells {
		if c.Tag == Owned && c.OwnerID == id {
			n++
		}
	}
	return n
}

// HealthSum returns the sum of arrival health over every cell owned by id,
// the numerator of the Flood heuristic's board_control term.
func (r *Result) HealthSum(id int) int {
	sum := 0
	for _, c := range r.cells {
		if c.Tag == Owned && c.OwnerID == id {
			sum += c.Health
		}
	}
	return sum
}

type frontierItem struct {
	pos          geom.Point
	ownerID      int
	distance     int
	foodConsumed int
	length       int
	health       int
}

// Flood runs the multi-source BFS for every living snake in g and returns
// the resulting ownership partition.
func Flood(g *game.Game) *Result {
	r := newResult(g.Grid.Width, g.Grid.Height)

	// Pre-paint every living snake's body as Occupied, recording tail
	// distance (tail = 1, head = body length).
	for _, s := range g.Snakes {
		if !s.Alive() {
			continue
		}
		for i, p := range s.Body {
			if !r.inBounds(p) {
				continue
			}
			r.set(p, FCell{Tag: Occupied, OwnerID: s.ID, TailDist: i + 1})
		}
	}

	var queue []frontierItem

	for _, s := range g.Snakes {
		if !s.Alive() {
			continue
		}
		for _, d := range geom.AllDirections {
			r.arrive(g, s.Head().Add(d), s.ID, 1, 0, s.Length(), s.Health, &queue)
		}
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		for _, d := range geom.AllDirections {
			r.arrive(g, item.pos.Add(d), item.ownerID, item.distance, item.foodConsumed, item.length, item.health, &queue)
		}
	}

	return r
}

func (r *Result) inBounds(p geom.Point) bool {
	return p.X >= 0 && p.X < r.Width && p.Y >= 0 && p.Y < r.Height
}

// arrive evaluates a single BFS arrival at p by the given snake and, if it
// wins ownership, marks the cell and enqueues the next hop.
func (r *Result) arrive(g *game.Game, p geom.Point, ownerID, distance, foodConsumed, length, health int, queue *[]frontierItem) {
	if !r.inBounds(p) {
		return
	}

	cell := g.Grid.At(p)
	newHealth := health
	newFoodConsumed := foodConsumed
	newLength := length

	if cell.Tag == grid.Food {
		existing := r.At(p)
		if ownerID == 0 && existing.Tag != Owned {
			r.FoodDistances = append(r.FoodDistances, distance)
		}
		newHealth = 100
		newFoodConsumed++
		newLength++
	} else if cell.Hazard {
		newHealth = saturatingSub(health, grid.HazardDamage)
	} else {
		newHealth = saturatingSub(health, 1)
	}

	if newHealth <= 0 {
		return
	}

	existing := r.At(p)
	if !owns(existing, ownerID, distance, newFoodConsumed, newLength, newHealth) {
		return
	}

	r.set(p, FCell{Tag: Owned, OwnerID: ownerID, Distance: distance, Health: newHealth, Length: newLength})
	*queue = append(*queue, frontierItem{
		pos:          p,
		ownerID:      ownerID,
		distance:     distance + 1,
		foodConsumed: newFoodConsumed,
		length:       newLength,
		health:       newHealth,
	})
}

// owns implements the §4.3 ownership test between a new arrival and the
// cell's current occupant.
func owns(existing FCell, ownerID, distance, foodConsumed, length, health int) bool {
	switch existing.Tag {
	case Free:
		return true

	case Occupied:
		if existing.OwnerID == ownerID {
			// Follow our own tail: we may pass once the tail has vacated,
			// adjusted for any growth (food) consumed along the way.
			return existing.TailDist+foodConsumed <= distance
		}
		// Follow an enemy tail: it will have moved on by the time we
		// arrive, equal distance treated as traversable.
		return existing.TailDist <= distance

	case Owned:
		if existing.Distance < distance {
			return false // already claimed by someone who got there sooner
		}
		if existing.Distance > distance {
			return true // shouldn't occur with correct BFS ordering
		}
		if existing.OwnerID == ownerID {
			return health > existing.Health
		}
		if length != existing.Length {
			return length > existing.Length
		}
		return ownerID < existing.OwnerID

	default:
		return false
	}
}

func saturatingSub(v, by int) int {
	if v <= by {
		return 0
	}
	return v - by
}
