// Package grid holds the board tile array and A* pathfinding used by the
// heuristics and mobility agent.
package grid

import (
	"container/heap"

	"github.com/brensch/battlesnake-engine/internal/geom"
)

// HazardDamage is the extra health cost of stepping into a hazardous cell,
// matching the default `hazard_damage` configuration option.
const HazardDamage = 15

// CellTag classifies a tile independently of its hazard flag.
type CellTag int

const (
	Free CellTag = iota
	Food
	Owned
)

// Cell is a single board tile. Hazard is tracked separately from Tag so a
// hazardous tile can still be Free, Food, or Owned.
type Cell struct {
	Tag    CellTag
	Hazard bool
}

// Grid is a W*H array of Cells addressed by geom.Point.
type Grid struct {
	Width, Height int
	cells         []Cell
}

// New allocates a Grid of the given dimensions, every cell Free.
func New(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
	}
}

func (g *Grid) index(p geom.Point) int {
	return p.Y*g.Width + p.X
}

// Has reports whether p lies within the grid bounds.
func (g *Grid) Has(p geom.Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// At returns the cell at p. Callers must check Has first.
func (g *Grid) At(p geom.Point) Cell {
	return g.cells[g.index(p)]
}

// Set overwrites the cell at p.
func (g *Grid) Set(p geom.Point, c Cell) {
	g.cells[g.index(p)] = c
}

// Clear resets every cell to Free, preserving no hazard or ownership state.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{}
	}
}

// AddFood marks every position as Food, leaving hazard flags untouched.
func (g *Grid) AddFood(positions []geom.Point) {
	for _, p := range positions {
		if !g.Has(p) {
			continue
		}
		c := g.At(p)
		c.Tag = Food
		g.Set(p, c)
	}
}

// AddSnake marks every body segment as Owned.
func (g *Grid) AddSnake(body []geom.Point) {
	for _, p := range body {
		if !g.Has(p) {
			continue
		}
		c := g.At(p)
		c.Tag = Owned
		g.Set(p, c)
	}
}

// AddHazards sets the hazard bit on every position, independent of Tag.
func (g *Grid) AddHazards(positions []geom.Point) {
	for _, p := range positions {
		if !g.Has(p) {
			continue
		}
		c := g.At(p)
		c.Hazard = true
		g.Set(p, c)
	}
}

// Clone returns a deep copy, cheap since the backing array is flat.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{Width: g.Width, Height: g.Height, cells: cells}
}

// Path is the result of a successful A* search, start to goal inclusive.
type Path struct {
	Points []geom.Point
}

// Len returns the number of steps in the path (edges, not points).
func (p Path) Len() int {
	if len(p.Points) == 0 {
		return 0
	}
	return len(p.Points) - 1
}

type openEntry struct {
	point    geom.Point
	priority int // cost*10, integer keyed to avoid float heap comparisons
	index    int
}

type openHeap []*openEntry

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openHeap) Push(x interface{}) { e := x.(*openEntry); e.index = len(*h); *h = append(*h, e) }
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

var tailSentinel = geom.Point{X: -1, Y: -1}

// AStar runs a best-first search from start to goal with a Manhattan
// distance heuristic. firstMoveCosts, if non-nil, biases the very first
// edge leaving start by firstMoveCosts[dir] (mobility-weighted pathing);
// every other edge costs 1, plus HazardDamage if the destination cell is
// hazardous. Returns (path, true) on success.
func (g *Grid) AStar(start, goalPt geom.Point, firstMoveCosts *[4]float64) (Path, bool) {
	if !g.Has(start) || !g.Has(goalPt) {
		return Path{}, false
	}

	gScore := make(map[geom.Point]float64, g.Width*g.Height)
	cameFrom := make(map[geom.Point]geom.Point, g.Width*g.Height)
	gScore[start] = 0
	cameFrom[start] = tailSentinel

	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, &openEntry{point: start, priority: 0})

	visited := make(map[geom.Point]bool, g.Width*g.Height)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*openEntry)
		if visited[cur.point] {
			continue
		}
		visited[cur.point] = true

		if cur.point == goalPt {
			return reconstructPath(cameFrom, goalPt), true
		}

		for _, d := range geom.AllDirections {
			next := cur.point.Add(d)
			if !g.Has(next) {
				continue
			}
			cell := g.At(next)
			if cell.Tag == Owned {
				continue
			}

			edgeCost := 1.0
			if cell.Hazard {
				edgeCost += HazardDamage
			}
			if cur.point == start && firstMoveCosts != nil {
				edgeCost += firstMoveCosts[d]
			}

			tentative := gScore[cur.point] + edgeCost
			if existing, ok := gScore[next]; ok && tentative >= existing {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = cur.point

			h := float64(next.ManhattanDistance(goalPt))
			priority := int((tentative + h) * 10)
			heap.Push(open, &openEntry{point: next, priority: priority})
		}
	}

	return Path{}, false
}

func reconstructPath(cameFrom map[geom.Point]geom.Point, goal geom.Point) Path {
	var rev []geom.Point
	cur := goal
	for {
		rev = append(rev, cur)
		prev, ok := cameFrom[cur]
		if !ok || prev == tailSentinel {
			break
		}
		cur = prev
	}
	points := make([]geom.Point, len(rev))
	for i, p := range rev {
		points[len(rev)-1-i] = p
	}
	return Path{Points: points}
}
