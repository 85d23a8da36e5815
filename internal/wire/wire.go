// Package wire holds the battlesnake JSON request/response types the HTTP
// surface and CLI harness decode and encode, matching the teacher's api.go
// field names and tags exactly.
package wire

import (
	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
)

// Point mirrors the wire {x,y} object.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToGeom converts a wire Point to the engine's geom.Point.
func (p Point) ToGeom() geom.Point {
	return geom.Point{X: p.X, Y: p.Y}
}

// FromGeom converts a geom.Point to a wire Point.
func FromGeom(p geom.Point) Point {
	return Point{X: p.X, Y: p.Y}
}

// Ruleset describes the game rules in effect; only the fields the engine
// cares about are populated by callers, the rest round-trip untouched.
type Ruleset struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Settings Settings `json:"settings"`
}

type Settings struct {
	FoodSpawnChance     int `json:"foodSpawnChance"`
	MinimumFood         int `json:"minimumFood"`
	HazardDamagePerTurn int `json:"hazardDamagePerTurn"`
}

// GameInfo is the per-match metadata, notably the per-turn timeout budget.
type GameInfo struct {
	ID        string  `json:"id"`
	Ruleset   Ruleset `json:"ruleset"`
	Map       string  `json:"map"`
	TimeoutMs int     `json:"timeout"`
}

// Snake is one entry in board.snakes (or the top-level "you").
type Snake struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Health  int     `json:"health"`
	Body    []Point `json:"body"`
	Latency string  `json:"latency"`
	Head    Point   `json:"head"`
	Length  int     `json:"length"`
	Shout   string  `json:"shout"`
}

// ToSnakeInput converts a wire Snake into the game package's construction
// input, independent of the wire representation.
func (s Snake) ToSnakeInput() game.SnakeInput {
	body := make([]geom.Point, len(s.Body))
	for i, p := range s.Body {
		body[i] = p.ToGeom()
	}
	return game.SnakeInput{ID: s.ID, Health: s.Health, Body: body}
}

// Board is the board.* object: dimensions, food, hazards, and every snake.
type Board struct {
	Height  int     `json:"height"`
	Width   int     `json:"width"`
	Food    []Point `json:"food"`
	Hazards []Point `json:"hazards"`
	Snakes  []Snake `json:"snakes"`
}

func toPoints(ps []Point) []geom.Point {
	out := make([]geom.Point, len(ps))
	for i, p := range ps {
		out[i] = p.ToGeom()
	}
	return out
}

// Request is the full decoded turn request handed to the decision core:
// board + game + turn + you, per spec.md §6.
type Request struct {
	Game  GameInfo `json:"game"`
	Turn  int      `json:"turn"`
	Board Board    `json:"board"`
	You   Snake    `json:"you"`
}

// ToGame materializes a game.Game from the request, with self as id 0 and
// at most three enemies retained (§4.2 construction rule).
func (r Request) ToGame() *game.Game {
	var others []game.SnakeInput
	for _, s := range r.Board.Snakes {
		if s.ID == r.You.ID {
			continue
		}
		others = append(others, s.ToSnakeInput())
	}
	g := game.NewFromRequest(r.Board.Width, r.Board.Height, r.You.ToSnakeInput(), others, toPoints(r.Board.Food), toPoints(r.Board.Hazards))
	g.Turn = r.Turn
	return g
}

// MoveResponse is the {move, shout} object returned from a /move call.
type MoveResponse struct {
	Move  string `json:"move"`
	Shout string `json:"shout,omitempty"`
}

// NewMoveResponse builds a MoveResponse from an engine direction.
func NewMoveResponse(d geom.Direction, shout string) MoveResponse {
	return MoveResponse{Move: d.String(), Shout: shout}
}

// IndexResponse is the battlesnake "/" customization payload.
type IndexResponse struct {
	APIVersion string `json:"apiversion"`
	Author     string `json:"author"`
	Color      string `json:"color"`
	Head       string `json:"head"`
	Tail       string `json:"tail"`
	Version    string `json:"version"`
}
