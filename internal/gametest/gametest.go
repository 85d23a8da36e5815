// Package gametest is a test-only ASCII-board-to-game.Game parser, used to
// write readable multi-snake scenarios instead of hand-built
// `Snake{Body: []geom.Point{...}}` literals. Grounded on the directional
// mini-DSL in original_source's floodfill.rs tests (`Game::parse`): each
// snake is drawn as a chain of arrow glyphs pointing from a body segment
// toward its head-ward neighbor, terminating at a digit marking the head.
package gametest

import (
	"fmt"
	"strings"

	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
)

// Parse builds a *game.Game from an ASCII board. Each row is a line of
// whitespace-separated tokens; the first non-blank line is the topmost
// (highest-Y) row. Recognized tokens:
//
//	.       free cell
//	x       food
//	H       hazard (free, but damaging to cross)
//	0-9     a snake head, tagged with that snake's ID
//	^ v < > a body segment, pointing toward its head-ward neighbor
//
// Health defaults to 100 for every parsed snake.
func Parse(board string) (*game.Game, error) {
	rows := rowsOf(board)
	if len(rows) == 0 {
		return nil, fmt.Errorf("gametest: empty board")
	}
	height := len(rows)
	width := len(rows[0])

	arrows := make(map[geom.Point]geom.Direction)
	heads := make(map[int]geom.Point)
	var food, hazards []geom.Point

	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("gametest: row %d has %d tokens, want %d", i, len(row), width)
		}
		y := height - 1 - i
		for x, tok := range row {
			p := geom.Point{X: x, Y: y}

			switch tok {
			case ".":
			case "x":
				food = append(food, p)
			case "H":
				hazards = append(hazards, p)
			case "^":
				arrows[p] = geom.Up
			case "v":
				arrows[p] = geom.Down
			case "<":
				arrows[p] = geom.Left
			case ">":
				arrows[p] = geom.Right
			default:
				var id int
				if _, err := fmt.Sscanf(tok, "%d", &id); err != nil {
					return nil, fmt.Errorf("gametest: unrecognized token %q at row %d", tok, i)
				}
				if _, dup := heads[id]; dup {
					return nil, fmt.Errorf("gametest: duplicate head for snake %d", id)
				}
				heads[id] = p
			}
		}
	}

	// Reverse-index arrow cells by the neighbor they point to, so each
	// chain can be walked head-outward one link at a time.
	pointsTo := make(map[geom.Point]geom.Point, len(arrows))
	for p, d := range arrows {
		pointsTo[p.Add(d)] = p
	}

	snakes := make([]*game.Snake, 0, len(heads))
	for id := 0; id < len(heads); id++ {
		head, ok := heads[id]
		if !ok {
			return nil, fmt.Errorf("gametest: snake ids must be contiguous from 0, missing %d", id)
		}
		body := []geom.Point{head}
		cur := head
		for {
			next, ok := pointsTo[cur]
			if !ok {
				break
			}
			body = append(body, next)
			cur = next
		}
		// body is head-first (the order the chain was walked); game.Snake
		// expects tail-first with the head as the last element.
		for i, j := 0, len(body)-1; i < j; i, j = i+1, j-1 {
			body[i], body[j] = body[j], body[i]
		}
		snakes = append(snakes, &game.Snake{ID: id, Body: body, Health: 100})
	}

	g := game.New(width, height)
	g.Reset(snakes, food, hazards)
	return g, nil
}

// rowsOf splits board into non-blank, whitespace-tokenized rows.
func rowsOf(board string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(board, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}
	return rows
}
