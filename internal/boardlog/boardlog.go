// Package boardlog provides the ambient structured-logging handler and the
// ASCII board renderer used for debugging turns and post-game summaries,
// grounded on the teacher's GoogleCloudHandler (cloud.go) and
// visualizeBoard (visuals.go), generalized away from the teacher's GCP
// deployment target since this repo has none.
package boardlog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/brensch/battlesnake-engine/internal/game"
	"github.com/brensch/battlesnake-engine/internal/geom"
	"github.com/brensch/battlesnake-engine/internal/grid"
)

// Handler is a minimal structured JSON-lines slog.Handler: one flat object
// per record with a "time"/"level"/"msg" triplet plus every attribute,
// adapted from the teacher's GoogleCloudHandler but without the Cloud
// Logging "severity" field naming, since nothing here ships to GCP.
type Handler struct {
	writer io.Writer
	level  slog.Level
	attrs  map[string]interface{}
}

// NewHandler builds a Handler writing newline-delimited JSON to w at or
// above the given level.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{writer: w, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	entry := map[string]interface{}{
		"time":  time.Now().Format(time.RFC3339Nano),
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for k, v := range h.attrs {
		entry[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.writer).Encode(entry)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make(map[string]interface{}, len(h.attrs)+len(attrs))
	for k, v := range h.attrs {
		next.attrs[k] = v
	}
	for _, a := range attrs {
		next.attrs[a.Key] = a.Value.Any()
	}
	return &next
}

func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

// RenderBoard draws an ASCII snapshot of g: '.' free, 'x' the outer
// boundary, '♥' food, 'H' hazard, an uppercase letter for each living
// snake's head and the matching lowercase letter for its body, 'a'
// corresponding to snake id 0. Grounded on visualizeBoard in visuals.go,
// simplified to the subset this engine's Game type can express.
func RenderBoard(g *game.Game) string {
	w, h := g.Grid.Width, g.Grid.Height
	extW, extH := w+2, h+2

	board := make([][]rune, extH)
	for i := range board {
		board[i] = make([]rune, extW)
		for j := range board[i] {
			if i == 0 || i == extH-1 || j == 0 || j == extW-1 {
				board[i][j] = 'x'
			} else {
				board[i][j] = '.'
			}
		}
	}

	rowFor := func(y int) int { return extH - 1 - (y + 1) }

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := geom.Point{X: x, Y: y}
			cell := g.Grid.At(p)
			row := rowFor(y)
			switch {
			case cell.Tag == grid.Food:
				board[row][x+1] = '♥'
			case cell.Hazard:
				board[row][x+1] = 'H'
			}
		}
	}

	for _, s := range g.Snakes {
		if !s.Alive() {
			continue
		}
		ch := rune('a' + s.ID)
		if ch > 'z' {
			ch = '?'
		}
		head := s.Head()
		board[rowFor(head.Y)][head.X+1] = unicode.ToUpper(ch)
		for _, p := range s.Body[:len(s.Body)-1] {
			board[rowFor(p.Y)][p.X+1] = ch
		}
	}

	var sb strings.Builder
	for _, row := range board {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
