// Package render draws terrain maps to a terminal, either as 24-bit ANSI
// background colors or as plain ASCII symbols.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
	"github.com/lawnchairsociety/terraingen/internal/wfc"
)

// Mode selects how cells are drawn.
type Mode string

const (
	ModeColor Mode = "color"
	ModeASCII Mode = "ascii"
)

// ParseMode accepts "color" or "ascii".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeColor, ModeASCII:
		return m, nil
	}
	return "", fmt.Errorf("render: unknown mode %q", s)
}

const (
	unresolvedSymbol = '?'
	ansiReset        = "\x1b[0m"
)

var symbols = map[terrain.Type]rune{
	terrain.Water:    '~',
	terrain.Beach:    '.',
	terrain.Grass:    '"',
	terrain.Mountain: '^',
}

// Symbol returns the ASCII glyph for t, or '?' for unknown types.
func Symbol(t terrain.Type) rune {
	if s, ok := symbols[t]; ok {
		return s
	}
	return unresolvedSymbol
}

// Header describes a generated map for the summary printed above it.
type Header struct {
	Strategy    string
	Seed        int64
	Attempts    int
	Backtracks  int
	Elapsed     time.Duration
	Fingerprint string
}

// Renderer writes maps to Out.
type Renderer struct {
	Out    io.Writer
	Mode   Mode
	Legend bool
}

// New returns a renderer with the legend enabled.
func New(out io.Writer, mode Mode) *Renderer {
	return &Renderer{Out: out, Mode: mode, Legend: true}
}

// cell is a map position that may not have a type yet.
type cell struct {
	t  terrain.Type
	ok bool
}

// RenderGrid draws a grid. Unresolved tiles are drawn as '?'.
func (r *Renderer) RenderGrid(g *wfc.Grid) error {
	rows := make([][]cell, g.Height)
	for y := range rows {
		rows[y] = make([]cell, g.Width)
		for x := range rows[y] {
			tile, err := g.Tile(x, y)
			if err != nil {
				return err
			}
			tt, ok := tile.Type()
			rows[y][x] = cell{t: tt, ok: ok}
		}
	}
	return r.render(rows)
}

// RenderTypes draws a fully resolved map given as rows.
func (r *Renderer) RenderTypes(types [][]terrain.Type) error {
	rows := make([][]cell, len(types))
	for y := range types {
		rows[y] = make([]cell, len(types[y]))
		for x, tt := range types[y] {
			rows[y][x] = cell{t: tt, ok: tt.Valid()}
		}
	}
	return r.render(rows)
}

// RenderHeader writes a one-block summary of how the map was made.
func (r *Renderer) RenderHeader(h Header) error {
	var output strings.Builder
	output.WriteString(fmt.Sprintf("Terrain (%s, seed %d)\n", h.Strategy, h.Seed))
	if h.Attempts > 0 {
		output.WriteString(fmt.Sprintf("Attempts: %d  Backtracks: %d  Time: %s\n",
			h.Attempts, h.Backtracks, h.Elapsed.Round(time.Millisecond)))
	}
	if h.Fingerprint != "" {
		output.WriteString(fmt.Sprintf("Fingerprint: %s\n", h.Fingerprint))
	}
	output.WriteString(strings.Repeat("=", 60) + "\n")
	_, err := io.WriteString(r.Out, output.String())
	return err
}

func (r *Renderer) render(rows [][]cell) error {
	var output strings.Builder
	counts := make(map[terrain.Type]int, terrain.Count)
	unresolved := 0

	for _, row := range rows {
		for _, c := range row {
			if c.ok {
				counts[c.t]++
			} else {
				unresolved++
			}
			r.writeCell(&output, c)
		}
		if r.Mode == ModeColor {
			output.WriteString(ansiReset)
		}
		output.WriteByte('\n')
	}

	if r.Legend {
		r.writeLegend(&output, counts, unresolved)
	}

	_, err := io.WriteString(r.Out, output.String())
	return err
}

func (r *Renderer) writeCell(output *strings.Builder, c cell) {
	if r.Mode != ModeColor {
		if c.ok {
			output.WriteRune(Symbol(c.t))
		} else {
			output.WriteRune(unresolvedSymbol)
		}
		return
	}

	if !c.ok {
		output.WriteString(ansiReset)
		output.WriteRune(unresolvedSymbol)
		output.WriteByte(' ')
		return
	}
	output.WriteString(background(terrain.ColorRGB(c.t)))
	output.WriteString("  ")
}

func background(c terrain.RGB) string {
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", c.R, c.G, c.B)
}

func (r *Renderer) writeLegend(output *strings.Builder, counts map[terrain.Type]int, unresolved int) {
	total := unresolved
	for _, n := range counts {
		total += n
	}

	output.WriteString("\nLegend:\n")
	for _, t := range terrain.All() {
		var swatch string
		if r.Mode == ModeColor {
			swatch = background(terrain.ColorRGB(t)) + "  " + ansiReset
		} else {
			swatch = "[" + string(Symbol(t)) + "]"
		}
		output.WriteString(fmt.Sprintf("  %s %-9s %6d  %s\n", swatch, t, counts[t], percent(counts[t], total)))
	}
	if unresolved > 0 {
		output.WriteString(fmt.Sprintf("  [%c] %-9s %6d  %s\n", unresolvedSymbol, "unknown", unresolved, percent(unresolved, total)))
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}
