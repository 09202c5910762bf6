// Package layout positions placeholder text on a canvas.
package layout

import "strings"

// Metrics measures text for one font.
type Metrics interface {
	MeasureString(text string) int
	LineHeight() int
}

// Line is one line of text with the top-left corner it is drawn at.
type Line struct {
	Text string
	X    float64
	Y    float64
}

type Result struct {
	Wrapped bool
	Lines   []Line
}

type Options struct {
	Wrap             bool
	WrapWidthPercent int
}

// Compute lays text out on a width x height canvas. Empty text yields no lines.
func Compute(text string, m Metrics, width, height int, opts Options) Result {
	if text == "" {
		return Result{Wrapped: opts.Wrap}
	}
	if !opts.Wrap {
		return Result{Lines: []Line{SingleLine(text, m, width, height)}}
	}

	maxWidth := width * opts.WrapWidthPercent / 100
	return Result{
		Wrapped: true,
		Lines:   Position(WrapText(text, m, maxWidth), m, width, height),
	}
}

// SingleLine centers text as one unwrapped line.
func SingleLine(text string, m Metrics, width, height int) Line {
	return Line{
		Text: text,
		X:    center(width, m.MeasureString(text)),
		Y:    center(height, m.LineHeight()),
	}
}

// WrapText greedily breaks text on single spaces into lines no wider than
// maxWidth. A word that alone exceeds maxWidth gets a line of its own.
func WrapText(text string, m Metrics, maxWidth int) []string {
	var lines []string
	current := ""

	for _, word := range strings.Split(text, " ") {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if m.MeasureString(candidate) <= maxWidth {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
			current = word
		} else {
			lines = append(lines, word)
		}
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// Position stacks lines as a vertically centered block, each line centered
// horizontally. Line spacing is 1.2x the font line height, floored.
func Position(lines []string, m Metrics, width, height int) []Line {
	lineHeight := m.LineHeight() * 12 / 10
	start := center(height, len(lines)*lineHeight)

	out := make([]Line, 0, len(lines))
	for i, text := range lines {
		out = append(out, Line{
			Text: text,
			X:    center(width, m.MeasureString(text)),
			Y:    max(0, start+float64(i*lineHeight)),
		})
	}
	return out
}

func center(outer, inner int) float64 {
	return max(0, float64(outer-inner)/2)
}
