package pdf

import (
	"strings"

	"office-translator/internal/sanitize"
)

// Geometry fixes the page dimensions and type parameters for layout and
// rendering. All values are in points.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	FontSize   float64
}

// A4Geometry is the layout used for all generated documents: portrait A4
// with a 50pt margin and 12pt type.
func A4Geometry() Geometry {
	return Geometry{
		PageWidth:  595.28,
		PageHeight: 841.89,
		Margin:     50,
		FontSize:   12,
	}
}

// lineHeight is the vertical advance of a wrapped line.
func (g Geometry) lineHeight() float64 { return g.FontSize + 5 }

// paragraphGap is the vertical advance after the last line of a source
// line, and for blank source lines.
func (g Geometry) paragraphGap() float64 { return g.FontSize + 10 }

func (g Geometry) maxLineWidth() float64 { return g.PageWidth - 2*g.Margin }

// Metrics measures rendered string widths at the configured font and
// size. An error marks the string as unmeasurable; layout then routes
// around the failing word instead of aborting.
type Metrics interface {
	TextWidth(s string) (float64, error)
}

// TextOp is one drawing instruction: the string to draw with its baseline
// position. Y counts up from the page bottom; pages are zero-based and
// appear in non-decreasing order in the op sequence.
type TextOp struct {
	Page int
	X    float64
	Y    float64
	Text string
}

// PageCount returns the number of pages the ops span. An empty layout
// still occupies one blank page.
func PageCount(ops []TextOp) int {
	if len(ops) == 0 {
		return 1
	}
	return ops[len(ops)-1].Page + 1
}

// Layout flows text onto fixed-size pages with a greedy word wrap.
//
// Each newline-delimited source line is wrapped independently: words
// accumulate into a candidate line until adding the next word would
// exceed the usable width, then the accumulated line is flushed at the
// cursor and the overflowing word starts the next accumulation. A word
// wider than a whole line is flushed on its own, overflowing the right
// margin rather than being dropped. The cursor starts one margin below
// the page top and decreases; whenever it comes within one line height
// of the bottom margin a new page begins.
//
// The wrap is single pass: drawn lines are never re-flowed, nothing is
// hyphenated, and every word of the input appears in exactly one op.
func Layout(text string, m Metrics, geo Geometry) []TextOp {
	var ops []TextOp
	page := 0
	y := geo.PageHeight - geo.Margin

	breakPage := func() {
		if y < geo.Margin+geo.lineHeight() {
			page++
			y = geo.PageHeight - geo.Margin
		}
	}
	flush := func(line string, advance float64) {
		ops = append(ops, TextOp{Page: page, X: geo.Margin, Y: y, Text: sanitize.Sanitize(line)})
		y -= advance
		breakPage()
	}

	for _, src := range strings.Split(text, "\n") {
		breakPage()

		words := strings.Fields(src)
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}

			width, err := m.TextWidth(candidate)
			if err != nil {
				// Unmeasurable glyph somewhere in the candidate. Flush
				// what already fits and carry the word unmeasured; it is
				// flushed alone on the next overflow or at line end.
				if current != "" {
					flush(current, geo.lineHeight())
				}
				current = word
				continue
			}

			if width <= geo.maxLineWidth() || current == "" {
				current = candidate
				continue
			}
			flush(current, geo.lineHeight())
			current = word
		}

		if current != "" {
			flush(current, geo.paragraphGap())
		} else {
			y -= geo.paragraphGap()
		}
	}
	return ops
}
