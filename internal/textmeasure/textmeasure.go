// Package textmeasure estimates the pixel bounding box of a node or edge
// label for the Inflator+Grower (spec §4.7 step 2) and the Assembler's
// final canvas bounds (spec §4.10). It is the module's equivalent of the
// teacher's externally-vendored lib/textmeasure: a real font-metrics path
// built on github.com/golang/freetype + golang.org/x/image/font, with the
// specification's crude 8·max_line_length/18·lines heuristic kept as the
// deterministic fallback when no font has been loaded (e.g. under test).
package textmeasure

import (
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Ruler measures label text. The zero value is valid and uses the
// heuristic measurement; call LoadFont to switch to glyph-accurate
// measurement.
type Ruler struct {
	charWidth  float64
	lineHeight float64
	face       font.Face
}

// New returns a Ruler using the given heuristic constants as its fallback
// (and default, until/unless a font is loaded).
func New(charWidth, lineHeight float64) *Ruler {
	return &Ruler{charWidth: charWidth, lineHeight: lineHeight}
}

// LoadFont switches the Ruler to glyph-accurate measurement using the given
// TrueType font data at the given point size. A failure leaves the Ruler on
// its heuristic fallback.
func (r *Ruler) LoadFont(data []byte, points float64) error {
	f, err := truetype.Parse(data)
	if err != nil {
		return err
	}
	r.face = truetype.NewFace(f, &truetype.Options{Size: points})
	return nil
}

// Lines splits a label into its rendered plain-text lines. If label parses
// as inline markdown, goldmark's AST is walked to recover plain text per
// block (never rendered to HTML); otherwise the label is split on literal
// newlines, matching the spec's "supports \n" wording.
func Lines(label string) []string {
	if label == "" {
		return nil
	}
	if !looksLikeMarkdown(label) {
		return strings.Split(label, "\n")
	}

	md := goldmark.New()
	reader := text.NewReader([]byte(label))
	doc := md.Parser().Parse(reader)

	var lines []string
	src := []byte(label)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindParagraph, ast.KindHeading, ast.KindTextBlock:
			var sb strings.Builder
			_ = ast.Walk(n, func(c ast.Node, in bool) (ast.WalkStatus, error) {
				if t, ok := c.(*ast.Text); ok && in {
					sb.Write(t.Segment.Value(src))
				}
				return ast.WalkContinue, nil
			})
			if sb.Len() > 0 {
				lines = append(lines, sb.String())
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if len(lines) == 0 {
		return strings.Split(label, "\n")
	}
	return lines
}

func looksLikeMarkdown(s string) bool {
	return strings.Contains(s, "**") || strings.Contains(s, "`") ||
		strings.Contains(s, "](") || strings.HasPrefix(strings.TrimSpace(s), "#")
}

// Measure returns the pixel width and height of label's bounding box.
func (r *Ruler) Measure(label string) (width, height float64) {
	lines := Lines(label)
	if len(lines) == 0 {
		return 0, 0
	}

	lineHeight := r.lineHeight
	if lineHeight == 0 {
		lineHeight = 18
	}
	height = float64(len(lines)) * lineHeight

	if r.face == nil {
		maxLen := 0
		for _, l := range lines {
			if len(l) > maxLen {
				maxLen = len(l)
			}
		}
		charWidth := r.charWidth
		if charWidth == 0 {
			charWidth = 8
		}
		return float64(maxLen) * charWidth, height
	}

	var maxW fixed.Int26_6
	for _, l := range lines {
		w := font.MeasureString(r.face, l)
		if w > maxW {
			maxW = w
		}
	}
	return float64(maxW) / 64.0, height
}
