// Package color assigns visually distinct palette colors to contributors.
package color

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is returned for identities that have no assignment.
const DefaultColor = "#666666"

// defaultColors is a 48-entry high-contrast palette ordered so that
// neighbouring entries differ strongly in hue.
var defaultColors = []string{
	"#f43d3d", "#b2e5df", "#c1380a", "#b2e5d8", "#f43daf", "#329966", "#f9a99e", "#658ccc",
	"#ad891e", "#b2b2e5", "#66c10a", "#e5b2df", "#4fc10a", "#e6a8ef", "#32993f", "#d79ef9",
	"#7f9932", "#983df4", "#659932", "#e5b2c1", "#99e532", "#f99ed7", "#8899e5", "#f4d73d",
	"#32c166", "#f93dd7", "#32e599", "#d7733d", "#0a99c1", "#f9d79e", "#e5323f", "#9ef9c1",
	"#7fc133", "#e599b2", "#66e532", "#b299e5", "#99b232", "#cc8865", "#329932", "#f4a83d",
	"#65b2cc", "#e532c1", "#b2e532", "#d79ec1", "#66cc32", "#e5c1b2", "#99cc65", "#f47f3d",
}

var hexPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// ErrEmptyPalette is returned when constructing a palette with no colors.
var ErrEmptyPalette = errors.New("palette must contain at least one color")

// RGB is a color in 8-bit-per-channel RGB space.
type RGB struct {
	R, G, B uint8
}

// Distance returns the Euclidean distance between two RGB colors.
func (c RGB) Distance(o RGB) float64 {
	dr := float64(c.R) - float64(o.R)
	dg := float64(c.G) - float64(o.G)
	db := float64(c.B) - float64(o.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// ParseHex parses "#rrggbb" or "rrggbb" (case-insensitive).
// The second return value is false for anything else.
func ParseHex(s string) (RGB, bool) {
	if !hexPattern.MatchString(s) {
		return RGB{}, false
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, false
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, true
}

// Distance returns the Euclidean RGB distance between two hex colors.
// Unparseable input on either side counts as distance 0.
func Distance(c1, c2 string) float64 {
	a, ok := ParseHex(c1)
	if !ok {
		return 0
	}
	b, ok := ParseHex(c2)
	if !ok {
		return 0
	}
	return a.Distance(b)
}

// Palette is a fixed, ordered set of colors. It is never mutated after
// construction and is safe for concurrent use.
type Palette struct {
	colors []string
	rgb    []RGB
	valid  []bool
}

// NewPalette builds a palette from hex color strings. Malformed entries
// are kept (they can still be assigned) but measure as distance 0.
func NewPalette(colors ...string) (Palette, error) {
	if len(colors) == 0 {
		return Palette{}, ErrEmptyPalette
	}

	p := Palette{
		colors: make([]string, len(colors)),
		rgb:    make([]RGB, len(colors)),
		valid:  make([]bool, len(colors)),
	}
	copy(p.colors, colors)
	for i, c := range colors {
		p.rgb[i], p.valid[i] = ParseHex(c)
	}
	return p, nil
}

// DefaultPalette returns the built-in 48-color palette.
func DefaultPalette() Palette {
	p, _ := NewPalette(defaultColors...)
	return p
}

// Len returns the number of colors.
func (p Palette) Len() int {
	return len(p.colors)
}

// At returns the i-th color.
func (p Palette) At(i int) string {
	return p.colors[i]
}

// Colors returns a copy of the palette colors in order.
func (p Palette) Colors() []string {
	out := make([]string, len(p.colors))
	copy(out, p.colors)
	return out
}

// Contains reports whether c is one of the palette colors (exact match).
func (p Palette) Contains(c string) bool {
	for _, pc := range p.colors {
		if pc == c {
			return true
		}
	}
	return false
}

// parsedColor is the parse result of one color string.
type parsedColor struct {
	rgb RGB
	ok  bool
}

func parseAll(colors []string) []parsedColor {
	out := make([]parsedColor, len(colors))
	for i, c := range colors {
		out[i].rgb, out[i].ok = ParseHex(c)
	}
	return out
}

// minDistance returns the smallest distance from palette entry i to any of
// the given colors.
func (p Palette) minDistance(i int, assigned []parsedColor) float64 {
	nearest := math.Inf(1)
	for _, a := range assigned {
		var d float64
		if p.valid[i] && a.ok {
			d = p.rgb[i].Distance(a.rgb)
		}
		if d < nearest {
			nearest = d
		}
	}
	return nearest
}
