package l5scene

import (
	"fmt"
	"image/color"

	"github.com/banshee-data/handvox/internal/config"
)

// Palette is a fixed ordered set of colors with a cursor that wraps.
type Palette struct {
	colors []color.RGBA
	index  int
}

// NewPalette copies colors into a palette positioned at index 0.
func NewPalette(colors []color.RGBA) (Palette, error) {
	if len(colors) == 0 {
		return Palette{}, fmt.Errorf("%w: palette must not be empty", config.ErrInvalidConfig)
	}
	return Palette{colors: append([]color.RGBA(nil), colors...)}, nil
}

func (p Palette) Len() int   { return len(p.colors) }
func (p Palette) Index() int { return p.index }

// Current returns the active color.
func (p Palette) Current() color.RGBA { return p.colors[p.index] }

// Color returns the color at i, or transparent black when out of range.
func (p Palette) Color(i int) color.RGBA {
	if i < 0 || i >= len(p.colors) {
		return color.RGBA{}
	}
	return p.colors[i]
}

// Colors returns a copy of the palette entries.
func (p Palette) Colors() []color.RGBA {
	return append([]color.RGBA(nil), p.colors...)
}

// next returns the index one step ahead, wrapping.
func (p Palette) next() int {
	return (p.index + 1) % len(p.colors)
}
