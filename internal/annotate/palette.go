package annotate

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colours used for annotation.
type Palette struct {
	Shot   colorful.Color // ring around every shot
	MPI    colorful.Color // mean point of impact marker
	Spread colorful.Color // extreme-spread line and its label
	Label  colorful.Color // shot numbers
	Mask   colorful.Color // foreground tint in mask overlays
}

// DefaultPalette is green shots, a red MPI and a blue spread line.
var DefaultPalette = Palette{
	Shot:   mustHex("#2ecc40"),
	MPI:    mustHex("#ff2020"),
	Spread: mustHex("#1f6fff"),
	Label:  mustHex("#ffdc00"),
	Mask:   mustHex("#ff00ff"),
}

// ParsePalette builds a palette from "#rrggbb" strings. Empty strings keep
// the DefaultPalette colour.
func ParsePalette(shot, mpi, spread string) (Palette, error) {
	p := DefaultPalette
	for _, f := range []struct {
		hex string
		dst *colorful.Color
	}{
		{shot, &p.Shot},
		{mpi, &p.MPI},
		{spread, &p.Spread},
	} {
		if f.hex == "" {
			continue
		}
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("invalid colour %q: %w", f.hex, err)
		}
		*f.dst = c
	}
	return p, nil
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
