package detection

import (
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/shot-group-mcp/internal/imaging"
)

const (
	// morphRadius is the radius of the structuring element used for the
	// opening. bild treats radius 1 as the 3x3 neighbourhood.
	morphRadius = 1.0

	// openingIterations is the number of erosions, followed by the same number
	// of dilations. Two passes remove foreground features narrower than
	// roughly five pixels.
	openingIterations = 2

	// maskOn is the level a mask pixel must exceed to count as foreground.
	maskOn = 127
)

// Mask is a binary foreground map. True marks a dark (hole) pixel.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// At reports whether (x, y) is foreground. Out-of-range coordinates are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, on := range m.Pix {
		if on {
			n++
		}
	}
	return n
}

// Gray renders the mask with foreground white and background black, the
// conventional debug view of a thresholded image.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, on := range m.Pix {
		if on {
			g.Pix[i] = 255
		}
	}
	return g
}

// Segment thresholds im at sensitivity and cleans the result with a
// morphological opening.
//
// Parameters:
//   - im: Preprocessed intensity map.
//   - sensitivity: Intensity level 0..255. Pixels strictly darker than this
//     become foreground, so 0 yields an empty mask.
//
// Returns a new Mask with the same dimensions as im. im is not modified.
//
// # Algorithm
//
//  1. Pixels with intensity < sensitivity become white foreground, the rest
//     black. The comparison is made on the map's integer levels so a pixel
//     exactly at sensitivity is always background.
//  2. openingIterations rounds of effect.Erode, then the same of
//     effect.Dilate, remove specks and thin strokes while keeping blobs
//     close to their original shape.
func Segment(im *imaging.IntensityMap, sensitivity int) *Mask {
	fg := image.NewGray(image.Rect(0, 0, im.Width, im.Height))
	for i, v := range im.Pix {
		if int(v) < sensitivity {
			fg.Pix[i] = 255
		}
	}

	cleaned := effect.Erode(fg, morphRadius)
	for i := 1; i < openingIterations; i++ {
		cleaned = effect.Erode(cleaned, morphRadius)
	}
	for i := 0; i < openingIterations; i++ {
		cleaned = effect.Dilate(cleaned, morphRadius)
	}

	m := &Mask{
		Width:  im.Width,
		Height: im.Height,
		Pix:    make([]bool, im.Area()),
	}
	for y := 0; y < im.Height; y++ {
		row := cleaned.Pix[y*cleaned.Stride:]
		for x := 0; x < im.Width; x++ {
			m.Pix[y*im.Width+x] = row[x*4] > maskOn
		}
	}
	return m
}
