package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// BlurRadius is the radius of the Gaussian denoising kernel. bild builds a
// kernel 2*radius+1 wide, so 4 gives a fixed 9x9 kernel regardless of image
// resolution: wide enough to flatten paper texture, narrow enough to keep a
// bullet hole's dark core.
const BlurRadius = 4.0

// IntensityMap is a single-channel, row-major map of 8-bit intensities.
// 0 is black, 255 is white. Coordinates are 0-based with origin top-left.
type IntensityMap struct {
	Width  int
	Height int
	Pix    []uint8
}

// At returns the intensity at (x, y). No bounds checking is performed.
func (m *IntensityMap) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// Area returns Width*Height.
func (m *IntensityMap) Area() int {
	return m.Width * m.Height
}

// Gray returns the map as an *image.Gray sharing no memory with m.
func (m *IntensityMap) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(g.Pix, m.Pix)
	return g
}

// Preprocess converts a raster image into a denoised intensity map.
//
// Parameters:
//   - img: Source image, grayscale or colour, any size of at least 1x1.
//
// Returns:
//   - *IntensityMap: Blurred luminance, same dimensions as img, origin
//     shifted to (0, 0).
//   - error: Wraps ErrInvalidImage if img is nil or has a zero dimension.
//
// # Algorithm
//
//  1. Grayscale: luminance via disintegration/imaging (Rec. 601 weights).
//  2. Gaussian blur: bild's 9x9 kernel (BlurRadius 4).
//
// The transform is pure: img is never modified.
func Preprocess(img image.Image) (*IntensityMap, error) {
	if err := Validate(img); err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(img)
	blurred := blur.Gaussian(gray, BlurRadius)

	bounds := blurred.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	m := &IntensityMap{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}

	// Grayscale output has R == G == B, so the red channel is the intensity.
	for y := 0; y < height; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < width; x++ {
			m.Pix[y*width+x] = row[x*4]
		}
	}

	return m, nil
}
