package annotate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/shot-group-mcp/internal/detection"
	"github.com/ironsheep/shot-group-mcp/internal/imaging"
)

// DefaultMaskOpacity is how strongly MaskOverlay tints foreground pixels.
const DefaultMaskOpacity = 0.6

// MaskView renders the detector's cleaned binary mask: hole pixels white,
// everything else black.
func MaskView(m *detection.Mask) (*image.Gray, error) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("%w: empty mask", imaging.ErrInvalidImage)
	}
	return m.Gray(), nil
}

// MaskOverlay tints the foreground pixels of m on a copy of img, showing
// which parts of the photograph the detector considered dark.
//
// Parameters:
//   - img: The original photograph, same size as m. It is not modified.
//   - m: Cleaned mask from the detection pass on img.
//   - tint: Overlay colour, usually Palette.Mask.
//   - opacity: 0 leaves pixels unchanged, 1 paints them solid tint.
//     Values outside [0, 1] are clamped.
func MaskOverlay(img image.Image, m *detection.Mask, tint colorful.Color, opacity float64) (*image.RGBA, error) {
	if err := imaging.Validate(img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if m == nil || m.Width != b.Dx() || m.Height != b.Dy() {
		return nil, fmt.Errorf("mask does not match image size %dx%d", b.Dx(), b.Dy())
	}
	opacity = min(max(opacity, 0), 1)

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			src := img.At(b.Min.X+x, b.Min.Y+y)
			if !m.At(x, y) {
				out.Set(x, y, src)
				continue
			}
			c, _ := colorful.MakeColor(src)
			r, g, bl := c.BlendRgb(tint, opacity).Clamped().RGB255()
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: bl, A: 255})
		}
	}
	return out, nil
}
