package annotate

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ironsheep/shot-group-mcp/internal/imaging"
	"github.com/ironsheep/shot-group-mcp/internal/shots"
)

// Options controls annotation style. Zero fields are derived from the image
// size, so the zero value is usable.
type Options struct {
	// ShotRadius is the radius of the ring drawn around each shot, in pixels.
	ShotRadius float64

	// LineWidth is the stroke width in pixels.
	LineWidth float64

	// FontSize is the label size in points.
	FontSize float64

	// NumberShots draws each shot's 1-based position next to it.
	NumberShots bool

	// Palette overrides DefaultPalette when non-nil.
	Palette *Palette
}

// withDefaults fills zero fields for an image width pixels wide. A 3000 px
// photograph gets 30 px rings, 4 px lines and 48 pt labels.
func (o Options) withDefaults(width int) Options {
	scale := float64(width) / 100
	if o.ShotRadius <= 0 {
		o.ShotRadius = math.Max(6, scale)
	}
	if o.LineWidth <= 0 {
		o.LineWidth = math.Max(1.5, scale/7.5)
	}
	if o.FontSize <= 0 {
		o.FontSize = math.Max(12, scale*8/5)
	}
	if o.Palette == nil {
		o.Palette = &DefaultPalette
	}
	return o
}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func labelFont(size float64) (text.Face, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to load label font: %w", fontErr)
	}
	return fontSource.Face(size), nil
}

// Annotate draws a shot group onto a copy of img.
//
// Parameters:
//   - img: The original photograph. It is not modified.
//   - points: Shot centres in image pixel coordinates.
//   - m: Metrics computed from points.
//   - opts: Style; the zero value picks sizes from the image width.
//
// Returns a new RGBA image the size of img with:
//   - a ring around every shot (numbered when opts.NumberShots is set)
//   - a filled cross-hair marker at the mean point of impact, if any
//   - a line between the two farthest shots labelled with the extreme
//     spread in millimetres, if there are at least two shots
//
// # Errors
//
// Returns an error wrapping imaging.ErrInvalidImage for an unusable image,
// or an error if the label font cannot be loaded or a path fails to render.
func Annotate(img image.Image, points []shots.Point, m shots.Metrics, opts Options) (*image.RGBA, error) {
	if err := imaging.Validate(img); err != nil {
		return nil, err
	}
	origin := img.Bounds().Min
	opts = opts.withDefaults(img.Bounds().Dx())
	pal := opts.Palette

	dc := gg.NewContextForImage(img)
	defer dc.Close()

	face, err := labelFont(opts.FontSize)
	if err != nil {
		return nil, err
	}
	dc.SetFont(face)
	dc.SetLineWidth(opts.LineWidth)

	// gg draws in a canvas whose origin is the image's top-left corner.
	local := func(p shots.Point) (float64, float64) {
		return p.X - float64(origin.X), p.Y - float64(origin.Y)
	}

	var errs []error

	if m.Spread != nil && len(points) >= 2 {
		ax, ay := local(m.Spread.A)
		bx, by := local(m.Spread.B)
		dc.SetColor(pal.Spread)
		dc.DrawLine(ax, ay, bx, by)
		errs = append(errs, dc.Stroke())

		label := fmt.Sprintf("%.1f mm", m.ExtremeSpreadMm)
		dc.DrawStringAnchored(label, (ax+bx)/2, (ay+by)/2-opts.ShotRadius, 0.5, 0)
	}

	dc.SetColor(pal.Shot)
	for _, p := range points {
		x, y := local(p)
		dc.DrawCircle(x, y, opts.ShotRadius)
		errs = append(errs, dc.Stroke())
	}

	if opts.NumberShots {
		dc.SetColor(pal.Label)
		for i, p := range points {
			x, y := local(p)
			dc.DrawString(strconv.Itoa(i+1), x+opts.ShotRadius, y-opts.ShotRadius)
		}
	}

	if mpi := m.MeanPointOfImpact; mpi != nil {
		x, y := local(*mpi)
		r := opts.ShotRadius / 2
		dc.SetColor(pal.MPI)
		dc.DrawCircle(x, y, r)
		errs = append(errs, dc.Fill())
		dc.DrawLine(x-2*r, y, x+2*r, y)
		dc.DrawLine(x, y-2*r, x, y+2*r)
		errs = append(errs, dc.Stroke())
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to render annotation: %w", err)
	}

	rendered := dc.Image()
	out, ok := rendered.(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("unexpected canvas type %T", rendered)
	}
	return out, nil
}

// GroupBounds returns the smallest rectangle containing every point, grown by
// margin pixels. It returns the empty rectangle for no points.
func GroupBounds(points []shots.Point, margin int) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(
		int(math.Floor(minX))-margin,
		int(math.Floor(minY))-margin,
		int(math.Ceil(maxX))+margin+1,
		int(math.Ceil(maxY))+margin+1,
	)
}
