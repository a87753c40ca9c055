package shots

import "fmt"

// Calibration converts pixel distances to millimetres.
//
// The scale is derived from the image width and the caller-supplied physical
// width of the photographed area. There is no automatic scale detection; the
// reference width is trusted as given.
type Calibration struct {
	ImageWidthPx     int     `json:"image_width_px"`
	ReferenceWidthMm float64 `json:"reference_width_mm"`
	PixelsPerMm      float64 `json:"pixels_per_mm"`
}

// NewCalibration returns the calibration for an image imageWidthPx pixels wide
// showing referenceWidthMm millimetres.
//
// Returns an error wrapping ErrInvalidConfig if the width is not positive or
// the reference width is outside (0, MaxReferenceWidthMm].
func NewCalibration(imageWidthPx int, referenceWidthMm float64) (Calibration, error) {
	if imageWidthPx <= 0 {
		return Calibration{}, fmt.Errorf("%w: image width %d px must be positive", ErrInvalidConfig, imageWidthPx)
	}
	if err := validateReferenceWidth(referenceWidthMm); err != nil {
		return Calibration{}, err
	}
	return Calibration{
		ImageWidthPx:     imageWidthPx,
		ReferenceWidthMm: referenceWidthMm,
		PixelsPerMm:      float64(imageWidthPx) / referenceWidthMm,
	}, nil
}

// ToMm converts a pixel length to millimetres.
func (c Calibration) ToMm(px float64) float64 {
	if c.PixelsPerMm == 0 {
		return 0
	}
	return px / c.PixelsPerMm
}

// ToPx converts a millimetre length to pixels.
func (c Calibration) ToPx(mm float64) float64 {
	return mm * c.PixelsPerMm
}
