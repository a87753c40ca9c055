package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// EncodedImage is a PNG-encoded image ready for a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// ResizeToWidth scales img to width pixels wide, preserving aspect ratio.
// A non-positive width, or one equal to the current width, returns img as is.
func ResizeToWidth(img image.Image, width int) image.Image {
	if width <= 0 || width == img.Bounds().Dx() {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// CropAround extracts the region r grown by margin pixels on every side and
// clipped to the image bounds.
//
// Returns an error if the grown region does not intersect the image.
func CropAround(img image.Image, r image.Rectangle, margin int) (image.Image, error) {
	grown := image.Rect(r.Min.X-margin, r.Min.Y-margin, r.Max.X+margin, r.Max.Y+margin)
	clipped := grown.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", grown, img.Bounds())
	}
	return imaging.Crop(img, clipped), nil
}

// DisplayScale maps between image pixel coordinates and the coordinates of a
// scaled display canvas. A canvas 600 px wide showing a 3000 px photo has
// Factor 0.2.
type DisplayScale struct {
	Factor float64 `json:"factor"`
}

// NewDisplayScale returns the scale for showing an image imageWidth pixels wide
// on a canvas displayWidth pixels wide. A non-positive displayWidth means the
// canvas shows the image at full size.
func NewDisplayScale(imageWidth, displayWidth int) (DisplayScale, error) {
	if imageWidth <= 0 {
		return DisplayScale{}, fmt.Errorf("%w: image width %d", ErrInvalidImage, imageWidth)
	}
	if displayWidth <= 0 {
		return DisplayScale{Factor: 1}, nil
	}
	return DisplayScale{Factor: float64(displayWidth) / float64(imageWidth)}, nil
}

// ToImage converts canvas coordinates to image pixel coordinates.
func (s DisplayScale) ToImage(x, y float64) (float64, float64) {
	if s.Factor == 0 || math.IsNaN(s.Factor) {
		return x, y
	}
	return x / s.Factor, y / s.Factor
}

// ToDisplay converts image pixel coordinates to canvas coordinates.
func (s DisplayScale) ToDisplay(x, y float64) (float64, float64) {
	if s.Factor == 0 || math.IsNaN(s.Factor) {
		return x, y
	}
	return x * s.Factor, y * s.Factor
}
