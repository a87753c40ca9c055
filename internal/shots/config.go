package shots

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when a detection configuration or a
// calibration input falls outside its declared bounds.
var ErrInvalidConfig = errors.New("invalid config")

// Configuration bounds.
const (
	MinSensitivity = 0
	MaxSensitivity = 255

	MinAreaLowerBound = 1.0
	MinAreaUpperBound = 100000.0

	MaxReferenceWidthMm = 100000.0
)

// Defaults taken from the usual photo of an A4 target: a dark-hole threshold
// at 60% of full scale, holes of at least 50 px², and a 210 mm wide frame.
const (
	DefaultSensitivity      = 155
	DefaultMinAreaPx        = 50.0
	DefaultReferenceWidthMm = 210.0
)

// Config controls candidate detection and calibration.
//
// A Config is validated once by NewConfig. The zero value is not valid; use
// DefaultConfig or NewConfig.
type Config struct {
	// Sensitivity is the darkness threshold: a pixel is a hole pixel iff its
	// blurred intensity is strictly below Sensitivity. Range 0-255.
	Sensitivity int `json:"sensitivity"`

	// MinAreaPx is the smallest blob area, in square pixels, accepted as a hole.
	MinAreaPx float64 `json:"min_area_px"`

	// ReferenceWidthMm is the physical width of the photographed area.
	ReferenceWidthMm float64 `json:"reference_width_mm"`
}

// DefaultConfig returns the configuration used when the caller supplies none.
func DefaultConfig() Config {
	return Config{
		Sensitivity:      DefaultSensitivity,
		MinAreaPx:        DefaultMinAreaPx,
		ReferenceWidthMm: DefaultReferenceWidthMm,
	}
}

// NewConfig validates and returns a Config. Nothing is partially applied: on
// error the returned Config is the zero value.
func NewConfig(sensitivity int, minAreaPx, referenceWidthMm float64) (Config, error) {
	c := Config{
		Sensitivity:      sensitivity,
		MinAreaPx:        minAreaPx,
		ReferenceWidthMm: referenceWidthMm,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every bound and returns an error wrapping ErrInvalidConfig
// naming the first field out of range. Values decoded from outside (JSON) are
// checked with it once, at the entry point.
func (c Config) Validate() error {
	if c.Sensitivity < MinSensitivity || c.Sensitivity > MaxSensitivity {
		return fmt.Errorf("%w: sensitivity %d outside [%d, %d]", ErrInvalidConfig, c.Sensitivity, MinSensitivity, MaxSensitivity)
	}
	if math.IsNaN(c.MinAreaPx) || c.MinAreaPx < MinAreaLowerBound || c.MinAreaPx > MinAreaUpperBound {
		return fmt.Errorf("%w: min area %g px outside [%g, %g]", ErrInvalidConfig, c.MinAreaPx, MinAreaLowerBound, MinAreaUpperBound)
	}
	if err := validateReferenceWidth(c.ReferenceWidthMm); err != nil {
		return err
	}
	return nil
}

func validateReferenceWidth(mm float64) error {
	if math.IsNaN(mm) || mm <= 0 || mm > MaxReferenceWidthMm {
		return fmt.Errorf("%w: reference width %g mm must be in (0, %g]", ErrInvalidConfig, mm, MaxReferenceWidthMm)
	}
	return nil
}
