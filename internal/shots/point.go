package shots

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidPoint is returned for a shot position that is not finite or lies
// outside MaxCoordinatePx.
var ErrInvalidPoint = errors.New("invalid point")

// MaxCoordinatePx bounds the magnitude of a placed shot's coordinates. It is
// far beyond any photograph and keeps every metric finite.
const MaxCoordinatePx = 1e7

// Point is an impact position in image pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec returns the point as a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// FromVec converts a gonum vector back to a Point.
func FromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Distance returns the Euclidean distance to q in pixels.
func (p Point) Distance(q Point) float64 {
	return r2.Norm(r2.Sub(p.Vec(), q.Vec()))
}

// IsFinite reports whether both coordinates are real numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Validate returns an error wrapping ErrInvalidPoint unless p is finite and
// both coordinates are within ±MaxCoordinatePx.
func (p Point) Validate() error {
	if !p.IsFinite() {
		return fmt.Errorf("%w: (%g, %g) is not finite", ErrInvalidPoint, p.X, p.Y)
	}
	if math.Abs(p.X) > MaxCoordinatePx || math.Abs(p.Y) > MaxCoordinatePx {
		return fmt.Errorf("%w: (%g, %g) outside ±%g px", ErrInvalidPoint, p.X, p.Y, MaxCoordinatePx)
	}
	return nil
}
