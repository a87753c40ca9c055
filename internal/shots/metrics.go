package shots

import (
	"gonum.org/v1/gonum/stat"
)

// Segment is a straight line between two points.
type Segment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Length returns the segment length in pixels.
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// Metrics summarises a shot group.
//
// Metrics are always derived from a point set and a calibration by Compute;
// they are never edited directly.
type Metrics struct {
	// MeanPointOfImpact is the centroid of the shots. Nil when there are none.
	MeanPointOfImpact *Point `json:"mean_point_of_impact"`

	// MeanRadiusMm is the mean distance from each shot to the MPI.
	MeanRadiusMm float64 `json:"mean_radius_mm"`

	// ExtremeSpreadMm is the largest centre-to-centre distance between two shots.
	ExtremeSpreadMm float64 `json:"extreme_spread_mm"`

	// ShotCount is the number of shots in the group.
	ShotCount int `json:"shot_count"`

	// Spread holds the two farthest-apart shots. Nil for fewer than two shots.
	Spread *Segment `json:"spread,omitempty"`
}

// Compute derives group metrics from points using cal for millimetre output.
//
// # Definitions
//
//   - MPI: arithmetic mean of the coordinates; absent for an empty set.
//   - Mean radius: mean Euclidean distance from each point to the MPI; 0 for
//     fewer than two points.
//   - Extreme spread: maximum pairwise Euclidean distance; 0 for fewer than
//     two points.
//
// Geometry is planar. No lens or perspective correction is applied.
//
// # Performance
//
// Extreme spread compares every pair, O(n²). Shot groups are small (under a
// hundred shots), so this is never a bottleneck.
func Compute(points []Point, cal Calibration) Metrics {
	m := Metrics{ShotCount: len(points)}
	if len(points) == 0 {
		return m
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	mpi := Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
	m.MeanPointOfImpact = &mpi

	if len(points) < 2 {
		return m
	}

	radii := make([]float64, len(points))
	for i, p := range points {
		radii[i] = p.Distance(mpi)
	}
	m.MeanRadiusMm = cal.ToMm(stat.Mean(radii, nil))

	spread, ok := farthestPair(points)
	if ok {
		m.Spread = &spread
		m.ExtremeSpreadMm = cal.ToMm(spread.Length())
	}
	return m
}

// farthestPair returns the two points with the largest separation. The first
// pair found wins ties so results are stable for a given order.
func farthestPair(points []Point) (Segment, bool) {
	if len(points) < 2 {
		return Segment{}, false
	}
	best := Segment{A: points[0], B: points[1]}
	bestDist := best.Length()
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			d := points[i].Distance(points[j])
			if d > bestDist {
				bestDist = d
				best = Segment{A: points[i], B: points[j]}
			}
		}
	}
	return best, true
}
