package detection

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// toVecs converts integer pixel coordinates to vectors.
func toVecs(pts []image.Point) []r2.Vec {
	vs := make([]r2.Vec, len(pts))
	for i, p := range pts {
		vs[i] = r2.Vec{X: float64(p.X), Y: float64(p.Y)}
	}
	return vs
}

// cross returns the z component of (a-o)×(b-o). Positive when o→a→b turns
// counter-clockwise in a Y-up frame.
func cross(o, a, b r2.Vec) float64 {
	return r2.Cross(r2.Sub(a, o), r2.Sub(b, o))
}

// signedArea is the shoelace area of the closed polygon poly. The sign
// depends on the winding order.
func signedArea(poly []r2.Vec) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// polygonArea is the unsigned shoelace area of poly.
func polygonArea(poly []r2.Vec) float64 {
	return math.Abs(signedArea(poly))
}

// perimeter is the length of the closed polyline through poly.
func perimeter(poly []r2.Vec) float64 {
	if len(poly) < 2 {
		return 0
	}
	var sum float64
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += r2.Norm(r2.Sub(poly[j], poly[i]))
	}
	return sum
}

// centroid returns the area-weighted centroid of the closed polygon poly.
// For a polygon of zero area it falls back to the vertex mean.
func centroid(poly []r2.Vec) r2.Vec {
	a := signedArea(poly)
	if a == 0 {
		var sum r2.Vec
		for _, p := range poly {
			sum = r2.Add(sum, p)
		}
		if len(poly) == 0 {
			return sum
		}
		return r2.Scale(1/float64(len(poly)), sum)
	}

	var cx, cy float64
	for i := range poly {
		j := (i + 1) % len(poly)
		f := poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
		cx += (poly[i].X + poly[j].X) * f
		cy += (poly[i].Y + poly[j].Y) * f
	}
	return r2.Vec{X: cx / (6 * a), Y: cy / (6 * a)}
}

// convexHull returns the convex hull of pts using Andrew's monotone chain.
// Collinear points are dropped. Fewer than three distinct input points yield
// those points unchanged.
func convexHull(pts []r2.Vec) []r2.Vec {
	sorted := make([]r2.Vec, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	// Remove duplicates; contours revisit pixels on thin necks.
	unique := sorted[:0]
	for _, p := range sorted {
		if len(unique) == 0 || p != unique[len(unique)-1] {
			unique = append(unique, p)
		}
	}
	if len(unique) < 3 {
		return unique
	}

	hull := make([]r2.Vec, 0, 2*len(unique))

	// Lower hull
	for _, p := range unique {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Upper hull
	lower := len(hull) + 1
	for i := len(unique) - 2; i >= 0; i-- {
		p := unique[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull[:len(hull)-1]
}
