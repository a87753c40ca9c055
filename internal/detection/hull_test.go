package detection

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"
)

func vecs(xy ...float64) []r2.Vec {
	vs := make([]r2.Vec, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		vs = append(vs, r2.Vec{X: xy[i], Y: xy[i+1]})
	}
	return vs
}

func TestConvexHull(t *testing.T) {
	tests := []struct {
		name string
		in   []r2.Vec
		want []r2.Vec
	}{
		{
			name: "square with interior points",
			in:   vecs(0, 0, 4, 0, 2, 2, 4, 4, 1, 3, 0, 4),
			want: vecs(0, 0, 4, 0, 4, 4, 0, 4),
		},
		{
			name: "collinear edge points dropped",
			in:   vecs(0, 0, 2, 0, 4, 0, 4, 4, 0, 4),
			want: vecs(0, 0, 4, 0, 4, 4, 0, 4),
		},
		{
			name: "duplicates",
			in:   vecs(0, 0, 0, 0, 3, 0, 3, 0, 0, 3),
			want: vecs(0, 0, 3, 0, 0, 3),
		},
		{
			name: "two points",
			in:   vecs(1, 1, 5, 5),
			want: vecs(1, 1, 5, 5),
		},
		{
			name: "all collinear",
			in:   vecs(1, 1, 2, 1, 3, 1, 4, 1),
			want: vecs(1, 1, 4, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convexHull(tt.in)
			// Compare as sets; the starting vertex is an implementation detail.
			sortVecs := cmpopts.SortSlices(func(a, b r2.Vec) bool {
				if a.X != b.X {
					return a.X < b.X
				}
				return a.Y < b.Y
			})
			if diff := cmp.Diff(tt.want, got, sortVecs); diff != "" {
				t.Errorf("convexHull mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvexHull_DoesNotModifyInput(t *testing.T) {
	in := vecs(4, 4, 0, 0, 2, 2)
	orig := append([]r2.Vec(nil), in...)

	convexHull(in)

	if diff := cmp.Diff(orig, in); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestPolygonArea(t *testing.T) {
	tests := []struct {
		name string
		poly []r2.Vec
		want float64
	}{
		{"unit square", vecs(0, 0, 1, 0, 1, 1, 0, 1), 1},
		{"clockwise square", vecs(0, 0, 0, 1, 1, 1, 1, 0), 1},
		{"right triangle", vecs(0, 0, 10, 0, 0, 10), 50},
		{"line", vecs(0, 0, 5, 0), 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := polygonArea(tt.poly); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("polygonArea = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPerimeter(t *testing.T) {
	tests := []struct {
		name string
		poly []r2.Vec
		want float64
	}{
		{"unit square", vecs(0, 0, 1, 0, 1, 1, 0, 1), 4},
		{"3-4-5 triangle", vecs(0, 0, 3, 0, 0, 4), 12},
		{"out and back", vecs(0, 0, 5, 0), 10},
		{"single point", vecs(2, 2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := perimeter(tt.poly); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("perimeter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name string
		poly []r2.Vec
		want r2.Vec
	}{
		{"square", vecs(0, 0, 4, 0, 4, 4, 0, 4), r2.Vec{X: 2, Y: 2}},
		{"triangle", vecs(0, 0, 6, 0, 0, 6), r2.Vec{X: 2, Y: 2}},
		// A 2x4 bar with a 2x2 block beside its lower half.
		{"L shape", vecs(0, 0, 2, 0, 2, 2, 4, 2, 4, 4, 0, 4), r2.Vec{X: 5.0 / 3, Y: 7.0 / 3}},
		// Zero area falls back to the vertex mean.
		{"degenerate", vecs(0, 0, 4, 0), r2.Vec{X: 2, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := centroid(tt.poly)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("centroid = %+v, want %+v", got, tt.want)
			}
		})
	}
}
