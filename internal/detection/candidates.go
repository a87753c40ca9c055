package detection

import (
	"image"
	"math"

	"github.com/ironsheep/shot-group-mcp/internal/imaging"
	"github.com/ironsheep/shot-group-mcp/internal/shots"
)

const (
	// AreaFloorPx is the smallest contour area ever accepted, whatever the
	// configured minimum. Contours this small are quantisation noise.
	AreaFloorPx = 3.0

	// MaxAreaFraction is the largest share of the frame one blob may cover.
	// Anything larger is scenery, typically the target border itself.
	MaxAreaFraction = 0.02

	// MinCircularity is the exclusive lower bound on 4π·area/perimeter².
	MinCircularity = 0.5

	// MinSolidity is the exclusive lower bound on area / convex hull area.
	MinSolidity = 0.7
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Candidate is a blob accepted as a bullet hole.
type Candidate struct {
	// Center is the area-weighted centroid of the blob's contour.
	Center shots.Point `json:"center"`

	// Bounds encloses every pixel of the blob.
	Bounds Bounds `json:"bounds"`

	// Area is the contour area in square pixels.
	Area float64 `json:"area"`

	// Perimeter is the contour length in pixels.
	Perimeter float64 `json:"perimeter"`

	// Circularity is 4π·Area/Perimeter², 1.0 for a perfect circle.
	Circularity float64 `json:"circularity"`

	// Solidity is Area divided by the convex hull area.
	Solidity float64 `json:"solidity"`
}

// Rejection reasons, keys of Result.Rejected.
const (
	RejectArea        = "area"
	RejectCircularity = "circularity"
	RejectSolidity    = "solidity"
)

// Result contains the output of one detection pass.
type Result struct {
	// Candidates are the accepted blobs in raster order of their topmost,
	// leftmost pixel.
	Candidates []Candidate `json:"candidates"`

	// Components is the number of connected blobs in the cleaned mask.
	Components int `json:"components"`

	// Rejected counts blobs that failed the shape filter, by reason. A blob
	// is counted once, under the first test it failed.
	Rejected map[string]int `json:"rejected,omitempty"`

	// Degenerate counts blobs skipped for a zero perimeter or zero convex
	// hull area.
	Degenerate int `json:"degenerate"`

	// Mask is the cleaned binary mask the contours were extracted from.
	Mask *Mask `json:"-"`
}

// Count returns the number of accepted candidates. Zero is a normal outcome
// meaning no holes were found at the current settings.
func (r *Result) Count() int {
	return len(r.Candidates)
}

// Points returns the candidate centres in candidate order.
func (r *Result) Points() []shots.Point {
	pts := make([]shots.Point, len(r.Candidates))
	for i, c := range r.Candidates {
		pts[i] = c.Center
	}
	return pts
}

// Detect finds bullet-hole candidates in a preprocessed intensity map.
//
// Parameters:
//   - im: Output of imaging.Preprocess.
//   - cfg: Validated detection configuration. Sensitivity sets the darkness
//     threshold and MinAreaPx the smallest acceptable hole.
//
// Returns a Result, never nil. An empty candidate list is a valid result.
//
// # Shape Filter
//
// A blob is accepted only if all of the following hold:
//   - max(MinAreaPx, AreaFloorPx) < area < MaxAreaFraction × image area
//   - circularity > MinCircularity
//   - solidity > MinSolidity
//
// The pass is deterministic: identical input yields identical output.
func Detect(im *imaging.IntensityMap, cfg shots.Config) *Result {
	return detectMask(Segment(im, cfg.Sensitivity), cfg)
}

// detectMask extracts and filters the blobs of an already cleaned mask.
func detectMask(mask *Mask, cfg shots.Config) *Result {
	components := findComponents(mask)

	result := &Result{
		Candidates: []Candidate{},
		Components: len(components),
		Rejected:   make(map[string]int),
		Mask:       mask,
	}

	minArea := math.Max(cfg.MinAreaPx, AreaFloorPx)
	maxArea := MaxAreaFraction * float64(mask.Width*mask.Height)

	for _, comp := range components {
		contour := toVecs(traceBoundary(mask, comp.start, comp.pixels))

		perim := perimeter(contour)
		hullArea := polygonArea(convexHull(contour))
		if perim == 0 || hullArea == 0 {
			result.Degenerate++
			continue
		}

		area := polygonArea(contour)
		if area <= minArea || area >= maxArea {
			result.Rejected[RejectArea]++
			continue
		}

		circularity := 4 * math.Pi * area / (perim * perim)
		if circularity <= MinCircularity {
			result.Rejected[RejectCircularity]++
			continue
		}

		solidity := area / hullArea
		if solidity <= MinSolidity {
			result.Rejected[RejectSolidity]++
			continue
		}

		result.Candidates = append(result.Candidates, Candidate{
			Center: shots.FromVec(centroid(contour)),
			Bounds: Bounds{
				X1: comp.bounds.Min.X,
				Y1: comp.bounds.Min.Y,
				X2: comp.bounds.Max.X,
				Y2: comp.bounds.Max.Y,
			},
			Area:        area,
			Perimeter:   perim,
			Circularity: circularity,
			Solidity:    solidity,
		})
	}

	return result
}

// DetectImage preprocesses img and runs Detect on it.
//
// Returns an error wrapping imaging.ErrInvalidImage if img is unusable.
func DetectImage(img image.Image, cfg shots.Config) (*Result, error) {
	im, err := imaging.Preprocess(img)
	if err != nil {
		return nil, err
	}
	return Detect(im, cfg), nil
}
