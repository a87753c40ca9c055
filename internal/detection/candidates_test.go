package detection

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/shot-group-mcp/internal/imaging"
	"github.com/ironsheep/shot-group-mcp/internal/shots"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// drawDisc fills a disc of the given radius centred at (cx, cy).
func drawDisc(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, c)
			}
		}
	}
}

// drawRect fills [x1,x2) x [y1,y2).
func drawRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, c)
		}
	}
}

func mustConfig(t *testing.T, sensitivity int, minArea float64) shots.Config {
	t.Helper()
	cfg, err := shots.NewConfig(sensitivity, minArea, shots.DefaultReferenceWidthMm)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func near(a, b shots.Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestDetect_FindsHoles(t *testing.T) {
	img := createTestImage(240, 240, color.White)
	holes := []shots.Point{{X: 60, Y: 60}, {X: 180, Y: 60}, {X: 120, Y: 180}}
	for _, h := range holes {
		drawDisc(img, int(h.X), int(h.Y), 8, color.Black)
	}

	result, err := DetectImage(img, shots.DefaultConfig())
	if err != nil {
		t.Fatalf("DetectImage failed: %v", err)
	}

	if result.Count() != len(holes) {
		t.Fatalf("expected %d candidates, got %d (rejected %v, degenerate %d)",
			len(holes), result.Count(), result.Rejected, result.Degenerate)
	}
	for i, want := range holes {
		c := result.Candidates[i]
		if !near(c.Center, want, 0.5) {
			t.Errorf("candidate %d: centre %+v, want %+v", i, c.Center, want)
		}
		if c.Circularity <= MinCircularity || c.Circularity > 1.1 {
			t.Errorf("candidate %d: circularity %v out of range", i, c.Circularity)
		}
		if c.Solidity <= MinSolidity || c.Solidity > 1 {
			t.Errorf("candidate %d: solidity %v out of range", i, c.Solidity)
		}
		bounds := image.Rect(c.Bounds.X1, c.Bounds.Y1, c.Bounds.X2, c.Bounds.Y2)
		if !bounds.Overlaps(image.Rect(int(want.X)-1, int(want.Y)-1, int(want.X)+1, int(want.Y)+1)) {
			t.Errorf("candidate %d: bounds %+v do not cover the hole", i, c.Bounds)
		}
	}

	if diff := cmp.Diff(holes, result.Points(), cmp.Comparer(func(a, b shots.Point) bool {
		return near(a, b, 0.5)
	})); diff != "" {
		t.Errorf("Points mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_BlankPaper(t *testing.T) {
	img := createTestImage(100, 100, color.White)

	result, err := DetectImage(img, shots.DefaultConfig())
	if err != nil {
		t.Fatalf("DetectImage failed: %v", err)
	}
	if result.Count() != 0 {
		t.Errorf("expected no candidates, got %d", result.Count())
	}
	if result.Candidates == nil {
		t.Error("Candidates should be empty, not nil")
	}
}

func TestDetect_ZeroSensitivityFindsNothing(t *testing.T) {
	img := createTestImage(120, 120, color.White)
	drawDisc(img, 60, 60, 8, color.Black)

	result, err := DetectImage(img, mustConfig(t, 0, 50))
	if err != nil {
		t.Fatalf("zero detections must not be an error: %v", err)
	}
	if result.Count() != 0 || result.Components != 0 {
		t.Errorf("expected empty result, got %d candidates from %d components",
			result.Count(), result.Components)
	}
	if len(result.Points()) != 0 {
		t.Errorf("expected no points, got %v", result.Points())
	}
}

func TestDetect_RejectsTargetBorder(t *testing.T) {
	img := createTestImage(200, 200, color.White)
	// Thick printed frame around the whole target.
	drawRect(img, 0, 0, 200, 12, color.Black)
	drawRect(img, 0, 188, 200, 200, color.Black)
	drawRect(img, 0, 0, 12, 200, color.Black)
	drawRect(img, 188, 0, 200, 200, color.Black)
	drawDisc(img, 100, 100, 8, color.Black)

	result, err := DetectImage(img, shots.DefaultConfig())
	if err != nil {
		t.Fatalf("DetectImage failed: %v", err)
	}

	if result.Count() != 1 {
		t.Fatalf("expected only the hole, got %d candidates", result.Count())
	}
	if !near(result.Candidates[0].Center, shots.Point{X: 100, Y: 100}, 0.5) {
		t.Errorf("unexpected centre %+v", result.Candidates[0].Center)
	}
	if result.Rejected[RejectArea] < 1 {
		t.Errorf("expected the frame rejected by area, got %v", result.Rejected)
	}
}

func TestDetect_RejectsElongatedMark(t *testing.T) {
	img := createTestImage(240, 240, color.White)
	drawRect(img, 115, 85, 125, 155, color.Black)

	result, err := DetectImage(img, shots.DefaultConfig())
	if err != nil {
		t.Fatalf("DetectImage failed: %v", err)
	}

	if result.Count() != 0 {
		t.Errorf("expected bar rejected, got %d candidates", result.Count())
	}
	if result.Rejected[RejectCircularity] != 1 {
		t.Errorf("expected one circularity rejection, got %v", result.Rejected)
	}
}

func TestDetect_MinArea(t *testing.T) {
	img := createTestImage(120, 120, color.White)
	drawDisc(img, 60, 60, 5, color.Black)

	tests := []struct {
		name    string
		minArea float64
		want    int
	}{
		{"small hole kept with low minimum", 5, 1},
		{"small hole dropped with high minimum", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DetectImage(img, mustConfig(t, shots.DefaultSensitivity, tt.minArea))
			if err != nil {
				t.Fatalf("DetectImage failed: %v", err)
			}
			if result.Count() != tt.want {
				t.Errorf("expected %d candidates, got %d (rejected %v)", tt.want, result.Count(), result.Rejected)
			}
		})
	}
}

func TestDetect_Deterministic(t *testing.T) {
	img := createTestImage(200, 160, color.White)
	drawDisc(img, 40, 40, 7, color.Black)
	drawDisc(img, 90, 70, 9, color.Black)
	drawDisc(img, 150, 120, 6, color.Black)
	drawRect(img, 10, 140, 60, 146, color.Black)

	im, err := imaging.Preprocess(img)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}

	cfg := shots.DefaultConfig()
	first := Detect(im, cfg)
	second := Detect(im, cfg)

	if diff := cmp.Diff(first.Candidates, second.Candidates); diff != "" {
		t.Errorf("detection not deterministic (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Mask, second.Mask); diff != "" {
		t.Errorf("mask not deterministic (-first +second):\n%s", diff)
	}
}

func TestDetectMask_SkipsDegenerateBlobs(t *testing.T) {
	rows := make([]string, 40)
	for y := range rows {
		rows[y] = "........................................"
	}
	rows[2] = "..#....................................." // isolated pixel
	rows[5] = ".....#####.............................." // straight line
	rows[20] = "....................######.............."
	rows[21] = "....................######.............."
	rows[22] = "....................######.............."
	rows[23] = "....................######.............."
	rows[24] = "....................######.............."
	rows[25] = "....................######.............."

	result := detectMask(maskFromRows(rows...), mustConfig(t, shots.DefaultSensitivity, 1))

	if result.Components != 3 {
		t.Errorf("expected 3 components, got %d", result.Components)
	}
	if result.Degenerate != 2 {
		t.Errorf("expected 2 degenerate blobs, got %d", result.Degenerate)
	}
	if result.Count() != 1 {
		t.Fatalf("expected the block to survive, got %d candidates", result.Count())
	}

	c := result.Candidates[0]
	if !near(c.Center, shots.Point{X: 22.5, Y: 22.5}, 1e-9) {
		t.Errorf("unexpected centre %+v", c.Center)
	}
	if c.Area != 25 || c.Perimeter != 20 || c.Solidity != 1 {
		t.Errorf("unexpected shape stats %+v", c)
	}
	if want := (Bounds{X1: 20, Y1: 20, X2: 26, Y2: 26}); c.Bounds != want {
		t.Errorf("bounds: got %+v, want %+v", c.Bounds, want)
	}
}

func TestDetectImage_InvalidImage(t *testing.T) {
	_, err := DetectImage(image.NewRGBA(image.Rect(0, 0, 0, 10)), shots.DefaultConfig())
	if !errors.Is(err, imaging.ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}
