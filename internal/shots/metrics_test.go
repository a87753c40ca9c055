package shots

import (
	"math"
	"testing"
)

func unitCalibration() Calibration {
	return Calibration{ImageWidthPx: 100, ReferenceWidthMm: 100, PixelsPerMm: 1}
}

func TestCompute_Empty(t *testing.T) {
	m := Compute(nil, unitCalibration())

	if m.MeanPointOfImpact != nil {
		t.Errorf("MPI: got %v, want nil", *m.MeanPointOfImpact)
	}
	if m.MeanRadiusMm != 0 || m.ExtremeSpreadMm != 0 || m.ShotCount != 0 {
		t.Errorf("expected zero metrics, got %+v", m)
	}
	if m.Spread != nil {
		t.Error("Spread should be nil for an empty group")
	}
}

func TestCompute_Singleton(t *testing.T) {
	p := Point{X: 42.5, Y: 17}
	m := Compute([]Point{p}, unitCalibration())

	if m.MeanPointOfImpact == nil || *m.MeanPointOfImpact != p {
		t.Fatalf("MPI: got %v, want %v", m.MeanPointOfImpact, p)
	}
	if m.MeanRadiusMm != 0 {
		t.Errorf("MeanRadiusMm: got %f, want 0", m.MeanRadiusMm)
	}
	if m.ExtremeSpreadMm != 0 {
		t.Errorf("ExtremeSpreadMm: got %f, want 0", m.ExtremeSpreadMm)
	}
	if m.ShotCount != 1 {
		t.Errorf("ShotCount: got %d, want 1", m.ShotCount)
	}
}

func TestCompute_RightTriangle(t *testing.T) {
	points := []Point{{0, 0}, {10, 0}, {0, 10}}
	m := Compute(points, unitCalibration())

	if m.MeanPointOfImpact == nil {
		t.Fatal("MPI should be present")
	}
	if math.Abs(m.MeanPointOfImpact.X-10.0/3) > 1e-9 || math.Abs(m.MeanPointOfImpact.Y-10.0/3) > 1e-9 {
		t.Errorf("MPI: got %+v, want (3.33, 3.33)", *m.MeanPointOfImpact)
	}
	if math.Abs(m.ExtremeSpreadMm-math.Sqrt(200)) > 1e-9 {
		t.Errorf("ExtremeSpreadMm: got %.4f, want 14.1421", m.ExtremeSpreadMm)
	}

	// (0,0) is 4.714 from the MPI, the other two 7.454 each.
	wantRadius := (math.Sqrt(200)/3 + 2*math.Sqrt(500)/3) / 3
	if math.Abs(m.MeanRadiusMm-wantRadius) > 1e-9 {
		t.Errorf("MeanRadiusMm: got %.4f, want %.4f", m.MeanRadiusMm, wantRadius)
	}
	if m.ShotCount != 3 {
		t.Errorf("ShotCount: got %d, want 3", m.ShotCount)
	}
	if m.Spread == nil {
		t.Fatal("Spread should be set")
	}
	if got := m.Spread.Length(); math.Abs(got-math.Sqrt(200)) > 1e-9 {
		t.Errorf("Spread length: got %.4f", got)
	}
}

func TestCompute_SpreadMonotonic(t *testing.T) {
	points := []Point{
		{50, 50}, {52, 49}, {47, 55}, {60, 41}, {49, 50}, {30, 70}, {51, 51}, {10, 12},
	}
	cal := unitCalibration()

	prev := 0.0
	for i := 1; i <= len(points); i++ {
		m := Compute(points[:i], cal)
		if m.ExtremeSpreadMm < prev {
			t.Fatalf("spread decreased after adding point %d: %f -> %f", i, prev, m.ExtremeSpreadMm)
		}
		prev = m.ExtremeSpreadMm
	}
}

func TestCompute_CalibrationLinearity(t *testing.T) {
	points := []Point{{100, 100}, {140, 110}, {120, 160}, {90, 130}}

	narrow, err := NewCalibration(1000, 210)
	if err != nil {
		t.Fatalf("NewCalibration: %v", err)
	}
	wide, err := NewCalibration(1000, 420)
	if err != nil {
		t.Fatalf("NewCalibration: %v", err)
	}

	a := Compute(points, narrow)
	b := Compute(points, wide)

	if math.Abs(b.ExtremeSpreadMm-2*a.ExtremeSpreadMm) > 1e-9 {
		t.Errorf("doubling reference width should double spread: %f vs %f", a.ExtremeSpreadMm, b.ExtremeSpreadMm)
	}
	if math.Abs(b.MeanRadiusMm-2*a.MeanRadiusMm) > 1e-9 {
		t.Errorf("doubling reference width should double mean radius: %f vs %f", a.MeanRadiusMm, b.MeanRadiusMm)
	}
	if *a.MeanPointOfImpact != *b.MeanPointOfImpact {
		t.Error("MPI is in pixels and must not depend on calibration")
	}
}

func TestCompute_DoesNotModifyInput(t *testing.T) {
	points := []Point{{1, 2}, {3, 4}}
	Compute(points, unitCalibration())
	if points[0] != (Point{1, 2}) || points[1] != (Point{3, 4}) {
		t.Errorf("input modified: %v", points)
	}
}
