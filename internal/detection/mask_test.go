package detection

import (
	"testing"

	"github.com/ironsheep/shot-group-mcp/internal/imaging"
)

// uniformMap returns a width x height intensity map filled with v.
func uniformMap(width, height int, v uint8) *imaging.IntensityMap {
	m := &imaging.IntensityMap{Width: width, Height: height, Pix: make([]uint8, width*height)}
	for i := range m.Pix {
		m.Pix[i] = v
	}
	return m
}

// fillRect sets every pixel of [x1,x2) x [y1,y2) to v.
func fillRect(m *imaging.IntensityMap, x1, y1, x2, y2 int, v uint8) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			m.Pix[y*m.Width+x] = v
		}
	}
}

func TestSegment_BlankPaper(t *testing.T) {
	m := Segment(uniformMap(40, 30, 255), 155)

	if m.Width != 40 || m.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", m.Width, m.Height)
	}
	if n := m.Count(); n != 0 {
		t.Errorf("expected empty mask, got %d foreground pixels", n)
	}
}

func TestSegment_ZeroSensitivity(t *testing.T) {
	// Nothing is darker than 0, even pure black.
	m := Segment(uniformMap(40, 30, 0), 0)

	if n := m.Count(); n != 0 {
		t.Errorf("expected empty mask, got %d foreground pixels", n)
	}
}

func TestSegment_KeepsBlock(t *testing.T) {
	im := uniformMap(60, 60, 255)
	fillRect(im, 20, 20, 40, 40, 10)

	m := Segment(im, 128)

	if !m.At(30, 30) {
		t.Error("expected block centre to be foreground")
	}
	if m.At(5, 5) {
		t.Error("expected paper to be background")
	}
	if n := m.Count(); n < 300 || n > 400 {
		t.Errorf("expected roughly the 400 block pixels, got %d", n)
	}
}

func TestSegment_RemovesSpeck(t *testing.T) {
	im := uniformMap(40, 40, 255)
	fillRect(im, 20, 20, 22, 22, 0)

	if n := Segment(im, 128).Count(); n != 0 {
		t.Errorf("expected speck removed by opening, got %d foreground pixels", n)
	}
}

func TestSegment_Sensitivity(t *testing.T) {
	im := uniformMap(60, 60, 255)
	fillRect(im, 20, 20, 40, 40, 100)

	if n := Segment(im, 90).Count(); n != 0 {
		t.Errorf("grey block above the threshold must be background, got %d pixels", n)
	}
	if n := Segment(im, 110).Count(); n == 0 {
		t.Error("grey block below the threshold must be foreground")
	}
}

func TestSegment_EqualToSensitivityIsBackground(t *testing.T) {
	for v := 0; v <= 255; v++ {
		if n := Segment(uniformMap(30, 30, uint8(v)), v).Count(); n != 0 {
			t.Errorf("intensity %d at sensitivity %d: got %d foreground pixels, want 0", v, v, n)
		}
	}
}

func TestSegment_OneBelowSensitivityIsForeground(t *testing.T) {
	for v := 1; v <= 255; v++ {
		m := Segment(uniformMap(30, 30, uint8(v-1)), v)
		if !m.At(15, 15) {
			t.Errorf("intensity %d at sensitivity %d should be foreground", v-1, v)
		}
	}
}

func TestMask_At_OutOfRange(t *testing.T) {
	m := maskFromRows("##", "##")

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if m.At(p[0], p[1]) {
			t.Errorf("At(%d, %d) should be background", p[0], p[1])
		}
	}
}

func TestMask_Gray(t *testing.T) {
	m := maskFromRows("#.", ".#")
	g := m.Gray()

	want := []uint8{255, 0, 0, 255}
	for i, v := range want {
		if g.Pix[i] != v {
			t.Errorf("Pix[%d]: got %d, want %d", i, g.Pix[i], v)
		}
	}
}
