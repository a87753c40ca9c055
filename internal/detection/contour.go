package detection

import "image"

// neighbours lists the 8-connected offsets clockwise (with Y pointing down),
// starting west. traceBoundary relies on this order.
var neighbours = [8]image.Point{
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
}

// component is one 8-connected foreground region.
type component struct {
	// start is the first pixel of the region in raster order. Its west
	// neighbour is always background, which makes it a valid trace origin.
	start image.Point

	// pixels is the number of foreground pixels in the region.
	pixels int

	bounds image.Rectangle
}

// findComponents labels the 8-connected foreground regions of m.
//
// Regions are returned in raster order of their first pixel, which keeps
// detection output deterministic.
func findComponents(m *Mask) []component {
	visited := make([]bool, len(m.Pix))
	var components []component

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := y*m.Width + x
			if !m.Pix[i] || visited[i] {
				continue
			}
			components = append(components, floodFill(m, visited, image.Pt(x, y)))
		}
	}

	return components
}

// floodFill marks every pixel 8-connected to start as visited and returns the
// region's statistics.
func floodFill(m *Mask, visited []bool, start image.Point) component {
	c := component{
		start:  start,
		bounds: image.Rectangle{Min: start, Max: start.Add(image.Pt(1, 1))},
	}
	stack := []image.Point{start}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !m.At(p.X, p.Y) {
			continue
		}
		i := p.Y*m.Width + p.X
		if visited[i] {
			continue
		}

		visited[i] = true
		c.pixels++
		c.bounds = c.bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})

		for _, d := range neighbours {
			stack = append(stack, p.Add(d))
		}
	}

	return c
}

// traceBoundary follows the outer boundary of the region containing start
// using Moore-neighbour tracing and returns the boundary pixels in clockwise
// order. start must be the region's first pixel in raster order.
//
// A single isolated pixel yields a one-point contour. Tracing stops when the
// walk returns to start and is about to repeat its first move (Jacob's
// stopping criterion), so regions that pinch through start are fully traced.
func traceBoundary(m *Mask, start image.Point, pixels int) []image.Point {
	contour := []image.Point{start}

	// start's west neighbour is background, so the walk begins by scanning
	// clockwise from west.
	p, back := start, 0
	limit := 4*pixels + 8

	for step := 0; step < limit; step++ {
		next, nextBack, ok := mooreStep(m, p, back)
		if !ok {
			break
		}
		if p == start && len(contour) > 1 && next == contour[1] {
			// The last point appended is start itself.
			contour = contour[:len(contour)-1]
			break
		}
		contour = append(contour, next)
		p, back = next, nextBack
	}

	return contour
}

// mooreStep scans the neighbours of p clockwise, starting just after the
// background neighbour in direction back, and returns the first foreground
// neighbour together with the direction from it to the last background
// pixel examined.
func mooreStep(m *Mask, p image.Point, back int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		q := p.Add(neighbours[d])
		if !m.At(q.X, q.Y) {
			continue
		}
		prev := p.Add(neighbours[(d+7)%8])
		return q, direction(prev.Sub(q)), true
	}
	return p, back, false
}

// direction returns the index in neighbours of the unit offset d.
func direction(d image.Point) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return 0
}
