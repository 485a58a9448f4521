package geometry

import "math"

// SegmentDistance calculates the minimum distance from point p to the line
// segment a-b.
func SegmentDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		// Segment is a point
		return p.Distance(a)
	}

	// Parameter t of closest point on infinite line
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)

	// Clamp to segment
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return p.Distance(Point2D{X: a.X + t*dx, Y: a.Y + t*dy})
}

// PolylineDistance returns the minimum distance from p to any segment of the
// path. A single-vertex path is treated as a point.
func PolylineDistance(p PointInt, path []PointInt) float64 {
	if len(path) == 0 {
		return math.Inf(1)
	}
	if len(path) == 1 {
		return p.ToFloat().Distance(path[0].ToFloat())
	}
	best := math.Inf(1)
	pf := p.ToFloat()
	for i := 0; i < len(path)-1; i++ {
		if d := SegmentDistance(pf, path[i].ToFloat(), path[i+1].ToFloat()); d < best {
			best = d
		}
	}
	return best
}

// PolylineBounds computes the axis-aligned bounding box of a set of points.
func PolylineBounds(points []PointInt) RectInt {
	if len(points) == 0 {
		return RectInt{}
	}
	r := RectInt{X: points[0].X, Y: points[0].Y}
	for _, p := range points[1:] {
		r = r.Union(RectInt{X: p.X, Y: p.Y})
	}
	return r
}
