// Package geom finds the first crossing between a response-spectrum polyline
// and an idealized capacity curve in ADRS coordinates.
package geom

import "math"

// Point is a point in the spectral displacement / acceleration plane.
type Point struct {
	Sd float64
	Sa float64
}

// Polyline is an ordered open chain of points.
type Polyline []Point

// refinementFactor is the subdivision applied to both polylines when the
// determinant pass finds no crossing.
const refinementFactor = 6

// FindIntersection returns the leftmost (smallest Sd) crossing of the two
// polylines. The primary pass tests every segment pair with the determinant
// method; if that finds nothing, both polylines are subdivided and re-tested
// with the parametric segment form. The second result is false when the
// curves never cross.
func FindIntersection(spectrum, capacity Polyline) (Point, bool) {
	hits := crossings(spectrum, capacity, segmentIntersectionDet)
	if len(hits) == 0 {
		hits = crossings(
			Refine(spectrum, refinementFactor),
			Refine(capacity, refinementFactor),
			segmentIntersectionParam,
		)
	}
	if len(hits) == 0 {
		return Point{}, false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h.Sd < best.Sd {
			best = h
		}
	}
	return best, true
}

type segmentTest func(a1, a2, b1, b2 Point) (Point, bool)

func crossings(a, b Polyline, test segmentTest) []Point {
	var hits []Point
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if p, ok := test(a[i], a[i+1], b[j], b[j+1]); ok {
				hits = append(hits, p)
			}
		}
	}
	return hits
}

// segmentIntersectionDet intersects the two carrier lines by determinant and
// accepts the solution only inside the bounding box of both segments.
// Parallel or coincident segments yield no crossing.
func segmentIntersectionDet(a1, a2, b1, b2 Point) (Point, bool) {
	c1 := a2.Sa - a1.Sa
	d1 := a1.Sd - a2.Sd
	e1 := c1*a1.Sd + d1*a1.Sa

	c2 := b2.Sa - b1.Sa
	d2 := b1.Sd - b2.Sd
	e2 := c2*b1.Sd + d2*b1.Sa

	det := c1*d2 - c2*d1
	if det == 0 {
		return Point{}, false
	}
	x := (d2*e1 - d1*e2) / det
	y := (c1*e2 - c2*e1) / det

	if !within(x, a1.Sd, a2.Sd) || !within(x, b1.Sd, b2.Sd) ||
		!within(y, a1.Sa, a2.Sa) || !within(y, b1.Sa, b2.Sa) {
		return Point{}, false
	}
	return Point{Sd: x, Sa: y}, true
}

// segmentIntersectionParam solves the parametric segment form and accepts the
// crossing when both parameters lie in [0, 1].
func segmentIntersectionParam(a1, a2, b1, b2 Point) (Point, bool) {
	denom := (b2.Sa-b1.Sa)*(a2.Sd-a1.Sd) - (b2.Sd-b1.Sd)*(a2.Sa-a1.Sa)
	if denom == 0 {
		return Point{}, false
	}
	ua := ((b2.Sd-b1.Sd)*(a1.Sa-b1.Sa) - (b2.Sa-b1.Sa)*(a1.Sd-b1.Sd)) / denom
	ub := ((a2.Sd-a1.Sd)*(a1.Sa-b1.Sa) - (a2.Sa-a1.Sa)*(a1.Sd-b1.Sd)) / denom
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return Point{}, false
	}
	return Point{
		Sd: a1.Sd + ua*(a2.Sd-a1.Sd),
		Sa: a1.Sa + ua*(a2.Sa-a1.Sa),
	}, true
}

// Refine subdivides every segment of the polyline into factor pieces by
// linear interpolation, keeping the final endpoint once.
func Refine(p Polyline, factor int) Polyline {
	if factor < 2 || len(p) < 2 {
		return p
	}
	out := make(Polyline, 0, (len(p)-1)*factor+1)
	for i := 0; i+1 < len(p); i++ {
		a, b := p[i], p[i+1]
		for k := 0; k < factor; k++ {
			t := float64(k) / float64(factor)
			out = append(out, Point{
				Sd: a.Sd + t*(b.Sd-a.Sd),
				Sa: a.Sa + t*(b.Sa-a.Sa),
			})
		}
	}
	return append(out, p[len(p)-1])
}

func within(v, bound1, bound2 float64) bool {
	return math.Min(bound1, bound2) <= v && v <= math.Max(bound1, bound2)
}
