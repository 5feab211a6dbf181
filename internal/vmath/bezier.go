package vmath

// Bezier4x3 is a cubic Bézier curve in 3D with control points A..D.
type Bezier4x3 struct {
	A, B, C, D Vec3
}

// Position evaluates the curve at t in [0,1].
func (c Bezier4x3) Position(t float64) Vec3 {
	u := 1 - t
	return c.A.Scale(u * u * u).
		Add(c.B.Scale(3 * u * u * t)).
		Add(c.C.Scale(3 * u * t * t)).
		Add(c.D.Scale(t * t * t))
}

// StartTangent is the curve direction at A.
func (c Bezier4x3) StartTangent() Vec3 {
	if t := c.B.Sub(c.A); t.LengthSq() > 0 {
		return t
	}
	return c.C.Sub(c.A)
}

// EndTangent is the curve direction at D.
func (c Bezier4x3) EndTangent() Vec3 {
	if t := c.D.Sub(c.C); t.LengthSq() > 0 {
		return t
	}
	return c.D.Sub(c.B)
}

// Invert returns the same curve traversed from D to A.
func (c Bezier4x3) Invert() Bezier4x3 {
	return Bezier4x3{A: c.D, B: c.C, C: c.B, D: c.A}
}

// Transform maps every control point through t.
func (c Bezier4x3) Transform(t Transform) Bezier4x3 {
	return Bezier4x3{
		A: t.LocalToWorld(c.A),
		B: t.LocalToWorld(c.B),
		C: t.LocalToWorld(c.C),
		D: t.LocalToWorld(c.D),
	}
}

const lengthSegments = 16

// Length approximates the arc length by summing a fixed polyline.
func (c Bezier4x3) Length() float64 {
	total := 0.0
	prev := c.A
	for i := 1; i <= lengthSegments; i++ {
		p := c.Position(float64(i) / lengthSegments)
		total += p.Distance(prev)
		prev = p
	}
	return total
}
