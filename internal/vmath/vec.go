// Package vmath holds the small amount of 3D math the lifecycle systems need:
// vectors, unit quaternions, rigid transforms, bounds and cubic Bézier curves.
package vmath

import "math"

// Vec2 is a float64 2D vector. In world space it usually carries the XZ plane.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a float64 3D vector. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

func V2(x, y float64) Vec2 { return Vec2{x, y} }
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Length() float64 { return math.Hypot(a.X, a.Y) }
func (a Vec2) LengthSq() float64 { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Equal(b Vec2) bool { return a.X == b.X && a.Y == b.Y }
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) LengthSq() float64 { return a.Dot(a) }
func (a Vec3) Length() float64 { return math.Sqrt(a.LengthSq()) }
func (a Vec3) Equal(b Vec3) bool { return a.X == b.X && a.Y == b.Y && a.Z == b.Z }
func (a Vec3) XZ() Vec2 { return Vec2{a.X, a.Z} }
func (a Vec3) WithXZ(xz Vec2) Vec3 { return Vec3{xz.X, a.Y, xz.Y} }
func (a Vec3) Distance(b Vec3) float64 { return a.Sub(b).Length() }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// NormalizeSafe returns v scaled to unit length, or fallback when v is too
// short to normalize.
func (a Vec2) NormalizeSafe(fallback Vec2) Vec2 {
	l := a.Length()
	if l < 1e-12 {
		return fallback
	}
	return a.Scale(1 / l)
}

func (a Vec3) NormalizeSafe(fallback Vec3) Vec3 {
	l := a.Length()
	if l < 1e-12 {
		return fallback
	}
	return a.Scale(1 / l)
}

// Lerp interpolates between a and b.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// SignSqrt applies sign(v)*sqrt(|v|) per component.
func (a Vec2) SignSqrt() Vec2 {
	return Vec2{signSqrt(a.X), signSqrt(a.Y)}
}

func signSqrt(v float64) float64 {
	switch {
	case v > 0:
		return math.Sqrt(v)
	case v < 0:
		return -math.Sqrt(-v)
	}
	return 0
}
