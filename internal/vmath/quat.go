package vmath

import "math"

// Quat is a unit quaternion (X, Y, Z imaginary, W real).
type Quat struct {
	X, Y, Z, W float64
}

// Identity is the no-rotation quaternion.
var Identity = Quat{W: 1}

// AxisAngle builds a rotation of angle radians around a unit axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// RotateY is a yaw rotation around the up axis.
func RotateY(angle float64) Quat {
	return AxisAngle(Vec3{0, 1, 0}, angle)
}

func (q Quat) Mul(r Quat) Quat {
	return Quat{
		q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Inverse returns the conjugate, which is the inverse of a unit quaternion.
func (q Quat) Inverse() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// LookRotationSafe returns the rotation whose forward (+Z) axis points along
// forward with the given up vector. When forward is degenerate or parallel to
// up, fallback is returned.
func LookRotationSafe(forward, up Vec3, fallback Quat) Quat {
	f := forward.NormalizeSafe(Vec3{})
	if f.LengthSq() == 0 {
		return fallback
	}
	r := up.Cross(f)
	if r.LengthSq() < 1e-12 {
		return fallback
	}
	r = r.NormalizeSafe(Vec3{1, 0, 0})
	u := f.Cross(r)
	return fromBasis(r, u, f)
}

func fromBasis(x, y, z Vec3) Quat {
	trace := x.X + y.Y + z.Z
	var q Quat
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = Quat{(y.Z - z.Y) / s, (z.X - x.Z) / s, (x.Y - y.X) / s, s / 4}
	case x.X > y.Y && x.X > z.Z:
		s := math.Sqrt(1+x.X-y.Y-z.Z) * 2
		q = Quat{s / 4, (y.X + x.Y) / s, (z.X + x.Z) / s, (y.Z - z.Y) / s}
	case y.Y > z.Z:
		s := math.Sqrt(1+y.Y-x.X-z.Z) * 2
		q = Quat{(y.X + x.Y) / s, s / 4, (z.Y + y.Z) / s, (z.X - x.Z) / s}
	default:
		s := math.Sqrt(1+z.Z-x.X-y.Y) * 2
		q = Quat{(z.X + x.Z) / s, (z.Y + y.Z) / s, s / 4, (x.Y - y.X) / s}
	}
	return q
}
