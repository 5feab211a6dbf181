package vmath

// Transform is a rigid placement: rotate, then translate.
type Transform struct {
	Position Vec3
	Rotation Quat
}

// NewTransform returns a transform at pos with rot.
func NewTransform(pos Vec3, rot Quat) Transform {
	return Transform{Position: pos, Rotation: rot}
}

// LocalToWorld maps a point from t's local frame into world space.
func (t Transform) LocalToWorld(p Vec3) Vec3 {
	return t.Position.Add(t.Rotation.Rotate(p))
}

// Inverse returns the transform mapping world space into t's local frame.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	return Transform{
		Position: inv.Rotate(t.Position).Scale(-1),
		Rotation: inv,
	}
}

// WorldToLocal maps a world point into t's local frame.
func (t Transform) WorldToLocal(p Vec3) Vec3 {
	return t.Inverse().LocalToWorld(p)
}

// Bounds3 is an axis-aligned box.
type Bounds3 struct {
	Min Vec3
	Max Vec3
}

func (b Bounds3) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }
func (b Bounds3) Extents() Vec3 { return b.Max.Sub(b.Min).Scale(0.5) }

// Contains reports whether p lies inside b, boundaries included.
func (b Bounds3) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
