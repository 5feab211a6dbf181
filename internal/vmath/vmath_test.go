package vmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps)
	assert.InDelta(t, want.Y, got.Y, eps)
	assert.InDelta(t, want.Z, got.Z, eps)
}

func TestRotateYQuarterTurn(t *testing.T) {
	q := RotateY(math.Pi / 2)
	// +X rotates onto -Z for a positive yaw around +Y.
	assertVec(t, V3(0, 0, -1), q.Rotate(V3(1, 0, 0)))
}

func TestTransformRoundTrip(t *testing.T) {
	tr := NewTransform(V3(10, 2, -4), RotateY(0.7).Mul(AxisAngle(V3(1, 0, 0), 0.2)))
	p := V3(3, -1, 5)
	w := tr.LocalToWorld(p)
	assertVec(t, p, tr.WorldToLocal(w))
}

func TestSignSqrtKeepsSign(t *testing.T) {
	v := V2(-0.25, 0.64).SignSqrt()
	assert.InDelta(t, -0.5, v.X, eps)
	assert.InDelta(t, 0.8, v.Y, eps)
	assert.Equal(t, 0.0, V2(0, 0).SignSqrt().X)
}

func TestNormalizeSafeFallback(t *testing.T) {
	assert.Equal(t, V2(0, 1), V2(0, 0).NormalizeSafe(V2(0, 1)))
	n := V2(3, 4).NormalizeSafe(V2(0, 1))
	assert.InDelta(t, 1.0, n.Length(), eps)
}

func TestBezierStraightLength(t *testing.T) {
	c := Bezier4x3{A: V3(0, 0, 0), B: V3(1, 0, 0), C: V3(2, 0, 0), D: V3(3, 0, 0)}
	assert.InDelta(t, 3.0, c.Length(), 1e-6)
	inv := c.Invert()
	assert.Equal(t, c.D, inv.A)
	assert.Equal(t, c.A, inv.D)
}

func TestLookRotationSafe(t *testing.T) {
	q := LookRotationSafe(V3(1, 0, 0), V3(0, 1, 0), Identity)
	assertVec(t, V3(1, 0, 0), q.Rotate(V3(0, 0, 1)))
	assert.Equal(t, Identity, LookRotationSafe(V3(0, 0, 0), V3(0, 1, 0), Identity))
}
