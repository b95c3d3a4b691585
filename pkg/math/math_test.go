package math

import (
	"math"
	"math/rand"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{3, 4, 0}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec3.Length() = %v, want 5", got)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 2, -4}
	if got := a.Min(b); got != (Vec3{1, 2, -4}) {
		t.Errorf("Vec3.Min() = %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, -2}) {
		t.Errorf("Vec3.Max() = %v", got)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatRotate(t *testing.T) {
	// 90 degrees around Z maps +X to +Y.
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	got := q.Rotate(Vec3{1, 0, 0})
	want := Vec3{0, 1, 0}
	if got.Sub(want).Length() > 0.0001 {
		t.Errorf("Rotate(+X) = %v, want %v", got, want)
	}
}

func TestQuatFromEulerZYX(t *testing.T) {
	// Pure Z rotation must match the axis-angle form.
	q := QuatFromEulerZYX(float32(math.Pi/3), 0, 0)
	ref := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/3))
	v := Vec3{1, 2, 3}
	if q.Rotate(v).Sub(ref.Rotate(v)).Length() > 0.0001 {
		t.Errorf("EulerZYX(z,0,0) disagrees with axis-angle Z rotation")
	}

	// Composite order: Rz * Ry * Rx applied to a vector.
	z, y, x := float32(0.4), float32(-1.1), float32(2.0)
	qc := QuatFromEulerZYX(z, y, x)
	step := QuatFromAxisAngle(Vec3{1, 0, 0}, x).Rotate(v)
	step = QuatFromAxisAngle(Vec3{0, 1, 0}, y).Rotate(step)
	step = QuatFromAxisAngle(Vec3{0, 0, 1}, z).Rotate(step)
	if qc.Rotate(v).Sub(step).Length() > 0.0001 {
		t.Errorf("EulerZYX composite = %v, want %v", qc.Rotate(v), step)
	}
}

func TestAABoxMerge(t *testing.T) {
	b := NewAABox(Vec3{1, 1, 1})
	b = b.Merge(Vec3{-2, 3, 0})
	if b.Lo != (Vec3{-2, 1, 0}) || b.Hi != (Vec3{1, 3, 1}) {
		t.Errorf("Merge() = %+v", b)
	}
}

func TestAABoxMergeOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := make([]Vec3, 50)
	for i := range pts {
		pts[i] = Vec3{rng.Float32()*20 - 10, rng.Float32()*20 - 10, rng.Float32()*20 - 10}
	}

	forward := NewAABox(pts[0])
	for _, p := range pts[1:] {
		forward = forward.Merge(p)
	}
	backward := NewAABox(pts[len(pts)-1])
	for i := len(pts) - 2; i >= 0; i-- {
		backward = backward.Merge(pts[i])
	}

	if forward != backward {
		t.Errorf("merge order changed result: %+v vs %+v", forward, backward)
	}
}

func TestAABoxTranslate(t *testing.T) {
	b := AABox{Lo: Vec3{0, 0, 0}, Hi: Vec3{1, 1, 1}}
	got := b.Translate(Vec3{10, -5, 2})
	if got.Lo != (Vec3{10, -5, 2}) || got.Hi != (Vec3{11, -4, 3}) {
		t.Errorf("Translate() = %+v", got)
	}
}
