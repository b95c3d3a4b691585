package math

// AABox is an axis-aligned bounding box with inclusive corners.
type AABox struct {
	Lo, Hi Vec3
}

// NewAABox returns a degenerate box containing a single point.
func NewAABox(p Vec3) AABox {
	return AABox{Lo: p, Hi: p}
}

// Merge returns the box grown to contain p.
func (b AABox) Merge(p Vec3) AABox {
	return AABox{Lo: b.Lo.Min(p), Hi: b.Hi.Max(p)}
}

// MergeBox returns the union of b and other.
func (b AABox) MergeBox(other AABox) AABox {
	return AABox{Lo: b.Lo.Min(other.Lo), Hi: b.Hi.Max(other.Hi)}
}

// Translate returns the box shifted by offset.
func (b AABox) Translate(offset Vec3) AABox {
	return AABox{Lo: b.Lo.Add(offset), Hi: b.Hi.Add(offset)}
}

// Center returns the box midpoint.
func (b AABox) Center() Vec3 {
	return b.Lo.Add(b.Hi).Scale(0.5)
}

// Extent returns Hi - Lo.
func (b AABox) Extent() Vec3 {
	return b.Hi.Sub(b.Lo)
}
