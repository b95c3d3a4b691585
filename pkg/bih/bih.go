// Package bih builds and serializes a static bounding interval hierarchy
// over a fixed set of axis-aligned bounds.
//
// The build is deterministic for a fixed input ordering: object i of the
// input keeps i as its stable node index, and consumers cross-reference
// serialized trees by those input positions. Serialized fields are
// little-endian.
package bih

import (
	"encoding/binary"
	"io"
	"sort"

	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

var byteOrder = binary.LittleEndian

// leafSize is the largest object count kept in a single leaf.
const leafSize = 4

// Tree is a built hierarchy ready for serialization.
type Tree struct {
	bounds  vmath.AABox
	nodes   []uint32
	objects []uint32
}

// Node word encoding, two high bits:
//
//	00/01/10  internal node split on axis X/Y/Z; low 30 bits index the
//	          right child, the left child follows the node directly
//	11        leaf; low 30 bits index the first entry in the object
//	          array, the following word holds the entry count
const (
	axisMask  = 3 << 30
	leafWord  = uint32(3) << 30
	indexMask = 1<<30 - 1
)

// Build constructs a tree over n objects whose bounds are supplied by
// boundFor. boundFor must be deterministic for the duration of the call.
func Build(n int, boundFor func(i int) vmath.AABox) *Tree {
	t := &Tree{}
	if n == 0 {
		return t
	}

	boxes := make([]vmath.AABox, n)
	for i := 0; i < n; i++ {
		boxes[i] = boundFor(i)
	}
	t.bounds = boxes[0]
	for _, b := range boxes[1:] {
		t.bounds = t.bounds.MergeBox(b)
	}

	order := make([]uint32, n)
	for i := range order {
		order[i] = uint32(i)
	}
	b := &builder{boxes: boxes}
	b.emit(order)
	t.nodes = b.nodes
	t.objects = b.objects
	return t
}

type builder struct {
	boxes   []vmath.AABox
	nodes   []uint32
	objects []uint32
}

func (b *builder) emit(objs []uint32) {
	if len(objs) <= leafSize {
		b.nodes = append(b.nodes, leafWord|uint32(len(b.objects)), uint32(len(objs)))
		b.objects = append(b.objects, objs...)
		return
	}

	// Split on the longest axis of the subtree bounds, at the median of
	// the object centroids. Stable sort with an index tie-break keeps the
	// build deterministic.
	sub := b.boxes[objs[0]]
	for _, o := range objs[1:] {
		sub = sub.MergeBox(b.boxes[o])
	}
	axis := longestAxis(sub.Extent())
	sort.SliceStable(objs, func(i, j int) bool {
		ci := centroidAxis(b.boxes[objs[i]], axis)
		cj := centroidAxis(b.boxes[objs[j]], axis)
		if ci != cj {
			return ci < cj
		}
		return objs[i] < objs[j]
	})

	mid := len(objs) / 2
	pos := len(b.nodes)
	b.nodes = append(b.nodes, 0) // patched once the left subtree is laid out
	b.emit(objs[:mid])
	b.nodes[pos] = uint32(axis)<<30 | uint32(len(b.nodes))
	b.emit(objs[mid:])
}

func longestAxis(extent vmath.Vec3) int {
	axis := 0
	if extent.Y > extent.X && extent.Y > extent.Z {
		axis = 1
	} else if extent.Z > extent.X && extent.Z > extent.Y {
		axis = 2
	}
	return axis
}

func centroidAxis(b vmath.AABox, axis int) float32 {
	c := b.Center()
	switch axis {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}

// Bounds returns the union bound of all objects.
func (t *Tree) Bounds() vmath.AABox {
	return t.bounds
}

// NumObjects returns the object count the tree was built over.
func (t *Tree) NumObjects() int {
	return len(t.objects)
}

// WriteTo serializes the tree: global bounds, node word count and words,
// object count and the object permutation.
func (t *Tree) WriteTo(w io.Writer) error {
	corners := [6]float32{
		t.bounds.Lo.X, t.bounds.Lo.Y, t.bounds.Lo.Z,
		t.bounds.Hi.X, t.bounds.Hi.Y, t.bounds.Hi.Z,
	}
	if err := binary.Write(w, byteOrder, &corners); err != nil {
		return err
	}
	if err := binary.Write(w, byteOrder, uint32(len(t.nodes))); err != nil {
		return err
	}
	if err := binary.Write(w, byteOrder, t.nodes); err != nil {
		return err
	}
	if err := binary.Write(w, byteOrder, uint32(len(t.objects))); err != nil {
		return err
	}
	return binary.Write(w, byteOrder, t.objects)
}
