package bih

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

func randomBoxes(n int, seed int64) []vmath.AABox {
	rng := rand.New(rand.NewSource(seed))
	boxes := make([]vmath.AABox, n)
	for i := range boxes {
		lo := vmath.Vec3{
			X: rng.Float32()*1000 - 500,
			Y: rng.Float32()*1000 - 500,
			Z: rng.Float32()*100 - 50,
		}
		hi := lo.Add(vmath.Vec3{X: rng.Float32() * 30, Y: rng.Float32() * 30, Z: rng.Float32() * 10})
		boxes[i] = vmath.AABox{Lo: lo, Hi: hi}
	}
	return boxes
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(0, nil)
	if tree.NumObjects() != 0 {
		t.Fatalf("empty tree has %d objects", tree.NumObjects())
	}
	var buf bytes.Buffer
	if err := tree.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	// 6 bound floats + node count + object count.
	if buf.Len() != 6*4+4+4 {
		t.Errorf("empty tree serialized to %d bytes", buf.Len())
	}
}

func TestBuildObjectPermutation(t *testing.T) {
	boxes := randomBoxes(37, 1)
	tree := Build(len(boxes), func(i int) vmath.AABox { return boxes[i] })

	if tree.NumObjects() != len(boxes) {
		t.Fatalf("tree holds %d objects, want %d", tree.NumObjects(), len(boxes))
	}
	seen := make(map[uint32]bool)
	for _, o := range tree.objects {
		if int(o) >= len(boxes) {
			t.Fatalf("object index %d out of range", o)
		}
		if seen[o] {
			t.Fatalf("object index %d appears twice", o)
		}
		seen[o] = true
	}
}

func TestBuildDeterministic(t *testing.T) {
	boxes := randomBoxes(64, 2)
	bf := func(i int) vmath.AABox { return boxes[i] }

	var a, b bytes.Buffer
	if err := Build(len(boxes), bf).WriteTo(&a); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if err := Build(len(boxes), bf).WriteTo(&b); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("two builds over identical input serialized differently")
	}
}

func TestBuildGlobalBounds(t *testing.T) {
	boxes := []vmath.AABox{
		{Lo: vmath.Vec3{X: -5, Y: 0, Z: 0}, Hi: vmath.Vec3{X: 1, Y: 1, Z: 1}},
		{Lo: vmath.Vec3{X: 0, Y: -2, Z: 0}, Hi: vmath.Vec3{X: 8, Y: 1, Z: 3}},
	}
	tree := Build(len(boxes), func(i int) vmath.AABox { return boxes[i] })
	want := boxes[0].MergeBox(boxes[1])
	if tree.Bounds() != want {
		t.Errorf("Bounds() = %+v, want %+v", tree.Bounds(), want)
	}
}

func TestSerializedLayout(t *testing.T) {
	boxes := randomBoxes(10, 3)
	tree := Build(len(boxes), func(i int) vmath.AABox { return boxes[i] })

	var buf bytes.Buffer
	if err := tree.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	r := bytes.NewReader(buf.Bytes())

	var corners [6]float32
	if err := binary.Read(r, binary.LittleEndian, &corners); err != nil {
		t.Fatalf("reading bounds: %v", err)
	}
	var nodeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		t.Fatalf("reading node count: %v", err)
	}
	nodes := make([]uint32, nodeCount)
	if err := binary.Read(r, binary.LittleEndian, &nodes); err != nil {
		t.Fatalf("reading nodes: %v", err)
	}
	var objCount uint32
	if err := binary.Read(r, binary.LittleEndian, &objCount); err != nil {
		t.Fatalf("reading object count: %v", err)
	}
	if int(objCount) != len(boxes) {
		t.Errorf("serialized object count = %d, want %d", objCount, len(boxes))
	}
	objs := make([]uint32, objCount)
	if err := binary.Read(r, binary.LittleEndian, &objs); err != nil {
		t.Fatalf("reading objects: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("%d trailing bytes after object array", r.Len())
	}
}
