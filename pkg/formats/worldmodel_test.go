package formats

import (
	"bytes"
	"errors"
	"testing"

	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

func TestWorldModelRoundTrip(t *testing.T) {
	raw := &WorldModelRaw{
		RootID: 151,
		Groups: []GroupModelRaw{
			testGroup(),
			{
				Flags:   1,
				GroupID: 7,
				Bounds: vmath.AABox{
					Lo: vmath.Vec3{X: 10, Y: 10, Z: 0},
					Hi: vmath.Vec3{X: 20, Y: 30, Z: 5},
				},
				LiquidFlags: 1,
				Triangles:   []MeshTriangle{{0, 1, 2}},
				Vertices: []vmath.Vec3{
					{X: 10, Y: 10, Z: 0}, {X: 20, Y: 10, Z: 0}, {X: 15, Y: 30, Z: 5},
				},
				Liquid: &LiquidSurface{
					XVerts: 2, YVerts: 2, XTiles: 1, YTiles: 1,
					Corner:  vmath.Vec3{X: 12, Y: 12, Z: 1},
					Type:    2,
					Heights: []float32{1, 1, 2, 2},
					Flags:   []byte{0x40},
				},
			},
		},
	}
	model := NewWorldModel(raw)

	var buf bytes.Buffer
	if err := model.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := ParseWorldModel(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseWorldModel failed: %v", err)
	}
	if got.RootID != model.RootID {
		t.Errorf("RootID = %d, want %d", got.RootID, model.RootID)
	}
	if len(got.Groups) != len(model.Groups) {
		t.Fatalf("got %d groups, want %d", len(got.Groups), len(model.Groups))
	}
	for i := range model.Groups {
		want := &model.Groups[i]
		g := &got.Groups[i]
		if g.Flags != want.Flags || g.GroupID != want.GroupID || g.Bounds != want.Bounds {
			t.Errorf("group %d header mismatch", i)
		}
		if len(g.Triangles) != len(want.Triangles) || len(g.Vertices) != len(want.Vertices) {
			t.Errorf("group %d mesh size mismatch", i)
			continue
		}
		for j := range want.Triangles {
			if g.Triangles[j] != want.Triangles[j] {
				t.Errorf("group %d triangle %d mismatch", i, j)
			}
		}
		for j := range want.Vertices {
			if g.Vertices[j] != want.Vertices[j] {
				t.Errorf("group %d vertex %d mismatch", i, j)
			}
		}
		if (g.Liquid == nil) != (want.Liquid == nil) {
			t.Errorf("group %d liquid presence mismatch", i)
		}
	}

	liq := got.Groups[1].Liquid
	if liq == nil {
		t.Fatal("liquid surface lost in conversion")
	}
	if liq.Type != 2 || len(liq.Heights) != 4 || !bytes.Equal(liq.Flags, []byte{0x40}) {
		t.Errorf("liquid payload mismatch: %+v", liq)
	}
}

func TestWorldModelBadMagic(t *testing.T) {
	model := NewWorldModel(&WorldModelRaw{RootID: 1})
	var buf bytes.Buffer
	if err := model.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data := buf.Bytes()
	data[0] = 'X'

	if _, err := ParseWorldModel(data); !errors.Is(err, ErrInvalidModelMagic) {
		t.Errorf("ParseWorldModel = %v, want ErrInvalidModelMagic", err)
	}
}
