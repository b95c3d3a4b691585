package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/vmap-assembler/pkg/bih"
	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

// ErrInvalidModelMagic reports a converted model file with a bad header.
var ErrInvalidModelMagic = errors.New("invalid world model magic")

// GroupModel is one geometry group of a converted world model.
type GroupModel struct {
	Flags     uint32
	GroupID   uint32
	Bounds    vmath.AABox
	Triangles []MeshTriangle
	Vertices  []vmath.Vec3
	Liquid    *LiquidSurface
}

// WorldModel is the runtime model format produced by the converter.
//
// Layout: 8-byte magic, "WMOD" chunk (root ID), "GMOD" chunk (group count,
// then per group: header, "VERT", "TRIM", optional "LIQU"), and "GBIH"
// holding a serialized hierarchy over the group bounds.
type WorldModel struct {
	RootID uint32
	Groups []GroupModel
}

// NewWorldModel converts parsed raw groups into the output model.
func NewWorldModel(raw *WorldModelRaw) *WorldModel {
	m := &WorldModel{RootID: raw.RootID}
	m.Groups = make([]GroupModel, len(raw.Groups))
	for i, g := range raw.Groups {
		m.Groups[i] = GroupModel{
			Flags:     g.Flags,
			GroupID:   g.GroupID,
			Bounds:    g.Bounds,
			Triangles: g.Triangles,
			Vertices:  g.Vertices,
			Liquid:    g.Liquid,
		}
	}
	return m
}

// Write serializes the model.
func (m *WorldModel) Write(w io.Writer) error {
	if _, err := io.WriteString(w, VMapMagic); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "WMOD"); err != nil {
		return err
	}
	if err := binary.Write(w, ByteOrder, uint32(4)); err != nil {
		return err
	}
	if err := binary.Write(w, ByteOrder, m.RootID); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "GMOD"); err != nil {
		return err
	}
	if err := binary.Write(w, ByteOrder, uint32(len(m.Groups))); err != nil {
		return err
	}
	for i := range m.Groups {
		if err := m.Groups[i].write(w); err != nil {
			return fmt.Errorf("group %d: %w", i, err)
		}
	}

	if _, err := io.WriteString(w, "GBIH"); err != nil {
		return err
	}
	tree := bih.Build(len(m.Groups), func(i int) vmath.AABox { return m.Groups[i].Bounds })
	return tree.WriteTo(w)
}

// WriteFile serializes the model to path.
func (m *WorldModel) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := m.Write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (g *GroupModel) write(w io.Writer) error {
	var liquidFlags uint32
	if g.Liquid != nil {
		liquidFlags = 1
	}
	header := struct {
		Flags       uint32
		GroupID     uint32
		Bounds      [6]float32
		LiquidFlags uint32
	}{
		Flags:   g.Flags,
		GroupID: g.GroupID,
		Bounds: [6]float32{
			g.Bounds.Lo.X, g.Bounds.Lo.Y, g.Bounds.Lo.Z,
			g.Bounds.Hi.X, g.Bounds.Hi.Y, g.Bounds.Hi.Z,
		},
		LiquidFlags: liquidFlags,
	}
	if err := binary.Write(w, ByteOrder, &header); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "VERT"); err != nil {
		return err
	}
	if err := binary.Write(w, ByteOrder, uint32(4+len(g.Vertices)*12)); err != nil {
		return err
	}
	if err := binary.Write(w, ByteOrder, uint32(len(g.Vertices))); err != nil {
		return err
	}
	for _, v := range g.Vertices {
		if err := binary.Write(w, ByteOrder, [3]float32{v.X, v.Y, v.Z}); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "TRIM"); err != nil {
		return err
	}
	if err := binary.Write(w, ByteOrder, uint32(4+len(g.Triangles)*6)); err != nil {
		return err
	}
	if err := binary.Write(w, ByteOrder, uint32(len(g.Triangles))); err != nil {
		return err
	}
	for _, tri := range g.Triangles {
		if err := binary.Write(w, ByteOrder, [3]uint16{tri.A, tri.B, tri.C}); err != nil {
			return err
		}
	}

	if g.Liquid != nil {
		return writeLiquid(w, g.Liquid)
	}
	return nil
}

func writeLiquid(w io.Writer, liq *LiquidSurface) error {
	if _, err := io.WriteString(w, "LIQU"); err != nil {
		return err
	}
	size := 32 + len(liq.Heights)*4 + len(liq.Flags)
	if err := binary.Write(w, ByteOrder, uint32(size)); err != nil {
		return err
	}
	header := struct {
		XVerts, YVerts int32
		XTiles, YTiles int32
		Corner         [3]float32
		Type           int16
		Pad            int16
	}{
		XVerts: liq.XVerts, YVerts: liq.YVerts,
		XTiles: liq.XTiles, YTiles: liq.YTiles,
		Corner: [3]float32{liq.Corner.X, liq.Corner.Y, liq.Corner.Z},
		Type:   liq.Type,
	}
	if err := binary.Write(w, ByteOrder, &header); err != nil {
		return err
	}
	if err := binary.Write(w, ByteOrder, liq.Heights); err != nil {
		return err
	}
	_, err := w.Write(liq.Flags)
	return err
}

// ParseWorldModel parses a converted model file, the inverse of Write.
func ParseWorldModel(data []byte) (*WorldModel, error) {
	r := NewChunkReader(data)

	var ident [MagicSize]byte
	if err := r.ReadFull(ident[:]); err != nil {
		return nil, err
	}
	if string(ident[:]) != VMapMagic {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidModelMagic, trimNul(ident[:]))
	}

	if err := r.Tag("WMOD"); err != nil {
		return nil, err
	}
	if _, err := r.U32(); err != nil {
		return nil, err
	}
	m := &WorldModel{}
	var err error
	if m.RootID, err = r.U32(); err != nil {
		return nil, err
	}

	if err := r.Tag("GMOD"); err != nil {
		return nil, err
	}
	groups, err := r.U32()
	if err != nil {
		return nil, err
	}
	if int(groups) > r.Remaining() {
		return nil, fmt.Errorf("%w: %d groups", ErrOversizedCount, groups)
	}
	m.Groups = make([]GroupModel, groups)
	for g := range m.Groups {
		if err := parseGroupModel(r, &m.Groups[g]); err != nil {
			return nil, fmt.Errorf("group %d: %w", g, err)
		}
	}

	// The trailing GBIH chunk is rebuilt from group bounds on write, so
	// parsing stops after validating its tag.
	if err := r.Tag("GBIH"); err != nil {
		return nil, err
	}
	return m, nil
}

func parseGroupModel(r *ChunkReader, g *GroupModel) error {
	var err error
	if g.Flags, err = r.U32(); err != nil {
		return err
	}
	if g.GroupID, err = r.U32(); err != nil {
		return err
	}
	if g.Bounds.Lo, err = r.Vec3(); err != nil {
		return err
	}
	if g.Bounds.Hi, err = r.Vec3(); err != nil {
		return err
	}
	liquidFlags, err := r.U32()
	if err != nil {
		return err
	}

	if err := r.Tag("VERT"); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	nverts, err := r.U32()
	if err != nil {
		return err
	}
	if int(nverts) > r.Remaining()/12 {
		return fmt.Errorf("%w: %d vertices", ErrOversizedCount, nverts)
	}
	if nverts > 0 {
		g.Vertices = make([]vmath.Vec3, nverts)
		for i := range g.Vertices {
			if g.Vertices[i], err = r.Vec3(); err != nil {
				return err
			}
		}
	}

	if err := r.Tag("TRIM"); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	ntris, err := r.U32()
	if err != nil {
		return err
	}
	if int(ntris) > r.Remaining()/6 {
		return fmt.Errorf("%w: %d triangles", ErrOversizedCount, ntris)
	}
	if ntris > 0 {
		g.Triangles = make([]MeshTriangle, ntris)
		for i := range g.Triangles {
			if g.Triangles[i].A, err = r.U16(); err != nil {
				return err
			}
			if g.Triangles[i].B, err = r.U16(); err != nil {
				return err
			}
			if g.Triangles[i].C, err = r.U16(); err != nil {
				return err
			}
		}
	}

	if liquidFlags&1 != 0 {
		if g.Liquid, err = parseLiquid(r); err != nil {
			return err
		}
	}
	return nil
}
