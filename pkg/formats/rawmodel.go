package formats

import (
	"errors"
	"fmt"
	"os"

	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

// Raw model format errors.
var (
	ErrInvalidRawMagic = errors.New("invalid raw model magic")
	ErrTruncatedRaw    = errors.New("truncated raw model data")
)

// MeshTriangle indexes three vertices of a group mesh.
type MeshTriangle struct {
	A, B, C uint16
}

// LiquidSurface is an optional per-group grid of liquid heights and
// per-cell flags. Heights has XVerts*YVerts entries, Flags XTiles*YTiles.
type LiquidSurface struct {
	XVerts, YVerts int32
	XTiles, YTiles int32
	Corner         vmath.Vec3
	Type           int16
	Heights        []float32
	Flags          []byte
}

// GroupModelRaw is one geometry group of a raw model file.
type GroupModelRaw struct {
	Flags       uint32
	GroupID     uint32
	Bounds      vmath.AABox
	LiquidFlags uint32
	Triangles   []MeshTriangle
	Vertices    []vmath.Vec3
	Liquid      *LiquidSurface
}

// WorldModelRaw is the parse result of one raw model file.
type WorldModelRaw struct {
	RootID uint32
	Groups []GroupModelRaw
}

// ParseWorldModelRaw parses raw model data. magic is the expected file
// magic; literals shorter than 8 bytes are compared zero-padded.
func ParseWorldModelRaw(data []byte, magic string) (*WorldModelRaw, error) {
	r := NewChunkReader(data)

	var ident [MagicSize]byte
	if err := r.ReadFull(ident[:]); err != nil {
		return nil, err
	}
	var want [MagicSize]byte
	copy(want[:], magic)
	if ident != want {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrInvalidRawMagic, trimNul(ident[:]), magic)
	}

	// One reserved field from the export step, unused here.
	if err := r.Skip(4); err != nil {
		return nil, err
	}

	groups, err := r.U32()
	if err != nil {
		return nil, err
	}
	model := &WorldModelRaw{}
	if model.RootID, err = r.U32(); err != nil {
		return nil, err
	}

	if int(groups) > r.Remaining() {
		return nil, fmt.Errorf("%w: %d groups", ErrOversizedCount, groups)
	}

	model.Groups = make([]GroupModelRaw, groups)
	for g := range model.Groups {
		if err := parseGroupRaw(r, &model.Groups[g]); err != nil {
			return nil, fmt.Errorf("group %d: %w", g, err)
		}
	}
	return model, nil
}

// ParseWorldModelRawFile parses a raw model file from disk.
func ParseWorldModelRawFile(path, magic string) (*WorldModelRaw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw model file: %w", err)
	}
	return ParseWorldModelRaw(data, magic)
}

// parseGroupRaw reads one group record: fixed header, then the "GRP ",
// "INDX" and "VERT" chunks in that order, then "LIQU" if the liquid flag
// bit is set.
func parseGroupRaw(r *ChunkReader, grp *GroupModelRaw) error {
	var err error
	if grp.Flags, err = r.U32(); err != nil {
		return err
	}
	if grp.GroupID, err = r.U32(); err != nil {
		return err
	}
	if grp.Bounds.Lo, err = r.Vec3(); err != nil {
		return err
	}
	if grp.Bounds.Hi, err = r.Vec3(); err != nil {
		return err
	}
	if grp.LiquidFlags, err = r.U32(); err != nil {
		return err
	}

	// Branch block: per-branch index counts, informational only.
	if err := r.Tag("GRP "); err != nil {
		return err
	}
	if _, err := r.I32(); err != nil { // block size
		return err
	}
	branches, err := r.U32()
	if err != nil {
		return err
	}
	if int(branches) > r.Remaining()/4 {
		return fmt.Errorf("%w: %d branches", ErrOversizedCount, branches)
	}
	if err := r.Skip(int(branches) * 4); err != nil {
		return err
	}

	// Triangle indices, 16-bit, grouped in triples.
	if err := r.Tag("INDX"); err != nil {
		return err
	}
	if _, err := r.I32(); err != nil {
		return err
	}
	nindexes, err := r.U32()
	if err != nil {
		return err
	}
	if int(nindexes) > r.Remaining()/2 {
		return fmt.Errorf("%w: %d indices", ErrOversizedCount, nindexes)
	}
	if nindexes > 0 {
		idx := make([]uint16, nindexes)
		for i := range idx {
			if idx[i], err = r.U16(); err != nil {
				return err
			}
		}
		grp.Triangles = make([]MeshTriangle, 0, nindexes/3)
		for i := 0; i+2 < len(idx); i += 3 {
			grp.Triangles = append(grp.Triangles, MeshTriangle{idx[i], idx[i+1], idx[i+2]})
		}
	}

	// Vertices, 3 floats each.
	if err := r.Tag("VERT"); err != nil {
		return err
	}
	if _, err := r.I32(); err != nil {
		return err
	}
	nvectors, err := r.U32()
	if err != nil {
		return err
	}
	if int(nvectors) > r.Remaining()/12 {
		return fmt.Errorf("%w: %d vertices", ErrOversizedCount, nvectors)
	}
	if nvectors > 0 {
		grp.Vertices = make([]vmath.Vec3, nvectors)
		for i := range grp.Vertices {
			if grp.Vertices[i], err = r.Vec3(); err != nil {
				return err
			}
		}
	}

	if grp.LiquidFlags&1 != 0 {
		if grp.Liquid, err = parseLiquid(r); err != nil {
			return err
		}
	}
	return nil
}

// parseLiquid reads the "LIQU" chunk: fixed header plus height and flag
// grids sized exactly to the header dimensions.
func parseLiquid(r *ChunkReader) (*LiquidSurface, error) {
	if err := r.Tag("LIQU"); err != nil {
		return nil, err
	}
	if _, err := r.I32(); err != nil {
		return nil, err
	}

	liq := &LiquidSurface{}
	var err error
	if liq.XVerts, err = r.I32(); err != nil {
		return nil, err
	}
	if liq.YVerts, err = r.I32(); err != nil {
		return nil, err
	}
	if liq.XTiles, err = r.I32(); err != nil {
		return nil, err
	}
	if liq.YTiles, err = r.I32(); err != nil {
		return nil, err
	}
	if liq.Corner, err = r.Vec3(); err != nil {
		return nil, err
	}
	if liq.Type, err = r.I16(); err != nil {
		return nil, err
	}
	// Two trailing alignment bytes from the extractor's header layout.
	if err := r.Skip(2); err != nil {
		return nil, err
	}

	if liq.XVerts < 0 || liq.YVerts < 0 || liq.XTiles < 0 || liq.YTiles < 0 {
		return nil, fmt.Errorf("%w: negative liquid dimensions", ErrTruncatedRaw)
	}
	nheights := int(liq.XVerts) * int(liq.YVerts)
	nflags := int(liq.XTiles) * int(liq.YTiles)
	if nheights > r.Remaining()/4 || nflags > r.Remaining() {
		return nil, fmt.Errorf("%w: liquid grid %dx%d/%dx%d", ErrOversizedCount,
			liq.XVerts, liq.YVerts, liq.XTiles, liq.YTiles)
	}

	liq.Heights = make([]float32, nheights)
	for i := range liq.Heights {
		if liq.Heights[i], err = r.F32(); err != nil {
			return nil, err
		}
	}
	liq.Flags = make([]byte, nflags)
	if err := r.ReadFull(liq.Flags); err != nil {
		return nil, err
	}
	return liq, nil
}

func trimNul(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
