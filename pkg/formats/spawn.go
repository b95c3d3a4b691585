package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

// Spawn flags.
const (
	// SpawnFlagModel marks doodad-class geometry whose placement data
	// carries no bound; the assembler computes one from the model mesh.
	SpawnFlagModel uint32 = 1 << 0
	// SpawnFlagGlobal marks a map-global spawn stored at the reserved
	// tile coordinate instead of a terrain tile.
	SpawnFlagGlobal uint32 = 1 << 1
	// SpawnFlagHasBound is set once Bound encloses the transformed model.
	SpawnFlagHasBound uint32 = 1 << 2
)

// MaxSpawnNameLen bounds the model name field of a spawn record. A longer
// declared length means a corrupted or hostile record.
const MaxSpawnNameLen = 500

// ErrCorruptSpawn reports a structurally invalid spawn record.
var ErrCorruptSpawn = errors.New("corrupt model spawn record")

// ModelSpawn is a placed instance of a model within a map.
type ModelSpawn struct {
	Flags uint32
	AdtID uint16 // legacy pass-through from the extractor
	ID    uint32
	Pos   vmath.Vec3
	Rot   vmath.Vec3 // Euler angles in degrees, applied Z(y)·Y(x)·X(z)
	Scale float32
	Bound vmath.AABox // world space, valid iff SpawnFlagHasBound
	Name  string
}

// HasBound reports whether a world-space bound has been computed.
func (s *ModelSpawn) HasBound() bool {
	return s.Flags&SpawnFlagHasBound != 0
}

// ReadFrom decodes one spawn record. The bound corners are present only
// when the record was written with SpawnFlagHasBound set.
func (s *ModelSpawn) ReadFrom(r io.Reader) error {
	var fixed struct {
		Flags uint32
		AdtID uint16
		ID    uint32
		Pos   [3]float32
		Rot   [3]float32
		Scale float32
	}
	if err := binary.Read(r, ByteOrder, &fixed); err != nil {
		return err
	}
	s.Flags = fixed.Flags
	s.AdtID = fixed.AdtID
	s.ID = fixed.ID
	s.Pos = vmath.Vec3{X: fixed.Pos[0], Y: fixed.Pos[1], Z: fixed.Pos[2]}
	s.Rot = vmath.Vec3{X: fixed.Rot[0], Y: fixed.Rot[1], Z: fixed.Rot[2]}
	s.Scale = fixed.Scale

	s.Bound = vmath.AABox{}
	if s.Flags&SpawnFlagHasBound != 0 {
		var corners [6]float32
		if err := binary.Read(r, ByteOrder, &corners); err != nil {
			return err
		}
		s.Bound = vmath.AABox{
			Lo: vmath.Vec3{X: corners[0], Y: corners[1], Z: corners[2]},
			Hi: vmath.Vec3{X: corners[3], Y: corners[4], Z: corners[5]},
		}
	}

	var nameLen uint32
	if err := binary.Read(r, ByteOrder, &nameLen); err != nil {
		return err
	}
	if nameLen >= MaxSpawnNameLen {
		return fmt.Errorf("%w: name length %d", ErrCorruptSpawn, nameLen)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return err
	}
	s.Name = string(name)
	return nil
}

// WriteTo encodes the record; exact inverse of ReadFrom.
func (s *ModelSpawn) WriteTo(w io.Writer) error {
	fixed := struct {
		Flags uint32
		AdtID uint16
		ID    uint32
		Pos   [3]float32
		Rot   [3]float32
		Scale float32
	}{
		Flags: s.Flags,
		AdtID: s.AdtID,
		ID:    s.ID,
		Pos:   [3]float32{s.Pos.X, s.Pos.Y, s.Pos.Z},
		Rot:   [3]float32{s.Rot.X, s.Rot.Y, s.Rot.Z},
		Scale: s.Scale,
	}
	if err := binary.Write(w, ByteOrder, &fixed); err != nil {
		return err
	}
	if s.Flags&SpawnFlagHasBound != 0 {
		corners := [6]float32{
			s.Bound.Lo.X, s.Bound.Lo.Y, s.Bound.Lo.Z,
			s.Bound.Hi.X, s.Bound.Hi.Y, s.Bound.Hi.Z,
		}
		if err := binary.Write(w, ByteOrder, &corners); err != nil {
			return err
		}
	}
	if err := binary.Write(w, ByteOrder, uint32(len(s.Name))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s.Name))
	return err
}
