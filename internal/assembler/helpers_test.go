package assembler

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/vmap-assembler/pkg/formats"
	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

const testRawMagic = "VMAPz05"

// newTestAssembler returns an assembler over fresh temp directories.
func newTestAssembler(t *testing.T) *TileAssembler {
	t.Helper()
	return New(t.TempDir(), t.TempDir(), testRawMagic, zap.NewNop())
}

// rawModelBytes builds a minimal single-group raw model file image.
func rawModelBytes(vertices []vmath.Vec3) []byte {
	buf := new(bytes.Buffer)
	var ident [formats.MagicSize]byte
	copy(ident[:], testRawMagic)
	buf.Write(ident[:])
	binary.Write(buf, formats.ByteOrder, uint32(0)) // reserved
	binary.Write(buf, formats.ByteOrder, uint32(1)) // group count
	binary.Write(buf, formats.ByteOrder, uint32(99))

	binary.Write(buf, formats.ByteOrder, uint32(0)) // group flags
	binary.Write(buf, formats.ByteOrder, uint32(1)) // group ID
	binary.Write(buf, formats.ByteOrder, [6]float32{})
	binary.Write(buf, formats.ByteOrder, uint32(0)) // liquid flags

	buf.WriteString("GRP ")
	binary.Write(buf, formats.ByteOrder, int32(4))
	binary.Write(buf, formats.ByteOrder, uint32(0))

	buf.WriteString("INDX")
	binary.Write(buf, formats.ByteOrder, int32(4))
	binary.Write(buf, formats.ByteOrder, uint32(0))

	buf.WriteString("VERT")
	binary.Write(buf, formats.ByteOrder, int32(4+len(vertices)*12))
	binary.Write(buf, formats.ByteOrder, uint32(len(vertices)))
	for _, v := range vertices {
		binary.Write(buf, formats.ByteOrder, [3]float32{v.X, v.Y, v.Z})
	}
	return buf.Bytes()
}

// writeRawModel places a raw model file in the assembler's source dir.
func writeRawModel(t *testing.T, a *TileAssembler, name string, vertices []vmath.Vec3) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(a.srcDir, name), rawModelBytes(vertices), 0644); err != nil {
		t.Fatalf("writing raw model fixture: %v", err)
	}
}

// writeSpawnDir places a dir_bin placement source in the source dir.
func writeSpawnDir(t *testing.T, a *TileAssembler, records []spawnRecord) {
	t.Helper()
	buf := new(bytes.Buffer)
	for _, rec := range records {
		binary.Write(buf, formats.ByteOrder, rec.mapID)
		binary.Write(buf, formats.ByteOrder, rec.tileX)
		binary.Write(buf, formats.ByteOrder, rec.tileY)
		if err := rec.spawn.WriteTo(buf); err != nil {
			t.Fatalf("encoding spawn fixture: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(a.srcDir, SpawnDirFile), buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing placement source: %v", err)
	}
}

type spawnRecord struct {
	mapID, tileX, tileY uint32
	spawn               formats.ModelSpawn
}
