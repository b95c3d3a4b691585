package assembler

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/vmap-assembler/pkg/formats"
)

// The reserved tile coordinate for map-global spawns. Only maps without
// terrain tiling use it.
const (
	GlobalTileX = 65
	GlobalTileY = 65
)

// packTileID packs a tile grid coordinate into a single map key.
func packTileID(x, y uint32) uint32 {
	return x<<16 | y
}

// unpackTileID is the exact inverse of packTileID.
func unpackTileID(id uint32) (x, y uint32) {
	return id >> 16, id & 0xFFFF
}

// MapSpawns holds one map's placement data: the authoritative spawn-ID
// mapping and the tile multimap referencing it. Every ID in TileEntries
// exists in UniqueEntries.
type MapSpawns struct {
	UniqueEntries map[uint32]*formats.ModelSpawn
	TileEntries   map[uint32][]uint32
}

func newMapSpawns() *MapSpawns {
	return &MapSpawns{
		UniqueEntries: make(map[uint32]*formats.ModelSpawn),
		TileEntries:   make(map[uint32][]uint32),
	}
}

// readMapSpawns loads the placement source. Failure to open it is fatal;
// a malformed record mid-stream truncates the input and keeps everything
// consumed so far.
func (a *TileAssembler) readMapSpawns() (map[uint32]*MapSpawns, error) {
	path := filepath.Join(a.srcDir, SpawnDirFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening placement source: %w", err)
	}
	defer f.Close()

	a.log.Info("reading coordinate mapping", zap.String("file", path))
	r := bufio.NewReader(f)
	maps := make(map[uint32]*MapSpawns)
	var records int
	for {
		var mapID, tileX, tileY uint32
		if err := binary.Read(r, formats.ByteOrder, &mapID); err != nil {
			if !errors.Is(err, io.EOF) {
				a.log.Warn("placement source truncated",
					zap.Int("records", records), zap.Error(err))
			}
			break
		}
		if err := binary.Read(r, formats.ByteOrder, &tileX); err != nil {
			a.log.Warn("placement source truncated",
				zap.Int("records", records), zap.Error(err))
			break
		}
		if err := binary.Read(r, formats.ByteOrder, &tileY); err != nil {
			a.log.Warn("placement source truncated",
				zap.Int("records", records), zap.Error(err))
			break
		}
		spawn := &formats.ModelSpawn{}
		if err := spawn.ReadFrom(r); err != nil {
			a.log.Warn("placement source truncated",
				zap.Int("records", records), zap.Error(err))
			break
		}
		records++

		current, ok := maps[mapID]
		if !ok {
			a.log.Info("registering map", zap.Uint32("map", mapID))
			current = newMapSpawns()
			maps[mapID] = current
		}
		if _, dup := current.UniqueEntries[spawn.ID]; dup {
			// Recurring IDs keep the first record; later ones only add
			// tile references.
			a.log.Debug("duplicate spawn ID",
				zap.Uint32("map", mapID), zap.Uint32("id", spawn.ID))
		} else {
			current.UniqueEntries[spawn.ID] = spawn
		}
		key := packTileID(tileX, tileY)
		current.TileEntries[key] = append(current.TileEntries[key], spawn.ID)
	}

	a.log.Info("placement records loaded",
		zap.Int("records", records), zap.Int("maps", len(maps)))
	return maps, nil
}
