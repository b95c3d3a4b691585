package assembler

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/vmap-assembler/pkg/bih"
	"github.com/Faultbox/vmap-assembler/pkg/formats"
	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

// exportMap computes bounds, builds the map's spatial index and writes the
// tree file plus one tile file per occupied tile. Any write failure or
// index inconsistency aborts this map's export.
func (a *TileAssembler) exportMap(mapID uint32, data *MapSpawns) error {
	a.log.Info("calculating model bounds", zap.Uint32("map", mapID))

	ids := make([]uint32, 0, len(data.UniqueEntries))
	for id := range data.UniqueEntries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	spawns := make([]*formats.ModelSpawn, 0, len(ids))
	for _, id := range ids {
		spawn := data.UniqueEntries[id]
		switch {
		case spawn.Flags&formats.SpawnFlagModel != 0:
			if err := a.calculateTransformedBound(spawn); err != nil {
				a.log.Error("bound computation failed",
					zap.Uint32("map", mapID), zap.Uint32("spawn", spawn.ID),
					zap.Error(err))
			}
		case spawn.Flags&formats.SpawnFlagGlobal != 0:
			// Global spawns carry a bound already; shift it into the
			// terrain coordinate origin.
			spawn.Bound = spawn.Bound.Translate(
				vmath.Vec3{X: worldOriginShift, Y: worldOriginShift})
		}
		spawns = append(spawns, spawn)
		a.pendingModels[spawn.Name] = struct{}{}
	}

	a.log.Info("creating map tree",
		zap.Uint32("map", mapID), zap.Int("spawns", len(spawns)))
	tree := bih.Build(len(spawns), func(i int) vmath.AABox { return spawns[i].Bound })

	// A spawn's node index is its position in the ID-ordered build input.
	nodeIdx := make(map[uint32]uint32, len(spawns))
	for i, spawn := range spawns {
		nodeIdx[spawn.ID] = uint32(i)
	}

	if err := a.writeMapTree(mapID, data, tree); err != nil {
		return err
	}
	return a.writeTileFiles(mapID, data, nodeIdx)
}

// writeMapTree emits the per-map tree file: magic, tiled flag, the
// serialized index and the map-global spawn records.
func (a *TileAssembler) writeMapTree(mapID uint32, data *MapSpawns, tree *bih.Tree) error {
	path := filepath.Join(a.destDir, fmt.Sprintf("%03d.vmtree", mapID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating tree file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	globals := data.TileEntries[packTileID(GlobalTileX, GlobalTileY)]

	if _, err := io.WriteString(w, formats.VMapMagic); err != nil {
		return err
	}
	// Only maps without terrain tiles carry a map-global object.
	isTiled := byte(1)
	if len(globals) > 0 {
		isTiled = 0
	}
	if err := w.WriteByte(isTiled); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "NODE"); err != nil {
		return err
	}
	if err := tree.WriteTo(w); err != nil {
		return fmt.Errorf("serializing map tree: %w", err)
	}

	if _, err := io.WriteString(w, "GOBJ"); err != nil {
		return err
	}
	for _, id := range globals {
		if err := data.UniqueEntries[id].WriteTo(w); err != nil {
			return fmt.Errorf("writing global spawn %d: %w", id, err)
		}
	}
	return w.Flush()
}

// writeTileFiles emits one file per occupied non-global tile, each spawn
// record followed by its node index in the map tree.
func (a *TileAssembler) writeTileFiles(mapID uint32, data *MapSpawns, nodeIdx map[uint32]uint32) error {
	globalKey := packTileID(GlobalTileX, GlobalTileY)
	keys := make([]uint32, 0, len(data.TileEntries))
	for key := range data.TileEntries {
		if key != globalKey {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		if err := a.writeTileFile(mapID, key, data, nodeIdx); err != nil {
			return err
		}
	}
	a.log.Info("tile files written",
		zap.Uint32("map", mapID), zap.Int("tiles", len(keys)))
	return nil
}

func (a *TileAssembler) writeTileFile(mapID, key uint32, data *MapSpawns, nodeIdx map[uint32]uint32) error {
	x, y := unpackTileID(key)
	ids := data.TileEntries[key]

	path := filepath.Join(a.destDir, fmt.Sprintf("%03d_%02d_%02d.vmtile", mapID, x, y))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating tile file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := io.WriteString(w, formats.VMapMagic); err != nil {
		return err
	}
	if err := binary.Write(w, formats.ByteOrder, uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		idx, ok := nodeIdx[id]
		if !ok {
			return fmt.Errorf("tile %d/%d references spawn %d missing from the map tree", x, y, id)
		}
		if err := data.UniqueEntries[id].WriteTo(w); err != nil {
			return fmt.Errorf("writing spawn %d: %w", id, err)
		}
		if err := binary.Write(w, formats.ByteOrder, idx); err != nil {
			return err
		}
	}
	return w.Flush()
}
