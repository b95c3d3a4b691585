// Package assembler drives the offline vmap conversion pipeline: it loads
// placement records, computes world-space bounds, builds a spatial index
// per map, writes the tiled output files and converts the referenced
// models to the runtime format.
package assembler

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
)

// SpawnDirFile is the placement source inside the source directory.
const SpawnDirFile = "dir_bin"

// TileAssembler runs one conversion pass from srcDir to destDir.
//
// The pending-model set lives for exactly one ConvertWorld call: populated
// while maps and gameobject lists are exported, drained once by the model
// conversion phase.
type TileAssembler struct {
	srcDir   string
	destDir  string
	rawMagic string
	log      *zap.Logger

	pendingModels map[string]struct{}
}

// New returns an assembler reading raw data from srcDir and writing
// converted vmaps to destDir. rawMagic is the expected raw-model magic.
func New(srcDir, destDir, rawMagic string, log *zap.Logger) *TileAssembler {
	return &TileAssembler{
		srcDir:        srcDir,
		destDir:       destDir,
		rawMagic:      rawMagic,
		log:           log,
		pendingModels: make(map[string]struct{}),
	}
}

// ConvertWorld runs the full pipeline. The returned error is non-nil if
// the placement source could not be read at all or any map's export
// failed; skipped individual models do not fail the run.
func (a *TileAssembler) ConvertWorld() error {
	if err := os.MkdirAll(a.destDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	maps, err := a.readMapSpawns()
	if err != nil {
		return err
	}

	mapIDs := make([]uint32, 0, len(maps))
	for id := range maps {
		mapIDs = append(mapIDs, id)
	}
	sort.Slice(mapIDs, func(i, j int) bool { return mapIDs[i] < mapIDs[j] })

	var failedMaps int
	for _, mapID := range mapIDs {
		if err := a.exportMap(mapID, maps[mapID]); err != nil {
			a.log.Error("map export failed",
				zap.Uint32("map", mapID), zap.Error(err))
			failedMaps++
			continue
		}
		// Release the map's spawn data before the next map is processed.
		delete(maps, mapID)
	}

	if err := a.exportGameObjectModels(); err != nil {
		a.log.Warn("gameobject model export aborted", zap.Error(err))
	}

	a.convertModels()

	if failedMaps > 0 {
		return fmt.Errorf("%d of %d maps failed to export", failedMaps, len(mapIDs))
	}
	return nil
}

// convertModels drains the pending-model set, converting each distinct
// model file exactly once. Per-model failures are reported and skipped.
func (a *TileAssembler) convertModels() {
	names := make([]string, 0, len(a.pendingModels))
	for name := range a.pendingModels {
		names = append(names, name)
	}
	sort.Strings(names)
	a.pendingModels = make(map[string]struct{})

	a.log.Info("converting model files", zap.Int("count", len(names)))
	var failed int
	for _, name := range names {
		if err := a.convertRawFile(name); err != nil {
			a.log.Error("model conversion failed",
				zap.String("model", name), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		a.log.Warn("some models were not converted",
			zap.Int("failed", failed), zap.Int("total", len(names)))
	}
}
