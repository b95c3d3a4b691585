package assembler

import (
	"fmt"
	stdmath "math"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/vmap-assembler/pkg/formats"
	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

// worldOriginShift relocates map-global spawns: WMO-only maps and tiled
// terrain maps use different origins, 32 grid cells of 533.33333 units.
const worldOriginShift = 533.33333 * 32

// modelPosition applies a placement's scale-then-rotation to model-local
// vertices. Translation is added separately by the caller.
type modelPosition struct {
	rot   vmath.Quat
	scale float32
}

func newModelPosition(rotDeg vmath.Vec3, scale float32) modelPosition {
	return modelPosition{
		rot: vmath.QuatFromEulerZYX(
			deg2rad(rotDeg.Y), deg2rad(rotDeg.X), deg2rad(rotDeg.Z)),
		scale: scale,
	}
}

func (p modelPosition) transform(v vmath.Vec3) vmath.Vec3 {
	return p.rot.Rotate(v.Scale(p.scale))
}

func deg2rad(deg float32) float32 {
	return deg * stdmath.Pi / 180
}

// calculateTransformedBound parses the spawn's model, folds every
// transformed vertex into a world-space box and marks the spawn as
// bounded. A model without geometry is reported and leaves the spawn
// without a bound; a parse failure is returned to the caller.
func (a *TileAssembler) calculateTransformedBound(spawn *formats.ModelSpawn) error {
	path := filepath.Join(a.srcDir, spawn.Name)
	raw, err := formats.ParseWorldModelRawFile(path, a.rawMagic)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", spawn.Name, err)
	}

	if len(raw.Groups) != 1 {
		a.log.Warn("unexpected group count for doodad model",
			zap.String("model", spawn.Name), zap.Int("groups", len(raw.Groups)))
	}

	pos := newModelPosition(spawn.Rot, spawn.Scale)
	var bound vmath.AABox
	empty := true
	for _, grp := range raw.Groups {
		if len(grp.Vertices) == 0 {
			a.log.Warn("model group has no geometry",
				zap.String("model", spawn.Name), zap.Uint32("group", grp.GroupID))
			continue
		}
		for _, v := range grp.Vertices {
			tv := pos.transform(v)
			if empty {
				bound = vmath.NewAABox(tv)
				empty = false
			} else {
				bound = bound.Merge(tv)
			}
		}
	}
	if empty {
		return nil
	}

	spawn.Bound = bound.Translate(spawn.Pos)
	spawn.Flags |= formats.SpawnFlagHasBound
	return nil
}
