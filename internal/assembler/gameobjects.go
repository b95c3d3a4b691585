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
	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

// GameObjectModelsFile is the side list of non-map-placed object models.
const GameObjectModelsFile = "temp_gameobject_models"

// gameObjectNameBufSize caps a record's declared name length; anything
// larger means the list file is corrupted.
const gameObjectNameBufSize = 500

var errCorruptModelList = errors.New("gameobject model list is corrupted")

// exportGameObjectModels rewrites the gameobject model list with each
// surviving record's model-local bound appended. Records whose model fails
// to parse are omitted; a structurally corrupt list aborts the export.
func (a *TileAssembler) exportGameObjectModels() error {
	src := filepath.Join(a.srcDir, GameObjectModelsFile)
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			a.log.Info("no gameobject model list, skipping")
			return nil
		}
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	dst := filepath.Join(a.destDir, GameObjectModelsFile)
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	a.log.Info("exporting gameobject models")
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	var kept, skipped int
	for {
		var displayID, nameLen uint32
		if err := binary.Read(r, formats.ByteOrder, &displayID); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return errCorruptModelList
		}
		if err := binary.Read(r, formats.ByteOrder, &nameLen); err != nil {
			return errCorruptModelList
		}
		if nameLen >= gameObjectNameBufSize {
			return fmt.Errorf("%w: name length %d", errCorruptModelList, nameLen)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return errCorruptModelList
		}

		raw, err := formats.ParseWorldModelRawFile(filepath.Join(a.srcDir, string(name)), a.rawMagic)
		if err != nil {
			a.log.Warn("skipping gameobject model",
				zap.String("model", string(name)), zap.Error(err))
			skipped++
			continue
		}
		a.pendingModels[string(name)] = struct{}{}

		// Union bound over all groups, model-local space.
		var bound vmath.AABox
		empty := true
		for _, grp := range raw.Groups {
			for _, v := range grp.Vertices {
				if empty {
					bound = vmath.NewAABox(v)
					empty = false
				} else {
					bound = bound.Merge(v)
				}
			}
		}

		if err := binary.Write(w, formats.ByteOrder, displayID); err != nil {
			return err
		}
		if err := binary.Write(w, formats.ByteOrder, nameLen); err != nil {
			return err
		}
		if _, err := w.Write(name); err != nil {
			return err
		}
		corners := [6]float32{
			bound.Lo.X, bound.Lo.Y, bound.Lo.Z,
			bound.Hi.X, bound.Hi.Y, bound.Hi.Z,
		}
		if err := binary.Write(w, formats.ByteOrder, &corners); err != nil {
			return err
		}
		kept++
	}

	a.log.Info("gameobject models exported",
		zap.Int("kept", kept), zap.Int("skipped", skipped))
	return w.Flush()
}
