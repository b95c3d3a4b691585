package assembler

import (
	"fmt"
	"path/filepath"

	"github.com/Faultbox/vmap-assembler/pkg/formats"
)

// convertRawFile parses one raw model file and re-serializes it into the
// runtime model format under a derived output name.
func (a *TileAssembler) convertRawFile(name string) error {
	raw, err := formats.ParseWorldModelRawFile(filepath.Join(a.srcDir, name), a.rawMagic)
	if err != nil {
		return err
	}

	model := formats.NewWorldModel(raw)
	out := filepath.Join(a.destDir, name+".vmo")
	if err := model.WriteFile(out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
