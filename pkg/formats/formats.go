// Package formats implements the binary vmap file formats: the raw model
// files produced by the extraction step, model spawn placement records, and
// the converted runtime world-model format.
//
// All multi-byte fields use little-endian layout (ByteOrder), matching the
// x86 extractor output. Files produced by this package are not portable to
// big-endian hosts.
package formats

import "encoding/binary"

// ByteOrder is the field layout used by every vmap format.
var ByteOrder = binary.LittleEndian

// VMapMagic is the 8-byte magic of converted tree, tile and model files.
const VMapMagic = "VMAP_4.1"

// RawVMapMagic is the default magic of raw model files coming out of the
// extractor. Shorter than 8 bytes; compared zero-padded.
const RawVMapMagic = "VMAPz05"

// MagicSize is the length of a file magic header.
const MagicSize = 8
