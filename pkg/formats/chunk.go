package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	vmath "github.com/Faultbox/vmap-assembler/pkg/math"
)

// Chunk reader errors.
var (
	ErrShortRead      = errors.New("unexpected end of data")
	ErrTagMismatch    = errors.New("chunk tag mismatch")
	ErrOversizedCount = errors.New("count field exceeds remaining data")
)

// ChunkReader reads tag-verified, length-prefixed records from an in-memory
// byte stream. Every read either fully succeeds or returns an error; after a
// failed read the parse must be abandoned, no partial state is retained.
type ChunkReader struct {
	r *bytes.Reader
}

// NewChunkReader returns a reader over data.
func NewChunkReader(data []byte) *ChunkReader {
	return &ChunkReader{r: bytes.NewReader(data)}
}

// ReadFull fills buf or fails.
func (c *ChunkReader) ReadFull(buf []byte) error {
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return ErrShortRead
	}
	return nil
}

// Tag reads a 4-byte chunk tag and compares it against expected.
func (c *ChunkReader) Tag(expected string) error {
	var tag [4]byte
	if err := c.ReadFull(tag[:]); err != nil {
		return err
	}
	if string(tag[:]) != expected {
		return fmt.Errorf("%w: got %q, want %q", ErrTagMismatch, tag[:], expected)
	}
	return nil
}

// Skip discards n bytes.
func (c *ChunkReader) Skip(n int) error {
	if n < 0 || n > c.r.Len() {
		return ErrShortRead
	}
	if _, err := c.r.Seek(int64(n), io.SeekCurrent); err != nil {
		return ErrShortRead
	}
	return nil
}

// Remaining returns the number of unread bytes.
func (c *ChunkReader) Remaining() int {
	return c.r.Len()
}

// U16 reads an unsigned 16-bit field.
func (c *ChunkReader) U16() (uint16, error) {
	var b [2]byte
	if err := c.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return ByteOrder.Uint16(b[:]), nil
}

// U32 reads an unsigned 32-bit field.
func (c *ChunkReader) U32() (uint32, error) {
	var b [4]byte
	if err := c.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return ByteOrder.Uint32(b[:]), nil
}

// I32 reads a signed 32-bit field.
func (c *ChunkReader) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// I16 reads a signed 16-bit field.
func (c *ChunkReader) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// F32 reads an IEEE 754 single-precision field.
func (c *ChunkReader) F32() (float32, error) {
	v, err := c.U32()
	return math.Float32frombits(v), err
}

// Vec3 reads three consecutive floats.
func (c *ChunkReader) Vec3() (vmath.Vec3, error) {
	var v vmath.Vec3
	var err error
	if v.X, err = c.F32(); err != nil {
		return v, err
	}
	if v.Y, err = c.F32(); err != nil {
		return v, err
	}
	v.Z, err = c.F32()
	return v, err
}
