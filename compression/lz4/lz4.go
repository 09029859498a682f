// Package lz4 implements compression.Strategy with pierrec/lz4/v4, the
// direct Go analogue of the original source's lz4_compress-backed Lz4
// strategy (_examples/original_source/src/compression/lz4.rs). The
// dependency itself already lives in the teacher's go.mod as a transitive
// dependency of franz-go's wire codec; this is its one first-class,
// directly-imported use in the module.
package lz4

import (
	"bytes"

	"github.com/pierrec/lz4/v4"

	"github.com/TimonPost/net-sync/syncerr"
)

// Strategy compresses with the LZ4 block format.
type Strategy struct{}

// New constructs the default LZ4 compression.Strategy.
func New() *Strategy { return &Strategy{} }

// Compress is infallible: an oversized or pathological input degrades to
// a larger-than-input block, it never errors.
func (*Strategy) Compress(data []byte) []byte {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, buf)
	if err != nil || n == 0 {
		// Incompressible or too small for the block format; fall back to
		// storing the buffer verbatim behind a single 0 tag byte (the
		// compressed form carries tag 1) so Decompress can tell the two
		// cases apart.
		return append([]byte{0}, data...)
	}
	return append([]byte{1}, buf[:n]...)
}

// Decompress reverses Compress. A truncated or corrupt buffer surfaces as
// a CompressionError, never a panic.
func (*Strategy) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, syncerr.NewCompressionError(bytes.ErrTooLarge)
	}

	tag, body := data[0], data[1:]
	if tag == 0 {
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	}

	// The decompressed size is unknown to the receiver; grow a scratch
	// buffer until lz4 stops reporting a too-small destination.
	dst := make([]byte, len(body)*4+64)
	for {
		n, err := lz4.UncompressBlock(body, dst)
		if err == nil {
			return dst[:n], nil
		}
		if err == lz4.ErrInvalidSourceShortBuffer {
			dst = make([]byte, len(dst)*2)
			continue
		}
		return nil, syncerr.NewCompressionError(err)
	}
}
