// Package compression provides optional value compression for the state store.
// Stored values carry a one-byte format tag so that a store can be reopened
// with a different compressor setting.
package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

const (
	formatRaw byte = 0
	formatLZ4 byte = 1
)

var ErrCorrupt = errors.New("corrupt compressed value")

// Compressor encodes and decodes stored values.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ForName returns the compressor registered under the given name.
func ForName(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return &NoCompressor{}, nil
	case "lz4":
		return &LZ4Compressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}
}

// NoCompressor stores values with the raw format tag.
type NoCompressor struct{}

func (c *NoCompressor) Name() string { return "none" }

func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data)+1)
	out[0] = formatRaw
	copy(out[1:], data)
	return out, nil
}

func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	return decode(data)
}

// LZ4Compressor stores values LZ4 block-compressed, prefixed with the
// uncompressed length. Values that don't shrink are stored raw.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string { return "lz4" }

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	buf := make([]byte, 5+lz4.CompressBlockBound(len(data)))
	buf[0] = formatLZ4
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(data)))

	n, err := lz4.CompressBlock(data, buf[5:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	// n == 0 means the block is incompressible
	if n == 0 || n >= len(data) {
		return (&NoCompressor{}).Compress(data)
	}
	return buf[:5+n], nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	return decode(data)
}

// decode handles both formats regardless of the active compressor.
func decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrCorrupt
	}
	switch data[0] {
	case formatRaw:
		out := make([]byte, len(data)-1)
		copy(out, data[1:])
		return out, nil
	case formatLZ4:
		if len(data) < 5 {
			return nil, ErrCorrupt
		}
		size := binary.BigEndian.Uint32(data[1:5])
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data[5:], out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if uint32(n) != size {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, ErrCorrupt
	}
}
