//go:build cgo

package codec

import (
	"fmt"

	"github.com/valyala/gozstd"

	"github.com/mdictpack/pstore/format"
)

// Encode compresses data using gozstd's cgo binding to the reference
// libzstd, at the level selected by zstdCgoLevel.
func (zstdCodec) Encode(data []byte, level uint8) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, zstdCgoLevel(level)), nil
}

// Decode decompresses data and verifies the result matches expectedLen.
func (zstdCodec) Decode(data []byte, expectedLen int) ([]byte, error) {
	out, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}

	if err := checkLen(format.EncodingZstd, len(out), expectedLen); err != nil {
		return nil, err
	}

	return out, nil
}
