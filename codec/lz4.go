package codec

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/mdictpack/pstore/format"
)

// lz4CompressorPool pools lz4.Compressor instances; it maintains a
// dictionary-window table that's worth reusing across calls. Grounded on
// compress/lz4.go's lz4CompressorPool.
var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

type lz4Codec struct{}

// Encode maps the level onto pierrec/lz4/v4's block API, which exposes no
// numeric level, only a fast path and a separate HC (high-compression)
// encoder. DESIGN.md Open Question (c): levels 0-9 use the fast block
// encoder; level 10 switches to the HC encoder for best ratio.
func (lz4Codec) Encode(data []byte, level uint8) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	if level >= 10 {
		var hc lz4.CompressorHC
		n, err := hc.CompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}

		return dst[:n], nil
	}

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}

	return dst[:n], nil
}

// Decode decompresses an LZ4 block. When expectedLen is known (the common
// case — the prefix-sum table always supplies it for ReadRange/IterBlocks)
// the destination buffer is sized exactly once; otherwise it falls back to
// the adaptive doubling strategy from compress/lz4.go for callers that
// genuinely don't know the size up front.
func (lz4Codec) Decode(data []byte, expectedLen int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if expectedLen > 0 {
		dst := make([]byte, expectedLen)

		n, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}

		if err := checkLen(format.EncodingLZ4, n, expectedLen); err != nil {
			return nil, err
		}

		return dst[:n], nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		dst := make([]byte, bufSize)

		n, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, fmt.Errorf("lz4: %w", err)
		}

		return dst[:n], nil
	}

	return nil, fmt.Errorf("lz4: %w", lz4.ErrInvalidSourceShortBuffer)
}
