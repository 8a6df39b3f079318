//go:build !cgo

package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/mdictpack/pstore/format"
)

// Pooled decoders — klauspost's own docs recommend reuse after warmup.
// Encoders are not pooled: Encode creates one per call at the requested
// level. Grounded on compress/zstd_pure.go's zstdDecoderPool.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		d, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("codec: failed to create zstd decoder: %v", err))
		}

		return d
	},
}

// Encode compresses data at the given level (see zstdLevel for the
// spec-to-klauspost level mapping).
func (zstdCodec) Encode(data []byte, level uint8) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel(level)))
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil), nil
}

// Decode decompresses data and verifies the result matches expectedLen.
func (zstdCodec) Decode(data []byte, expectedLen int) ([]byte, error) {
	dec, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}

	if err := checkLen(format.EncodingZstd, len(out), expectedLen); err != nil {
		return nil, err
	}

	return out, nil
}
