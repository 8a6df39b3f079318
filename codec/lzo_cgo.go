//go:build cgo

package codec

import (
	"bytes"
	"fmt"

	lzo "github.com/rasky/go-lzo"

	"github.com/mdictpack/pstore/format"
)

// lzoCodec compresses blocks with LZO1X via rasky/go-lzo, a cgo binding
// over minilzo. No pack example repo imports any LZO binding (see
// SPEC_FULL.md's DOMAIN STACK); this follows the same cgo-gating the
// teacher uses for gozstd.
type lzoCodec struct{}

func newLZOCodec() (Codec, error) {
	return lzoCodec{}, nil
}

// Encode ignores level — minilzo exposes a single fixed algorithm (LZO1X-1).
func (lzoCodec) Encode(data []byte, _ uint8) ([]byte, error) {
	return lzo.Compress1X(data), nil
}

func (lzoCodec) Decode(data []byte, expectedLen int) ([]byte, error) {
	out, err := lzo.Decompress1X(bytes.NewReader(data), len(data), expectedLen)
	if err != nil {
		return nil, fmt.Errorf("lzo: %w", err)
	}

	if err := checkLen(format.EncodingLZO, len(out), expectedLen); err != nil {
		return nil, err
	}

	return out, nil
}
