// Package codec provides the compression/decompression adapters behind
// each persisted encoding id (spec §4.4, §6). Exactly one codec is active
// per file — the header's encoding_id selects it — and every block in
// that file is compressed with the same codec and level.
package codec

import (
	"fmt"

	"github.com/mdictpack/pstore/format"
	"github.com/mdictpack/pstore/perrs"
)

// Codec compresses and decompresses whole blocks for one encoding id.
//
// Encode receives a compression level already clamped into [0, 10] by the
// caller (0 means "codec default"); codecs that don't support a level
// scale simply ignore it.
//
// Decode receives expectedLen, the uncompressed length recorded for this
// block in the prefix-sum table. Implementations must verify they
// produced exactly that many bytes and return a decode error on mismatch
// — this is what catches truncation and cross-block corruption (spec
// §4.4). A negative or zero expectedLen means "unknown": implementations
// must still decode correctly in that case, just without the extra
// verification. The Reader passes 0 for a block whose recorded
// uncompressed length is zero, so such blocks are not length-checked.
type Codec interface {
	Encode(data []byte, level uint8) ([]byte, error)
	Decode(data []byte, expectedLen int) ([]byte, error)
}

// New returns the Codec for the given encoding id, or an error if the id
// is unrecognized or its implementation is unavailable in this build
// (e.g. a cgo-only codec built without cgo).
func New(id format.EncodingID) (Codec, error) {
	switch id {
	case format.EncodingRaw:
		return rawCodec{}, nil
	case format.EncodingGzip:
		return gzipCodec{}, nil
	case format.EncodingZstd:
		return newZstdCodec(), nil
	case format.EncodingLZ4:
		return lz4Codec{}, nil
	case format.EncodingLZO:
		return newLZOCodec()
	default:
		return nil, perrs.UnknownEncodingError{EncodingID: uint8(id)}
	}
}

// checkLen returns a decode error if got != expected and expected is a
// known (positive) length.
func checkLen(id format.EncodingID, got, expected int) error {
	if expected > 0 && got != expected {
		return fmt.Errorf("%s: decoded %d bytes, expected %d", id, got, expected)
	}

	return nil
}
