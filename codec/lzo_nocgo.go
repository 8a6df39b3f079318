//go:build !cgo

package codec

import (
	"github.com/mdictpack/pstore/format"
	"github.com/mdictpack/pstore/perrs"
)

// newLZOCodec reports that LZO support is unavailable in a cgo-free build.
// spec.md §4.4 permits skipping adapters whose underlying codec is
// unavailable, provided files carrying that encoding_id are refused rather
// than silently misread.
func newLZOCodec() (Codec, error) {
	return nil, perrs.UnknownEncodingError{EncodingID: uint8(format.EncodingLZO)}
}
