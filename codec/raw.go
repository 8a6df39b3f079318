package codec

import "github.com/mdictpack/pstore/format"

// rawCodec is the identity codec: compressed and uncompressed sizes are
// equal, per spec §4.2 ("compression is the identity function").
type rawCodec struct{}

// Encode returns data unchanged; the compression level is ignored.
func (rawCodec) Encode(data []byte, _ uint8) ([]byte, error) {
	return data, nil
}

// Decode returns data unchanged, after verifying its length matches the
// hint (spec §4.4's RAW-specific invariant: compressed_len == uncompressed_len).
func (rawCodec) Decode(data []byte, expectedLen int) ([]byte, error) {
	if err := checkLen(format.EncodingRaw, len(data), expectedLen); err != nil {
		return nil, err
	}

	return data, nil
}
