package codec_test

import (
	"bytes"
	"testing"

	"github.com/mdictpack/pstore/codec"
	"github.com/mdictpack/pstore/format"
)

// TestLZOCodec_RoundTrip exercises whichever newLZOCodec build is active.
// Under !cgo, codec.New is expected to refuse the encoding outright; under
// cgo it should round-trip like every other codec.
func TestLZOCodec_RoundTrip(t *testing.T) {
	c, err := codec.New(format.EncodingLZO)
	if err != nil {
		t.Skipf("LZO unavailable in this build: %v", err)
	}

	payload := bytes.Repeat([]byte("lzo minilzo cgo binding payload "), 600)

	encoded, err := c.Encode(payload, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := c.Decode(encoded, len(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !bytes.Equal(payload, decoded) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(decoded), len(payload))
	}
}
