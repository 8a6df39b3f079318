package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/mdictpack/pstore/format"
)

// gzipCodec compresses blocks with DEFLATE via klauspost/compress/gzip, a
// drop-in, faster replacement for the standard library's compress/gzip
// (same package shape, so the adapter reads like one built on stdlib).
type gzipCodec struct{}

// gzipLevel maps spec.md's 0..=10 scale onto gzip's native 1..=9 scale
// (DESIGN.md Open Question (c)): 0 is the encoder default, 1..=9 pass
// through unchanged, and 10 is clamped to 9.
func gzipLevel(level uint8) int {
	if level == 0 {
		return gzip.DefaultCompression
	}
	if level > 9 {
		return 9
	}

	return int(level)
}

func (gzipCodec) Encode(data []byte, level uint8) ([]byte, error) {
	var buf bytes.Buffer

	w, err := gzip.NewWriterLevel(&buf, gzipLevel(level))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	return buf.Bytes(), nil
}

func (gzipCodec) Decode(data []byte, expectedLen int) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	if err := checkLen(format.EncodingGzip, len(out), expectedLen); err != nil {
		return nil, err
	}

	return out, nil
}
