// Package format defines the on-disk byte layout of a packed storage file:
// the fixed header, the prefix-sum index entries, and the encoding id
// enumeration. It imposes no policy of its own — it is the single source
// of truth for byte offsets and field widths, consumed by both the writer
// and the reader halves of package pstore.
package format

// EncodingID identifies the compression codec applied to every block in a
// given file. It is persisted in the header and is the same for all blocks.
type EncodingID uint8

const (
	// EncodingRaw stores blocks uncompressed; compressed and uncompressed
	// sizes are equal.
	EncodingRaw EncodingID = 0
	// EncodingLZO compresses blocks with LZO.
	EncodingLZO EncodingID = 1
	// EncodingGzip compresses blocks with gzip (DEFLATE).
	EncodingGzip EncodingID = 2
	// EncodingZstd compresses blocks with Zstandard.
	EncodingZstd EncodingID = 3
	// EncodingLZ4 compresses blocks with LZ4.
	EncodingLZ4 EncodingID = 4
)

// IsKnown reports whether e is one of the recognized encoding ids.
func (e EncodingID) IsKnown() bool {
	switch e {
	case EncodingRaw, EncodingLZO, EncodingGzip, EncodingZstd, EncodingLZ4:
		return true
	default:
		return false
	}
}

func (e EncodingID) String() string {
	switch e {
	case EncodingRaw:
		return "Raw"
	case EncodingLZO:
		return "LZO"
	case EncodingGzip:
		return "Gzip"
	case EncodingZstd:
		return "Zstd"
	case EncodingLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// MaxCompressionLevel is the highest compression_level accepted by the
// header; 0 means "encoder default".
const MaxCompressionLevel = 10
