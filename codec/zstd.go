package codec

import "github.com/klauspost/compress/zstd"

// zstdCodec compresses blocks with Zstandard. Its Encode/Decode methods
// live in zstd_pure.go (!cgo, backed by klauspost/compress/zstd, pure Go)
// and zstd_cgo.go (cgo, backed by valyala/gozstd, a cgo binding to the
// reference libzstd) — exactly the split the teacher repo structures
// around ZstdCompressor, except here the cgo path is actually wired
// (the teacher leaves it behind a permanently-disabled build tag, with
// gozstd declared in go.mod but never compiled in).
type zstdCodec struct{}

func newZstdCodec() zstdCodec {
	return zstdCodec{}
}

// zstdLevel maps spec.md's 0..=10 scale onto klauspost's four speed
// buckets (DESIGN.md Open Question (c)).
func zstdLevel(level uint8) zstd.EncoderLevel {
	switch {
	case level == 0:
		return zstd.SpeedDefault
	case level <= 3:
		return zstd.SpeedFastest
	case level <= 6:
		return zstd.SpeedDefault
	case level <= 8:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// zstdCgoLevel maps the same scale onto gozstd's native 1..=22 integer
// levels for the cgo path.
func zstdCgoLevel(level uint8) int {
	switch {
	case level == 0:
		return 3 // gozstd's own default
	case level >= 10:
		return 19
	default:
		return int(level) * 2
	}
}
