package format

import (
	"github.com/mdictpack/pstore/endian"
	"github.com/mdictpack/pstore/perrs"
)

// engine is the fixed little-endian engine every multi-byte field in this
// package is encoded with. The format never adapts to host byte order
// (spec invariant 7), so unlike mebo's per-blob EndianEngine choice, this
// is not a parameter.
var engine = endian.GetLittleEndianEngine()

// Magic identifies a packed storage file. It occupies the first 8 bytes
// of the header and never changes across versions.
var Magic = [8]byte{'P', 'K', 'G', 'S', 'T', 'R', 'G', '1'}

// CurrentVersion is the only version this package knows how to read and
// write. Unknown versions are rejected outright — see spec invariant 1.
const CurrentVersion uint8 = 1

// HeaderSize is the fixed size, in bytes, of the file header.
const HeaderSize = 32

// PrefixEntrySize is the fixed size, in bytes, of one prefix-sum table
// entry (compressed_end, uncompressed_end).
const PrefixEntrySize = 16

// Header is the fixed 32-byte region at the start of every packed storage
// file. All multi-byte integers are little-endian; see spec invariant 7 —
// this format never adapts to host byte order.
type Header struct {
	Version          uint8
	Flags            uint8
	EncodingID       EncodingID
	CompressionLevel uint8
	NumBlocks        uint64
	NumEntries       uint64
}

// MarshalBinary serializes h into a new HeaderSize-byte slice.
//
// Reserved fields are always written as zero, per spec invariant 7.
func (h Header) MarshalBinary() ([]byte, error) {
	if h.CompressionLevel > MaxCompressionLevel {
		return nil, perrs.InvalidLevelError{Level: h.CompressionLevel}
	}

	b := make([]byte, HeaderSize)
	copy(b[0:8], Magic[:])
	b[8] = h.Version
	b[9] = h.Flags
	// b[10:12] reserved, left zero
	b[12] = uint8(h.EncodingID)
	b[13] = h.CompressionLevel
	// b[14:16] reserved, left zero
	engine.PutUint64(b[16:24], h.NumBlocks)
	engine.PutUint64(b[24:32], h.NumEntries)

	return b, nil
}

// UnmarshalBinary parses a Header from exactly HeaderSize bytes.
//
// It validates the magic, version, encoding id, and compression level, and
// rejects a nonzero flags byte or nonzero reserved bytes (the conservative choice for forward
// compatibility — see DESIGN.md Open Question (b)). It does not validate
// the prefix-sum table or block region; callers do that separately once
// NumBlocks is known.
func UnmarshalBinary(b []byte) (Header, error) {
	var h Header

	if len(b) != HeaderSize {
		return h, perrs.MalformedHeaderError{Reason: "short header"}
	}

	if [8]byte(b[0:8]) != Magic {
		return h, perrs.MalformedHeaderError{Reason: "bad magic"}
	}

	version := b[8]
	if version != CurrentVersion {
		return h, perrs.UnsupportedVersionError{Version: version}
	}

	flags := b[9]
	if flags != 0 {
		return h, perrs.MalformedHeaderError{Reason: "nonzero flags"}
	}
	if b[10] != 0 || b[11] != 0 || b[14] != 0 || b[15] != 0 {
		return h, perrs.MalformedHeaderError{Reason: "nonzero reserved field"}
	}

	encodingID := EncodingID(b[12])
	if !encodingID.IsKnown() {
		return h, perrs.UnknownEncodingError{EncodingID: b[12]}
	}

	level := b[13]
	if level > MaxCompressionLevel {
		return h, perrs.InvalidLevelError{Level: level}
	}

	h.Version = version
	h.Flags = flags
	h.EncodingID = encodingID
	h.CompressionLevel = level
	h.NumBlocks = engine.Uint64(b[16:24])
	h.NumEntries = engine.Uint64(b[24:32])

	return h, nil
}

// PrefixEntry is one (compressed_end, uncompressed_end) pair from the
// prefix-sum table, as specified in the data model's invariants.
type PrefixEntry struct {
	CompressedEnd   uint64
	UncompressedEnd uint64
}

// MarshalBinary serializes e into a new PrefixEntrySize-byte slice.
func (e PrefixEntry) MarshalBinary() []byte {
	b := make([]byte, PrefixEntrySize)
	engine.PutUint64(b[0:8], e.CompressedEnd)
	engine.PutUint64(b[8:16], e.UncompressedEnd)

	return b
}

// AppendBinary appends the serialized form of e to dst and returns the
// extended slice, avoiding an intermediate allocation when building the
// table incrementally.
func (e PrefixEntry) AppendBinary(dst []byte) []byte {
	dst = engine.AppendUint64(dst, e.CompressedEnd)
	dst = engine.AppendUint64(dst, e.UncompressedEnd)

	return dst
}

// ParsePrefixEntry parses one entry from exactly PrefixEntrySize bytes.
func ParsePrefixEntry(b []byte) (PrefixEntry, error) {
	if len(b) != PrefixEntrySize {
		return PrefixEntry{}, perrs.MalformedHeaderError{Reason: "short prefix entry"}
	}

	return PrefixEntry{
		CompressedEnd:   engine.Uint64(b[0:8]),
		UncompressedEnd: engine.Uint64(b[8:16]),
	}, nil
}
