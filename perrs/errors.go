// Package perrs holds the error taxonomy shared by format, codec, and
// pstore: format errors raised at open time, operational errors raised
// during reads, and writer errors raised during writes. It mirrors the
// shape of mebo's errs package (sentinel values plus a few structured
// types for errors that carry data) without pulling in a stack-trace or
// multi-error library — mebo itself never does either.
package perrs

import (
	"errors"
	"fmt"
)

// Format errors, returned from format.UnmarshalBinary / pstore.Open.
var (
	// ErrTruncatedFile is returned when the source's length does not match
	// header_size + 16*N + compressed_end[N-1].
	ErrTruncatedFile = errors.New("pstore: truncated file")
)

// MalformedHeaderError is returned when the header fails basic structural
// validation (bad magic, wrong length, nonzero reserved bits).
type MalformedHeaderError struct {
	Reason string
}

func (e MalformedHeaderError) Error() string {
	return fmt.Sprintf("pstore: malformed header: %s", e.Reason)
}

// UnsupportedVersionError is returned when the header's version field is
// not one this package knows how to read.
type UnsupportedVersionError struct {
	Version uint8
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("pstore: unsupported version %d", e.Version)
}

// UnknownEncodingError is returned when the header's encoding_id is not
// in the recognized set (spec §6).
type UnknownEncodingError struct {
	EncodingID uint8
}

func (e UnknownEncodingError) Error() string {
	return fmt.Sprintf("pstore: unknown encoding id %d", e.EncodingID)
}

// InvalidLevelError is returned when compression_level is out of range.
type InvalidLevelError struct {
	Level uint8
}

func (e InvalidLevelError) Error() string {
	return fmt.Sprintf("pstore: invalid compression level %d", e.Level)
}

// Operational errors, returned from Reader methods.

// OutOfRangeError is returned when a read request falls outside
// [0, uncompressed_len()).
type OutOfRangeError struct {
	Offset          uint64
	Length          uint64
	UncompressedLen uint64
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("pstore: range [%d, %d) out of bounds for uncompressed length %d",
		e.Offset, e.Offset+e.Length, e.UncompressedLen)
}

// DecodingError is returned when a specific block fails to decode, or
// decodes to a length that doesn't match the hint supplied to the codec.
// It never poisons the reader — other blocks may decode fine.
type DecodingError struct {
	EncodingID uint8
	BlockIndex int
	Err        error
}

func (e DecodingError) Error() string {
	return fmt.Sprintf("pstore: block %d failed to decode with encoding %d: %v",
		e.BlockIndex, e.EncodingID, e.Err)
}

func (e DecodingError) Unwrap() error { return e.Err }

// Writer errors.

// SizeOverflowError is returned when a running prefix-sum total would
// exceed 2^63, per the writer's saturating-detection requirement.
type SizeOverflowError struct {
	Field string
}

func (e SizeOverflowError) Error() string {
	return fmt.Sprintf("pstore: %s overflowed 2^63", e.Field)
}

// EncodingError wraps a failure from the underlying compressor during a
// write. It poisons the writer — see Writer.poison.
type EncodingError struct {
	EncodingID uint8
	Err        error
}

func (e EncodingError) Error() string {
	return fmt.Sprintf("pstore: encoding %d failed: %v", e.EncodingID, e.Err)
}

func (e EncodingError) Unwrap() error { return e.Err }

// ErrWriterPoisoned describes a Writer that a prior operation has failed.
// The Writer itself does not return this value: once poisoned, its methods
// return the original stored error. The writer is not safe to finalize
// once poisoned.
var ErrWriterPoisoned = errors.New("pstore: writer poisoned by previous error")
