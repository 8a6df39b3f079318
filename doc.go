// Package pstore implements the Packed Storage Format: an on-disk
// container that unifies storage of two kinds of logically ordered,
// variable-length byte payloads behind a fixed 32-byte header and a
// prefix-sum index, giving O(log N) random access into a compressed,
// concatenated block region without decompressing unrelated blocks.
//
// # Core Features
//
//   - Fixed, versioned 32-byte header with a closed encoding-id enumeration
//     (RAW, LZO, GZIP, ZSTD, LZ4), see package format
//   - Streaming Writer with pluggable blocking policies
//     (FixedUncompressedBytes, FixedEntryCount, Manual)
//   - Random-access Reader: binary search over the prefix-sum index plus
//     an optional byte-budgeted LRU block cache
//   - Pluggable compression adapters, one per encoding id, see package codec
//
// # Basic Usage
//
// Writing a file:
//
//	var buf bytes.Buffer
//	w, _ := pstore.NewWriter(&buf, format.EncodingZstd, pstore.FixedUncompressedBytes(64<<10),
//	    pstore.WithCompressionLevel(3))
//	w.Push([]byte("entry one"))
//	w.Push([]byte("entry two"))
//	w.Finalize()
//
// Reading it back:
//
//	r, _ := pstore.Open(pstore.FromBytes(buf.Bytes()))
//	r.ReadRange(0, r.UncompressedLen(), func(off uint64, data []byte) error {
//	    fmt.Printf("offset=%d: %q\n", off, data)
//	    return nil
//	})
//
// # Package Structure
//
// This package provides the Writer/Reader pair plus small convenience
// wrappers (PackedPair, PairWriter) for the common two-stream case. The
// on-disk layout lives in package format; compression adapters live in
// package codec.
package pstore
