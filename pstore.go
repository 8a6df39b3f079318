package pstore

import (
	"fmt"
	"io"

	"github.com/mdictpack/pstore/format"
)

// PackedPair bundles two independently-opened Readers over a converter
// run's "readings" index and "records" body (spec.md §1) — the common
// two-file case a dictionary converter produces. There is no shared state
// and no joint invariant beyond "both opened or both failed"; Readings and
// Records can be used completely independently once returned.
//
// This mirrors mebo's top-level mebo.go, a thin convenience wrapper over
// the blob package for mebo's own common two-part (timestamps + values)
// case.
type PackedPair struct {
	Readings *Reader
	Records  *Reader
}

// OpenPair opens readings and records as a PackedPair. If either Open
// call fails, both sources are left as the caller provided them (neither
// Reader holds a reference after a failed Open) and the error identifies
// which side failed.
func OpenPair(readings, records Source, opts ...ReaderOption) (*PackedPair, error) {
	r, err := Open(readings, opts...)
	if err != nil {
		return nil, fmt.Errorf("pstore: opening readings: %w", err)
	}

	d, err := Open(records, opts...)
	if err != nil {
		return nil, fmt.Errorf("pstore: opening records: %w", err)
	}

	return &PackedPair{Readings: r, Records: d}, nil
}

// PairWriter bundles two independent Writers for the readings/records
// pair, so a converter can drive both streams from one call site without
// the two Writers sharing any state.
type PairWriter struct {
	Readings *Writer
	Records  *Writer
}

// NewPairWriter constructs a PairWriter over readingsSink and recordsSink,
// each with its own encoding, blocking policy, and options. The two sides
// are finalized independently via Readings.Finalize/Records.Finalize.
func NewPairWriter(
	readingsSink io.Writer, readingsEncoding format.EncodingID, readingsPolicy BlockingPolicy,
	recordsSink io.Writer, recordsEncoding format.EncodingID, recordsPolicy BlockingPolicy,
	opts ...WriterOption,
) (*PairWriter, error) {
	rw, err := NewWriter(readingsSink, readingsEncoding, readingsPolicy, opts...)
	if err != nil {
		return nil, fmt.Errorf("pstore: creating readings writer: %w", err)
	}

	dw, err := NewWriter(recordsSink, recordsEncoding, recordsPolicy, opts...)
	if err != nil {
		return nil, fmt.Errorf("pstore: creating records writer: %w", err)
	}

	return &PairWriter{Readings: rw, Records: dw}, nil
}
