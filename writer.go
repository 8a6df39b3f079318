package pstore

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mdictpack/pstore/codec"
	"github.com/mdictpack/pstore/format"
	"github.com/mdictpack/pstore/internal/pool"
	"github.com/mdictpack/pstore/perrs"
)

// spillToFileThreshold is the staged block-region size past which the
// Writer switches from an in-memory ByteBuffer to a temp file, so a large
// write doesn't force the whole block region to live in RAM.
const spillToFileThreshold = 32 << 20 // 32MiB

// Writer streams entries into a packed storage file. It implements the
// single-threaded push/close_block/finalize protocol of spec.md §4.2.
//
// Strategy: the prefix table's size (16 bytes per block) is unknown until
// every block has closed, but the on-disk layout is header ∥ table ∥
// block region — the table must be written before the block region
// starts. Reserving table space up front (spec.md §4.2's strategy (a))
// would require knowing num_blocks in advance, which streaming callers
// generally don't. The Writer therefore always uses strategy (b): it
// stages compressed blocks as they close (in memory, spilling to a temp
// file past spillToFileThreshold) and streams header, table, and the
// staged region to the sink in Finalize, which is also what lets it
// accept a plain io.Writer instead of requiring io.WriteSeeker.
//
// A Writer is not safe for concurrent use (spec.md §5).
type Writer struct {
	sink             io.Writer
	encodingID       format.EncodingID
	compressionLevel uint8
	codec            codec.Codec
	policy           BlockingPolicy

	open        *pool.ByteBuffer // staging buffer for the current block
	openEntries int

	prefix []format.PrefixEntry

	compressedTotal   uint64
	uncompressedTotal uint64
	entryCount        uint64

	// Exactly one of spillBuf/spillFile is non-nil at a time: the staged
	// block region starts in spillBuf and is promoted to spillFile once
	// it crosses spillToFileThreshold.
	spillBuf  *pool.ByteBuffer
	spillFile *os.File

	finalized bool
	poisonErr error
}

// NewWriter constructs a Writer over sink, using encodingID to compress
// every block and policy to decide when blocks close. compressionLevel is
// clamped into [0, format.MaxCompressionLevel] before use (spec.md §4.2's
// clamping rule).
func NewWriter(sink io.Writer, encodingID format.EncodingID, policy BlockingPolicy, opts ...WriterOption) (*Writer, error) {
	c, err := codec.New(encodingID)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		sink:       sink,
		encodingID: encodingID,
		codec:      c,
		policy:     policy,
		open:       pool.GetBlockBuffer(),
		spillBuf:   pool.GetBlockBuffer(),
	}

	if err := applyWriterOptions(w, opts); err != nil {
		return nil, err
	}

	if w.compressionLevel > format.MaxCompressionLevel {
		w.compressionLevel = format.MaxCompressionLevel
	}

	return w, nil
}

// Push appends entry to the open block's staging buffer, closing the open
// block first if the blocking policy says entry would overflow it.
func (w *Writer) Push(entry []byte) error {
	if w.poisonErr != nil {
		return w.poisonErr
	}
	if w.finalized {
		return w.poison(fmt.Errorf("pstore: push after finalize"))
	}

	if w.policy.shouldCloseBefore(w.open.Len(), w.openEntries, len(entry)) {
		if err := w.closeBlockIfOpen(); err != nil {
			return err
		}
	}

	w.open.MustWrite(entry)
	w.openEntries++
	w.entryCount++

	return nil
}

// CloseBlock closes the open block: it compresses whatever is staged,
// appends it to the block region, and records a prefix-sum entry. Closing
// an empty block is normally a no-op (spec.md §4.2) — except under the
// Manual policy, where calling CloseBlock with nothing staged is how a
// caller explicitly requests a genuine empty block (spec.md §8's "single
// empty block" scenario: a recorded block whose uncompressed size is zero
// and whose compressed size is the codec's output for empty input, which
// is zero for RAW). Under any other policy, closing an
// already-empty block stays a no-op.
func (w *Writer) CloseBlock() error {
	if w.poisonErr != nil {
		return w.poisonErr
	}

	if w.open.Len() == 0 {
		if _, manual := w.policy.(manualPolicy); !manual {
			return nil
		}
	}

	return w.closeOpenBlock()
}

// closeBlockIfOpen is the auto-close path driven by the blocking policy
// (Push) or by Finalize's trailing flush. Unlike CloseBlock, it always
// no-ops on an empty open block regardless of policy — neither caller is
// "explicitly requesting" an empty block, so it must never manufacture one
// on its own (that would turn every empty Manual file into a spurious
// single-block file, breaking spec.md §8's N=0 empty-file scenario).
func (w *Writer) closeBlockIfOpen() error {
	if w.poisonErr != nil {
		return w.poisonErr
	}

	if w.open.Len() == 0 {
		return nil
	}

	return w.closeOpenBlock()
}

func (w *Writer) closeOpenBlock() error {
	compressed, err := w.codec.Encode(w.open.Bytes(), w.compressionLevel)
	if err != nil {
		return w.poison(perrs.EncodingError{EncodingID: uint8(w.encodingID), Err: err})
	}

	if err := w.spillWrite(compressed); err != nil {
		return w.poison(err)
	}

	newCompressedTotal := w.compressedTotal + uint64(len(compressed))
	newUncompressedTotal := w.uncompressedTotal + uint64(w.open.Len())
	if newCompressedTotal > math.MaxInt64 || newUncompressedTotal > math.MaxInt64 {
		return w.poison(perrs.SizeOverflowError{Field: "prefix sum"})
	}

	w.compressedTotal = newCompressedTotal
	w.uncompressedTotal = newUncompressedTotal
	w.prefix = append(w.prefix, format.PrefixEntry{
		CompressedEnd:   w.compressedTotal,
		UncompressedEnd: w.uncompressedTotal,
	})

	w.open.Reset()
	w.openEntries = 0

	return nil
}

// spillWrite appends b to the staged block region, promoting from the
// in-memory buffer to a temp file the first time the region would cross
// spillToFileThreshold.
func (w *Writer) spillWrite(b []byte) error {
	if w.spillFile != nil {
		if _, err := w.spillFile.Write(b); err != nil {
			return fmt.Errorf("pstore: writing spill file: %w", err)
		}

		return nil
	}

	if w.spillBuf.Len()+len(b) > spillToFileThreshold {
		if err := w.promoteSpillToFile(); err != nil {
			return err
		}

		if _, err := w.spillFile.Write(b); err != nil {
			return fmt.Errorf("pstore: writing spill file: %w", err)
		}

		return nil
	}

	w.spillBuf.MustWrite(b)

	return nil
}

// promoteSpillToFile moves the in-memory staged region into a temp file
// once it crosses spillToFileThreshold, so very large writes don't hold
// the whole block region in RAM.
func (w *Writer) promoteSpillToFile() error {
	f, err := os.CreateTemp("", "pstore-spill-*")
	if err != nil {
		return fmt.Errorf("pstore: creating spill file: %w", err)
	}

	if _, err := f.Write(w.spillBuf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("pstore: seeding spill file: %w", err)
	}

	pool.PutBlockBuffer(w.spillBuf)
	w.spillBuf = nil
	w.spillFile = f

	return nil
}

// Finalize force-closes the open block, then writes the header, prefix
// table, and staged block region to the sink in that order. The Writer
// must not be used again after Finalize returns, successfully or not.
func (w *Writer) Finalize() error {
	if w.poisonErr != nil {
		return w.poisonErr
	}
	if w.finalized {
		return fmt.Errorf("pstore: already finalized")
	}

	if err := w.closeBlockIfOpen(); err != nil {
		return err
	}

	w.finalized = true

	header := format.Header{
		Version:          format.CurrentVersion,
		EncodingID:       w.encodingID,
		CompressionLevel: w.compressionLevel,
		NumBlocks:        uint64(len(w.prefix)),
		NumEntries:       w.entryCount,
	}

	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return w.poison(err)
	}

	table := make([]byte, 0, len(w.prefix)*format.PrefixEntrySize)
	for _, e := range w.prefix {
		table = e.AppendBinary(table)
	}

	if _, err := w.sink.Write(headerBytes); err != nil {
		return w.poison(fmt.Errorf("pstore: writing header: %w", err))
	}

	if _, err := w.sink.Write(table); err != nil {
		return w.poison(fmt.Errorf("pstore: writing prefix table: %w", err))
	}

	if err := w.copySpillRegion(); err != nil {
		return w.poison(err)
	}

	return nil
}

func (w *Writer) copySpillRegion() error {
	if w.spillFile != nil {
		defer os.Remove(w.spillFile.Name())
		defer w.spillFile.Close()

		if _, err := w.spillFile.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("pstore: seeking spill file: %w", err)
		}

		if _, err := io.Copy(w.sink, bufio.NewReader(w.spillFile)); err != nil {
			return fmt.Errorf("pstore: copying spill file: %w", err)
		}

		return nil
	}

	defer pool.PutBlockBuffer(w.spillBuf)

	if _, err := w.sink.Write(w.spillBuf.Bytes()); err != nil {
		return fmt.Errorf("pstore: copying spill buffer: %w", err)
	}

	return nil
}

// poison records err as the Writer's terminal error; every subsequent
// operation (other than Finalize, which returns the same error) fails
// immediately, per spec.md §4.2's failure semantics.
func (w *Writer) poison(err error) error {
	w.poisonErr = err
	return err
}
