package pstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mdictpack/pstore/codec"
	"github.com/mdictpack/pstore/format"
	"github.com/mdictpack/pstore/perrs"
)

// StopIteration is returned by a ReadRange/IterBlocks callback to request
// no further invocations. ReadRange and IterBlocks then return
// StopIteration itself (compare with errors.Is); it is not an operational
// failure.
var StopIteration = errors.New("pstore: stop iteration")

// defaultCacheSize and defaultCacheByteBudget mirror spec.md §4.3/§9's
// stated defaults: an LRU of capacity 1, capped at 10 MiB of decoded bytes.
const (
	defaultCacheSize       = 1
	defaultCacheByteBudget = 10 << 20
)

// Reader answers random-access and sequential queries against a packed
// storage file (spec.md §4.3). It is read-only after Open and is safe for
// concurrent use from multiple goroutines — its mutable state is just the
// block cache, which is guarded by a mutex.
type Reader struct {
	source Source
	header format.Header
	codec  codec.Codec

	// prefix is materialized as two parallel slices rather than a slice
	// of pairs, for better cache locality during the binary search
	// (spec.md §9's "Prefix-sum choice").
	compressedEnd   []uint64
	uncompressedEnd []uint64

	blockRegionOffset int64 // header_size + 16*N

	cacheSize       int
	cacheByteBudget int
	cache           *blockCache
}

// Open validates source's header and prefix table and returns a ready
// Reader, or a typed error (spec.md §4.3's failure semantics).
func Open(source Source, opts ...ReaderOption) (*Reader, error) {
	if source.Len() < format.HeaderSize {
		return nil, perrs.MalformedHeaderError{Reason: "short header"}
	}

	headerBytes := make([]byte, format.HeaderSize)
	if _, err := source.ReadAt(headerBytes, 0); err != nil {
		return nil, fmt.Errorf("pstore: reading header: %w", err)
	}

	header, err := format.UnmarshalBinary(headerBytes)
	if err != nil {
		return nil, err
	}

	c, err := codec.New(header.EncodingID)
	if err != nil {
		return nil, err
	}

	n := header.NumBlocks

	// header.NumBlocks comes straight off the wire and is not yet trusted:
	// reject it against source.Len() before computing n*PrefixEntrySize, so
	// a corrupted file with a huge NumBlocks fails as ErrTruncatedFile
	// instead of panicking on an oversized make([]byte, ...).
	remaining := uint64(source.Len() - format.HeaderSize)
	maxPossibleBlocks := remaining / format.PrefixEntrySize
	if n > maxPossibleBlocks {
		return nil, perrs.ErrTruncatedFile
	}

	tableBytes := make([]byte, n*format.PrefixEntrySize)
	if n > 0 {
		if _, err := source.ReadAt(tableBytes, format.HeaderSize); err != nil {
			return nil, fmt.Errorf("pstore: reading prefix table: %w", err)
		}
	}

	compressedEnd := make([]uint64, n)
	uncompressedEnd := make([]uint64, n)
	for i := uint64(0); i < n; i++ {
		entry, err := format.ParsePrefixEntry(tableBytes[i*format.PrefixEntrySize : (i+1)*format.PrefixEntrySize])
		if err != nil {
			return nil, err
		}

		if i > 0 {
			if entry.CompressedEnd < compressedEnd[i-1] || entry.UncompressedEnd < uncompressedEnd[i-1] {
				return nil, perrs.MalformedHeaderError{Reason: "prefix sums not non-decreasing"}
			}
		}

		compressedEnd[i] = entry.CompressedEnd
		uncompressedEnd[i] = entry.UncompressedEnd
	}

	blockRegionOffset := int64(format.HeaderSize) + int64(n)*format.PrefixEntrySize

	var blockRegionLen uint64
	if n > 0 {
		blockRegionLen = compressedEnd[n-1]
	}

	expectedLen := blockRegionOffset + int64(blockRegionLen)
	if int64(source.Len()) != expectedLen {
		return nil, perrs.ErrTruncatedFile
	}

	r := &Reader{
		source:            source,
		header:            header,
		codec:             c,
		compressedEnd:     compressedEnd,
		uncompressedEnd:   uncompressedEnd,
		blockRegionOffset: blockRegionOffset,
		cacheSize:         defaultCacheSize,
		cacheByteBudget:   defaultCacheByteBudget,
	}

	if err := applyReaderOptions(r, opts); err != nil {
		return nil, err
	}

	if r.cacheSize > 0 {
		r.cache = newBlockCache(r.cacheSize, r.cacheByteBudget)
	}

	return r, nil
}

// BlockCount returns the number of blocks N in the file.
func (r *Reader) BlockCount() int { return len(r.compressedEnd) }

// EntryCount returns the informational entry count E recorded in the
// header (spec.md §9 Open Question (a): not independently verified).
func (r *Reader) EntryCount() uint64 { return r.header.NumEntries }

// Encoding returns the file's encoding id.
func (r *Reader) Encoding() format.EncodingID { return r.header.EncodingID }

// CompressionLevel returns the file's recorded compression level.
func (r *Reader) CompressionLevel() uint8 { return r.header.CompressionLevel }

// UncompressedLen returns the total logical uncompressed byte length.
func (r *Reader) UncompressedLen() uint64 {
	n := len(r.uncompressedEnd)
	if n == 0 {
		return 0
	}

	return r.uncompressedEnd[n-1]
}

// blockUncompressedStart returns the logical (uncompressed-offset) start of
// block i; blockCompressedRange gives its physical range, relative to the
// block region.
func (r *Reader) blockUncompressedStart(i int) uint64 {
	if i == 0 {
		return 0
	}

	return r.uncompressedEnd[i-1]
}

func (r *Reader) blockCompressedRange(i int) (start, end uint64) {
	if i == 0 {
		return 0, r.compressedEnd[0]
	}

	return r.compressedEnd[i-1], r.compressedEnd[i]
}

// decodeBlock fetches and decompresses block i, consulting the cache
// first and populating it on miss (unless the block exceeds the cache's
// byte budget, per spec.md §9).
func (r *Reader) decodeBlock(i int) ([]byte, error) {
	if r.cache != nil {
		if data, ok := r.cache.get(i); ok {
			return data, nil
		}
	}

	start, end := r.blockCompressedRange(i)
	compressed := make([]byte, end-start)
	if _, err := r.source.ReadAt(compressed, r.blockRegionOffset+int64(start)); err != nil {
		return nil, fmt.Errorf("pstore: reading block %d: %w", i, err)
	}

	expectedLen := int(r.blockUncompressedEnd(i) - r.blockUncompressedStart(i))

	decoded, err := r.codec.Decode(compressed, expectedLen)
	if err != nil {
		return nil, perrs.DecodingError{EncodingID: uint8(r.header.EncodingID), BlockIndex: i, Err: err}
	}

	if r.cache != nil {
		r.cache.put(i, decoded)
	}

	return decoded, nil
}

func (r *Reader) blockUncompressedEnd(i int) uint64 {
	return r.uncompressedEnd[i]
}

// ReadBlock decompresses block i and invokes onBytes with the whole
// uncompressed block. The slice is valid only for the duration of the call.
func (r *Reader) ReadBlock(i int, onBytes func(data []byte) error) error {
	if i < 0 || i >= r.BlockCount() {
		return perrs.OutOfRangeError{Offset: uint64(i), Length: 1, UncompressedLen: uint64(r.BlockCount())}
	}

	data, err := r.decodeBlock(i)
	if err != nil {
		return err
	}

	return onBytes(data)
}

// IterBlocks invokes onBlock(i, logicalOffsetStart, bytes) for every block
// in order, stopping early (returning StopIteration) if onBlock does.
func (r *Reader) IterBlocks(onBlock func(i int, logicalOffsetStart uint64, data []byte) error) error {
	for i := 0; i < r.BlockCount(); i++ {
		data, err := r.decodeBlock(i)
		if err != nil {
			return err
		}

		if err := onBlock(i, r.blockUncompressedStart(i), data); err != nil {
			if errors.Is(err, StopIteration) {
				return StopIteration
			}

			return err
		}
	}

	return nil
}

// ReadRange resolves [offset, offset+length) in the logical uncompressed
// stream and invokes onChunk(logicalOffset, bytes) one or more times with
// contiguous, non-overlapping slices covering the range exactly (spec.md
// §4.3). A zero-length request is a successful no-op.
func (r *Reader) ReadRange(offset, length uint64, onChunk func(logicalOffset uint64, data []byte) error) error {
	if length == 0 {
		return nil
	}

	total := r.UncompressedLen()
	if offset > total || length > total-offset {
		return perrs.OutOfRangeError{Offset: offset, Length: length, UncompressedLen: total}
	}

	remainingStart := offset
	remainingEnd := offset + length

	// Binary search for the first block whose uncompressed_end is
	// strictly greater than remainingStart (spec.md §4.3's resolution
	// algorithm).
	i := sort.Search(len(r.uncompressedEnd), func(i int) bool {
		return r.uncompressedEnd[i] > remainingStart
	})

	for remainingStart < remainingEnd {
		data, err := r.decodeBlock(i)
		if err != nil {
			return err
		}

		blockStart := r.blockUncompressedStart(i)
		blockEnd := r.uncompressedEnd[i]

		sliceStart := remainingStart - blockStart
		sliceEnd := blockEnd - blockStart
		if blockEnd > remainingEnd {
			sliceEnd = remainingEnd - blockStart
		}

		if err := onChunk(remainingStart, data[sliceStart:sliceEnd]); err != nil {
			if errors.Is(err, StopIteration) {
				return StopIteration
			}

			return err
		}

		remainingStart = blockStart + sliceEnd
		i++
	}

	return nil
}

// Blocks returns an iter.Seq2-shaped range-over-func alternative to
// IterBlocks, for callers on Go 1.23+: for i, blk := range
// reader.Blocks() { ... }. It stops early if the loop body breaks, and
// surfaces a decode error by stopping iteration — callers needing the
// error itself should use IterBlocks directly.
func (r *Reader) Blocks() func(yield func(int, []byte) bool) {
	return func(yield func(int, []byte) bool) {
		for i := 0; i < r.BlockCount(); i++ {
			data, err := r.decodeBlock(i)
			if err != nil {
				return
			}

			if !yield(i, data) {
				return
			}
		}
	}
}

// blockCache is a thread-safe LRU of decoded blocks keyed by block index,
// capped both by entry count and by total cached bytes (spec.md §9): a
// block larger than the whole byte budget is never cached. The eviction
// callback keeps curBytes in sync whether an entry falls out because the
// LRU's own entry-count cap was hit or because put() is trimming for the
// byte budget.
type blockCache struct {
	mu        sync.Mutex
	lru       *lru.Cache[int, []byte]
	byteCap   int
	curBytes  int
	blockSize map[int]int
}

func newBlockCache(size, byteBudget int) *blockCache {
	bc := &blockCache{
		byteCap:   byteBudget,
		blockSize: make(map[int]int),
	}

	c, _ := lru.NewWithEvict[int, []byte](size, func(key int, _ []byte) {
		bc.curBytes -= bc.blockSize[key]
		delete(bc.blockSize, key)
	})
	bc.lru = c

	return bc
}

func (c *blockCache) get(i int) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Get(i)
}

func (c *blockCache) put(i int, data []byte) {
	if len(data) > c.byteCap {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for c.curBytes+len(data) > c.byteCap {
		oldestKey, _, ok := c.lru.GetOldest()
		if !ok {
			break
		}

		c.lru.Remove(oldestKey) // triggers the eviction callback above
	}

	c.lru.Add(i, data) // may also trigger the eviction callback
	c.blockSize[i] = len(data)
	c.curBytes += len(data)
}
