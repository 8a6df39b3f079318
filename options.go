package pstore

import "github.com/mdictpack/pstore/internal/options"

// WriterOption configures a Writer at construction time.
type WriterOption = options.Option[*Writer]

// WithCompressionLevel sets the compression level passed to the codec's
// Encode on every block. It is clamped into [0, format.MaxCompressionLevel]
// by NewWriter; 0 means "codec default" (spec.md §4.2).
func WithCompressionLevel(level uint8) WriterOption {
	return options.NoError[*Writer](func(w *Writer) {
		w.compressionLevel = level
	})
}

func applyWriterOptions(w *Writer, opts []WriterOption) error {
	return options.Apply(w, opts...)
}

// ReaderOption configures a Reader at Open time.
type ReaderOption = options.Option[*Reader]

// WithBlockCacheSize sets the maximum number of decoded blocks the Reader
// keeps in its LRU cache. 0 disables caching entirely (spec.md §4.3). The
// default is 1.
func WithBlockCacheSize(n int) ReaderOption {
	return options.NoError[*Reader](func(r *Reader) {
		r.cacheSize = n
	})
}

// WithBlockCacheByteBudget caps the total uncompressed bytes the block
// cache may retain across all cached blocks (spec.md §9); a single block
// exceeding the budget is decoded transiently and never cached. The
// default is 10 MiB.
func WithBlockCacheByteBudget(bytes int) ReaderOption {
	return options.NoError[*Reader](func(r *Reader) {
		r.cacheByteBudget = bytes
	})
}

func applyReaderOptions(r *Reader, opts []ReaderOption) error {
	return options.Apply(r, opts...)
}
