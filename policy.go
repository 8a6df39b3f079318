package pstore

// BlockingPolicy decides when the Writer closes its open block and starts
// a new one. It is evaluated on every Push and is never persisted — a
// Reader never needs to know which policy produced a file.
type BlockingPolicy interface {
	// shouldCloseBefore reports whether the open block, currently holding
	// openUncompressed bytes across openEntries entries, must be closed
	// before the next entry (entryLen bytes) is appended to it.
	shouldCloseBefore(openUncompressed int, openEntries int, entryLen int) bool
}

type fixedUncompressedBytesPolicy struct {
	threshold int
}

// FixedUncompressedBytes closes the open block when appending the next
// entry would push its accumulated uncompressed size past threshold. The
// entry that would overflow the block starts the next one instead.
func FixedUncompressedBytes(threshold int) BlockingPolicy {
	return fixedUncompressedBytesPolicy{threshold: threshold}
}

func (p fixedUncompressedBytesPolicy) shouldCloseBefore(openUncompressed, _ int, entryLen int) bool {
	return openUncompressed > 0 && openUncompressed+entryLen > p.threshold
}

type fixedEntryCountPolicy struct {
	n int
}

// FixedEntryCount closes the open block after every n entries.
func FixedEntryCount(n int) BlockingPolicy {
	return fixedEntryCountPolicy{n: n}
}

func (p fixedEntryCountPolicy) shouldCloseBefore(_ int, openEntries int, _ int) bool {
	return openEntries > 0 && openEntries >= p.n
}

type manualPolicy struct{}

// Manual never closes a block on its own; the caller drives CloseBlock.
func Manual() BlockingPolicy {
	return manualPolicy{}
}

func (manualPolicy) shouldCloseBefore(int, int, int) bool {
	return false
}
