package embedfs

import "errors"

// Sentinel errors.
var (
	// ErrReadOnly is returned by every mutating operation. The backing
	// store is immutable; mutation is a contractual no-op, never a fault.
	ErrReadOnly = errors.New("embedfs: read-only filesystem")

	// ErrMismatchedTable is returned by Mount when the parallel arrays
	// disagree in length or an entry size exceeds its backing data.
	ErrMismatchedTable = errors.New("embedfs: mismatched entry table")
)
