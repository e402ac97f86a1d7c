package lstore

import "errors"

// Sentinel errors surfaced by Table and Query operations (spec §7).
// The boolean/empty-result query API reports failure by returning
// false/nil to its caller; these sentinels let tests and internal
// logging distinguish why.
var (
	// ErrDuplicateKey is returned by Insert when the primary key
	// already exists.
	ErrDuplicateKey = errors.New("lstore: duplicate primary key")

	// ErrNotFound is returned by Update/Delete/Increment when the
	// primary key has no matching record.
	ErrNotFound = errors.New("lstore: key not found")

	// ErrLockConflict is returned when a non-waiting per-key lock is
	// already held by a conflicting operation.
	ErrLockConflict = errors.New("lstore: lock conflict")

	// ErrArityMismatch is returned when Update is given the wrong
	// number of column values.
	ErrArityMismatch = errors.New("lstore: arity mismatch")

	// ErrRangeEmpty is returned by Sum/SumVersion when no key in the
	// primary index falls in [start, end].
	ErrRangeEmpty = errors.New("lstore: empty range")

	// ErrMergeInProgress is returned by Merge when a merge is already
	// running on the table.
	ErrMergeInProgress = errors.New("lstore: merge already in progress")

	// ErrTableExists is returned by the engine when creating a table
	// whose name is already registered.
	ErrTableExists = errors.New("lstore: table already exists")

	// ErrTableNotFound is returned by the engine when no table is
	// registered under the requested name.
	ErrTableNotFound = errors.New("lstore: table not found")
)
