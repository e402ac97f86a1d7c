package lstore

// Record is the value returned by select/select_version: a RID,
// the record's primary-key value, and the projected user-column
// values in source order.
type Record struct {
	RID     int64
	Key     int64
	Columns []int64
}

// IsBaseRID reports whether rid identifies a base record. Per spec
// §3, base RIDs are even, tail RIDs are odd.
func IsBaseRID(rid int64) bool { return rid&1 == 0 }

// IsTailRID reports whether rid identifies a tail record.
func IsTailRID(rid int64) bool { return rid&1 == 1 }

// Location is a page-directory entry: where one RID's row physically
// lives.
type Location struct {
	PageIndex int
	Slot      int
}
