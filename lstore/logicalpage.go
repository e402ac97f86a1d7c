package lstore

import "github.com/Felmond13/lstore/storage"

// Metadata column count: INDIRECTION, RID, TIMESTAMP, SCHEMA_ENCODING,
// appended after a table's NumColumns user columns (spec §3).
const numMetaColumns = 4

func indirectionCol(numCols int) int { return numCols }
func ridCol(numCols int) int         { return numCols + 1 }
func timestampCol(numCols int) int   { return numCols + 2 }
func schemaCol(numCols int) int      { return numCols + 3 }

// LogicalPage is a horizontal slice of a table: one Physical Page per
// user column plus the four metadata columns, all sharing one slot
// count. It is not itself persisted — its member pages are, through
// the buffer pool — so it is rebuilt on demand from a table's page
// keys rather than stored as a struct.
type LogicalPage struct {
	numCols int
	pages   []*storage.Page
}

// NumCols returns the number of user (non-metadata) columns.
func (lp *LogicalPage) NumCols() int { return lp.numCols }

// Read returns column col's value at slot.
func (lp *LogicalPage) Read(col, slot int) int64 {
	return lp.pages[col].Read(slot)
}

// Write stores value in column col at slot (AppendSlot to append).
// The caller must write every column of a new row before calling
// NumRecords again to observe the committed count, and must persist
// the touched pages back into the buffer pool.
func (lp *LogicalPage) Write(col int, value int64, slot int) bool {
	return lp.pages[col].Write(value, slot)
}

// HasCapacity reports whether another row can be appended.
func (lp *LogicalPage) HasCapacity() bool {
	return lp.NumRecords() < storage.PageCapacity
}

// NumRecords returns the page's current row count. Every column
// converges to the same count once a row has been fully written; on a
// freshly hydrated page, taking the max across columns is how a
// partially-flushed row (one whose sidecar .meta files briefly
// disagreed) resolves to the most complete count (spec §4.13).
func (lp *LogicalPage) NumRecords() int {
	max := 0
	for _, p := range lp.pages {
		if n := p.NumRecords; n > max {
			max = n
		}
	}
	return max
}

// Pages returns the underlying per-column Physical Pages, in column
// order (user columns then the four metadata columns).
func (lp *LogicalPage) Pages() []*storage.Page { return lp.pages }

// Indirection/RID/Timestamp/SchemaEncoding are convenience accessors
// for the fixed metadata columns.
func (lp *LogicalPage) Indirection(slot int) int64 { return lp.Read(indirectionCol(lp.numCols), slot) }
func (lp *LogicalPage) RID(slot int) int64         { return lp.Read(ridCol(lp.numCols), slot) }
func (lp *LogicalPage) Timestamp(slot int) int64   { return lp.Read(timestampCol(lp.numCols), slot) }
func (lp *LogicalPage) SchemaEncoding(slot int) int64 {
	return lp.Read(schemaCol(lp.numCols), slot)
}
