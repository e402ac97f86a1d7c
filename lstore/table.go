package lstore

import (
	"sync"
	"sync/atomic"

	"github.com/Felmond13/lstore/concurrency"
	"github.com/Felmond13/lstore/index"
	"github.com/Felmond13/lstore/storage"
)

// DefaultMergeThreshold is how many updates per base record (spec §4.11,
// T ≈ 2–3) trigger ShouldMerge.
const DefaultMergeThreshold = 2.0

// Table is one L-Store table: its base and tail logical pages, the
// page directory mapping RIDs to their physical location, the primary
// and secondary indexes, the per-key lock map, and the BID/TID
// counters and merge state spec §4.3 names.
type Table struct {
	Name       string
	NumColumns int
	KeyIndex   int

	pool *storage.BufferPool

	// counterMu guards the fields below: RID allocation, page
	// directory, and page counts must serialize through one
	// table-level guard (spec §5) independent of any per-key lock.
	counterMu     sync.Mutex
	basePageCount int
	tailPageCount int
	pageDirectory map[int64]Location
	bidCounter    int64
	tidCounter    int64
	updates       int64

	mergeInProgress atomic.Bool
	mergeThreshold  float64

	Indexes *index.Manager
	Locks   *concurrency.LockManager

	// Worker, if set, receives a Trigger after every successful Update
	// so the background merge pass runs once updates/base exceeds the
	// merge threshold (spec §4.5 step 11, §4.11).
	Worker *MergeWorker
}

// NewTable creates an empty table backed by pool.
func NewTable(name string, numColumns, keyIndex int, pool *storage.BufferPool) *Table {
	return &Table{
		Name:           name,
		NumColumns:     numColumns,
		KeyIndex:       keyIndex,
		pool:           pool,
		pageDirectory:  make(map[int64]Location),
		bidCounter:     0,
		tidCounter:     1,
		mergeThreshold: DefaultMergeThreshold,
		Indexes:        index.NewManager(keyIndex),
		Locks:          concurrency.NewLockManager(),
	}
}

func (t *Table) indirectionCol() int { return indirectionCol(t.NumColumns) }
func (t *Table) ridCol() int         { return ridCol(t.NumColumns) }
func (t *Table) timestampCol() int   { return timestampCol(t.NumColumns) }
func (t *Table) schemaCol() int      { return schemaCol(t.NumColumns) }

func (t *Table) pageKey(kind storage.PageKind, pageIdx, col int) storage.PageKey {
	return storage.PageKey{Table: t.Name, Kind: kind, PageIndex: pageIdx, Col: col}
}

// logicalPage fetches (hydrating from disk if necessary) every column
// of one logical page as a LogicalPage view.
func (t *Table) logicalPage(kind storage.PageKind, pageIdx int) *LogicalPage {
	cols := make([]*storage.Page, t.NumColumns+numMetaColumns)
	for c := range cols {
		cols[c] = t.pool.GetOrLoad(t.pageKey(kind, pageIdx, c))
	}
	return &LogicalPage{numCols: t.NumColumns, pages: cols}
}

// putLogicalPage refreshes every column of lp in the buffer pool,
// required after in-place writes so the pages keep their membership
// and recency (spec §4.10).
func (t *Table) putLogicalPage(kind storage.PageKind, pageIdx int, lp *LogicalPage) {
	for c, p := range lp.pages {
		t.pool.Put(t.pageKey(kind, pageIdx, c), p)
	}
}

// allocateBasePageLocked appends a new, empty base logical page and returns
// its index. Called with counterMu held.
func (t *Table) allocateBasePageLocked() int {
	idx := t.basePageCount
	t.basePageCount++
	lp := t.logicalPage(storage.KindBase, idx)
	t.putLogicalPage(storage.KindBase, idx, lp)
	return idx
}

// allocateTailPageLocked appends a new, empty tail logical page and returns
// its index. Called with counterMu held.
func (t *Table) allocateTailPageLocked() int {
	idx := t.tailPageCount
	t.tailPageCount++
	lp := t.logicalPage(storage.KindTail, idx)
	t.putLogicalPage(storage.KindTail, idx, lp)
	return idx
}

// lastBasePageWithCapacityLocked returns the index of the base page
// new rows should append to, allocating a fresh one if the current
// last page is full or none exists yet. Called with counterMu held.
func (t *Table) lastBasePageWithCapacityLocked() int {
	if t.basePageCount == 0 {
		return t.allocateBasePageLocked()
	}
	idx := t.basePageCount - 1
	if !t.logicalPage(storage.KindBase, idx).HasCapacity() {
		return t.allocateBasePageLocked()
	}
	return idx
}

// lastTailPageWithCapacityLocked mirrors lastBasePageWithCapacityLocked
// for tail pages: "tail allocation when empty or full" (spec §4.3).
func (t *Table) lastTailPageWithCapacityLocked() int {
	if t.tailPageCount == 0 {
		return t.allocateTailPageLocked()
	}
	idx := t.tailPageCount - 1
	if !t.logicalPage(storage.KindTail, idx).HasCapacity() {
		return t.allocateTailPageLocked()
	}
	return idx
}

// kindOf returns the PageKind a RID belongs to, from its parity.
func kindOf(rid int64) storage.PageKind {
	if IsTailRID(rid) {
		return storage.KindTail
	}
	return storage.KindBase
}

// location returns the page directory entry for rid.
func (t *Table) location(rid int64) (Location, bool) {
	t.counterMu.Lock()
	defer t.counterMu.Unlock()
	loc, ok := t.pageDirectory[rid]
	return loc, ok
}

// BasePageCount returns how many base logical pages exist.
func (t *Table) BasePageCount() int {
	t.counterMu.Lock()
	defer t.counterMu.Unlock()
	return t.basePageCount
}

// TailPageCount returns how many tail logical pages exist.
func (t *Table) TailPageCount() int {
	t.counterMu.Lock()
	defer t.counterMu.Unlock()
	return t.tailPageCount
}

// Updates returns the number of updates applied since the last merge.
func (t *Table) Updates() int64 {
	t.counterMu.Lock()
	defer t.counterMu.Unlock()
	return t.updates
}

// SetMergeThreshold overrides the updates/base-records ratio that
// triggers a background merge (default DefaultMergeThreshold).
func (t *Table) SetMergeThreshold(threshold float64) {
	t.counterMu.Lock()
	defer t.counterMu.Unlock()
	t.mergeThreshold = threshold
}

// ShouldMerge reports whether updates/total_base_records exceeds the
// table's merge threshold (spec §4.11).
func (t *Table) ShouldMerge() bool {
	t.counterMu.Lock()
	totalBase := 0
	for i := 0; i < t.basePageCount; i++ {
		totalBase += t.logicalPage(storage.KindBase, i).NumRecords()
	}
	updates := t.updates
	t.counterMu.Unlock()
	if totalBase == 0 {
		return false
	}
	return float64(updates)/float64(totalBase) > t.mergeThreshold
}
