package lstore

import (
	"log"

	"github.com/Felmond13/lstore/storage"
)

// plannedBaseWrite is one base-page rewrite computed by a merge pass:
// the captured column values plus the reset metadata that will be
// applied once the full base-page scan completes.
type plannedBaseWrite struct {
	pageIdx   int
	slot      int
	bid       int64
	columns   map[int]int64
	timestamp int64
}

// Merge runs one merge pass over the table (spec §4.11): it walks
// every base record whose INDIRECTION no longer points at itself,
// follows the tail chain to capture each updated column's newest
// value, then rewrites the base row and resets its indirection and
// schema encoding. It returns ErrMergeInProgress if another merge is
// already running on this table.
//
// Failures are recovered and logged without aborting the merge. While
// planning, recovery is per base page: a panic on one record drops the
// remaining records of that page from this pass and the scan continues
// with the next base page. While applying, recovery is per record
// (spec §7). Applying a planned write
// acquires that record's write lock so the rewrite serializes with
// any foreground update in flight on the same key (spec §5); a record
// whose lock is unavailable at apply time is skipped and picked up by
// the next merge pass.
func (t *Table) Merge() error {
	if !t.mergeInProgress.CompareAndSwap(false, true) {
		return ErrMergeInProgress
	}
	defer t.mergeInProgress.Store(false)

	planned := t.planMerge()
	t.applyMerge(planned)

	t.counterMu.Lock()
	t.updates = 0
	t.counterMu.Unlock()

	for _, idx := range t.Indexes.All() {
		idx.Rebuild(t.scanColumnForIndex(idx.Column))
	}
	return nil
}

func (t *Table) planMerge() []plannedBaseWrite {
	var planned []plannedBaseWrite
	numBase := t.BasePageCount()

	for i := 0; i < numBase; i++ {
		planned = append(planned, t.planMergePage(i)...)
	}
	return planned
}

func (t *Table) planMergePage(pageIdx int) (planned []plannedBaseWrite) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("merge: table %s base page %d: %v", t.Name, pageIdx, r)
		}
	}()

	bp := t.logicalPage(storage.KindBase, pageIdx)
	n := bp.NumRecords()
	for slot := 0; slot < n; slot++ {
		bid := bp.RID(slot)
		indirection := bp.Indirection(slot)
		if indirection == bid {
			continue // no updates since the last merge
		}
		schema := bp.SchemaEncoding(slot)

		captured := make(map[int]int64)
		var timestamp int64
		rid := indirection
		newest := true
		for IsTailRID(rid) {
			tloc, ok := t.location(rid)
			if !ok {
				break
			}
			tp := t.logicalPage(storage.KindTail, tloc.PageIndex)
			if newest {
				timestamp = tp.Timestamp(tloc.Slot)
				newest = false
			}
			for c := 0; c < t.NumColumns; c++ {
				if schema&(1<<uint(c)) == 0 {
					continue
				}
				if _, done := captured[c]; done {
					continue
				}
				captured[c] = tp.Read(c, tloc.Slot)
			}
			rid = tp.Indirection(tloc.Slot)
		}

		planned = append(planned, plannedBaseWrite{
			pageIdx: pageIdx, slot: slot, bid: bid,
			columns: captured, timestamp: timestamp,
		})
	}
	return planned
}

func (t *Table) applyMerge(planned []plannedBaseWrite) {
	for _, pw := range planned {
		t.applyMergeWrite(pw)
	}
}

func (t *Table) applyMergeWrite(pw plannedBaseWrite) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("merge: table %s: apply bid %d: %v", t.Name, pw.bid, r)
		}
	}()

	bp := t.logicalPage(storage.KindBase, pw.pageIdx)
	key := bp.Read(t.KeyIndex, pw.slot)
	if k, ok := pw.columns[t.KeyIndex]; ok {
		key = k // the base key column is stale after an unmerged rename
	}
	if !t.Locks.TryAcquireWrite(key) {
		log.Printf("merge: table %s: skip bid %d: key %d locked", t.Name, pw.bid, key)
		return
	}
	defer t.Locks.ReleaseWrite(key)

	for c, v := range pw.columns {
		bp.Write(c, v, pw.slot)
	}
	bp.Write(t.schemaCol(), 0, pw.slot)
	bp.Write(t.indirectionCol(), pw.bid, pw.slot)
	bp.Write(t.timestampCol(), pw.timestamp, pw.slot)
	t.putLogicalPage(storage.KindBase, pw.pageIdx, bp)
}

// MergeWorker is the single dedicated background merge task: callers
// Trigger a table and the worker goroutine drains the queue one job
// at a time, replacing the teacher's thread-pool-plus-callback
// pattern with one goroutine reading jobs off a channel (spec §9).
type MergeWorker struct {
	jobs chan *Table
	done chan struct{}
}

// NewMergeWorker starts the background merge goroutine.
func NewMergeWorker() *MergeWorker {
	w := &MergeWorker{
		jobs: make(chan *Table, 32),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *MergeWorker) run() {
	for {
		select {
		case table, ok := <-w.jobs:
			if !ok {
				return
			}
			if err := table.Merge(); err != nil {
				log.Printf("merge: table %s: %v", table.Name, err)
			}
		case <-w.done:
			return
		}
	}
}

// Trigger enqueues table for a background merge pass if ShouldMerge()
// reports it is due. The send is non-blocking: a full queue drops the
// request, and the next update that calls Trigger will retry it.
func (w *MergeWorker) Trigger(t *Table) {
	if !t.ShouldMerge() {
		return
	}
	select {
	case w.jobs <- t:
	default:
	}
}

// Stop shuts down the background worker goroutine.
func (w *MergeWorker) Stop() {
	close(w.done)
}
