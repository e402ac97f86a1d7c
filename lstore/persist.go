package lstore

import "github.com/Felmond13/lstore/storage"

// TableMeta is the explicit on-disk schema for one table's metadata
// (spec §9 replaces reflection-based pickling with tagged fields):
// name, shape, counters, page directory, and which secondary indexes
// exist. It carries no format version field. It is serialized as JSON
// by the api package into "<table>.meta" alongside the table's page
// directories.
type TableMeta struct {
	Name           string           `json:"name"`
	NumColumns     int              `json:"num_columns"`
	KeyIndex       int              `json:"key_index"`
	BasePageCount  int              `json:"base_page_count"`
	TailPageCount  int              `json:"tail_page_count"`
	BidCounter     int64            `json:"bid_counter"`
	TidCounter     int64            `json:"tid_counter"`
	Updates        int64            `json:"updates"`
	PageDirectory  map[int64]Location `json:"page_directory"`
	IndexedColumns []int            `json:"indexed_columns"`
}

// Meta snapshots the table's persistable state.
func (t *Table) Meta() TableMeta {
	t.counterMu.Lock()
	defer t.counterMu.Unlock()

	pd := make(map[int64]Location, len(t.pageDirectory))
	for k, v := range t.pageDirectory {
		pd[k] = v
	}
	var indexed []int
	for _, idx := range t.Indexes.All() {
		indexed = append(indexed, idx.Column)
	}
	return TableMeta{
		Name:           t.Name,
		NumColumns:     t.NumColumns,
		KeyIndex:       t.KeyIndex,
		BasePageCount:  t.basePageCount,
		TailPageCount:  t.tailPageCount,
		BidCounter:     t.bidCounter,
		TidCounter:     t.tidCounter,
		Updates:        t.updates,
		PageDirectory:  pd,
		IndexedColumns: indexed,
	}
}

// RestoreTable reconstructs a Table from its persisted metadata,
// backed by pool. It pre-loads each base page's primary-key column to
// rebuild the primary index and lock map from observed keys, then
// rebuilds every previously-existing secondary index, per spec §4.13.
func RestoreTable(meta TableMeta, pool *storage.BufferPool) *Table {
	t := NewTable(meta.Name, meta.NumColumns, meta.KeyIndex, pool)
	t.basePageCount = meta.BasePageCount
	t.tailPageCount = meta.TailPageCount
	t.bidCounter = meta.BidCounter
	t.tidCounter = meta.TidCounter
	t.updates = meta.Updates

	t.pageDirectory = make(map[int64]Location, len(meta.PageDirectory))
	for k, v := range meta.PageDirectory {
		t.pageDirectory[k] = v
	}

	for i := 0; i < t.basePageCount; i++ {
		bp := t.logicalPage(storage.KindBase, i)
		n := bp.NumRecords()
		for slot := 0; slot < n; slot++ {
			key := bp.Read(t.KeyIndex, slot)
			bid := bp.RID(slot)
			t.Indexes.Primary().Add(key, bid)
			t.Locks.GetOrCreate(key)
		}
	}

	for _, col := range meta.IndexedColumns {
		t.CreateIndex(col)
	}
	return t
}
