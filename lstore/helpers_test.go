package lstore

import "github.com/Felmond13/lstore/storage"

func newTestTable(numCols, keyIndex int) *Table {
	pool := storage.NewBufferPool(storage.DefaultCapacity, noopStore{})
	return NewTable("t", numCols, keyIndex, pool)
}

// noopStore backs a BufferPool in tests that never need persistence:
// every load misses empty and every flush is discarded.
type noopStore struct{}

func (noopStore) LoadPage(key storage.PageKey) (*storage.Page, error) {
	return storage.NewPage(), nil
}

func (noopStore) FlushPage(key storage.PageKey, page *storage.Page) error {
	return nil
}

func ptr(v int64) *int64 { return &v }
