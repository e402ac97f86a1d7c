// Package storage provides the byte-packed physical page, the
// process-wide buffer pool that caches them, and the on-disk layout
// used to persist a database across a close/open cycle.
package storage

import (
	"encoding/binary"
	"sync"
)

// PageSize is the size in bytes of one Physical Page.
const PageSize = 4096

// PageCapacity is the maximum number of 8-byte int64 slots a Physical
// Page can hold.
const PageCapacity = PageSize / 8

// AppendSlot, passed as the slot argument to Page.Write, appends a new
// value instead of overwriting an existing slot.
const AppendSlot = -1

// Page is a fixed 4096-byte buffer holding up to PageCapacity packed
// big-endian int64 values. It is the unit cached by the BufferPool and
// the unit persisted to disk.
type Page struct {
	mu         sync.Mutex
	Data       [PageSize]byte
	NumRecords int
	IsDirty    bool
}

// NewPage returns an empty Physical Page.
func NewPage() *Page {
	return &Page{}
}

// HasCapacity reports whether the page can accept another appended
// value.
func (p *Page) HasCapacity() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.NumRecords < PageCapacity
}

// Read returns the int64 stored at slot.
func (p *Page) Read(slot int) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	off := slot * 8
	return int64(binary.BigEndian.Uint64(p.Data[off : off+8]))
}

// Write stores value at slot. Passing AppendSlot appends the value to
// the next free slot and grows NumRecords; it fails and returns false
// iff the page is full. Overwriting an existing slot never changes
// NumRecords. Every successful write marks the page dirty.
func (p *Page) Write(value int64, slot int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slot == AppendSlot {
		if p.NumRecords >= PageCapacity {
			return false
		}
		slot = p.NumRecords
		p.NumRecords++
	}
	off := slot * 8
	binary.BigEndian.PutUint64(p.Data[off:off+8], uint64(value))
	p.IsDirty = true
	return true
}

// Snapshot returns a copy of the page's raw bytes and its record
// count, for code (such as DirStore.FlushPage) that needs a consistent
// view without holding the page locked across a longer operation.
func (p *Page) Snapshot() (data [PageSize]byte, numRecords int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Data, p.NumRecords
}

// ClearDirty resets the dirty flag, used by the buffer pool right
// after a page has been flushed to disk.
func (p *Page) ClearDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.IsDirty = false
}

// Dirty reports whether the page has unflushed writes.
func (p *Page) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.IsDirty
}
