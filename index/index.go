package index

import "sync"

// Index wraps one column's Ordered structure with the RWMutex the
// teacher's index.Index uses, so concurrent Locate/LocateRange calls
// run in parallel with each other, while Add/Remove/Rebuild hold it
// exclusively.
type Index struct {
	mu      sync.RWMutex
	Column  int
	ordered *Ordered
}

// NewIndex returns an empty index over column.
func NewIndex(column int) *Index {
	return &Index{Column: column, ordered: NewOrdered()}
}

// Add records that bid holds value.
func (idx *Index) Add(value, bid int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ordered.Add(value, bid)
}

// Remove drops bid from value's entry.
func (idx *Index) Remove(value, bid int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ordered.Remove(value, bid)
}

// Locate returns the BIDs whose current column value equals value.
func (idx *Index) Locate(value int64) []int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]int64(nil), idx.ordered.Lookup(value)...)
}

// LocateRange returns the BIDs whose current column value falls in
// [begin, end] (swapped if begin > end).
func (idx *Index) LocateRange(begin, end int64) []int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.ordered.RangeScan(begin, end)
}

// Rebuild replaces the index contents atomically from entries, a list
// of (value, bid) pairs gathered by a fresh scan of the base pages.
func (idx *Index) Rebuild(entries []Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ordered.Clear()
	for _, e := range entries {
		idx.ordered.Add(e.Value, e.BID)
	}
}

// Keys returns every distinct value currently indexed, in order.
func (idx *Index) Keys() []int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.ordered.Keys()
}

// Entry is one (value, bid) pair used to rebuild an Index in bulk.
type Entry struct {
	Value int64
	BID   int64
}

// Manager owns every secondary index for a table, keyed by column
// number, plus the table's always-present primary-key index.
type Manager struct {
	mu      sync.RWMutex
	primary *Index
	byCol   map[int]*Index
}

// NewManager returns a Manager whose primary index covers keyCol.
func NewManager(keyCol int) *Manager {
	return &Manager{
		primary: NewIndex(keyCol),
		byCol:   make(map[int]*Index),
	}
}

// Primary returns the primary-key index.
func (m *Manager) Primary() *Index { return m.primary }

// Create registers a new empty secondary index over column, unless
// one already exists.
func (m *Manager) Create(column int) *Index {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok := m.byCol[column]; ok {
		return idx
	}
	idx := NewIndex(column)
	m.byCol[column] = idx
	return idx
}

// Drop removes a previously created secondary index.
func (m *Manager) Drop(column int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byCol, column)
}

// Get returns the secondary index over column, if one exists.
func (m *Manager) Get(column int) (*Index, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.byCol[column]
	return idx, ok
}

// All returns every secondary index currently registered, for the
// merge engine's post-merge rebuild pass.
func (m *Manager) All() []*Index {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Index, 0, len(m.byCol))
	for _, idx := range m.byCol {
		out = append(out, idx)
	}
	return out
}
