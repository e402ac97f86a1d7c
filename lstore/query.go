package lstore

import (
	"time"

	"github.com/Felmond13/lstore/index"
	"github.com/Felmond13/lstore/storage"
)

func nowSeconds() int64 { return time.Now().Unix() }

// Insert appends a new base record (spec §4.4). It fails with
// ErrDuplicateKey if the primary key is already present, or with
// ErrArityMismatch if len(values) != NumColumns.
func (t *Table) Insert(values []int64) error {
	if len(values) != t.NumColumns {
		return ErrArityMismatch
	}
	key := values[t.KeyIndex]

	t.counterMu.Lock()
	if len(t.Indexes.Primary().Locate(key)) > 0 {
		t.counterMu.Unlock()
		return ErrDuplicateKey
	}

	bid := t.bidCounter
	t.bidCounter += 2

	pageIdx := t.lastBasePageWithCapacityLocked()
	lp := t.logicalPage(storage.KindBase, pageIdx)
	slot := lp.NumRecords()
	for c := 0; c < t.NumColumns; c++ {
		lp.Write(c, values[c], storage.AppendSlot)
	}
	lp.Write(t.schemaCol(), 0, storage.AppendSlot)
	lp.Write(t.ridCol(), bid, storage.AppendSlot)
	lp.Write(t.indirectionCol(), bid, storage.AppendSlot)
	lp.Write(t.timestampCol(), 0, storage.AppendSlot)
	t.putLogicalPage(storage.KindBase, pageIdx, lp)

	t.pageDirectory[bid] = Location{PageIndex: pageIdx, Slot: slot}
	t.Indexes.Primary().Add(key, bid)
	t.counterMu.Unlock()

	t.Locks.GetOrCreate(key)
	return nil
}

// locateBIDs resolves a point lookup on searchCol to the base RIDs
// whose current value there equals searchKey (spec §4.9).
func (t *Table) locateBIDs(searchCol int, searchKey int64) []int64 {
	if searchCol == t.KeyIndex {
		return t.Indexes.Primary().Locate(searchKey)
	}
	if idx, ok := t.Indexes.Get(searchCol); ok {
		return idx.Locate(searchKey)
	}
	return nil
}

// Select returns the current version of every record whose searchCol
// value equals searchKey, projecting only the columns where
// projection[i] is true (or every column if projection is nil).
func (t *Table) Select(searchKey int64, searchCol int, projection []bool) ([]Record, error) {
	return t.SelectVersion(searchKey, searchCol, projection, 0)
}

// SelectVersion walks the indirection chain back |relVersion| steps
// from the current version (spec §4.6). relVersion must be <= 0; 0 is
// the current version, -1 is the version before the latest update,
// and so on — stepping past the oldest update lands on the original
// inserted row.
func (t *Table) SelectVersion(searchKey int64, searchCol int, projection []bool, relVersion int) ([]Record, error) {
	bids := t.locateBIDs(searchCol, searchKey)
	if len(bids) == 0 {
		return nil, nil
	}
	out := make([]Record, 0, len(bids))
	for _, bid := range bids {
		rec, err := t.selectOneVersion(bid, projection, relVersion)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *Table) selectOneVersion(bid int64, projection []bool, relVersion int) (Record, error) {
	loc, ok := t.location(bid)
	if !ok {
		return Record{}, ErrNotFound
	}
	base := t.logicalPage(storage.KindBase, loc.PageIndex)
	key := base.Read(t.KeyIndex, loc.Slot)

	if !t.Locks.TryAcquireRead(key) {
		return Record{}, ErrLockConflict
	}
	defer t.Locks.ReleaseRead(key)

	rid := base.Indirection(loc.Slot)
	v := relVersion
	for IsTailRID(rid) && v < 0 {
		tloc, ok := t.location(rid)
		if !ok {
			break
		}
		tail := t.logicalPage(storage.KindTail, tloc.PageIndex)
		rid = tail.Indirection(tloc.Slot)
		v++
	}

	row, slot := base, loc.Slot
	if IsTailRID(rid) {
		if tloc, ok := t.location(rid); ok {
			row, slot = t.logicalPage(storage.KindTail, tloc.PageIndex), tloc.Slot
		}
	}

	cols := make([]int64, 0, t.NumColumns)
	for c := 0; c < t.NumColumns; c++ {
		if projection == nil || (c < len(projection) && projection[c]) {
			cols = append(cols, row.Read(c, slot))
		}
	}
	return Record{RID: bid, Key: key, Columns: cols}, nil
}

// Sum aggregates col's current value over every primary key in
// [startKey, endKey] (spec §4.7). Returns ErrRangeEmpty if no key
// falls in the range.
func (t *Table) Sum(startKey, endKey int64, col int) (int64, error) {
	return t.SumVersion(startKey, endKey, col, 0)
}

// SumVersion is Sum applied to a historical version of each record.
func (t *Table) SumVersion(startKey, endKey int64, col int, relVersion int) (int64, error) {
	bids := t.Indexes.Primary().LocateRange(startKey, endKey)
	if len(bids) == 0 {
		return 0, ErrRangeEmpty
	}
	proj := make([]bool, t.NumColumns)
	proj[col] = true

	var total int64
	for _, bid := range bids {
		rec, err := t.selectOneVersion(bid, proj, relVersion)
		if err != nil {
			return 0, err
		}
		total += rec.Columns[0]
	}
	return total, nil
}

// Update applies a partial-update vector to the record identified by
// primaryKey (spec §4.5). values[i] == nil means "leave column i
// unchanged"; any non-nil entry (including at KeyIndex) supplies a new
// value. Returns ErrArityMismatch, ErrNotFound, ErrDuplicateKey (new
// key collides), or ErrLockConflict per spec.
func (t *Table) Update(primaryKey int64, values []*int64) error {
	if len(values) != t.NumColumns {
		return ErrArityMismatch
	}

	bids := t.Indexes.Primary().Locate(primaryKey)
	if len(bids) == 0 {
		return ErrNotFound
	}
	bid := bids[0]

	loc, ok := t.location(bid)
	if !ok {
		return ErrNotFound
	}
	base := t.logicalPage(storage.KindBase, loc.PageIndex)

	newKey := primaryKey
	keyChanged := false
	if np := values[t.KeyIndex]; np != nil && *np != primaryKey {
		if len(t.Indexes.Primary().Locate(*np)) > 0 {
			return ErrDuplicateKey
		}
		newKey = *np
		keyChanged = true
	}

	if !t.Locks.TryAcquireWrite(primaryKey) {
		return ErrLockConflict
	}
	released := false
	lockKey := primaryKey
	release := func() {
		if !released {
			t.Locks.ReleaseWrite(lockKey)
			released = true
		}
	}
	defer release()

	baseIndirection := base.Indirection(loc.Slot)
	baseSchema := base.SchemaEncoding(loc.Slot)

	effectiveRow, effectiveSlot := base, loc.Slot
	if IsTailRID(baseIndirection) {
		if tloc, ok := t.location(baseIndirection); ok {
			effectiveRow, effectiveSlot = t.logicalPage(storage.KindTail, tloc.PageIndex), tloc.Slot
		}
	}

	newValues := make([]int64, t.NumColumns)
	var changedMask int64
	anyChange := false
	for c := 0; c < t.NumColumns; c++ {
		current := effectiveRow.Read(c, effectiveSlot)
		if values[c] == nil {
			newValues[c] = current
			continue
		}
		newValues[c] = *values[c]
		if *values[c] != current {
			changedMask |= 1 << uint(c)
			anyChange = true
		}
	}

	if !anyChange && !keyChanged {
		return nil
	}

	t.counterMu.Lock()
	tailPageIdx := t.lastTailPageWithCapacityLocked()
	tlp := t.logicalPage(storage.KindTail, tailPageIdx)
	slot := tlp.NumRecords()
	tid := t.tidCounter
	t.tidCounter += 2

	for c := 0; c < t.NumColumns; c++ {
		tlp.Write(c, newValues[c], storage.AppendSlot)
	}
	newSchema := baseSchema | changedMask
	tlp.Write(t.schemaCol(), newSchema, storage.AppendSlot)
	tlp.Write(t.ridCol(), tid, storage.AppendSlot)
	tlp.Write(t.indirectionCol(), baseIndirection, storage.AppendSlot)
	tlp.Write(t.timestampCol(), nowSeconds(), storage.AppendSlot)
	t.putLogicalPage(storage.KindTail, tailPageIdx, tlp)

	t.pageDirectory[tid] = Location{PageIndex: tailPageIdx, Slot: slot}
	t.updates++
	t.counterMu.Unlock()

	base.Write(t.indirectionCol(), tid, loc.Slot)
	if newSchema != baseSchema {
		base.Write(t.schemaCol(), newSchema, loc.Slot)
	}
	t.putLogicalPage(storage.KindBase, loc.PageIndex, base)

	if keyChanged {
		t.Indexes.Primary().Remove(primaryKey, bid)
		t.Indexes.Primary().Add(newKey, bid)
		t.Locks.Rekey(primaryKey, newKey)
		lockKey = newKey
	}

	for _, idx := range t.Indexes.All() {
		c := idx.Column
		if changedMask&(1<<uint(c)) != 0 {
			idx.Remove(effectiveRow.Read(c, effectiveSlot), bid)
			idx.Add(newValues[c], bid)
		}
	}

	release()
	if t.Worker != nil {
		t.Worker.Trigger(t)
	}
	return nil
}

// Delete removes primaryKey's entry from the primary index. Base and
// tail rows are left physically in place (spec §4.8); subsequent
// lookups by that key return empty.
func (t *Table) Delete(primaryKey int64) error {
	bids := t.Indexes.Primary().Locate(primaryKey)
	if len(bids) == 0 {
		return ErrNotFound
	}
	for _, bid := range bids {
		t.Indexes.Primary().Remove(primaryKey, bid)
	}
	return nil
}

// Increment reads col's current value for primaryKey and writes back
// col+1. A failed or empty read (lock conflict or missing key) is
// treated as failure either way, per spec §9's open question.
func (t *Table) Increment(primaryKey int64, col int) error {
	proj := make([]bool, t.NumColumns)
	proj[col] = true
	recs, err := t.Select(primaryKey, t.KeyIndex, proj)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return ErrNotFound
	}
	newVal := recs[0].Columns[0] + 1
	values := make([]*int64, t.NumColumns)
	values[col] = &newVal
	return t.Update(primaryKey, values)
}

// CreateIndex builds a fresh ordered secondary index over col by
// scanning every base record (spec §4.9): for a base slot whose
// SCHEMA_ENCODING bit c is set, the current value is read from the
// record's newest tail row (tail rows always hold a complete copy of
// every column, so the first tail reached by following INDIRECTION is
// also the most recent one); otherwise it is read straight from base.
func (t *Table) CreateIndex(col int) error {
	idx := t.Indexes.Create(col)
	entries := t.scanColumnForIndex(col)
	idx.Rebuild(entries)
	return nil
}

// DropIndex removes a previously created secondary index.
func (t *Table) DropIndex(col int) {
	t.Indexes.Drop(col)
}

func (t *Table) scanColumnForIndex(col int) []index.Entry {
	numBase := t.BasePageCount()
	var entries []index.Entry
	for i := 0; i < numBase; i++ {
		bp := t.logicalPage(storage.KindBase, i)
		n := bp.NumRecords()
		for slot := 0; slot < n; slot++ {
			bid := bp.RID(slot)
			schema := bp.SchemaEncoding(slot)
			value := bp.Read(col, slot)
			if schema&(1<<uint(col)) != 0 {
				if indirection := bp.Indirection(slot); IsTailRID(indirection) {
					if tloc, ok := t.location(indirection); ok {
						value = t.logicalPage(storage.KindTail, tloc.PageIndex).Read(col, tloc.Slot)
					}
				}
			}
			entries = append(entries, index.Entry{Value: value, BID: bid})
		}
	}
	return entries
}
