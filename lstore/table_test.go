package lstore

import "testing"

func TestNewTableStartsEmpty(t *testing.T) {
	tbl := newTestTable(3, 0)
	if tbl.BasePageCount() != 0 || tbl.TailPageCount() != 0 {
		t.Fatal("expected a fresh table to have no pages")
	}
	if tbl.Updates() != 0 {
		t.Fatal("expected a fresh table to have no recorded updates")
	}
	if tbl.ShouldMerge() {
		t.Error("expected a fresh table with no base records to never need a merge")
	}
}

func TestLastBasePageAllocatesOnFirstUse(t *testing.T) {
	tbl := newTestTable(3, 0)
	tbl.counterMu.Lock()
	idx := tbl.lastBasePageWithCapacityLocked()
	tbl.counterMu.Unlock()
	if idx != 0 {
		t.Errorf("first base page index = %d, want 0", idx)
	}
	if tbl.BasePageCount() != 1 {
		t.Errorf("BasePageCount = %d, want 1", tbl.BasePageCount())
	}
}

func TestLastBasePageAllocatesNewPageWhenFull(t *testing.T) {
	tbl := newTestTable(1, 0)
	for i := 0; i < 600; i++ {
		if err := tbl.Insert([]int64{int64(i)}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	// 512 capacity per page, 600 rows must have spilled into a second base page.
	if tbl.BasePageCount() < 2 {
		t.Errorf("BasePageCount = %d, want at least 2 after 600 inserts", tbl.BasePageCount())
	}
}

func TestShouldMergeCrossesThreshold(t *testing.T) {
	tbl := newTestTable(2, 0)
	tbl.SetMergeThreshold(0.5)
	for i := 0; i < 10; i++ {
		tbl.Insert([]int64{int64(i), 0})
	}
	if tbl.ShouldMerge() {
		t.Fatal("expected no merge needed before any updates")
	}
	for i := 0; i < 6; i++ {
		v := int64(1)
		if err := tbl.Update(int64(i), []*int64{nil, &v}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if !tbl.ShouldMerge() {
		t.Error("expected merge to be due once updates/base exceeds threshold")
	}
}
