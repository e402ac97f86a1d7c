package storage

import "testing"

func TestPageAppendAndRead(t *testing.T) {
	p := NewPage()
	if !p.HasCapacity() {
		t.Fatal("expected fresh page to have capacity")
	}
	if !p.Write(42, AppendSlot) {
		t.Fatal("expected append to succeed")
	}
	if got := p.Read(0); got != 42 {
		t.Errorf("Read(0) = %d, want 42", got)
	}
	if p.NumRecords != 1 {
		t.Errorf("NumRecords = %d, want 1", p.NumRecords)
	}
	if !p.Dirty() {
		t.Error("expected page to be dirty after write")
	}
}

func TestPageOverwriteDoesNotGrowCount(t *testing.T) {
	p := NewPage()
	p.Write(1, AppendSlot)
	p.Write(2, AppendSlot)
	p.Write(99, 0)
	if p.NumRecords != 2 {
		t.Errorf("NumRecords = %d, want 2 after overwrite", p.NumRecords)
	}
	if got := p.Read(0); got != 99 {
		t.Errorf("Read(0) = %d, want 99", got)
	}
}

func TestPageFullRejectsAppend(t *testing.T) {
	p := NewPage()
	for i := 0; i < PageCapacity; i++ {
		if !p.Write(int64(i), AppendSlot) {
			t.Fatalf("append %d unexpectedly failed", i)
		}
	}
	if p.HasCapacity() {
		t.Fatal("expected full page to report no capacity")
	}
	if p.Write(1, AppendSlot) {
		t.Fatal("expected append on full page to fail")
	}
}

func TestPageClearDirty(t *testing.T) {
	p := NewPage()
	p.Write(1, AppendSlot)
	if !p.Dirty() {
		t.Fatal("expected dirty after write")
	}
	p.ClearDirty()
	if p.Dirty() {
		t.Fatal("expected clean after ClearDirty")
	}
}

func TestPageSnapshotCapturesCountAtCallTime(t *testing.T) {
	p := NewPage()
	p.Write(7, AppendSlot)
	data, n := p.Snapshot()
	p.Write(8, AppendSlot)
	if n != 1 {
		t.Errorf("snapshot NumRecords = %d, want 1", n)
	}
	if len(data) != PageSize {
		t.Errorf("snapshot length = %d, want %d", len(data), PageSize)
	}
	if got := p.Read(1); got != 8 {
		t.Errorf("page should reflect the write after Snapshot: Read(1) = %d, want 8", got)
	}
}
