package index

import "testing"

func TestIndexAddLocate(t *testing.T) {
	idx := NewIndex(2)
	idx.Add(7, 14)
	idx.Add(7, 16)

	got := idx.Locate(7)
	if len(got) != 2 {
		t.Fatalf("Locate(7) = %v, want 2 entries", got)
	}
}

func TestIndexRebuildReplacesContents(t *testing.T) {
	idx := NewIndex(0)
	idx.Add(1, 10)
	idx.Rebuild([]Entry{{Value: 2, BID: 20}, {Value: 2, BID: 22}})

	if got := idx.Locate(1); got != nil {
		t.Errorf("Locate(1) = %v, want nil after Rebuild", got)
	}
	if got := idx.Locate(2); len(got) != 2 {
		t.Errorf("Locate(2) = %v, want 2 entries", got)
	}
}

func TestIndexLocateRange(t *testing.T) {
	idx := NewIndex(0)
	idx.Add(10, 1)
	idx.Add(20, 2)
	idx.Add(30, 3)
	got := idx.LocateRange(15, 30)
	if len(got) != 2 {
		t.Errorf("LocateRange(15,30) = %v, want 2 entries", got)
	}
}

func TestManagerPrimaryAndSecondary(t *testing.T) {
	m := NewManager(0)
	m.Primary().Add(1, 100)
	if got := m.Primary().Locate(1); len(got) != 1 {
		t.Fatalf("primary Locate(1) = %v, want 1 entry", got)
	}

	if _, ok := m.Get(3); ok {
		t.Fatal("expected no secondary index over column 3 yet")
	}
	idx := m.Create(3)
	idx.Add(5, 50)
	got, ok := m.Get(3)
	if !ok {
		t.Fatal("expected secondary index over column 3 after Create")
	}
	if l := got.Locate(5); len(l) != 1 {
		t.Errorf("Locate(5) = %v, want 1 entry", l)
	}

	m.Drop(3)
	if _, ok := m.Get(3); ok {
		t.Error("expected secondary index to be gone after Drop")
	}
}

func TestManagerAllReturnsEverySecondaryIndex(t *testing.T) {
	m := NewManager(0)
	m.Create(1)
	m.Create(2)
	if len(m.All()) != 2 {
		t.Errorf("All() returned %d indexes, want 2", len(m.All()))
	}
}
