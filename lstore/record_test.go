package lstore

import "testing"

func TestRIDParity(t *testing.T) {
	if !IsBaseRID(0) || IsTailRID(0) {
		t.Error("RID 0 should be base, not tail")
	}
	if !IsBaseRID(2) || !IsBaseRID(100) {
		t.Error("even RIDs should be base")
	}
	if !IsTailRID(1) || !IsTailRID(101) {
		t.Error("odd RIDs should be tail")
	}
	if IsBaseRID(1) || IsBaseRID(101) {
		t.Error("odd RIDs should not be base")
	}
}
