package types

import "testing"

func TestBoolField_Ordering(t *testing.T) {
	f, tr := NewBoolField(false), NewBoolField(true)

	if f.CompareTo(tr) != -1 || tr.CompareTo(f) != 1 || tr.CompareTo(NewBoolField(true)) != 0 {
		t.Fatal("expected false < true")
	}
	if f.CompareTo(NewIntField(0)) <= 0 {
		t.Error("expected bool to sort after int by type tag")
	}
}

func TestBoolField_Equals(t *testing.T) {
	if !NewBoolField(true).Equals(NewBoolField(true)) {
		t.Error("expected true == true")
	}
	if NewBoolField(true).Equals(NewIntField(1)) {
		t.Error("bool must not equal int")
	}
}

func TestBoolField_StringAndLength(t *testing.T) {
	b := NewBoolField(true)
	if b.String() != "true" {
		t.Errorf("expected true, got %s", b.String())
	}
	if b.Length() != 1 {
		t.Errorf("expected length 1, got %d", b.Length())
	}
}
