package repository

import "testing"

func TestDirectory_BasicOperations(t *testing.T) {
	d := NewDirectory()

	if d.Contains("p1") {
		t.Error("expected empty directory")
	}
	if _, ok := d.Get("p1"); ok {
		t.Error("expected miss on empty directory")
	}

	d.Put("p1", entry("p1", 10))
	if got, ok := d.Get("p1"); !ok || got.Score() != 10 {
		t.Errorf("expected p1 with score 10, got %v (found=%v)", got.Score(), ok)
	}

	d.Put("p1", entry("p1", 20))
	if got, _ := d.Get("p1"); got.Score() != 20 {
		t.Errorf("expected overwrite to score 20, got %d", got.Score())
	}
	if d.Len() != 1 {
		t.Errorf("expected 1 row, got %d", d.Len())
	}

	if !d.Remove("p1") {
		t.Error("expected remove to report true")
	}
	if d.Remove("p1") {
		t.Error("expected second remove to report false")
	}

	d.Put("a", entry("a", 1))
	d.Put("b", entry("b", 2))
	d.Clear()
	if d.Len() != 0 {
		t.Errorf("expected cleared directory, got %d", d.Len())
	}
}
