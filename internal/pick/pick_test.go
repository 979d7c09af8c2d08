package pick

import "testing"

func TestRingEvictsOldestOnOverflow(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 5; i++ {
		r.Push(&Pick{ID: string(rune('a' + i)), Time: float64(i)})
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	snap := r.Snapshot()
	want := []string{"c", "d", "e"}
	for i, p := range snap {
		if p.ID != want[i] {
			t.Errorf("snapshot[%d].ID = %q, want %q", i, p.ID, want[i])
		}
	}
}

func TestRingSnapshotIsIndependentCopy(t *testing.T) {
	r := NewRing(5)
	r.Push(&Pick{ID: "a"})
	snap := r.Snapshot()
	r.Push(&Pick{ID: "b"})
	if len(snap) != 1 {
		t.Fatalf("earlier snapshot mutated: len = %d, want 1", len(snap))
	}
}

func TestRingMinimumCapacityOne(t *testing.T) {
	r := NewRing(0)
	if r.Cap() != 1 {
		t.Errorf("Cap() = %d, want 1 for a zero/negative request", r.Cap())
	}
}

func TestListDeduplicatesByID(t *testing.T) {
	l := NewList(10)
	l.Push(&Pick{ID: "p1", Time: 1})
	l.Push(&Pick{ID: "p1", Time: 2}) // duplicate ID, later arrival ignored
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after duplicate push", l.Len())
	}
	if got := l.Get("p1").Time; got != 1 {
		t.Errorf("Get(p1).Time = %v, want 1 (first write wins)", got)
	}
}

func TestListEvictsOldestAndDropsFromIndex(t *testing.T) {
	l := NewList(2)
	l.Push(&Pick{ID: "a"})
	l.Push(&Pick{ID: "b"})
	l.Push(&Pick{ID: "c"})
	if l.Get("a") != nil {
		t.Error("evicted pick 'a' is still reachable via Get")
	}
	if l.Get("c") == nil {
		t.Error("most recently pushed pick 'c' should be reachable")
	}
}

func TestListFullReflectsCapacity(t *testing.T) {
	l := NewList(2)
	if l.Full() {
		t.Fatal("empty list reports Full()")
	}
	l.Push(&Pick{ID: "a"})
	l.Push(&Pick{ID: "b"})
	if !l.Full() {
		t.Error("list at capacity should report Full()")
	}
}
