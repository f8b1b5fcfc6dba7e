package repository

import (
	"sync"
	"testing"
)

func TestRing_EvictsOldest(t *testing.T) {
	t.Parallel()
	r := NewRing[int](3)
	r.Push(1, 2)
	r.Push(3, 4, 5)

	got := r.Snapshot()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if r.Len() != 3 || r.Cap() != 3 {
		t.Fatalf("len/cap = %d/%d", r.Len(), r.Cap())
	}
}

func TestRing_Last(t *testing.T) {
	t.Parallel()
	r := NewRing[string](5)
	r.Push("a", "b", "c")

	tests := []struct {
		n    int
		want []string
	}{
		{n: 2, want: []string{"b", "c"}},
		{n: 0, want: []string{}},
		{n: 10, want: []string{"a", "b", "c"}},
		{n: -1, want: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := r.Last(tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("Last(%d) len = %d, want %d", tt.n, len(got), len(tt.want))
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Fatalf("Last(%d)[%d] = %q, want %q", tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

func TestRing_SnapshotIsCopy(t *testing.T) {
	t.Parallel()
	r := NewRing[int](2)
	r.Push(1)
	s := r.Snapshot()
	s[0] = 99
	if r.Snapshot()[0] != 1 {
		t.Fatalf("snapshot aliases ring storage")
	}
}

func TestRing_MinimumCapacity(t *testing.T) {
	t.Parallel()
	r := NewRing[int](0)
	r.Push(1, 2)
	if r.Len() != 1 || r.Snapshot()[0] != 2 {
		t.Fatalf("got %v", r.Snapshot())
	}
}

func TestRing_ConcurrentPush(t *testing.T) {
	t.Parallel()
	r := NewRing[int](100)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				r.Push(i)
				_ = r.Last(10)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 100 {
		t.Fatalf("len = %d, want 100", r.Len())
	}
}
