package revstore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLocalCurrentAndBump(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if r, _ := s.Current(ctx, "a"); r != 0 {
		t.Fatalf("missing key rev = %d, want 0", r)
	}
	for want := uint64(1); want <= 3; want++ {
		got, err := s.Bump(ctx, "a")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("Bump = %d, want %d", got, want)
		}
	}
	if r, _ := s.Current(ctx, "a"); r != 3 {
		t.Fatalf("Current = %d, want 3", r)
	}
	if r, _ := s.Current(ctx, "b"); r != 0 {
		t.Fatalf("keys must be independent, b = %d", r)
	}
}

func TestLocalBumpConcurrentIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	const n = 64
	seen := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _ := s.Bump(ctx, "k")
			seen <- r
		}()
	}
	wg.Wait()
	close(seen)

	uniq := make(map[uint64]bool, n)
	for r := range seen {
		if uniq[r] {
			t.Fatalf("revision %d handed out twice", r)
		}
		uniq[r] = true
	}
	if r, _ := s.Current(ctx, "k"); r != n {
		t.Fatalf("Current = %d, want %d", r, n)
	}
}

func TestLocalCleanupPrunesOld(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	_, _ = s.Bump(ctx, "old")
	now = now.Add(2 * time.Hour)
	_, _ = s.Bump(ctx, "fresh")

	s.Cleanup(time.Hour)
	if r, _ := s.Current(ctx, "old"); r != 0 {
		t.Fatalf("old key should be pruned, rev = %d", r)
	}
	if r, _ := s.Current(ctx, "fresh"); r != 1 {
		t.Fatalf("fresh key pruned, rev = %d", r)
	}
}

func TestLocalCloseIdempotent(t *testing.T) {
	s := NewLocal(time.Millisecond, time.Hour)
	ctx := context.Background()
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
}
