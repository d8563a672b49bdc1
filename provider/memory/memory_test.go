package memory

import (
	"context"
	"testing"
	"time"
)

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	p := New()
	t.Cleanup(func() { _ = p.Close(ctx) })

	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}
	in := []byte("v1")
	if ok, err := p.Set(ctx, "k", in, 0, 0); !ok || err != nil {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	in[0] = 'X' // caller mutation must not leak into the store
	b, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || string(b) != "v1" {
		t.Fatalf("Get = %q,%v,%v", b, ok, err)
	}
	b[0] = 'Y'
	if b2, _, _ := p.Get(ctx, "k"); string(b2) != "v1" {
		t.Fatalf("returned slice aliases stored bytes: %q", b2)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("deleting a missing key: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	p := New()
	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }

	_, _ = p.Set(ctx, "short", []byte("a"), 0, time.Second)
	_, _ = p.Set(ctx, "forever", []byte("b"), 0, 0)

	now = now.Add(999 * time.Millisecond)
	if _, ok, _ := p.Get(ctx, "short"); !ok {
		t.Fatalf("entry expired early")
	}
	now = now.Add(time.Millisecond)
	if _, ok, _ := p.Get(ctx, "short"); ok {
		t.Fatalf("entry should have expired")
	}
	if p.Len() != 1 {
		t.Fatalf("expired entry should be evicted on read, len=%d", p.Len())
	}
	now = now.Add(24 * time.Hour)
	if _, ok, _ := p.Get(ctx, "forever"); !ok {
		t.Fatalf("ttl<=0 must not expire")
	}
}
