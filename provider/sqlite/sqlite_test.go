package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T, table string) *Provider {
	t.Helper()
	ctx := context.Background()
	p, err := Open(ctx, Config{Path: filepath.Join(t.TempDir(), "kv.db"), Table: table})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })
	return p
}

func TestRoundTripAndUpsert(t *testing.T) {
	ctx := context.Background()
	p := openTemp(t, "")

	if _, ok, err := p.Get(ctx, "sky-hooks-theme"); ok || err != nil {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}
	v1 := []byte(`{"data":"dark","type":"string"}`)
	if ok, err := p.Set(ctx, "sky-hooks-theme", v1, 0, 0); !ok || err != nil {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	v2 := []byte{0x00, 0xff, 0x10}
	if _, err := p.Set(ctx, "sky-hooks-theme", v2, 0, 0); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	b, ok, err := p.Get(ctx, "sky-hooks-theme")
	if err != nil || !ok || string(b) != string(v2) {
		t.Fatalf("Get = %v,%v,%v", b, ok, err)
	}

	if _, err := p.Set(ctx, "empty", nil, 0, 0); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if b, ok, _ := p.Get(ctx, "empty"); !ok || len(b) != 0 {
		t.Fatalf("empty value should be a hit, got %v,%v", b, ok)
	}

	if err := p.Del(ctx, "sky-hooks-theme"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "sky-hooks-theme"); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	p, err := Open(ctx, Config{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Set(ctx, "k", []byte("kept"), 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatal(err)
	}

	p, err = Open(ctx, Config{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close(ctx)
	if b, ok, err := p.Get(ctx, "k"); err != nil || !ok || string(b) != "kept" {
		t.Fatalf("Get after reopen = %q,%v,%v", b, ok, err)
	}
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	p := openTemp(t, "cells")
	now := time.UnixMilli(1_700_000_000_000)
	p.now = func() time.Time { return now }

	if _, err := p.Set(ctx, "k", []byte("v"), 0, time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "k"); !ok {
		t.Fatalf("fresh entry missing")
	}
	now = now.Add(time.Minute)
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestOpenValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, Config{}); !errors.Is(err, ErrNoSource) {
		t.Fatalf("err = %v, want ErrNoSource", err)
	}
	if _, err := Open(ctx, Config{Path: ":memory:", Table: "x; DROP TABLE y"}); !errors.Is(err, ErrBadTable) {
		t.Fatalf("err = %v, want ErrBadTable", err)
	}
}
