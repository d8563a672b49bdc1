package util

import "testing"

func TestStorageKey(t *testing.T) {
	cases := []struct {
		prefix, key string
		noPrefix    bool
		want        string
	}{
		{"", "theme", false, "sky-hooks-theme"},
		{"app", "theme", false, "app-theme"},
		{"app", "theme", true, "theme"},
		{"", "a-b", false, "sky-hooks-a-b"},
	}
	for _, tc := range cases {
		if got := StorageKey(tc.prefix, tc.key, tc.noPrefix); got != tc.want {
			t.Fatalf("StorageKey(%q,%q,%v) = %q, want %q", tc.prefix, tc.key, tc.noPrefix, got, tc.want)
		}
	}
}

func TestRedactStableAndShort(t *testing.T) {
	a, b := Redact("sky-hooks-token"), Redact("sky-hooks-token")
	if a != b {
		t.Fatalf("Redact not stable: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("len = %d, want 16 hex chars", len(a))
	}
	if a == Redact("sky-hooks-other") {
		t.Fatalf("distinct keys share a fingerprint")
	}
}
