package id

import (
	"strings"
	"testing"
)

func TestNewLength(t *testing.T) {
	got := New()
	if len(got) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(got), got)
	}
	if got != strings.ToLower(got) {
		t.Fatalf("expected lowercase identifier, got %q", got)
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		v := New()
		if _, dup := seen[v]; dup {
			t.Fatalf("duplicate identifier %q", v)
		}
		seen[v] = struct{}{}
	}
}
