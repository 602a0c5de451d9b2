package roomid

import (
	"strings"
	"testing"
)

func TestNewShape(t *testing.T) {
	id, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	parts := strings.Split(id, "-")
	if len(parts) != wordsPerID {
		t.Fatalf("id %q has %d parts, want %d", id, len(parts), wordsPerID)
	}
	for _, p := range parts {
		if p == "" {
			t.Fatalf("id %q has an empty segment", id)
		}
		if p != strings.ToLower(p) {
			t.Fatalf("id %q is not lowercase", id)
		}
	}
}

func TestWordListLoaded(t *testing.T) {
	if len(words) < 100 {
		t.Fatalf("word list suspiciously small: %d entries", len(words))
	}
	for _, w := range words {
		if strings.TrimSpace(w) != w || w == "" {
			t.Fatalf("unclean word list entry %q", w)
		}
		if strings.Contains(w, "-") {
			t.Fatalf("word %q would break the id separator", w)
		}
	}
}

func TestNewVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := New()
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		seen[id] = true
	}
	// The word list cubed gives millions of combinations; twenty draws
	// collapsing into one bucket would mean the generator is broken.
	if len(seen) < 2 {
		t.Fatalf("generator produced a single id across 20 draws")
	}
}
