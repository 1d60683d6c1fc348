package idgen

import (
	"strings"
	"sync"
	"testing"
)

func TestUUIDv4_Format(t *testing.T) {
	id := UUIDv4()()
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("UUIDv4: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv4: expected length 36, got %d", len(id))
	}
	// Version nibble sits at the start of the third group.
	if parts[2][0] != '4' {
		t.Errorf("UUIDv4: version nibble = %q, want 4", parts[2][0])
	}
}

func TestUUIDv7_Version(t *testing.T) {
	id := UUIDv7()()
	parts := strings.Split(id, "-")
	if len(parts) != 5 || parts[2][0] != '7' {
		t.Fatalf("UUIDv7: unexpected id %q", id)
	}
}

func TestUUIDv4_Uniqueness(t *testing.T) {
	gen := UUIDv4()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv4: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	gen := Sequence("c")
	for _, want := range []string{"c1", "c2", "c3"} {
		if got := gen(); got != want {
			t.Errorf("Sequence: got %q, want %q", got, want)
		}
	}
}

func TestSequence_Concurrent(t *testing.T) {
	gen := Sequence("")
	var mu sync.Mutex
	seen := make(map[string]struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != 800 {
		t.Fatalf("Sequence: got %d distinct ids, want 800", len(seen))
	}
}

func TestParse(t *testing.T) {
	valid := UUIDv4()()
	got, err := Parse(valid)
	if err != nil {
		t.Fatalf("Parse(%q): %v", valid, err)
	}
	if got != valid {
		t.Errorf("Parse(%q) = %q", valid, got)
	}

	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("Parse: expected error for invalid input")
	}
}
