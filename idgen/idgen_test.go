package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7Unique(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
		if _, err := Parse(id); err != nil {
			t.Fatalf("generated ID does not parse: %v", err)
		}
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("evt_", Default)
	id := gen()
	if !strings.HasPrefix(id, "evt_") {
		t.Errorf("prefix missing: %s", id)
	}
	if _, err := Parse(strings.TrimPrefix(id, "evt_")); err != nil {
		t.Errorf("suffix not a UUID: %v", err)
	}
}

func TestTimestamped(t *testing.T) {
	id := Timestamped(Default)()
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		t.Fatalf("unexpected format: %s", id)
	}
	if !strings.HasSuffix(parts[0], "Z") {
		t.Errorf("timestamp part: %s", parts[0])
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for garbage input")
	}
}
