package idgen

import (
	"strings"
	"testing"
)

func TestNextIDMonotonicAndUnique(t *testing.T) {
	seen := make(map[int64]bool)
	prev := int64(0)
	for i := 0; i < 10000; i++ {
		id := NextID()
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
		prev = id
	}
}

func TestOrderNumberFormat(t *testing.T) {
	number := GenerateOrderNumber(7)
	if !strings.HasPrefix(number, "ORD") {
		t.Errorf("order number %q missing ORD prefix", number)
	}
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		t.Fatalf("order number %q should have three segments", number)
	}
	if parts[1] != "7" {
		t.Errorf("shop segment = %q, want 7", parts[1])
	}
	if len(parts[2]) != 8 {
		t.Errorf("sequence segment %q should be 8 digits", parts[2])
	}
}

func TestEntryNumberPrefix(t *testing.T) {
	if got := GenerateEntryNumber("JE", 12); !strings.HasPrefix(got, "JE12-") {
		t.Errorf("entry number = %q, want JE12- prefix", got)
	}
}
