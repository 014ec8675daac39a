package anchorage

import "testing"

func TestNormalizeDestinationRejectsNoise(t *testing.T) {
	cases := []string{"", "unknown", "  N/A  ", "tbd", "."}
	for _, c := range cases {
		if _, ok := normalizeDestination(c); ok {
			t.Fatalf("expected %q to be rejected as noise", c)
		}
	}
}

func TestNormalizeDestinationNormalizes(t *testing.T) {
	got, ok := normalizeDestination("  singapore. ")
	if !ok {
		t.Fatalf("expected a valid destination to be accepted")
	}
	if got != "SINGAPORE" {
		t.Fatalf("expected SINGAPORE, got %q", got)
	}
}

func TestTopDestinationsOrdersByFrequency(t *testing.T) {
	dests := []string{"SINGAPORE", "SINGAPORE", "ROTTERDAM", "rotterdam", "busan", "", "n/a"}
	top := topDestinations(dests, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 results, got %d", len(top))
	}
	// SINGAPORE and ROTTERDAM both count 2; the tie breaks lexically.
	if top[0] != "ROTTERDAM" {
		t.Fatalf("expected ROTTERDAM first, got %v", top)
	}
}
