package anchorage

import "strings"

// noiseTokens is the curated set of normalized destination strings that
// carry no information and are rejected by normalizeDestination, ported
// from the reference port_name_filter's noise-token behavior.
var noiseTokens = map[string]struct{}{
	"":         {},
	"UNKNOWN":  {},
	"NONE":     {},
	"N/A":      {},
	"NA":       {},
	"TBD":      {},
	"TEST":     {},
	"XXXXXXX":  {},
	"XXXX":     {},
	"---":      {},
	"..":       {},
}

// normalizeDestination strips surrounding punctuation/whitespace,
// upper-cases, and rejects noise tokens and single-character strings.
// The bool return is false when the result should not count toward
// top_destinations.
func normalizeDestination(s string) (string, bool) {
	trimmed := strings.TrimFunc(s, func(r rune) bool {
		return r == ' ' || r == '.' || r == '-' || r == '_' || r == '/' || r == '\t' || r == '\n'
	})
	trimmed = strings.Join(strings.Fields(trimmed), " ")
	upper := strings.ToUpper(trimmed)

	if _, noise := noiseTokens[upper]; noise {
		return "", false
	}
	if len(upper) <= 1 {
		return "", false
	}
	return upper, true
}

// topDestinations returns the n most frequent normalized destinations,
// most frequent first; ties break lexically for determinism.
func topDestinations(destinations []string, n int) []string {
	counts := make(map[string]int)
	for _, d := range destinations {
		norm, ok := normalizeDestination(d)
		if !ok {
			continue
		}
		counts[norm]++
	}

	type kv struct {
		name  string
		count int
	}
	kvs := make([]kv, 0, len(counts))
	for name, count := range counts {
		kvs = append(kvs, kv{name, count})
	}
	for i := 1; i < len(kvs); i++ {
		for j := i; j > 0 && (kvs[j].count > kvs[j-1].count ||
			(kvs[j].count == kvs[j-1].count && kvs[j].name < kvs[j-1].name)); j-- {
			kvs[j], kvs[j-1] = kvs[j-1], kvs[j]
		}
	}

	if n > len(kvs) {
		n = len(kvs)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = kvs[i].name
	}
	return out
}
