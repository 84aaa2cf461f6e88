package atom

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTag canonicalizes one tag name: NFC-normalized, trimmed,
// lowercased. Returns "" for blank input. Lookups must apply the same
// normalization so tag matching stays case-insensitive.
func NormalizeTag(tag string) string {
	t := norm.NFC.String(tag)
	t = strings.TrimSpace(t)
	return strings.ToLower(t)
}

// NormalizeTags canonicalizes, deduplicates, and sorts a tag set.
// Blank entries are dropped.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := NormalizeTag(tag)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
