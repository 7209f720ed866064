package domain

import (
	"sort"
	"strings"
	"unicode"
)

const maxKeywordLength = 100

// CleanKeywords trims feed facets and drops empty, overlong or
// control-character values. Order is kept and duplicates are removed.
func CleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))

	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || len(kw) > maxKeywordLength {
			continue
		}
		if strings.IndexFunc(kw, unicode.IsControl) >= 0 {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}

	return out
}

// MaxKeywords is the size of the keyword listing.
const MaxKeywords = 100

// KeywordCount is the number of indexed articles tagged with a keyword.
type KeywordCount struct {
	Keyword string
	Count   int
}

// TopKeywords orders keywords by descending count, ties alphabetically,
// and keeps at most limit of them.
func TopKeywords(counts []KeywordCount, limit int) []string {
	sorted := make([]KeywordCount, len(counts))
	copy(sorted, counts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Keyword < sorted[j].Keyword
	})

	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]string, len(sorted))
	for i, kc := range sorted {
		out[i] = kc.Keyword
	}
	return out
}
