package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultTopK      = 10
	DefaultThreshold = 0.5
)

// SearchQuery is an immutable, validated search request. It fully
// determines its cache key.
type SearchQuery struct {
	text      string
	topK      int
	threshold float64
}

// NewSearchQuery validates the parameters and builds a SearchQuery.
func NewSearchQuery(text string, topK int, threshold float64) (SearchQuery, error) {
	if strings.TrimSpace(text) == "" {
		return SearchQuery{}, NewValidationError("text", "Search text is required")
	}
	if topK <= 0 {
		return SearchQuery{}, NewValidationError("top_k", "top_k must be a positive integer")
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold >= 1 {
		return SearchQuery{}, NewValidationError("threshold", "threshold must be in [0, 1)")
	}
	if threshold == 0 {
		// canonicalise -0 so equal queries share a key
		threshold = 0
	}

	return SearchQuery{text: text, topK: topK, threshold: threshold}, nil
}

func (q SearchQuery) Text() string {
	return q.text
}

func (q SearchQuery) TopK() int {
	return q.topK
}

func (q SearchQuery) Threshold() float64 {
	return q.threshold
}

// CacheKey derives the cache key. The text is length-prefixed so a ':' in
// the query cannot make two different queries collide.
func (q SearchQuery) CacheKey() string {
	var b strings.Builder
	b.Grow(len(q.text) + 32)
	b.WriteString("search:v1:")
	b.WriteString(strconv.Itoa(len(q.text)))
	b.WriteByte(':')
	b.WriteString(q.text)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(q.topK))
	b.WriteByte(':')
	b.WriteString(strconv.FormatFloat(q.threshold, 'g', -1, 64))
	return b.String()
}
