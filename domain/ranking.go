package domain

// FilterHits keeps the hits whose score is strictly above threshold.
// Engine order is preserved; nothing is re-sorted or deduplicated.
// The result is never nil.
func FilterHits(hits []RawHit, threshold float64) []ScoredDocument {
	out := make([]ScoredDocument, 0, len(hits))
	for _, h := range hits {
		if h.Score > threshold {
			out = append(out, NewScoredDocument(h.Document, h.Score))
		}
	}
	return out
}
