package domain

import "testing"

func hit(url string, score float64) RawHit {
	return RawHit{
		Document: IndexedArticle{ID: url, URL: url, Title: url, Keywords: []string{"k"}},
		Score:    score,
	}
}

func TestFilterHits(t *testing.T) {
	hits := []RawHit{hit("a", 0.9), hit("b", 0.5), hit("c", 0.7), hit("d", 0.1), hit("e", 0.51)}

	tests := []struct {
		name      string
		threshold float64
		wantIDs   []string
	}{
		{name: "strictly above threshold", threshold: 0.5, wantIDs: []string{"a", "c", "e"}},
		{name: "zero keeps positive scores", threshold: 0, wantIDs: []string{"a", "b", "c", "d", "e"}},
		{name: "high threshold", threshold: 0.95, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterHits(hits, tt.threshold)
			if got == nil {
				t.Fatal("FilterHits must not return nil")
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("result %d = %q, want %q (engine order)", i, got[i].ID, id)
				}
				if got[i].Score <= tt.threshold {
					t.Errorf("result %q has score %v <= threshold", got[i].ID, got[i].Score)
				}
			}
		})
	}
}

func TestFilterHits_Monotonic(t *testing.T) {
	hits := []RawHit{hit("a", 0.9), hit("b", 0.3), hit("c", 0.6), hit("d", 0.45)}
	thresholds := []float64{0, 0.2, 0.3, 0.45, 0.5, 0.89, 0.9}

	for i := 1; i < len(thresholds); i++ {
		lo := FilterHits(hits, thresholds[i-1])
		hi := FilterHits(hits, thresholds[i])

		inLo := make(map[string]bool, len(lo))
		for _, d := range lo {
			inLo[d.ID] = true
		}
		for _, d := range hi {
			if !inLo[d.ID] {
				t.Errorf("threshold %v kept %q which threshold %v dropped", thresholds[i], d.ID, thresholds[i-1])
			}
		}
	}
}

func TestFilterHits_EmptyAndCopy(t *testing.T) {
	if got := FilterHits(nil, 0.5); got == nil || len(got) != 0 {
		t.Errorf("FilterHits(nil) = %#v, want empty non-nil", got)
	}

	hits := []RawHit{hit("a", 0.9)}
	got := FilterHits(hits, 0.5)
	got[0].Keywords[0] = "changed"
	if hits[0].Document.Keywords[0] != "k" {
		t.Error("result keywords alias engine hit memory")
	}
}
