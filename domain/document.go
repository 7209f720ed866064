package domain

// ScoredDocument is a single search result returned to API clients.
type ScoredDocument struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"published_date"`
	Source        string   `json:"source"`
	Content       string   `json:"content"`
	URL           string   `json:"url"`
	Section       string   `json:"section"`
	Subsection    string   `json:"subsection"`
	Keywords      []string `json:"keywords"`
	Score         float64  `json:"score"`
}

// RawHit is an engine hit in engine order, before threshold filtering.
type RawHit struct {
	Document IndexedArticle
	Score    float64
}

// NewScoredDocument copies an indexed article and attaches its relevance score.
func NewScoredDocument(a IndexedArticle, score float64) ScoredDocument {
	keywords := make([]string, len(a.Keywords))
	copy(keywords, a.Keywords)

	return ScoredDocument{
		ID:            a.ID,
		Title:         a.Title,
		Author:        a.Author,
		PublishedDate: a.PublishedDate,
		Source:        a.Source,
		Content:       a.Content,
		URL:           a.URL,
		Section:       a.Section,
		Subsection:    a.Subsection,
		Keywords:      keywords,
		Score:         score,
	}
}
