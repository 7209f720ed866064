package driver

// ArticleDocument is the stored representation of an article in a search engine.
type ArticleDocument struct {
	DocKey        string   `json:"doc_key"`
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
}

// ArticleHit is a scored engine hit.
type ArticleHit struct {
	Document ArticleDocument
	Score    float64
}

// WeightedField is a searchable attribute and its boost.
type WeightedField struct {
	Name   string
	Weight float64
}

// SearchRequest carries an engine-neutral full-text query to a driver.
type SearchRequest struct {
	Query  string
	Fields []WeightedField
	// MinShouldMatch is the fraction of query terms a hit must match.
	MinShouldMatch float64
	Limit          int
}

// requiredTerms returns how many of n query terms must match, rounding down
// but never below one.
func requiredTerms(n int, fraction float64) int {
	if n <= 0 || fraction <= 0 {
		return 0
	}
	required := int(float64(n) * fraction)
	if required < 1 {
		required = 1
	}
	return required
}

// FacetCount is the number of documents carrying a facet value.
type FacetCount struct {
	Value string
	Count int
}

// DriverError represents an error from the driver layer
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}

func (d ArticleDocument) fieldValues(name string) []string {
	switch name {
	case "title":
		return []string{d.Title}
	case "content":
		return []string{d.Content}
	case "keywords":
		return d.Keywords
	case "section":
		return []string{d.Section}
	case "subsection":
		return []string{d.Subsection}
	case "author":
		return []string{d.Author}
	}
	return nil
}

func (d ArticleDocument) toFields() map[string]any {
	keywords := d.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return map[string]any{
		"doc_key":        d.DocKey,
		"id":             d.ID,
		"title":          d.Title,
		"author":         d.Author,
		"published_date": d.PublishedDate,
		"source":         d.Source,
		"content":        d.Content,
		"url":            d.URL,
		"section":        d.Section,
		"subsection":     d.Subsection,
		"keywords":       keywords,
	}
}

// FeedArticle is an article record as published by a news feed.
type FeedArticle struct {
	URL           string
	Title         string
	Byline        string
	PublishedDate string
	Abstract      string
	Section       string
	Subsection    string
	DesFacet      []string
}

// FeedError reports a failed feed fetch. Temporary marks failures a later
// attempt may not hit again.
type FeedError struct {
	Op         string
	StatusCode int
	Temporary  bool
	Err        error
}

func (e *FeedError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// TemporaryStatus reports whether an HTTP status is worth retrying.
func TemporaryStatus(code int) bool {
	return code == 429 || code >= 500
}
