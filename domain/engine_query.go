package domain

// MaxEngineLimit caps how many hits a single engine query asks for.
// Meilisearch refuses to page past maxTotalHits (1000 by default).
const MaxEngineLimit = 1000

// FieldBoost names a searchable field and its relative weight.
type FieldBoost struct {
	Field string
	Boost float64
}

// EngineQuery is the engine-neutral description of a full-text query.
type EngineQuery struct {
	Text   string
	Fields []FieldBoost
	// MinimumShouldMatch is the fraction of query terms a document must match.
	MinimumShouldMatch float64
	Limit              int
}

// ArticleFields are the searchable article fields in descending weight.
var ArticleFields = []FieldBoost{
	{Field: "title", Boost: 3},
	{Field: "content", Boost: 2},
	{Field: "keywords", Boost: 2},
	{Field: "section", Boost: 1},
	{Field: "subsection", Boost: 1},
}

// NewArticleEngineQuery builds the article relevance query for a search.
func NewArticleEngineQuery(q SearchQuery) EngineQuery {
	fields := make([]FieldBoost, len(ArticleFields))
	copy(fields, ArticleFields)

	limit := q.TopK()
	if limit > MaxEngineLimit {
		limit = MaxEngineLimit
	}

	return EngineQuery{
		Text:               q.Text(),
		Fields:             fields,
		MinimumShouldMatch: 0.3,
		Limit:              limit,
	}
}
