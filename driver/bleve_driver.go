package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
)

// keywordFacetField indexes whole keywords for aggregation next to the
// analyzed "keywords" field used for matching.
const keywordFacetField = "keywords_facet"

// BleveDriver is an embedded search engine backed by a bleve index.
type BleveDriver struct {
	idx     bleve.Index
	mapping mapping.IndexMapping
}

// NewBleveDriver opens the index at indexPath or creates it. An empty path
// keeps the index in memory.
func NewBleveDriver(indexPath string) (*BleveDriver, error) {
	im := buildArticleMapping()

	if indexPath == "" {
		idx, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, &DriverError{Op: "NewBleveDriver", Err: err.Error()}
		}
		return &BleveDriver{idx: idx, mapping: im}, nil
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		if mkErr := os.MkdirAll(filepath.Dir(indexPath), 0o755); mkErr != nil {
			return nil, &DriverError{Op: "NewBleveDriver", Err: mkErr.Error()}
		}
		idx, err = bleve.New(indexPath, im)
		if err != nil {
			return nil, &DriverError{Op: "NewBleveDriver", Err: err.Error()}
		}
	}

	return &BleveDriver{idx: idx, mapping: idx.Mapping()}, nil
}

func buildArticleMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = en.AnalyzerName

	dm := bleve.NewDocumentMapping()

	for _, name := range []string{"title", "content", "section", "subsection"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = true
		fm.IncludeTermVectors = true
		dm.AddFieldMappingsAt(name, fm)
	}

	keywords := bleve.NewTextFieldMapping()
	keywords.Analyzer = en.AnalyzerName
	keywords.Store = true
	keywordsFacet := bleve.NewTextFieldMapping()
	keywordsFacet.Name = keywordFacetField
	keywordsFacet.Analyzer = keyword.Name
	keywordsFacet.Store = false
	keywordsFacet.IncludeInAll = false
	dm.AddFieldMappingsAt("keywords", keywords, keywordsFacet)

	for _, name := range []string{"doc_key", "id", "url", "author", "published_date", "source"} {
		fm := bleve.NewKeywordFieldMapping()
		fm.Store = true
		fm.IncludeInAll = false
		dm.AddFieldMappingsAt(name, fm)
	}

	im.DefaultMapping = dm
	return im
}

func (d *BleveDriver) Name() string {
	return "bleve"
}

func (d *BleveDriver) Close() error {
	return d.idx.Close()
}

func (d *BleveDriver) Ping(ctx context.Context) error {
	if _, err := d.idx.DocCount(); err != nil {
		return &DriverError{Op: "Ping", Err: err.Error()}
	}
	return nil
}

// EnsureIndex is a no-op; the mapping is fixed when the index is created.
func (d *BleveDriver) EnsureIndex(ctx context.Context) error {
	return nil
}

func (d *BleveDriver) IndexDocument(ctx context.Context, doc ArticleDocument) error {
	if err := d.idx.Index(doc.DocKey, doc.toFields()); err != nil {
		return &DriverError{Op: "IndexDocument", Err: err.Error()}
	}
	return nil
}

func (d *BleveDriver) DocumentExists(ctx context.Context, docKey string) (bool, error) {
	doc, err := d.idx.Document(docKey)
	if err != nil {
		return false, &DriverError{Op: "DocumentExists", Err: err.Error()}
	}
	return doc != nil, nil
}

// Search builds, per query term, a disjunction of boosted field matches and
// requires a share of the terms to match.
func (d *BleveDriver) Search(ctx context.Context, req SearchRequest) ([]ArticleHit, error) {
	terms := d.analyze(req.Query)
	if len(terms) == 0 {
		return []ArticleHit{}, nil
	}

	termQueries := make([]bleveQuery.Query, 0, len(terms))
	for _, term := range terms {
		fieldQueries := make([]bleveQuery.Query, 0, len(req.Fields))
		for _, f := range req.Fields {
			tq := bleve.NewTermQuery(term)
			tq.SetField(f.Name)
			tq.SetBoost(f.Weight)
			fieldQueries = append(fieldQueries, tq)
		}
		termQueries = append(termQueries, bleve.NewDisjunctionQuery(fieldQueries...))
	}

	q := bleve.NewDisjunctionQuery(termQueries...)
	q.SetMin(float64(requiredTerms(len(terms), req.MinShouldMatch)))

	srch := bleve.NewSearchRequestOptions(q, req.Limit, 0, false)
	srch.Fields = []string{"*"}
	res, err := d.idx.SearchInContext(ctx, srch)
	if err != nil {
		return nil, &DriverError{Op: "Search", Err: err.Error()}
	}

	out := make([]ArticleHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		score := h.Score
		if res.MaxScore > 0 {
			score = h.Score / res.MaxScore
		}
		out = append(out, ArticleHit{Document: documentFromFields(h.ID, h.Fields), Score: score})
	}
	return out, nil
}

func (d *BleveDriver) FacetCounts(ctx context.Context, field string) ([]FacetCount, error) {
	if field == "keywords" {
		field = keywordFacetField
	}

	// size the facet to every distinct value so bleve never truncates it
	size, err := d.distinctTerms(field)
	if err != nil {
		return nil, &DriverError{Op: "FacetCounts", Err: err.Error()}
	}
	if size == 0 {
		return []FacetCount{}, nil
	}

	srch := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 0, 0, false)
	srch.AddFacet(field, bleve.NewFacetRequest(field, size))
	res, err := d.idx.SearchInContext(ctx, srch)
	if err != nil {
		return nil, &DriverError{Op: "FacetCounts", Err: err.Error()}
	}

	facet, ok := res.Facets[field]
	if !ok || facet.Terms == nil {
		return []FacetCount{}, nil
	}
	terms := facet.Terms.Terms()
	counts := make([]FacetCount, 0, len(terms))
	for _, t := range terms {
		counts = append(counts, FacetCount{Value: t.Term, Count: t.Count})
	}
	return counts, nil
}

func (d *BleveDriver) distinctTerms(field string) (int, error) {
	dict, err := d.idx.FieldDict(field)
	if err != nil {
		return 0, err
	}
	defer dict.Close()

	n := 0
	for {
		entry, err := dict.Next()
		if err != nil {
			return 0, err
		}
		if entry == nil {
			return n, nil
		}
		n++
	}
}

// analyze splits text into the distinct terms the English analyzer indexes.
func (d *BleveDriver) analyze(text string) []string {
	analyzer := d.mapping.AnalyzerNamed(en.AnalyzerName)
	if analyzer == nil {
		return strings.Fields(strings.ToLower(text))
	}

	seen := make(map[string]struct{})
	var terms []string
	for _, tok := range analyzer.Analyze([]byte(text)) {
		term := string(tok.Term)
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

func documentFromFields(id string, fields map[string]any) ArticleDocument {
	str := func(key string) string {
		if s, ok := fields[key].(string); ok {
			return s
		}
		return ""
	}

	doc := ArticleDocument{
		DocKey:        id,
		ID:            str("id"),
		Title:         str("title"),
		Author:        str("author"),
		PublishedDate: str("published_date"),
		Source:        str("source"),
		Content:       str("content"),
		URL:           str("url"),
		Section:       str("section"),
		Subsection:    str("subsection"),
		Keywords:      []string{},
	}

	switch v := fields["keywords"].(type) {
	case string:
		doc.Keywords = append(doc.Keywords, v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				doc.Keywords = append(doc.Keywords, s)
			}
		}
	}
	return doc
}
