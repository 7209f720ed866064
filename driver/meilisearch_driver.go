package driver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
)

const (
	meiliPrimaryKey    = "doc_key"
	meiliTaskInterval  = 50 * time.Millisecond
	meiliMaxFacetValue = 10000
	// minimum-should-match runs after Meilisearch ranks, so pages are
	// over-fetched until enough qualifying hits are found
	meiliOverfetch = 3
	meiliMaxPages  = 4
)

// meiliSearchableAttributes is ordered by relevance weight; Meilisearch's
// attribute ranking rule favours earlier attributes.
var meiliSearchableAttributes = []string{"title", "content", "keywords", "section", "subsection"}

type MeilisearchDriver struct {
	client meilisearch.ServiceManager
	index  meilisearch.IndexManager
	uid    string
}

func NewMeilisearchDriver(client meilisearch.ServiceManager, indexName string) *MeilisearchDriver {
	return &MeilisearchDriver{
		client: client,
		index:  client.Index(indexName),
		uid:    indexName,
	}
}

func (d *MeilisearchDriver) Name() string {
	return "meilisearch"
}

func (d *MeilisearchDriver) Ping(ctx context.Context) error {
	if _, err := d.client.HealthWithContext(ctx); err != nil {
		return &DriverError{Op: "Ping", Err: err.Error()}
	}
	return nil
}

func (d *MeilisearchDriver) IndexDocument(ctx context.Context, doc ArticleDocument) error {
	task, err := d.index.AddDocumentsWithContext(ctx, []map[string]any{doc.toFields()})
	if err != nil {
		return &DriverError{
			Op:  "IndexDocument",
			Err: err.Error(),
		}
	}

	if err := d.waitForTask(ctx, task.TaskUID); err != nil {
		return &DriverError{
			Op:  "IndexDocument",
			Err: "failed to wait for indexing task: " + err.Error(),
		}
	}

	return nil
}

func (d *MeilisearchDriver) DocumentExists(ctx context.Context, docKey string) (bool, error) {
	var doc map[string]any
	err := d.index.GetDocumentWithContext(ctx, docKey, &meilisearch.DocumentQuery{
		Fields: []string{meiliPrimaryKey},
	}, &doc)
	if err == nil {
		return true, nil
	}

	var meiliErr *meilisearch.Error
	if errors.As(err, &meiliErr) && meiliErr.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, &DriverError{Op: "DocumentExists", Err: err.Error()}
}

func (d *MeilisearchDriver) Search(ctx context.Context, req SearchRequest) ([]ArticleHit, error) {
	if req.Limit <= 0 {
		return []ArticleHit{}, nil
	}

	attributes := make([]string, 0, len(req.Fields))
	for _, f := range req.Fields {
		attributes = append(attributes, f.Name)
	}

	terms := strings.Fields(strings.ToLower(req.Query))
	required := requiredTerms(len(terms), req.MinShouldMatch)
	pageSize := req.Limit * meiliOverfetch

	hits := make([]ArticleHit, 0, req.Limit)
	for page := 0; page < meiliMaxPages && len(hits) < req.Limit; page++ {
		result, err := d.index.SearchWithContext(ctx, req.Query, &meilisearch.SearchRequest{
			Query:                req.Query,
			Offset:               int64(page * pageSize),
			Limit:                int64(pageSize),
			AttributesToSearchOn: attributes,
			ShowRankingScore:     true,
			ShowMatchesPosition:  true,
		})
		if err != nil {
			return nil, &DriverError{
				Op:  "Search",
				Err: err.Error(),
			}
		}

		for _, h := range result.Hits {
			hit, err := decodeMeiliHit(h)
			if err != nil {
				return nil, &DriverError{Op: "Search", Err: "failed to decode hit: " + err.Error()}
			}
			if matchedTerms(terms, hit.matchedWords()) < required {
				continue
			}
			hits = append(hits, ArticleHit{Document: hit.ArticleDocument, Score: hit.RankingScore})
			if len(hits) == req.Limit {
				break
			}
		}

		if len(result.Hits) < pageSize {
			break
		}
	}

	return hits, nil
}

func (d *MeilisearchDriver) FacetCounts(ctx context.Context, field string) ([]FacetCount, error) {
	result, err := d.index.SearchWithContext(ctx, "", &meilisearch.SearchRequest{
		Limit:  0,
		Facets: []string{field},
	})
	if err != nil {
		return nil, &DriverError{Op: "FacetCounts", Err: err.Error()}
	}

	raw, err := json.Marshal(result.FacetDistribution)
	if err != nil {
		return nil, &DriverError{Op: "FacetCounts", Err: err.Error()}
	}
	var distribution map[string]map[string]int
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &distribution); err != nil {
			return nil, &DriverError{Op: "FacetCounts", Err: "failed to decode facet distribution: " + err.Error()}
		}
	}

	counts := make([]FacetCount, 0, len(distribution[field]))
	for value, count := range distribution[field] {
		counts = append(counts, FacetCount{Value: value, Count: count})
	}
	return counts, nil
}

func (d *MeilisearchDriver) EnsureIndex(ctx context.Context) error {
	if _, err := d.index.FetchInfoWithContext(ctx); err != nil {
		task, err := d.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
			Uid:        d.uid,
			PrimaryKey: meiliPrimaryKey,
		})
		if err != nil {
			return &DriverError{
				Op:  "EnsureIndex",
				Err: "failed to create index: " + err.Error(),
			}
		}
		if err := d.waitForTask(ctx, task.TaskUID); err != nil {
			return &DriverError{
				Op:  "EnsureIndex",
				Err: "failed to wait for index creation: " + err.Error(),
			}
		}
	}

	searchable := append([]string(nil), meiliSearchableAttributes...)
	task, err := d.index.UpdateSearchableAttributesWithContext(ctx, &searchable)
	if err != nil {
		return &DriverError{Op: "EnsureIndex", Err: "failed to set searchable attributes: " + err.Error()}
	}
	if err := d.waitForTask(ctx, task.TaskUID); err != nil {
		return &DriverError{Op: "EnsureIndex", Err: err.Error()}
	}

	task, err = d.index.UpdateFilterableAttributesWithContext(ctx, &[]string{"keywords"})
	if err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set filterable attributes: " + err.Error(),
		}
	}
	if err := d.waitForTask(ctx, task.TaskUID); err != nil {
		return &DriverError{Op: "EnsureIndex", Err: err.Error()}
	}

	task, err = d.index.UpdateFacetingWithContext(ctx, &meilisearch.Faceting{MaxValuesPerFacet: meiliMaxFacetValue})
	if err != nil {
		return &DriverError{Op: "EnsureIndex", Err: "failed to set faceting: " + err.Error()}
	}
	return d.waitForTask(ctx, task.TaskUID)
}

func (d *MeilisearchDriver) waitForTask(ctx context.Context, uid int64) error {
	task, err := d.index.WaitForTaskWithContext(ctx, uid, meiliTaskInterval)
	if err != nil {
		return err
	}
	if task.Status != meilisearch.TaskStatusSucceeded {
		return errors.New("task " + string(task.Status) + ": " + task.Error.Message)
	}
	return nil
}

type meiliMatch struct {
	Start   int   `json:"start"`
	Length  int   `json:"length"`
	Indices []int `json:"indices"`
}

type meiliHit struct {
	ArticleDocument
	RankingScore    float64                 `json:"_rankingScore"`
	MatchesPosition map[string][]meiliMatch `json:"_matchesPosition"`
}

func decodeMeiliHit(h any) (meiliHit, error) {
	raw, err := json.Marshal(h)
	if err != nil {
		return meiliHit{}, err
	}
	var hit meiliHit
	if err := json.Unmarshal(raw, &hit); err != nil {
		return meiliHit{}, err
	}
	return hit, nil
}

// matchedWords extracts the lowercased words Meilisearch reported as matches.
func (h meiliHit) matchedWords() []string {
	var words []string
	for field, matches := range h.MatchesPosition {
		values := h.fieldValues(field)
		for _, m := range matches {
			value := ""
			switch {
			case len(m.Indices) > 0 && m.Indices[0] < len(values):
				value = values[m.Indices[0]]
			case len(values) == 1:
				value = values[0]
			}
			if m.Start < 0 || m.Length <= 0 || m.Start+m.Length > len(value) {
				continue
			}
			words = append(words, strings.ToLower(value[m.Start:m.Start+m.Length]))
		}
	}
	return words
}

// matchedTerms counts query terms sharing a prefix with a matched word, which
// tolerates Meilisearch prefix search on the final term.
func matchedTerms(terms, words []string) int {
	n := 0
	for _, t := range terms {
		for _, w := range words {
			if strings.HasPrefix(w, t) || strings.HasPrefix(t, w) {
				n++
				break
			}
		}
	}
	return n
}
