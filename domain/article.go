package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// DefaultSourceName is attached to every indexed article unless configured otherwise.
const DefaultSourceName = "The New York Times"

// RawArticle is a record as delivered by the upstream news feed.
type RawArticle struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Byline        string   `json:"byline"`
	PublishedDate string   `json:"published_date"`
	Abstract      string   `json:"abstract"`
	Section       string   `json:"section"`
	Subsection    string   `json:"subsection"`
	DesFacet      []string `json:"des_facet"`
}

// IndexedArticle is the persisted form of an article inside the search engine.
// ID is the source URL; DocKey is the engine primary key derived from it.
type IndexedArticle struct {
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

// DocKey derives the deterministic engine identifier for an article URL.
// Engines such as Meilisearch only accept [a-zA-Z0-9_-] in primary keys.
func DocKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// NewIndexedArticle transforms a feed record into its indexed form.
// normalize is applied to the abstract; a nil normalize keeps it verbatim.
func NewIndexedArticle(raw RawArticle, source string, normalize func(string) string) (IndexedArticle, error) {
	url := strings.TrimSpace(raw.URL)
	if url == "" {
		return IndexedArticle{}, errors.New("article URL cannot be empty")
	}
	if source == "" {
		source = DefaultSourceName
	}

	content := raw.Abstract
	if normalize != nil {
		content = normalize(content)
	}

	return IndexedArticle{
		DocKey:        DocKey(url),
		ID:            url,
		Title:         raw.Title,
		Author:        ShortenByline(raw.Byline, 2),
		PublishedDate: raw.PublishedDate,
		Source:        source,
		Content:       content,
		URL:           url,
		Section:       raw.Section,
		Subsection:    raw.Subsection,
		Keywords:      CleanKeywords(raw.DesFacet),
	}, nil
}

// ShortenByline keeps the first max comma-separated parts of a byline,
// trimmed and joined with ", ".
func ShortenByline(byline string, max int) string {
	names := make([]string, 0, max)
	for _, part := range strings.Split(byline, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		names = append(names, part)
		if len(names) == max {
			break
		}
	}
	return strings.Join(names, ", ")
}
