// Package nyt_api provides a client for the New York Times Top Stories API.
package nyt_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"search-gateway/driver"
)

// DefaultEndpoint is the Top Stories home section.
const DefaultEndpoint = "https://api.nytimes.com/svc/topstories/v2/home.json"

// Client fetches the current top stories.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient creates a new Top Stories client. An empty endpoint selects DefaultEndpoint.
func NewClient(endpoint string, apiKey string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

type topStoriesResponse struct {
	Status  string        `json:"status"`
	Results []storyRecord `json:"results"`
}

type storyRecord struct {
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Byline        string    `json:"byline"`
	PublishedDate string    `json:"published_date"`
	Abstract      string    `json:"abstract"`
	Section       string    `json:"section"`
	Subsection    string    `json:"subsection"`
	DesFacet      facetList `json:"des_facet"`
}

// facetList accepts both a JSON array and the empty string the API uses
// for records without facets.
type facetList []string

func (f *facetList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("des_facet: %w", err)
	}
	if s == "" {
		*f = nil
	} else {
		*f = []string{s}
	}
	return nil
}

// FetchTopStories returns the records of the current top stories feed.
func (c *Client) FetchTopStories(ctx context.Context) ([]driver.FeedArticle, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &driver.FeedError{Op: "FetchTopStories", Err: err}
	}
	q := u.Query()
	q.Set("api-key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &driver.FeedError{Op: "FetchTopStories", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// network failures and timeouts
		return nil, &driver.FeedError{Op: "FetchTopStories", Temporary: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &driver.FeedError{
			Op:         "FetchTopStories",
			StatusCode: resp.StatusCode,
			Temporary:  driver.TemporaryStatus(resp.StatusCode),
			Err:        errors.New("unexpected status " + resp.Status),
		}
	}

	var body topStoriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &driver.FeedError{Op: "FetchTopStories", Err: fmt.Errorf("decode response: %w", err)}
	}

	articles := make([]driver.FeedArticle, len(body.Results))
	for i, r := range body.Results {
		articles[i] = driver.FeedArticle{
			URL:           r.URL,
			Title:         r.Title,
			Byline:        r.Byline,
			PublishedDate: r.PublishedDate,
			Abstract:      r.Abstract,
			Section:       r.Section,
			Subsection:    r.Subsection,
			DesFacet:      []string(r.DesFacet),
		}
	}
	return articles, nil
}
