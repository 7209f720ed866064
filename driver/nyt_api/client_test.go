package nyt_api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-gateway/driver"
)

const topStoriesBody = `{
  "status": "OK",
  "results": [
    {
      "url": "https://www.nytimes.com/2024/11/05/us/elections/results.html",
      "title": "Election Results",
      "byline": "By Jane Doe, John Roe and Max Mustermann",
      "published_date": "2024-11-05T05:00:00-05:00",
      "abstract": "Live updates.",
      "section": "us",
      "subsection": "elections",
      "des_facet": ["Elections", "Presidential Election of 2024"]
    },
    {
      "url": "https://www.nytimes.com/2024/11/05/food/soup.html",
      "title": "Soup",
      "byline": "",
      "published_date": "2024-11-05T06:00:00-05:00",
      "abstract": "Warm.",
      "section": "food",
      "subsection": "",
      "des_facet": ""
    }
  ]
}`

func TestClient_FetchTopStories(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, topStoriesBody)
	}))
	defer srv.Close()

	articles, err := NewClient(srv.URL+"/svc/topstories/v2/home.json", "secret", time.Second).FetchTopStories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
	require.Len(t, articles, 2)

	assert.Equal(t, "Election Results", articles[0].Title)
	assert.Equal(t, "By Jane Doe, John Roe and Max Mustermann", articles[0].Byline)
	assert.Equal(t, []string{"Elections", "Presidential Election of 2024"}, articles[0].DesFacet)
	assert.Empty(t, articles[1].DesFacet)
}

func TestClient_FetchTopStories_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTemporary bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantTemporary: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantTemporary: true},
		{name: "unauthorized", status: http.StatusUnauthorized, wantTemporary: false},
		{name: "malformed body", status: http.StatusOK, body: "{", wantTemporary: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "k", time.Second).FetchTopStories(context.Background())
			var feedErr *driver.FeedError
			require.True(t, errors.As(err, &feedErr))
			assert.Equal(t, tt.wantTemporary, feedErr.Temporary)
		})
	}
}

func TestClient_FetchTopStories_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", 20*time.Millisecond).FetchTopStories(context.Background())
	var feedErr *driver.FeedError
	require.True(t, errors.As(err, &feedErr))
	assert.True(t, feedErr.Temporary)
}
