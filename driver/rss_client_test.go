package driver

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
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>World News</title>
<item>
<title>Summit opens</title>
<link>https://example.com/summit</link>
<description>Leaders meet.</description>
<dc:creator>Jane Doe</dc:creator>
<pubDate>Tue, 05 Nov 2024 10:00:00 GMT</pubDate>
<category>Climate</category>
<category>Diplomacy</category>
</item>
</channel>
</rss>`

func TestRSSClient_FetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = io.WriteString(w, testRSS)
	}))
	defer srv.Close()

	articles, err := NewRSSClient(srv.URL, time.Second).FetchFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "https://example.com/summit", a.URL)
	assert.Equal(t, "Summit opens", a.Title)
	assert.Equal(t, "Jane Doe", a.Byline)
	assert.Equal(t, "2024-11-05T10:00:00Z", a.PublishedDate)
	assert.Equal(t, "Leaders meet.", a.Abstract)
	assert.Equal(t, "World News", a.Section)
	assert.Equal(t, []string{"Climate", "Diplomacy"}, a.DesFacet)
}

func TestRSSClient_FetchFeed_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTemporary bool
	}{
		{name: "server error", status: http.StatusBadGateway, wantTemporary: true},
		{name: "throttled", status: http.StatusTooManyRequests, wantTemporary: true},
		{name: "not found", status: http.StatusNotFound, wantTemporary: false},
		{name: "garbage", status: http.StatusOK, body: "not a feed", wantTemporary: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewRSSClient(srv.URL, time.Second).FetchFeed(context.Background())
			var feedErr *FeedError
			require.True(t, errors.As(err, &feedErr))
			assert.Equal(t, tt.wantTemporary, feedErr.Temporary)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewRSSClient(url, time.Second).FetchFeed(context.Background())
		var feedErr *FeedError
		require.True(t, errors.As(err, &feedErr))
		assert.True(t, feedErr.Temporary)
	})
}
