package driver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSClient reads articles from an RSS or Atom feed.
type RSSClient struct {
	parser  *gofeed.Parser
	feedURL string
}

func NewRSSClient(feedURL string, timeout time.Duration) *RSSClient {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "search-gateway/1.0"

	return &RSSClient{parser: parser, feedURL: feedURL}
}

func (c *RSSClient) FetchFeed(ctx context.Context) ([]FeedArticle, error) {
	feed, err := c.parser.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &FeedError{
				Op:         "FetchFeed",
				StatusCode: httpErr.StatusCode,
				Temporary:  TemporaryStatus(httpErr.StatusCode),
				Err:        err,
			}
		}
		// transport failures surface as *url.Error; parse failures are permanent
		var urlErr *url.Error
		return nil, &FeedError{Op: "FetchFeed", Temporary: errors.As(err, &urlErr), Err: err}
	}

	articles := make([]FeedArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, FeedArticle{
			URL:           item.Link,
			Title:         item.Title,
			Byline:        itemAuthors(item),
			PublishedDate: itemPublished(item),
			Abstract:      item.Description,
			Section:       feed.Title,
			DesFacet:      item.Categories,
		})
	}
	return articles, nil
}

func itemAuthors(item *gofeed.Item) string {
	names := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

func itemPublished(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return item.Published
}
