package feeds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"

	"github.com/mmcdole/gofeed"
)

// Stages reported by FetchError.
const (
	StageFetch  = "fetch"
	StageStatus = "status"
	StageParse  = "parse"
)

const defaultFetchTimeout = 15 * time.Second

var defaultFeedHeaders = map[string]string{
	"Accept": "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5",
}

// FetchError describes why a feed produced no entries.
type FetchError struct {
	URL   string
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EntrySource returns the raw entries of a feed.
type EntrySource interface {
	FetchEntries(ctx context.Context, url string) ([]Entry, error)
}

// HeadlineSource returns at most n normalized headlines of a feed and never fails.
type HeadlineSource interface {
	Fetch(ctx context.Context, url string, n int) []domain.Headline
}

// Fetcher retrieves feeds over HTTP and parses them with gofeed.
type Fetcher struct {
	client  httpclient.Client
	parser  *gofeed.Parser
	timeout time.Duration
	headers map[string]string
	log     logger.Logger
}

// NewFetcher creates a Fetcher. Each fetch is bounded by timeout; a non-positive value uses 15s.
func NewFetcher(client httpclient.Client, timeout time.Duration, log logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if client == nil {
		client = httpclient.NewRestyClient(timeout)
	}
	return &Fetcher{
		client:  client,
		parser:  gofeed.NewParser(),
		timeout: timeout,
		headers: defaultFeedHeaders,
		log:     logger.Ensure(log),
	}
}

// FetchEntries downloads and parses the feed at url.
// A parse error is only returned when no entries could be recovered; partial results are returned as success.
func (f *Fetcher) FetchEntries(ctx context.Context, url string) ([]Entry, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, &FetchError{URL: url, Stage: StageFetch, Err: errors.New("feed url is empty")}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.client.Get(ctx, url, f.headers)
	if err != nil {
		return nil, &FetchError{URL: url, Stage: StageFetch, Err: err}
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, &FetchError{
			URL:   url,
			Stage: StageStatus,
			Err:   fmt.Errorf("status %d body: %s", resp.StatusCode(), responseSnippet(body)),
		}
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err == nil {
		return entriesFromFeed(feed), nil
	}

	entries := entriesFromFeed(feed)
	if len(entries) == 0 {
		entries = salvageEntries(body)
	}
	if len(entries) == 0 {
		return nil, &FetchError{URL: url, Stage: StageParse, Err: err}
	}

	f.log.WarnObj("feed parsed with errors, keeping partial entries", "feed_parse_partial", map[string]any{
		"url":     url,
		"entries": len(entries),
		"error":   err.Error(),
	})
	return entries, nil
}

// Fetch returns the first n entries of the feed, in feed order, normalized into headlines.
// Every failure is logged and reported as an empty result.
func (f *Fetcher) Fetch(ctx context.Context, url string, n int) []domain.Headline {
	entries, err := f.FetchEntries(ctx, url)
	if err != nil {
		f.log.WarnObj("feed fetch failed", "feed_fetch_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return []domain.Headline{}
	}

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}

	headlines := make([]domain.Headline, 0, len(entries))
	for _, e := range entries {
		if h, ok := Normalize(e); ok {
			headlines = append(headlines, h)
		}
	}

	f.log.DebugObj("feed fetched", "feed_fetched", map[string]any{
		"url":       url,
		"entries":   len(entries),
		"headlines": len(headlines),
	})
	return headlines
}

// responseSnippet returns a truncated snippet of the response body for logging.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
