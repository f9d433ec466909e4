package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Test Feed</title>
		<link>https://example.com</link>
		<item>
			<title>Article 1</title>
			<link>https://example.com/article1</link>
			<description>&lt;p&gt;First &lt;b&gt;summary&lt;/b&gt;&lt;/p&gt;</description>
			<pubDate>Thu, 11 Dec 2025 00:00:00 GMT</pubDate>
		</item>
		<item>
			<title></title>
			<link>https://example.com/untitled</link>
		</item>
		<item>
			<title>Article 3</title>
		</item>
		<item>
			<title>Article 4</title>
			<link>https://example.com/article4</link>
		</item>
	</channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Test Atom Feed</title>
	<entry>
		<title>Atom Article 1</title>
		<link href="https://example.com/atom1"/>
		<summary>Atom summary</summary>
		<updated>2026-02-01T10:00:00Z</updated>
	</entry>
</feed>`

// truncated mid-way through the third item
const partialRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Broken Feed</title>
		<item>
			<title>Survivor 1</title>
			<link>https://example.com/s1</link>
			<pubDate>Thu, 11 Dec 2025 00:00:00 GMT</pubDate>
		</item>
		<item>
			<title>Survivor 2</title>
			<link>https://example.com/s2</link>
		</item>
		<item>
			<title>Lost in tran`

func feedServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherFetchNormalizesInFeedOrder(t *testing.T) {
	srv := feedServer(t, sampleRSS, http.StatusOK)
	f := NewFetcher(nil, time.Second, nil)

	got := f.Fetch(context.Background(), srv.URL, 10)

	assert.Equal(t, 3, len(got))
	assert.Equal(t, "Article 1", got[0].Title)
	assert.Equal(t, "https://example.com/article1", got[0].URL)
	assert.Equal(t, "First summary", got[0].Summary)
	assert.Equal(t, "Article 3", got[1].Title)
	assert.Equal(t, "", got[1].URL)
	assert.Equal(t, "", got[1].Summary)
	assert.Equal(t, "Article 4", got[2].Title)
}

func TestFetcherFetchTakesFirstNBeforeNormalizing(t *testing.T) {
	srv := feedServer(t, sampleRSS, http.StatusOK)
	f := NewFetcher(nil, time.Second, nil)

	// the first two entries include the untitled one, which is then dropped
	got := f.Fetch(context.Background(), srv.URL, 2)

	assert.Equal(t, 1, len(got))
	assert.Equal(t, "Article 1", got[0].Title)
}

func TestFetcherFetchAtom(t *testing.T) {
	srv := feedServer(t, sampleAtom, http.StatusOK)
	f := NewFetcher(nil, time.Second, nil)

	entries, err := f.FetchEntries(context.Background(), srv.URL)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, "https://example.com/atom1", entries[0].Link)

	ts, ok := entries[0].Timestamp()
	assert.Equal(t, true, ok)
	assert.Equal(t, true, ts.Equal(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)))
}

func TestFetcherFetchFailuresYieldEmpty(t *testing.T) {
	notFound := feedServer(t, "gone", http.StatusNotFound)
	garbage := feedServer(t, "this is not a feed at all", http.StatusOK)

	f := NewFetcher(nil, time.Second, nil)

	for _, url := range []string{notFound.URL, garbage.URL, "", "http://127.0.0.1:1/feed"} {
		got := f.Fetch(context.Background(), url, 5)
		assert.NotEqual(t, nil, got)
		assert.Equal(t, 0, len(got))
	}
}

func TestFetcherFetchEntriesReportsStage(t *testing.T) {
	notFound := feedServer(t, "gone", http.StatusNotFound)
	garbage := feedServer(t, "this is not a feed at all", http.StatusOK)
	f := NewFetcher(nil, time.Second, nil)

	_, err := f.FetchEntries(context.Background(), notFound.URL)
	var fe *FetchError
	assert.Equal(t, true, errors.As(err, &fe))
	assert.Equal(t, StageStatus, fe.Stage)
	assert.Equal(t, true, strings.Contains(err.Error(), "status 404"))

	_, err = f.FetchEntries(context.Background(), garbage.URL)
	assert.Equal(t, true, errors.As(err, &fe))
	assert.Equal(t, StageParse, fe.Stage)
}

func TestFetcherKeepsPartialEntries(t *testing.T) {
	srv := feedServer(t, partialRSS, http.StatusOK)
	f := NewFetcher(nil, time.Second, nil)

	entries, err := f.FetchEntries(context.Background(), srv.URL)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, "Survivor 1", entries[0].Title)
	assert.Equal(t, "https://example.com/s2", entries[1].Link)

	ts, ok := entries[0].Timestamp()
	assert.Equal(t, true, ok)
	assert.Equal(t, true, ts.Equal(time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC)))

	headlines := f.Fetch(context.Background(), srv.URL, 6)
	assert.Equal(t, 2, len(headlines))
	assert.Equal(t, "Survivor 2", headlines[1].Title)
}

func TestFetcherHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	f := NewFetcher(nil, 50*time.Millisecond, nil)
	start := time.Now()
	got := f.Fetch(context.Background(), slow.URL, 5)

	assert.Equal(t, 0, len(got))
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("fetch took %s", elapsed)
	}
}

func TestSalvageEntriesAtom(t *testing.T) {
	broken := strings.TrimSuffix(sampleAtom, "</feed>") + `<entry><title>cut`
	entries := salvageEntries([]byte(broken))

	assert.Equal(t, 1, len(entries))
	assert.Equal(t, "Atom Article 1", entries[0].Title)
	assert.Equal(t, "https://example.com/atom1", entries[0].Link)
	assert.Equal(t, "Atom summary", entries[0].Summary)
	assert.Equal(t, "2026-02-01T10:00:00Z", entries[0].Published)
}

func TestResponseSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", responseSnippet(nil))
	long := strings.Repeat("a", 600)
	assert.Equal(t, fmt.Sprintf("%s...", strings.Repeat("a", 512)), responseSnippet([]byte(long)))
}
