package feeds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"

	"github.com/go-playground/assert/v2"
)

type stubHeadlines struct {
	byURL map[string][]domain.Headline
	calls []string
	limit []int
}

func (s *stubHeadlines) Fetch(_ context.Context, url string, n int) []domain.Headline {
	s.calls = append(s.calls, url)
	s.limit = append(s.limit, n)
	return s.byURL[url]
}

type stubEntries struct {
	byURL map[string][]Entry
	errs  map[string]error
	calls []string
}

func (s *stubEntries) FetchEntries(_ context.Context, url string) ([]Entry, error) {
	s.calls = append(s.calls, url)
	if err := s.errs[url]; err != nil {
		return nil, err
	}
	return s.byURL[url], nil
}

func TestSectionsCollectorKeepsDeclaredOrderAndDropsEmpty(t *testing.T) {
	stub := &stubHeadlines{byURL: map[string][]domain.Headline{
		"https://feeds/top":   {{Title: "Top 1"}, {Title: "Top 2"}},
		"https://feeds/world": nil,
		"https://feeds/op":    {{Title: "Op 1"}},
	}}
	src := Source{
		ID:    "press",
		Type:  TypeSections,
		Limit: 4,
		Feeds: []Feed{
			{Name: "Top Stories", URL: "https://feeds/top"},
			{Name: "World", URL: "https://feeds/world"},
			{Name: "Opinion", URL: "https://feeds/op"},
		},
	}

	got := NewSectionsCollector(stub, nil).Collect(context.Background(), src)

	assert.Equal(t, 2, len(got))
	assert.Equal(t, "Top Stories", got[0].Name)
	assert.Equal(t, 2, len(got[0].Headlines))
	assert.Equal(t, "Opinion", got[1].Name)
	assert.Equal(t, []string{"https://feeds/top", "https://feeds/world", "https://feeds/op"}, stub.calls)
	assert.Equal(t, []int{4, 4, 4}, stub.limit)
}

func TestSingleCollectorUsesSyntheticSection(t *testing.T) {
	stub := &stubHeadlines{byURL: map[string][]domain.Headline{
		"https://axios/feed": {{Title: "A"}},
	}}
	src := Source{ID: "axios", Type: TypeSingle, Feeds: []Feed{{Name: "Axios", URL: "https://axios/feed"}}}

	got := NewSingleCollector(stub, nil).Collect(context.Background(), src)

	assert.Equal(t, 1, len(got))
	assert.Equal(t, "Top Stories", got[0].Name)
	assert.Equal(t, []int{6}, stub.limit)

	stub.byURL = nil
	assert.Equal(t, 0, len(NewSingleCollector(stub, nil).Collect(context.Background(), src)))
}

func TestWritersCollectorFiltersByWindow(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubEntries{
		byURL: map[string][]Entry{
			"https://alice.substack.com/feed": {
				{Title: "Fresh", Link: "https://alice/1", PublishedParsed: timePtr(now.Add(-2 * time.Hour))},
				{Title: "Stale", Link: "https://alice/2", PublishedParsed: timePtr(now.Add(-30 * time.Hour))},
			},
			"https://carol.substack.com/feed": {
				{Title: "Exactly a day", PublishedParsed: timePtr(now.Add(-24 * time.Hour))},
				{Title: "Recent", Published: "Mon, 01 Jun 2026 11:00:00 +0000"},
			},
		},
		errs: map[string]error{"https://bob.substack.com/feed": errors.New("boom")},
	}
	src := Source{ID: "substack", Type: TypeWriters, Section: "AI Writers", Accounts: []string{"alice", "bob", "carol"}}

	c := NewWritersCollector(stub, WindowOptions{Now: func() time.Time { return now }, Location: time.UTC}, nil)
	got := c.Collect(context.Background(), src)

	assert.Equal(t, 1, len(got))
	assert.Equal(t, "AI Writers", got[0].Name)
	assert.Equal(t, 2, len(got[0].Headlines))
	assert.Equal(t, "@alice: Fresh", got[0].Headlines[0].Title)
	assert.Equal(t, "Posted Jun 01 at 10:00", got[0].Headlines[0].Summary)
	assert.Equal(t, "@carol: Recent", got[0].Headlines[1].Title)
	assert.Equal(t, 3, len(stub.calls))
	assert.Equal(t, "No new posts in the last 24 hours", c.EmptyMessage(src))
}

func TestWritersCollectorNothingRecent(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	old := []Entry{{Title: "Old", PublishedParsed: timePtr(now.AddDate(0, 0, -3))}}
	stub := &stubEntries{byURL: map[string][]Entry{
		"https://a.substack.com/feed": old,
		"https://b.substack.com/feed": old,
		"https://c.substack.com/feed": nil,
	}}
	src := Source{ID: "substack", Type: TypeWriters, Accounts: []string{"a", "b", "c"}}

	got := NewWritersCollector(stub, WindowOptions{Now: func() time.Time { return now }}, nil).Collect(context.Background(), src)

	assert.Equal(t, 0, len(got))
}

func TestEpisodesCollector(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubEntries{byURL: map[string][]Entry{
		"https://shows/one": {
			{Title: "Ep 2", PublishedParsed: timePtr(now.Add(-47 * time.Hour))},
			{Title: "Ep 1", PublishedParsed: timePtr(now.Add(-49 * time.Hour))},
		},
	}}
	src := Source{ID: "podcasts", Type: TypeEpisodes, Feeds: []Feed{{Name: "Show One", URL: "https://shows/one"}}}

	c := NewEpisodesCollector(stub, WindowOptions{Now: func() time.Time { return now }, Location: time.UTC}, nil)
	got := c.Collect(context.Background(), src)

	assert.Equal(t, 1, len(got))
	assert.Equal(t, "New Episodes", got[0].Name)
	assert.Equal(t, 1, len(got[0].Headlines))
	assert.Equal(t, "Show One: Ep 2", got[0].Headlines[0].Title)
	assert.Equal(t, "Published May 30", got[0].Headlines[0].Summary)
	assert.Equal(t, "No new episodes in the last 48 hours", c.EmptyMessage(src))

	src.WindowHours = 72
	assert.Equal(t, 2, len(c.Collect(context.Background(), src)[0].Headlines))
	assert.Equal(t, "No new episodes in the last 72 hours", c.EmptyMessage(src))
}

func TestCollectorRegistry(t *testing.T) {
	reg := DefaultCollectorRegistry(NewFetcher(nil, time.Second, nil), WindowOptions{}, nil)

	for _, typ := range []string{TypeSections, TypeSingle, TypeWriters, TypeEpisodes} {
		c, err := reg.CollectorFor(Source{ID: "x", Type: typ})
		assert.Equal(t, nil, err)
		assert.Equal(t, typ, c.Type())
	}

	_, err := reg.CollectorFor(Source{ID: "x", Type: "video"})
	assert.NotEqual(t, nil, err)

	_, err = reg.CollectorFor(Source{ID: "x"})
	assert.NotEqual(t, nil, err)

	c, _ := reg.CollectorFor(Source{ID: "x", Type: TypeWriters})
	_, windowed := c.(WindowedCollector)
	assert.Equal(t, true, windowed)

	c, _ = reg.CollectorFor(Source{ID: "x", Type: TypeSections})
	_, windowed = c.(WindowedCollector)
	assert.Equal(t, false, windowed)
}
