package feeds

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestEntryTimestampFallbackChain(t *testing.T) {
	published := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		entry  Entry
		want   time.Time
		wantOK bool
	}{
		{
			name:   "structured publish time wins",
			entry:  Entry{PublishedParsed: timePtr(published), UpdatedParsed: timePtr(updated), Published: "Tue, 03 Mar 2026 10:00:00 +0000"},
			want:   published,
			wantOK: true,
		},
		{
			name:   "update time when publish is missing",
			entry:  Entry{UpdatedParsed: timePtr(updated), Published: "Tue, 03 Mar 2026 10:00:00 +0000"},
			want:   updated,
			wantOK: true,
		},
		{
			name:   "zero structured times are ignored",
			entry:  Entry{PublishedParsed: &time.Time{}, UpdatedParsed: timePtr(updated)},
			want:   updated,
			wantOK: true,
		},
		{
			name:   "rfc 822 text",
			entry:  Entry{Published: "Tue, 03 Mar 2026 10:00:00 +0000"},
			want:   time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "rfc 822 text with zone offset",
			entry:  Entry{Published: "Tue, 03 Mar 2026 13:00:00 +0300"},
			want:   time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "iso text through the best effort parser",
			entry:  Entry{Published: "2026-03-04T10:00:00Z"},
			want:   time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{name: "garbage text", entry: Entry{Published: "sometime last week"}, wantOK: false},
		{name: "nothing at all", entry: Entry{}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.entry.Timestamp()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK && !got.Equal(tt.want) {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFilterRecentBoundaryIsStrict(t *testing.T) {
	cutoff := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Title: "after", Link: "https://x/1", PublishedParsed: timePtr(cutoff.Add(time.Second))},
		{Title: "at cutoff", Link: "https://x/2", PublishedParsed: timePtr(cutoff)},
		{Title: "before", Link: "https://x/3", PublishedParsed: timePtr(cutoff.Add(-time.Hour))},
		{Title: "undated", Link: "https://x/4", Published: "not a date"},
		{Title: "", Link: "https://x/5", PublishedParsed: timePtr(cutoff.Add(time.Hour))},
		{Title: "also after", Link: "https://x/6", Published: "Sun, 10 May 2026 15:00:00 +0000"},
	}

	got := FilterRecent(entries, cutoff, EpisodeDecorator("Show", time.UTC))

	assert.Equal(t, 2, len(got))
	assert.Equal(t, "Show: after", got[0].Title)
	assert.Equal(t, "Show: also after", got[1].Title)
}

func TestFilterRecentEmpty(t *testing.T) {
	got := FilterRecent(nil, time.Now(), EpisodeDecorator("Show", nil))
	assert.NotEqual(t, nil, got)
	assert.Equal(t, 0, len(got))
}

func TestPostDecorator(t *testing.T) {
	istanbul := time.FixedZone("+03", 3*60*60)
	published := time.Date(2026, 1, 5, 6, 30, 0, 0, time.UTC)

	h := PostDecorator("aisnakeoil", istanbul)(Entry{Link: " https://aisnakeoil.substack.com/p/x "}, "Hype check", published)

	assert.Equal(t, "@aisnakeoil: Hype check", h.Title)
	assert.Equal(t, "https://aisnakeoil.substack.com/p/x", h.URL)
	assert.Equal(t, "Posted Jan 05 at 09:30", h.Summary)
}

func TestEpisodeDecorator(t *testing.T) {
	published := time.Date(2026, 1, 5, 23, 30, 0, 0, time.UTC)

	h := EpisodeDecorator("Ezra Klein Show", time.FixedZone("+03", 3*60*60))(Entry{}, "Interview", published)

	assert.Equal(t, "Ezra Klein Show: Interview", h.Title)
	assert.Equal(t, "", h.URL)
	assert.Equal(t, "Published Jan 06", h.Summary)
}
