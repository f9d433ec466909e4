package feeds

import (
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// Entry is a raw feed item before normalization. Every field is optional.
type Entry struct {
	Title       string
	Link        string
	Summary     string
	Description string

	PublishedParsed *time.Time
	UpdatedParsed   *time.Time
	// Published is the textual publish date as it appeared in the feed.
	Published string
}

// Timestamp returns the best available publish time: the structured publish time,
// then the structured update time, then a best-effort parse of the textual date.
// The second value is false when none of them yields a time.
func (e Entry) Timestamp() (time.Time, bool) {
	if e.PublishedParsed != nil && !e.PublishedParsed.IsZero() {
		return *e.PublishedParsed, true
	}
	if e.UpdatedParsed != nil && !e.UpdatedParsed.IsZero() {
		return *e.UpdatedParsed, true
	}
	if raw := strings.TrimSpace(e.Published); raw != "" {
		if t, err := parseTextDate(raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTextDate accepts RFC 822 style dates first and falls back to dateparse for the rest.
func parseTextDate(raw string) (time.Time, error) {
	if t, err := mail.ParseDate(raw); err == nil {
		return t, nil
	}
	return dateparse.ParseAny(raw)
}

func entryFromItem(item *gofeed.Item) Entry {
	if item == nil {
		return Entry{}
	}
	e := Entry{
		Title:           item.Title,
		Link:            item.Link,
		Summary:         item.Description,
		Description:     item.Content,
		PublishedParsed: item.PublishedParsed,
		UpdatedParsed:   item.UpdatedParsed,
		Published:       item.Published,
	}
	if e.Published == "" {
		e.Published = item.Updated
	}
	return e
}

func entriesFromFeed(feed *gofeed.Feed) []Entry {
	if feed == nil {
		return nil
	}
	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, entryFromItem(item))
	}
	return entries
}
