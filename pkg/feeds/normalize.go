package feeds

import (
	"strings"
	"unicode"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

const (
	// SummaryLimit is the maximum summary length in characters before the ellipsis.
	SummaryLimit = 200
	ellipsis     = "..."
)

// Normalize converts a raw entry into a Headline.
// It returns false when the title is empty once markup is stripped.
func Normalize(e Entry) (domain.Headline, bool) {
	title := StripMarkup(e.Title)
	if title == "" {
		return domain.Headline{}, false
	}

	h := domain.Headline{
		Title: title,
		URL:   strings.TrimSpace(e.Link),
	}

	raw := e.Summary
	if strings.TrimSpace(raw) == "" {
		raw = e.Description
	}
	if summary := StripMarkup(raw); summary != "" {
		h.Summary = Truncate(summary, SummaryLimit)
	}
	return h, true
}

// StripMarkup removes tags, decodes entities and collapses whitespace runs into single spaces.
func StripMarkup(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	text := s
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " ")
}

// Truncate shortens s to at most limit characters, backing off to the last whitespace inside
// that bound and appending an ellipsis. Words are only split when the first limit characters
// contain no whitespace.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}

	cut := string(runes[:limit])
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + ellipsis
}
