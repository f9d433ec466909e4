package feeds

import (
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
)

const (
	postDateLayout    = "Jan 02 at 15:04"
	episodeDateLayout = "Jan 02"
)

// Decorator turns a recent entry into a headline. title is already stripped of markup and non-empty.
type Decorator func(e Entry, title string, published time.Time) domain.Headline

// FilterRecent keeps, in feed order, the entries published strictly after cutoff.
// Entries without a usable timestamp are dropped.
func FilterRecent(entries []Entry, cutoff time.Time, decorate Decorator) []domain.Headline {
	out := make([]domain.Headline, 0)
	for _, e := range entries {
		published, ok := e.Timestamp()
		if !ok || !published.After(cutoff) {
			continue
		}

		title := StripMarkup(e.Title)
		if title == "" {
			continue
		}
		out = append(out, decorate(e, title, published))
	}
	return out
}

// PostDecorator tags titles with the writer's handle and summarizes the post time.
func PostDecorator(account string, loc *time.Location) Decorator {
	loc = ensureLocation(loc)
	return func(e Entry, title string, published time.Time) domain.Headline {
		return domain.Headline{
			Title:   "@" + account + ": " + title,
			URL:     strings.TrimSpace(e.Link),
			Summary: "Posted " + published.In(loc).Format(postDateLayout),
		}
	}
}

// EpisodeDecorator tags titles with the show name and summarizes the publish day.
func EpisodeDecorator(show string, loc *time.Location) Decorator {
	loc = ensureLocation(loc)
	return func(e Entry, title string, published time.Time) domain.Headline {
		return domain.Headline{
			Title:   show + ": " + title,
			URL:     strings.TrimSpace(e.Link),
			Summary: "Published " + published.In(loc).Format(episodeDateLayout),
		}
	}
}

func ensureLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
