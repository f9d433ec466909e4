package feeds

import (
	"context"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// sectionsCollector fetches every named section of a press source independently.
type sectionsCollector struct {
	fetcher HeadlineSource
	log     logger.Logger
}

// NewSectionsCollector builds a Collector for multi-section press sources.
func NewSectionsCollector(fetcher HeadlineSource, log logger.Logger) Collector {
	return &sectionsCollector{fetcher: fetcher, log: logger.Ensure(log)}
}

func (c *sectionsCollector) Type() string {
	return TypeSections
}

// Collect returns the non-empty sections in declared order, each capped by the source limit.
func (c *sectionsCollector) Collect(ctx context.Context, src Source) []domain.Section {
	sections := make([]domain.Section, 0, len(src.Feeds))
	for _, feed := range src.Feeds {
		if ctx.Err() != nil {
			break
		}

		headlines := c.fetcher.Fetch(ctx, feed.URL, src.LimitValue())
		if len(headlines) == 0 {
			c.log.InfoObj("section returned no headlines", "section_empty", map[string]any{
				"source_id": src.ID,
				"section":   feed.Name,
			})
			continue
		}

		sections = append(sections, domain.Section{Name: feed.Name, Headlines: headlines})
		c.log.InfoObj("section collected", "section_collected", map[string]any{
			"source_id": src.ID,
			"section":   feed.Name,
			"headlines": len(headlines),
		})
	}
	return sections
}

// singleCollector turns a one-feed source into a single synthetic section.
type singleCollector struct {
	fetcher HeadlineSource
	log     logger.Logger
}

// NewSingleCollector builds a Collector for sources with one feed and no section names.
func NewSingleCollector(fetcher HeadlineSource, log logger.Logger) Collector {
	return &singleCollector{fetcher: fetcher, log: logger.Ensure(log)}
}

func (c *singleCollector) Type() string {
	return TypeSingle
}

func (c *singleCollector) Collect(ctx context.Context, src Source) []domain.Section {
	if len(src.Feeds) == 0 {
		return nil
	}

	headlines := c.fetcher.Fetch(ctx, src.Feeds[0].URL, src.LimitValue())
	c.log.InfoObj("source collected", "single_collected", map[string]any{
		"source_id": src.ID,
		"headlines": len(headlines),
	})
	if len(headlines) == 0 {
		return nil
	}
	return []domain.Section{{Name: src.SectionName(), Headlines: headlines}}
}
