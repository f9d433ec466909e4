package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// writersCollector gathers recent posts from writer accounts.
type writersCollector struct {
	source EntrySource
	opts   WindowOptions
	log    logger.Logger
}

// NewWritersCollector builds a WindowedCollector for writer accounts.
func NewWritersCollector(source EntrySource, opts WindowOptions, log logger.Logger) WindowedCollector {
	return &writersCollector{source: source, opts: opts, log: logger.Ensure(log)}
}

func (c *writersCollector) Type() string {
	return TypeWriters
}

func (c *writersCollector) EmptyMessage(src Source) string {
	return fmt.Sprintf("No new posts in the last %d hours", src.WindowValue())
}

// Collect returns one section with the posts of every account published inside the window,
// accounts in declared order, or nil when there are none.
func (c *writersCollector) Collect(ctx context.Context, src Source) []domain.Section {
	cutoff := c.opts.now().Add(-time.Duration(src.WindowValue()) * time.Hour)

	posts := make([]domain.Headline, 0)
	for _, account := range src.Accounts {
		if ctx.Err() != nil {
			break
		}

		url := src.FeedURL(account)
		entries, err := c.source.FetchEntries(ctx, url)
		if err != nil {
			c.log.WarnObj("writer feed fetch failed", "writer_fetch_error", map[string]any{
				"source_id": src.ID,
				"account":   account,
				"url":       url,
				"error":     err.Error(),
			})
			continue
		}

		recent := FilterRecent(entries, cutoff, PostDecorator(account, c.opts.Location))
		for _, h := range recent {
			c.log.DebugObj("found recent post", "writer_post_found", map[string]any{
				"source_id": src.ID,
				"account":   account,
				"title":     h.Title,
			})
		}
		posts = append(posts, recent...)
	}

	c.log.InfoObj("writer posts collected", "writers_collected", map[string]any{
		"source_id": src.ID,
		"accounts":  len(src.Accounts),
		"posts":     len(posts),
		"cutoff":    cutoff,
	})
	if len(posts) == 0 {
		return nil
	}
	return []domain.Section{{Name: src.SectionName(), Headlines: posts}}
}

// episodesCollector gathers recent episodes from named show feeds.
type episodesCollector struct {
	source EntrySource
	opts   WindowOptions
	log    logger.Logger
}

// NewEpisodesCollector builds a WindowedCollector for audio shows.
func NewEpisodesCollector(source EntrySource, opts WindowOptions, log logger.Logger) WindowedCollector {
	return &episodesCollector{source: source, opts: opts, log: logger.Ensure(log)}
}

func (c *episodesCollector) Type() string {
	return TypeEpisodes
}

func (c *episodesCollector) EmptyMessage(src Source) string {
	return fmt.Sprintf("No new episodes in the last %d hours", src.WindowValue())
}

func (c *episodesCollector) Collect(ctx context.Context, src Source) []domain.Section {
	cutoff := c.opts.now().Add(-time.Duration(src.WindowValue()) * time.Hour)

	episodes := make([]domain.Headline, 0)
	for _, show := range src.Feeds {
		if ctx.Err() != nil {
			break
		}

		entries, err := c.source.FetchEntries(ctx, show.URL)
		if err != nil {
			c.log.WarnObj("show feed fetch failed", "episode_fetch_error", map[string]any{
				"source_id": src.ID,
				"show":      show.Name,
				"url":       show.URL,
				"error":     err.Error(),
			})
			continue
		}

		episodes = append(episodes, FilterRecent(entries, cutoff, EpisodeDecorator(show.Name, c.opts.Location))...)
	}

	c.log.InfoObj("episodes collected", "episodes_collected", map[string]any{
		"source_id": src.ID,
		"shows":     len(src.Feeds),
		"episodes":  len(episodes),
		"cutoff":    cutoff,
	})
	if len(episodes) == 0 {
		return nil
	}
	return []domain.Section{{Name: src.SectionName(), Headlines: episodes}}
}
