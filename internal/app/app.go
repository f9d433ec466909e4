package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/aggregator"
	"github.com/Adda-Baaj/khobor-digest/internal/config"
	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/internal/render"
	"github.com/Adda-Baaj/khobor-digest/pkg/analytics"
	"github.com/Adda-Baaj/khobor-digest/pkg/feeds"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
	"github.com/Adda-Baaj/khobor-digest/pkg/publishers"
)

// ErrNoHeadlines is returned when no source produced a single headline. Nothing is delivered.
var ErrNoHeadlines = errors.New("no headlines fetched from any source")

// DigestCollector produces the digest of one run.
type DigestCollector interface {
	Collect(ctx context.Context) domain.Digest
}

// VisitorSource reports yesterday's visitor counts.
type VisitorSource interface {
	Yesterday(ctx context.Context) []analytics.Count
}

// Options configures a Runner.
type Options struct {
	Order    []domain.SourceID
	Location *time.Location
	Now      func() time.Time
	Visitors VisitorSource
}

// Runner executes one collect, render and deliver cycle.
type Runner struct {
	collector  DigestCollector
	publishers []publishers.Publisher
	opts       Options
	log        logger.Logger
}

// NewRunner wires a Runner. A nil Location means UTC.
func NewRunner(collector DigestCollector, pubs []publishers.Publisher, opts Options, log logger.Logger) *Runner {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Order == nil {
		opts.Order = domain.DefaultOrder
	}
	return &Runner{
		collector:  collector,
		publishers: pubs,
		opts:       opts,
		log:        logger.Ensure(log),
	}
}

// Run collects, renders and delivers the digest.
func (r *Runner) Run(ctx context.Context) error {
	now := r.opts.Now().In(r.opts.Location)
	r.log.InfoObj("starting daily news aggregation", "run_start", map[string]any{
		"time": now.Format("2006-01-02 15:04 MST"),
	})

	digest := r.collector.Collect(ctx)
	count := digest.HeadlineCount()
	if count == 0 {
		r.log.ErrorObj("no headlines fetched from any source", "run_empty", map[string]any{
			"sources": len(digest.Sources),
		})
		return ErrNoHeadlines
	}

	var visitors string
	if r.opts.Visitors != nil {
		visitors = analytics.Summarize(r.opts.Visitors.Yesterday(ctx))
	}

	text, html := render.Render(digest, render.Options{
		Date:     now,
		Order:    r.opts.Order,
		Visitors: visitors,
	})

	msg := publishers.Message{
		Subject:       render.Subject(now),
		Text:          text,
		HTML:          html,
		Date:          now,
		HeadlineCount: count,
	}

	r.log.InfoObj("delivering digest", "run_deliver", map[string]any{
		"sources":    len(digest.Sources),
		"headlines":  count,
		"publishers": len(r.publishers),
	})

	if err := publishers.Deliver(ctx, r.publishers, msg, r.log); err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}

	r.log.InfoObj("daily news digest sent", "run_complete", map[string]any{
		"headlines": count,
	})
	return nil
}

// BuildOptions holds the command line switches that affect wiring.
type BuildOptions struct {
	// DryRun prints the text digest instead of delivering it.
	DryRun bool
	Stdout io.Writer
}

// Build wires the full pipeline from configuration.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions, log logger.Logger) (*Runner, error) {
	log = logger.Ensure(log)

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)
	fetcher := feeds.NewFetcher(client, cfg.HTTPTimeout, log)
	registry := feeds.DefaultCollectorRegistry(fetcher, feeds.WindowOptions{Location: cfg.Location}, log)

	order := catalog.OrderIDs()
	agg := aggregator.New(catalog.Sources, registry, aggregator.Options{
		Workers: cfg.Workers,
		Dedupe:  cfg.Dedupe,
		Order:   order,
	}, log)

	var pubs []publishers.Publisher
	if opts.DryRun {
		pubs = []publishers.Publisher{publishers.NewWriterPublisher("stdout", opts.Stdout)}
	} else {
		pubs, err = BuildPublishers(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
	}

	return NewRunner(agg, pubs, Options{
		Order:    order,
		Location: cfg.Location,
		Visitors: buildVisitors(ctx, cfg, log),
	}, log), nil
}

// BuildPublishers instantiates every enabled publisher.
func BuildPublishers(ctx context.Context, cfg *config.Config, log logger.Logger) ([]publishers.Publisher, error) {
	cfgs, err := cfg.PublisherConfigs()
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	if len(cfgs) == 0 {
		return nil, publishers.ErrNoPublishers
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), cfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	return pubs, nil
}

// buildVisitors returns nil when analytics is not configured or cannot start.
func buildVisitors(ctx context.Context, cfg *config.Config, log logger.Logger) VisitorSource {
	if !cfg.Analytics.Enabled() {
		return nil
	}

	reporter, err := analytics.NewGAReporter(ctx, cfg.Analytics.CredentialsJSON)
	if err != nil {
		log.WarnObj("analytics disabled", "analytics_unavailable", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	return analytics.NewCollector(reporter, cfg.Analytics.Sites, cfg.Location, log)
}
