package aggregator

import (
	"context"
	"fmt"
	"sync"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/feeds"
)

const defaultWorkers = 4

// Options tunes how the digest is assembled.
type Options struct {
	// Workers bounds how many sources are collected at once.
	Workers int
	// Dedupe drops headlines whose URL already appeared earlier in the same source.
	Dedupe bool
	// Order is the display order. Sources missing from it follow in declaration order.
	Order []domain.SourceID
}

// Aggregator collects every configured source into a Digest.
type Aggregator struct {
	sources  []feeds.Source
	registry feeds.CollectorRegistry
	opts     Options
	log      logger.Logger
}

// New creates an Aggregator over an immutable source list.
func New(sources []feeds.Source, registry feeds.CollectorRegistry, opts Options, log logger.Logger) *Aggregator {
	log = logger.Ensure(log)
	if registry == nil {
		registry = feeds.DefaultCollectorRegistry(nil, feeds.WindowOptions{}, log)
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	enabled := make([]feeds.Source, 0, len(sources))
	for _, src := range sources {
		if src.EnabledValue() {
			enabled = append(enabled, src)
		}
	}

	return &Aggregator{
		sources:  enabled,
		registry: registry,
		opts:     opts,
		log:      log,
	}
}

// Collect runs every source through its collector and returns the digest in display order.
// Sources are collected concurrently; each worker writes only its own slot.
func (a *Aggregator) Collect(ctx context.Context) domain.Digest {
	results := make([]*domain.SourceDigest, len(a.sources))
	if len(a.sources) == 0 {
		return domain.Digest{Sources: []domain.SourceDigest{}}
	}

	workerCount := min(len(a.sources), a.opts.Workers)

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := 0; workerID < workerCount; workerID++ {
		wg.Add(1)
		go a.sourceWorker(ctx, jobCh, results, &wg, workerID)
	}

produce:
	for idx := range a.sources {
		select {
		case <-ctx.Done():
			a.log.WarnObj("collection cancelled", "collect_cancelled", map[string]any{
				"error":     ctx.Err().Error(),
				"remaining": len(a.sources) - idx,
			})
			break produce
		case jobCh <- idx:
		}
	}
	close(jobCh)

	wg.Wait()

	return a.assemble(results)
}

// sourceWorker collects sources from the job channel until it is closed.
func (a *Aggregator) sourceWorker(
	ctx context.Context,
	jobCh <-chan int,
	results []*domain.SourceDigest,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		src := a.sources[idx]
		sd, err := a.collectSource(ctx, src)
		if err != nil {
			a.log.ErrorObj("source collection failed", "source_error", map[string]any{
				"worker_id": workerID,
				"source_id": src.ID,
				"error":     err.Error(),
			})
			continue
		}
		results[idx] = sd
	}
}

// collectSource runs one source. A nil digest means the source is omitted.
func (a *Aggregator) collectSource(ctx context.Context, src feeds.Source) (sd *domain.SourceDigest, err error) {
	defer func() {
		if r := recover(); r != nil {
			sd, err = nil, fmt.Errorf("collector panic: %v", r)
		}
	}()

	collector, err := a.registry.CollectorFor(src)
	if err != nil {
		return nil, err
	}

	a.log.InfoObj("collecting source", "source_start", map[string]any{
		"source_id": src.ID,
		"type":      src.Type,
	})

	sections := collector.Collect(ctx, src)
	if a.opts.Dedupe {
		sections = dedupeByURL(sections)
	}
	sections = dropEmpty(sections)

	out := &domain.SourceDigest{
		ID:       domain.SourceID(src.ID),
		Name:     src.DisplayName(),
		Sections: sections,
	}

	if wc, ok := collector.(feeds.WindowedCollector); ok {
		out.AlwaysShow = true
		out.EmptyMessage = wc.EmptyMessage(src)
		if len(out.Sections) == 0 {
			out.Sections = []domain.Section{{Name: src.SectionName(), Headlines: []domain.Headline{}}}
		}
	} else if len(out.Sections) == 0 {
		a.log.InfoObj("source produced no headlines", "source_empty", map[string]any{
			"source_id": src.ID,
		})
		return nil, nil
	}

	a.log.InfoObj("source collected", "source_collected", map[string]any{
		"source_id": src.ID,
		"sections":  len(out.Sections),
		"headlines": out.HeadlineCount(),
	})

	return out, nil
}

// assemble orders the collected sources for display.
func (a *Aggregator) assemble(results []*domain.SourceDigest) domain.Digest {
	byID := make(map[domain.SourceID]domain.SourceDigest, len(results))
	for _, sd := range results {
		if sd != nil {
			byID[sd.ID] = *sd
		}
	}

	out := domain.Digest{Sources: make([]domain.SourceDigest, 0, len(byID))}
	placed := make(map[domain.SourceID]struct{}, len(byID))

	for _, id := range a.opts.Order {
		if sd, ok := byID[id]; ok {
			if _, dup := placed[id]; dup {
				continue
			}
			out.Sources = append(out.Sources, sd)
			placed[id] = struct{}{}
		}
	}
	for _, sd := range results {
		if sd == nil {
			continue
		}
		if _, ok := placed[sd.ID]; !ok {
			out.Sources = append(out.Sources, *sd)
			placed[sd.ID] = struct{}{}
		}
	}

	return out
}

// dedupeByURL drops headlines whose URL was already seen in an earlier position of the source.
// Headlines without a URL are always kept.
func dedupeByURL(sections []domain.Section) []domain.Section {
	seen := make(map[string]struct{})
	out := make([]domain.Section, 0, len(sections))
	for _, sec := range sections {
		kept := make([]domain.Headline, 0, len(sec.Headlines))
		for _, h := range sec.Headlines {
			if h.URL != "" {
				if _, dup := seen[h.URL]; dup {
					continue
				}
				seen[h.URL] = struct{}{}
			}
			kept = append(kept, h)
		}
		out = append(out, domain.Section{Name: sec.Name, Headlines: kept})
	}
	return out
}

func dropEmpty(sections []domain.Section) []domain.Section {
	out := make([]domain.Section, 0, len(sections))
	for _, sec := range sections {
		if len(sec.Headlines) > 0 {
			out = append(out, sec)
		}
	}
	return out
}
