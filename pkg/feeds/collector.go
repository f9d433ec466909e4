package feeds

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// Collector gathers the sections of one source type.
// Collect never fails: feed problems are logged and show up as missing sections.
type Collector interface {
	Type() string
	Collect(ctx context.Context, src Source) []domain.Section
}

// WindowedCollector is implemented by collectors of time-windowed sources.
// Their sources always render, falling back to EmptyMessage when nothing recent was found.
type WindowedCollector interface {
	Collector
	EmptyMessage(src Source) string
}

// CollectorRegistry selects the collector for a source.
type CollectorRegistry interface {
	CollectorFor(src Source) (Collector, error)
}

// Clock returns the current time.
type Clock func() time.Time

type collectorRegistry struct {
	collectors map[string]Collector
	mu         sync.RWMutex
}

// NewCollectorRegistry builds a registry for the provided collector implementations.
func NewCollectorRegistry(collectors ...Collector) CollectorRegistry {
	reg := &collectorRegistry{
		collectors: make(map[string]Collector, len(collectors)),
	}

	for _, c := range collectors {
		if c == nil {
			continue
		}
		reg.collectors[strings.ToLower(strings.TrimSpace(c.Type()))] = c
	}

	return reg
}

// CollectorFor selects the collector for the given source based on its type.
func (r *collectorRegistry) CollectorFor(src Source) (Collector, error) {
	if src.Type == "" {
		return nil, fmt.Errorf("source %q has no type configured", src.ID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.collectors[strings.ToLower(src.Type)]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("no collector registered for source type %q", src.Type)
}

// WindowOptions configures the recency collectors.
type WindowOptions struct {
	Now      Clock
	Location *time.Location
}

func (o WindowOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// DefaultCollectorRegistry wires up the known source types on top of a Fetcher.
func DefaultCollectorRegistry(fetcher *Fetcher, opts WindowOptions, log logger.Logger) CollectorRegistry {
	if fetcher == nil {
		fetcher = NewFetcher(nil, 0, log)
	}

	return NewCollectorRegistry(
		NewSectionsCollector(fetcher, log),
		NewSingleCollector(fetcher, log),
		NewWritersCollector(fetcher, opts, log),
		NewEpisodesCollector(fetcher, opts, log),
	)
}
