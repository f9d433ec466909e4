// Package analytics reports yesterday's visitor counts for a set of GA4 properties.
// It is optional: every failure is logged and yields fewer (or no) counts.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

const (
	metricActiveUsers = "activeUsers"
	reportDateLayout  = "2006-01-02"
)

// ErrNoCredentials is returned when no service account JSON is configured.
var ErrNoCredentials = errors.New("analytics credentials not configured")

// Site is a named GA4 property.
type Site struct {
	Name       string
	PropertyID string
}

// Count is the number of active users of one site.
type Count struct {
	Site  string
	Users int64
}

// Reporter returns the active users of a property for one calendar day.
type Reporter interface {
	ActiveUsers(ctx context.Context, propertyID string, day time.Time) (int64, error)
}

type gaReporter struct {
	svc *analyticsdata.Service
}

// NewGAReporter builds a Reporter on the GA4 Data API using service account credentials.
func NewGAReporter(ctx context.Context, credentialsJSON string) (Reporter, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	if credentialsJSON == "" {
		return nil, ErrNoCredentials
	}

	svc, err := analyticsdata.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(analyticsdata.AnalyticsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create analytics client: %w", err)
	}
	return &gaReporter{svc: svc}, nil
}

// ActiveUsers runs a one-metric report for the given day.
func (r *gaReporter) ActiveUsers(ctx context.Context, propertyID string, day time.Time) (int64, error) {
	date := day.Format(reportDateLayout)
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: date, EndDate: date}},
		Metrics:    []*analyticsdata.Metric{{Name: metricActiveUsers}},
	}

	resp, err := r.svc.Properties.RunReport("properties/"+propertyID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("run report: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].MetricValues) == 0 {
		return 0, nil
	}

	n, err := strconv.ParseInt(resp.Rows[0].MetricValues[0].Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s value: %w", metricActiveUsers, err)
	}
	return n, nil
}

// Collector gathers counts for the configured sites.
type Collector struct {
	reporter Reporter
	sites    []Site
	loc      *time.Location
	now      func() time.Time
	log      logger.Logger
}

// NewCollector keeps only the sites with a property id. Order is preserved.
func NewCollector(reporter Reporter, sites []Site, loc *time.Location, log logger.Logger) *Collector {
	if loc == nil {
		loc = time.UTC
	}

	configured := make([]Site, 0, len(sites))
	for _, s := range sites {
		s.Name = strings.TrimSpace(s.Name)
		s.PropertyID = strings.TrimSpace(s.PropertyID)
		if s.Name != "" && s.PropertyID != "" {
			configured = append(configured, s)
		}
	}

	return &Collector{
		reporter: reporter,
		sites:    configured,
		loc:      loc,
		now:      time.Now,
		log:      logger.Ensure(log),
	}
}

// Sites returns the sites that will be queried.
func (c *Collector) Sites() []Site {
	return c.sites
}

// Yesterday returns the counts for the previous calendar day in the collector's zone.
// Sites that fail are skipped.
func (c *Collector) Yesterday(ctx context.Context) []Count {
	if len(c.sites) == 0 {
		c.log.WarnObj("no analytics properties configured", "analytics_unconfigured", nil)
		return nil
	}
	if c.reporter == nil {
		return nil
	}

	day := c.now().In(c.loc).AddDate(0, 0, -1)

	var out []Count
	for _, site := range c.sites {
		users, err := c.reporter.ActiveUsers(ctx, site.PropertyID, day)
		if err != nil {
			c.log.WarnObj("could not fetch visitors", "analytics_error", map[string]any{
				"site":        site.Name,
				"property_id": site.PropertyID,
				"error":       err.Error(),
			})
			continue
		}
		c.log.InfoObj("site visitors", "analytics_visitors", map[string]any{
			"site":  site.Name,
			"users": users,
			"date":  day.Format(reportDateLayout),
		})
		out = append(out, Count{Site: site.Name, Users: users})
	}
	return out
}

// Summarize renders counts as one sentence, e.g. "1,234 to A, 5 to B and 0 to C yesterday".
func Summarize(counts []Count) string {
	if len(counts) == 0 {
		return ""
	}

	p := message.NewPrinter(language.English)
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, p.Sprintf("%d to %s", c.Users, c.Site))
	}

	if len(parts) == 1 {
		return parts[0] + " yesterday"
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1] + " yesterday"
}
