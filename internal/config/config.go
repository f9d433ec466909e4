package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Adda-Baaj/khobor-digest/pkg/analytics"
	"github.com/Adda-Baaj/khobor-digest/pkg/feeds"
	"github.com/Adda-Baaj/khobor-digest/pkg/publishers"

	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when no publishers file is set and the Gmail credentials are absent.
var ErrMissingCredentials = errors.New("gmail credentials not configured: set GMAIL_USER and GMAIL_PASSWORD")

const (
	defaultTimezone      = "Europe/Istanbul"
	defaultHTTPTimeout   = 15 * time.Second
	defaultWorkers       = 4
	defaultWritersWindow = 24
	defaultEpisodeWindow = 48

	emailPublisherID = "email"
)

// Config holds the runtime settings of one digest run.
type Config struct {
	LogLevel  string
	LogFormat string

	Location    *time.Location
	HTTPTimeout time.Duration
	Workers     int
	Dedupe      bool

	SourcesFile    string
	PublishersFile string

	WritersWindowHours  int
	EpisodesWindowHours int
	WriterAccounts      []string

	Gmail     GmailConfig
	Analytics AnalyticsConfig
}

// GmailConfig is the env-only email setup used when no publishers file is given.
type GmailConfig struct {
	User      string
	Password  string
	Recipient string
}

// AnalyticsConfig configures the optional visitor summary.
type AnalyticsConfig struct {
	CredentialsJSON string
	Sites           []analytics.Site
}

// Enabled reports whether any site can be queried.
func (a AnalyticsConfig) Enabled() bool {
	if a.CredentialsJSON == "" {
		return false
	}
	for _, s := range a.Sites {
		if s.PropertyID != "" {
			return true
		}
	}
	return false
}

// analyticsSites lists the reported sites in summary order with their property env vars.
var analyticsSites = []struct {
	name string
	key  string
	env  string
}{
	{name: "Wandering Well", key: "analytics.properties.wandering_well", env: "GA_PROPERTY_WANDERING_WELL"},
	{name: "Stock Market Calculator", key: "analytics.properties.stock_calculator", env: "GA_PROPERTY_STOCK_CALCULATOR"},
	{name: "Movie Algorithm", key: "analytics.properties.movie_algorithm", env: "GA_PROPERTY_MOVIE_ALGORITHM"},
	{name: "AI for You", key: "analytics.properties.ai_for_you", env: "GA_PROPERTY_AI_FOR_YOU"},
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"log.level":                    "LOG_LEVEL",
	"log.format":                   "LOG_FORMAT",
	"digest.timezone":              "DIGEST_TIMEZONE",
	"digest.workers":               "DIGEST_WORKERS",
	"digest.dedupe":                "DIGEST_DEDUPE",
	"digest.sources_file":          "DIGEST_SOURCES_FILE",
	"digest.publishers_file":       "DIGEST_PUBLISHERS_FILE",
	"digest.writers_window_hours":  "WRITERS_WINDOW_HOURS",
	"digest.episodes_window_hours": "EPISODES_WINDOW_HOURS",
	"digest.writer_accounts":       "WRITER_ACCOUNTS",
	"http.timeout":                 "HTTP_TIMEOUT",
	"gmail.user":                   "GMAIL_USER",
	"gmail.password":               "GMAIL_PASSWORD",
	"gmail.recipient":              "RECIPIENT_EMAIL",
	"analytics.credentials_json":   "GOOGLE_APPLICATION_CREDENTIALS_JSON",
}

// Load reads the configuration from the environment and an optional config file.
// Environment variables win over file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("digest.timezone", defaultTimezone)
	v.SetDefault("digest.workers", defaultWorkers)
	v.SetDefault("digest.dedupe", true)
	v.SetDefault("digest.writers_window_hours", defaultWritersWindow)
	v.SetDefault("digest.episodes_window_hours", defaultEpisodeWindow)
	v.SetDefault("http.timeout", defaultHTTPTimeout)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	for _, s := range analyticsSites {
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}

	if configFile = strings.TrimSpace(configFile); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		LogLevel:            strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		LogFormat:           strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		HTTPTimeout:         v.GetDuration("http.timeout"),
		Workers:             v.GetInt("digest.workers"),
		Dedupe:              v.GetBool("digest.dedupe"),
		SourcesFile:         strings.TrimSpace(v.GetString("digest.sources_file")),
		PublishersFile:      strings.TrimSpace(v.GetString("digest.publishers_file")),
		WritersWindowHours:  v.GetInt("digest.writers_window_hours"),
		EpisodesWindowHours: v.GetInt("digest.episodes_window_hours"),
		WriterAccounts:      splitList(v.GetString("digest.writer_accounts")),
		Gmail: GmailConfig{
			User:      strings.TrimSpace(v.GetString("gmail.user")),
			Password:  v.GetString("gmail.password"),
			Recipient: strings.TrimSpace(v.GetString("gmail.recipient")),
		},
		Analytics: AnalyticsConfig{
			CredentialsJSON: strings.TrimSpace(v.GetString("analytics.credentials_json")),
		},
	}
	for _, s := range analyticsSites {
		cfg.Analytics.Sites = append(cfg.Analytics.Sites, analytics.Site{
			Name:       s.name,
			PropertyID: strings.TrimSpace(v.GetString(s.key)),
		})
	}

	tz := strings.TrimSpace(v.GetString("digest.timezone"))
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q not supported (json or console)", c.LogFormat)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.Workers < 1 {
		return fmt.Errorf("digest.workers must be at least 1, got %d", c.Workers)
	}
	if c.WritersWindowHours < 1 || c.EpisodesWindowHours < 1 {
		return errors.New("recency windows must be at least one hour")
	}
	return nil
}

// Catalog returns the sources to collect: the sources file when set, the built-in set otherwise.
// Configured windows and writer accounts fill in what the sources leave unset.
func (c *Config) Catalog() (feeds.Catalog, error) {
	cat := feeds.DefaultCatalog()
	if c.SourcesFile != "" {
		loaded, err := feeds.LoadCatalog(c.SourcesFile)
		if err != nil {
			return feeds.Catalog{}, err
		}
		cat = loaded
	}

	sources := make([]feeds.Source, len(cat.Sources))
	for i, src := range cat.Sources {
		switch src.Type {
		case feeds.TypeWriters:
			if src.WindowHours == 0 {
				src.WindowHours = c.WritersWindowHours
			}
			if len(c.WriterAccounts) > 0 {
				src.Accounts = append([]string(nil), c.WriterAccounts...)
			}
		case feeds.TypeEpisodes:
			if src.WindowHours == 0 {
				src.WindowHours = c.EpisodesWindowHours
			}
		}
		sources[i] = src
	}
	cat.Sources = sources

	return cat, nil
}

// PublisherConfigs returns the enabled publishers: the publishers file when set,
// otherwise a single Gmail publisher built from the environment.
func (c *Config) PublisherConfigs() ([]publishers.PublisherConfig, error) {
	if c.PublishersFile != "" {
		reg, err := publishers.LoadRegistry(c.PublishersFile)
		if err != nil {
			return nil, err
		}
		return reg.Enabled(), nil
	}

	if c.Gmail.User == "" || c.Gmail.Password == "" {
		return nil, ErrMissingCredentials
	}

	var to []string
	if c.Gmail.Recipient != "" {
		to = splitList(c.Gmail.Recipient)
	}

	reg, err := publishers.NewConfigRegistry([]publishers.PublisherConfig{{
		ID:   emailPublisherID,
		Type: publishers.TypeSMTP,
		SMTP: &publishers.SMTPPublisherConfig{
			Username: c.Gmail.User,
			Password: c.Gmail.Password,
			From:     c.Gmail.User,
			To:       to,
		},
	}})
	if err != nil {
		return nil, err
	}
	return reg.Enabled(), nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
