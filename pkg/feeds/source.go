package feeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	// Supported source types.
	TypeSections = "sections"
	TypeSingle   = "single"
	TypeWriters  = "writers"
	TypeEpisodes = "episodes"

	defaultSingleSection   = "Top Stories"
	defaultWritersSection  = "Recent Posts"
	defaultEpisodesSection = "New Episodes"

	defaultLimit              = 6
	defaultWritersWindowHours = 24
	defaultEpisodeWindowHours = 48
	defaultWriterFeedTemplate = "https://%s.substack.com/feed"
)

// Feed is a named feed URL: a section of a press source or a show of an audio source.
type Feed struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Source describes one news source declared in the sources file.
type Source struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`

	// Limit caps the headlines taken from each feed of sections and single sources.
	Limit int `json:"limit" yaml:"limit"`
	// WindowHours is the recency window of writers and episodes sources.
	WindowHours int `json:"window_hours" yaml:"window_hours"`
	// Section labels the single section of single, writers and episodes sources.
	Section string `json:"section" yaml:"section"`

	Feeds []Feed `json:"feeds" yaml:"feeds"`

	// Accounts and FeedTemplate build the feed URLs of writers sources.
	Accounts     []string `json:"accounts" yaml:"accounts"`
	FeedTemplate string   `json:"feed_template" yaml:"feed_template"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (s Source) EnabledValue() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// DisplayName is the header the source renders under.
func (s Source) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return strings.ToUpper(s.ID)
}

// SectionName labels the single section of non-sectioned sources.
func (s Source) SectionName() string {
	if s.Section != "" {
		return s.Section
	}
	switch s.Type {
	case TypeWriters:
		return defaultWritersSection
	case TypeEpisodes:
		return defaultEpisodesSection
	default:
		return defaultSingleSection
	}
}

// LimitValue returns the per-feed cap, defaulting to 6.
func (s Source) LimitValue() int {
	if s.Limit > 0 {
		return s.Limit
	}
	return defaultLimit
}

// WindowValue returns the recency window in hours for windowed sources.
func (s Source) WindowValue() int {
	if s.WindowHours > 0 {
		return s.WindowHours
	}
	if s.Type == TypeEpisodes {
		return defaultEpisodeWindowHours
	}
	return defaultWritersWindowHours
}

// Windowed reports whether the source filters entries by recency and must always render.
func (s Source) Windowed() bool {
	return s.Type == TypeWriters || s.Type == TypeEpisodes
}

// FeedURL builds the feed URL of a writer account.
func (s Source) FeedURL(account string) string {
	tmpl := s.FeedTemplate
	if tmpl == "" {
		tmpl = defaultWriterFeedTemplate
	}
	return fmt.Sprintf(tmpl, account)
}

// Catalog is the full source configuration: the sources and their display order.
type Catalog struct {
	Order   []string `json:"order" yaml:"order"`
	Sources []Source `json:"sources" yaml:"sources"`
}

// OrderIDs returns the display order as source ids.
func (c Catalog) OrderIDs() []domain.SourceID {
	out := make([]domain.SourceID, 0, len(c.Order))
	for _, id := range c.Order {
		out = append(out, domain.SourceID(id))
	}
	return out
}

// Enabled returns the sources that are enabled, in declaration order.
func (c Catalog) Enabled() []Source {
	out := make([]Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.EnabledValue() {
			out = append(out, s)
		}
	}
	return out
}

// LoadCatalog loads sources from a YAML/JSON file. ${VAR} references are expanded from the environment.
func LoadCatalog(path string) (Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Catalog{}, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Catalog{}, fmt.Errorf("read sources file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	cat, err := parseCatalog(expanded, filepath.Ext(path))
	if err != nil {
		return Catalog{}, err
	}
	if len(cat.Sources) == 0 {
		return Catalog{}, errors.New("sources file contains no sources entries")
	}

	return finalizeCatalog(cat)
}

// parseCatalog attempts to decode the sources file content.
func parseCatalog(data []byte, ext string) (Catalog, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cat Catalog
		if err := d.fn(data, &cat); err == nil {
			return cat, nil
		}
	}

	return Catalog{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

// finalizeCatalog sanitizes and validates every source and completes the display order.
func finalizeCatalog(cat Catalog) (Catalog, error) {
	out := Catalog{Sources: make([]Source, len(cat.Sources))}
	seen := make(map[string]struct{}, len(cat.Sources))

	for i := range cat.Sources {
		src := sanitizeSource(cat.Sources[i])
		if err := validateSource(src); err != nil {
			return Catalog{}, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := seen[src.ID]; exists {
			return Catalog{}, fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
		out.Sources[i] = src
	}

	ordered := make(map[string]struct{}, len(cat.Order))
	for _, id := range cat.Order {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, known := seen[id]; !known {
			return Catalog{}, fmt.Errorf("order references unknown source %q", id)
		}
		if _, dup := ordered[id]; dup {
			continue
		}
		ordered[id] = struct{}{}
		out.Order = append(out.Order, id)
	}
	// sources missing from the order render after the listed ones, in declaration order
	for _, src := range out.Sources {
		if _, ok := ordered[src.ID]; !ok {
			out.Order = append(out.Order, src.ID)
		}
	}

	return out, nil
}

// sanitizeSource trims and normalizes the source fields.
func sanitizeSource(src Source) Source {
	src.ID = strings.ToLower(strings.TrimSpace(src.ID))
	src.Name = strings.TrimSpace(src.Name)
	src.Type = strings.ToLower(strings.TrimSpace(src.Type))
	src.Section = strings.TrimSpace(src.Section)
	src.FeedTemplate = strings.TrimSpace(src.FeedTemplate)

	if src.Enabled == nil {
		def := true
		src.Enabled = &def
	}

	feeds := make([]Feed, 0, len(src.Feeds))
	for _, f := range src.Feeds {
		f.Name = strings.TrimSpace(f.Name)
		f.URL = strings.TrimSpace(f.URL)
		if f.URL == "" {
			continue
		}
		feeds = append(feeds, f)
	}
	src.Feeds = feeds

	accounts := make([]string, 0, len(src.Accounts))
	for _, a := range src.Accounts {
		if a = strings.TrimPrefix(strings.TrimSpace(a), "@"); a != "" {
			accounts = append(accounts, a)
		}
	}
	src.Accounts = accounts

	return src
}

// validateSource checks that required fields are present for the source type.
func validateSource(src Source) error {
	if src.ID == "" {
		return errors.New("id is required")
	}
	if src.Limit < 0 {
		return fmt.Errorf("limit must not be negative for source %q", src.ID)
	}
	if src.WindowHours < 0 {
		return fmt.Errorf("window_hours must not be negative for source %q", src.ID)
	}

	switch src.Type {
	case TypeSections:
		if len(src.Feeds) == 0 {
			return fmt.Errorf("feeds are required for source %q", src.ID)
		}
		for _, f := range src.Feeds {
			if f.Name == "" {
				return fmt.Errorf("every section of source %q needs a name", src.ID)
			}
		}
	case TypeSingle:
		if len(src.Feeds) != 1 {
			return fmt.Errorf("source %q of type single needs exactly one feed", src.ID)
		}
	case TypeWriters:
		if src.FeedTemplate != "" && strings.Count(src.FeedTemplate, "%s") != 1 {
			return fmt.Errorf("feed_template of source %q must contain exactly one %%s", src.ID)
		}
	case TypeEpisodes:
		for _, f := range src.Feeds {
			if f.Name == "" {
				return fmt.Errorf("every show of source %q needs a name", src.ID)
			}
		}
	case "":
		return fmt.Errorf("type is required for source %q", src.ID)
	default:
		return fmt.Errorf("type %q not supported for source %q", src.Type, src.ID)
	}
	return nil
}

// DefaultCatalog is the built-in source set used when no sources file is configured.
func DefaultCatalog() Catalog {
	cat := Catalog{
		Sources: []Source{
			{
				ID:   string(domain.SourceNYTimes),
				Name: "NEW YORK TIMES",
				Type: TypeSections,
				Feeds: []Feed{
					{Name: "Top Stories", URL: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"},
					{Name: "World", URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml"},
					{Name: "Opinion", URL: "https://rss.nytimes.com/services/xml/rss/nyt/Opinion.xml"},
				},
			},
			{
				ID:    string(domain.SourceGlobeAndMail),
				Name:  "GLOBE AND MAIL",
				Type:  TypeSections,
				Limit: 4,
				Feeds: []Feed{
					{Name: "Canada", URL: "https://www.theglobeandmail.com/arc/outboundfeeds/rss/category/canada/"},
					{Name: "Politics", URL: "https://www.theglobeandmail.com/arc/outboundfeeds/rss/category/politics/"},
					{Name: "Opinion", URL: "https://www.theglobeandmail.com/arc/outboundfeeds/rss/category/opinion/"},
				},
			},
			{
				ID:   string(domain.SourceLaPresse),
				Name: "LA PRESSE",
				Type: TypeSections,
				Feeds: []Feed{
					{Name: "Actualités", URL: "https://www.lapresse.ca/actualites/rss"},
					{Name: "International", URL: "https://www.lapresse.ca/international/rss"},
					{Name: "Affaires", URL: "https://www.lapresse.ca/affaires/rss"},
				},
			},
			{
				ID:    string(domain.SourceAxios),
				Name:  "AXIOS",
				Type:  TypeSingle,
				Feeds: []Feed{{Name: "Axios", URL: "https://api.axios.com/feed/"}},
			},
			{
				ID:       string(domain.SourceSubstack),
				Name:     "SUBSTACK",
				Type:     TypeWriters,
				Section:  "AI Writers",
				Accounts: []string{"everydayai", "understandingai", "aisnakeoil", "darioamodei", "sineadbovell"},
			},
			{
				ID:   string(domain.SourcePodcasts),
				Name: "PODCASTS",
				Type: TypeEpisodes,
				Feeds: []Feed{
					{Name: "The Cognitive Revolution", URL: "https://feeds.megaphone.fm/RINTP3108857801"},
					{Name: "Ezra Klein Show", URL: "https://feeds.simplecast.com/82FI35Px"},
				},
			},
		},
	}
	for _, id := range domain.DefaultOrder {
		cat.Order = append(cat.Order, string(id))
	}

	out, err := finalizeCatalog(cat)
	if err != nil {
		panic(fmt.Sprintf("default catalog is invalid: %v", err))
	}
	return out
}
