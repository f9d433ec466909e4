package domain

// Domain contains the digest model shared by the fetch, aggregate and render stages.

// SourceID identifies a configured news source.
type SourceID string

// Built-in source ids, listed in display order.
const (
	SourceNYTimes      SourceID = "nytimes"
	SourceLaPresse     SourceID = "lapresse"
	SourceGlobeAndMail SourceID = "globeandmail"
	SourceAxios        SourceID = "axios"
	SourceSubstack     SourceID = "substack"
	SourcePodcasts     SourceID = "podcasts"
)

// DefaultOrder is the global display order of the built-in sources.
var DefaultOrder = []SourceID{
	SourceNYTimes,
	SourceLaPresse,
	SourceGlobeAndMail,
	SourceAxios,
	SourceSubstack,
	SourcePodcasts,
}

// Headline is the normalized record every feed entry is reduced to.
// Title is never empty.
type Headline struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Section is a named, ordered run of headlines within a source.
type Section struct {
	Name      string     `json:"name"`
	Headlines []Headline `json:"headlines"`
}

// SourceDigest holds everything collected for one source.
type SourceDigest struct {
	ID       SourceID  `json:"id"`
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`

	// AlwaysShow marks time-windowed sources that render EmptyMessage instead of disappearing.
	AlwaysShow   bool   `json:"always_show,omitempty"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

// HasContent reports whether at least one section holds a headline.
func (s SourceDigest) HasContent() bool {
	for _, sec := range s.Sections {
		if len(sec.Headlines) > 0 {
			return true
		}
	}
	return false
}

// HeadlineCount sums the headlines across sections.
func (s SourceDigest) HeadlineCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Headlines)
	}
	return n
}

// Digest is the ordered aggregation of all sources for one run.
type Digest struct {
	Sources []SourceDigest `json:"sources"`
}

// Source looks up a source by id.
func (d Digest) Source(id SourceID) (SourceDigest, bool) {
	for _, s := range d.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return SourceDigest{}, false
}

// HeadlineCount sums the headlines across all sources.
func (d Digest) HeadlineCount() int {
	n := 0
	for _, s := range d.Sources {
		n += s.HeadlineCount()
	}
	return n
}
