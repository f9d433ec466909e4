package feeds

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// salvageItem captures the RSS <item> and Atom <entry> fields we can use.
type salvageItem struct {
	Title       string        `xml:"title"`
	Links       []salvageLink `xml:"link"`
	Description string        `xml:"description"`
	Summary     string        `xml:"summary"`
	Content     string        `xml:"content"`
	PubDate     string        `xml:"pubDate"`
	Published   string        `xml:"published"`
	Updated     string        `xml:"updated"`
	Date        string        `xml:"date"`
}

type salvageLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Text string `xml:",chardata"`
}

// salvageEntries walks a broken document item by item and keeps every item that decodes
// completely. It stops at the first item it cannot decode.
func salvageEntries(body []byte) []Entry {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var entries []Entry
	for {
		tok, err := dec.Token()
		if err != nil {
			return entries
		}

		start, ok := tok.(xml.StartElement)
		if !ok || (start.Name.Local != "item" && start.Name.Local != "entry") {
			continue
		}

		var it salvageItem
		if err := dec.DecodeElement(&it, &start); err != nil {
			return entries
		}
		entries = append(entries, it.entry())
	}
}

func (it salvageItem) entry() Entry {
	return Entry{
		Title:       it.Title,
		Link:        it.link(),
		Summary:     firstNonEmpty(it.Description, it.Summary),
		Description: it.Content,
		Published:   firstNonEmpty(it.PubDate, it.Published, it.Updated, it.Date),
	}
}

// link prefers an Atom alternate link, then any href, then RSS link text.
func (it salvageItem) link() string {
	for _, l := range it.Links {
		if l.Href != "" && (l.Rel == "" || l.Rel == "alternate") {
			return strings.TrimSpace(l.Href)
		}
	}
	for _, l := range it.Links {
		if l.Href != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	for _, l := range it.Links {
		if t := strings.TrimSpace(l.Text); t != "" {
			return t
		}
	}
	return ""
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
