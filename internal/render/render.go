package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
)

const (
	ruleWidth = 50
	title     = "Daily News Digest"
	footer    = "Delivered by Daily News Digest"

	headerDateLayout  = "Monday, January 02, 2006"
	subjectDateLayout = "January 02, 2006"
)

// Inline styles of the HTML body.
const (
	styleBody     = `font-family: Georgia, serif; max-width: 600px; margin: 0 auto; padding: 20px;`
	styleH1       = `color: #333; border-bottom: 2px solid #333; padding-bottom: 10px;`
	styleDate     = `color: #666; margin-bottom: 30px;`
	styleH2       = `color: #1a1a1a; margin-top: 30px; font-size: 18px; text-transform: uppercase; letter-spacing: 1px;`
	styleEmpty    = `color: #888; font-style: italic; margin-left: 15px;`
	styleH3       = `color: #555; font-size: 14px; margin: 15px 0 10px 0;`
	styleList     = `list-style: none; padding: 0; margin: 0;`
	styleItem     = `margin-bottom: 15px; padding-left: 15px; border-left: 3px solid #ddd;`
	styleLink     = `color: #0066cc; text-decoration: none; font-weight: bold;`
	styleSummary  = `color: #666; font-size: 14px;`
	styleVisitors = `color: #666; font-size: 14px; margin-top: 30px;`
	styleRule     = `margin-top: 40px; border: none; border-top: 1px solid #ddd;`
	styleFooter   = `color: #999; font-size: 12px; text-align: center;`
)

// Options carries the per-run inputs of the renderer.
type Options struct {
	// Date is shown in the header. It is formatted as given, so convert it to the display zone first.
	Date time.Time
	// Order is the display order. Sources not listed follow in digest order.
	Order []domain.SourceID
	// Visitors is an optional one-line visitor summary shown before the footer.
	Visitors string
}

// Subject returns the delivery subject line for the given date.
func Subject(date time.Time) string {
	return fmt.Sprintf("%s - %s", title, date.Format(subjectDateLayout))
}

// Render turns a digest into its plain-text and HTML bodies.
// Both bodies come from a single walk over the digest so they always agree.
func Render(d domain.Digest, opts Options) (string, string) {
	e := &emitter{}
	dateStr := opts.Date.Format(headerDateLayout)

	e.text(fmt.Sprintf("%s - %s", strings.ToUpper(title), dateStr))
	e.text(strings.Repeat("=", ruleWidth))
	e.text("")
	e.html(fmt.Sprintf(`<html><body style="%s">`, styleBody))
	e.html(fmt.Sprintf(`<h1 style="%s">%s</h1>`, styleH1, title))
	e.html(fmt.Sprintf(`<p style="%s">%s</p>`, styleDate, esc(dateStr)))

	for _, src := range ordered(d, opts.Order) {
		renderSource(e, src)
	}

	if v := strings.TrimSpace(opts.Visitors); v != "" {
		e.text("Visitors: " + v)
		e.html(fmt.Sprintf(`<p style="%s">Visitors: %s</p>`, styleVisitors, esc(v)))
	}

	e.text("\n" + strings.Repeat("=", ruleWidth))
	e.text(footer)
	e.html(fmt.Sprintf(`<hr style="%s">`, styleRule))
	e.html(fmt.Sprintf(`<p style="%s">%s</p>`, styleFooter, footer))
	e.html(`</body></html>`)

	return e.output()
}

func renderSource(e *emitter, src domain.SourceDigest) {
	hasContent := src.HasContent()
	if !hasContent && !src.AlwaysShow {
		return
	}

	e.text("\n" + src.Name)
	e.text(strings.Repeat("-", len([]rune(src.Name))))
	e.html(fmt.Sprintf(`<h2 style="%s">%s</h2>`, styleH2, esc(src.Name)))

	if !hasContent {
		e.text("  " + src.EmptyMessage)
		e.html(fmt.Sprintf(`<p style="%s">%s</p>`, styleEmpty, esc(src.EmptyMessage)))
		return
	}

	multi := len(src.Sections) > 1
	for _, sec := range src.Sections {
		if len(sec.Headlines) == 0 {
			continue
		}
		if multi {
			e.text(fmt.Sprintf("\n  %s:", sec.Name))
			e.html(fmt.Sprintf(`<h3 style="%s">%s</h3>`, styleH3, esc(sec.Name)))
		}

		e.html(fmt.Sprintf(`<ul style="%s">`, styleList))
		for _, h := range sec.Headlines {
			renderHeadline(e, h)
		}
		e.html(`</ul>`)
	}

	e.text("")
}

func renderHeadline(e *emitter, h domain.Headline) {
	if h.Title == "" {
		return
	}

	e.text("  - " + h.Title)
	if h.URL != "" {
		e.text("    " + h.URL)
	}
	if h.Summary != "" {
		e.text("    " + h.Summary)
	}

	e.html(fmt.Sprintf(`<li style="%s">`, styleItem))
	if h.URL != "" {
		e.html(fmt.Sprintf(`<a href="%s" style="%s">%s</a>`, esc(h.URL), styleLink, esc(h.Title)))
	} else {
		e.html(fmt.Sprintf(`<strong>%s</strong>`, esc(h.Title)))
	}
	if h.Summary != "" {
		e.html(fmt.Sprintf(`<br><span style="%s">%s</span>`, styleSummary, esc(h.Summary)))
	}
	e.html(`</li>`)
}

// ordered lists the digest sources in display order.
func ordered(d domain.Digest, order []domain.SourceID) []domain.SourceDigest {
	out := make([]domain.SourceDigest, 0, len(d.Sources))
	placed := make(map[domain.SourceID]struct{}, len(d.Sources))

	for _, id := range order {
		if _, dup := placed[id]; dup {
			continue
		}
		if src, ok := d.Source(id); ok {
			out = append(out, src)
			placed[id] = struct{}{}
		}
	}
	for _, src := range d.Sources {
		if _, ok := placed[src.ID]; !ok {
			out = append(out, src)
			placed[src.ID] = struct{}{}
		}
	}
	return out
}

// emitter collects the two bodies line by line.
type emitter struct {
	textLines []string
	htmlParts []string
}

func (e *emitter) text(line string) { e.textLines = append(e.textLines, line) }
func (e *emitter) html(part string) { e.htmlParts = append(e.htmlParts, part) }

func (e *emitter) output() (string, string) {
	return strings.Join(e.textLines, "\n"), strings.Join(e.htmlParts, "\n")
}

func esc(s string) string { return html.EscapeString(s) }
