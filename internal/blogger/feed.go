package blogger

import (
	"cmp"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"
)

const (
	kindScheme = "http://schemas.google.com/g/2005#kind"
	kindPrefix = "http://schemas.google.com/blogger/2008/kind#"
	tagScheme  = "http://www.blogger.com/atom/ns#"
)

// XML structure of the export. Element names are matched without namespace,
// so the same structure reads the classic backup (app:, thr:, media:
// extensions) and the Takeout feed (blogger: extensions).
type feed struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	Links   []link   `xml:"link"`
	Entries []entry  `xml:"entry"`
}

type link struct {
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

type category struct {
	Scheme string `xml:"scheme,attr"`
	Term   string `xml:"term,attr"`
}

type entry struct {
	ID         string     `xml:"id"`
	Published  string     `xml:"published"`
	Updated    string     `xml:"updated"`
	Title      string     `xml:"title"`
	Content    string     `xml:"content"`
	AuthorName string     `xml:"author>name"`
	Links      []link     `xml:"link"`
	Categories []category `xml:"category"`

	// classic backup
	Draft     string `xml:"control>draft"`
	Thumbnail struct {
		URL string `xml:"url,attr"`
	} `xml:"thumbnail"`
	InReplyTo struct {
		Ref string `xml:"ref,attr"`
	} `xml:"in-reply-to"`

	// Takeout
	Type     string `xml:"type"`
	Parent   string `xml:"parent"`
	Status   string `xml:"status"`
	Filename string `xml:"filename"`
}

func (e *entry) kind() string {
	if e.Type != "" {
		return strings.ToLower(e.Type)
	}
	for _, c := range e.Categories {
		if c.Scheme == kindScheme {
			return strings.TrimPrefix(c.Term, kindPrefix)
		}
	}
	return ""
}

func (e *entry) tags() []string {
	var tags []string
	for _, c := range e.Categories {
		if c.Term == "" || (c.Scheme != "" && c.Scheme != tagScheme) {
			continue
		}
		tags = append(tags, c.Term)
	}
	return tags
}

func (e *entry) isDraft() bool {
	if strings.EqualFold(e.Draft, "yes") {
		return true
	}
	return e.Status != "" && e.Status != "LIVE"
}

func (e *entry) url(baseURL string) string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	if e.Filename != "" {
		return baseURL + e.Filename
	}
	return ""
}

// text returns a text element of the entry. Takeout escapes HTML entities
// once more inside the XML escaping; the classic backup does not.
func (e *entry) text(s string) string {
	if e.Type != "" {
		return html.UnescapeString(s)
	}
	return s
}

// takeout reports whether the feed comes from Google Takeout.
func (f *feed) takeout() bool {
	for i := range f.Entries {
		if f.Entries[i].Type != "" {
			return true
		}
	}
	return false
}

func (e *entry) parent() string {
	if e.Parent != "" {
		return e.Parent
	}
	return e.InReplyTo.Ref
}

// Decode reads an export document. baseURL, when not empty, takes precedence
// over the blog address found in the feed.
//
// Any XML error or invalid post fails the whole decoding: no partial export
// is returned.
func Decode(ctx context.Context, r io.Reader, baseURL string) (*Export, error) {
	var f feed
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("can't decode the export document: %w", err)
	}

	if baseURL == "" {
		for _, l := range f.Links {
			if l.Rel == "alternate" && (l.Type == "" || l.Type == "text/html") {
				baseURL = l.Href
				break
			}
		}
	}
	export := &Export{
		Title:   strings.TrimSpace(f.Title),
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
	if f.takeout() {
		export.Title = html.UnescapeString(export.Title)
	}

	posts := map[string]*Post{}
	ignored := map[string]int{}
	for i := range f.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := &f.Entries[i]
		if e.kind() != "post" {
			continue
		}
		p, err := e.post(export.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if prev, ok := posts[p.ID]; ok && !p.Updated.After(prev.Updated) {
			slog.Debug("duplicated post ignored", "id", p.ID, "title", p.Title)
			continue
		}
		posts[p.ID] = p
	}

	for i := range f.Entries {
		e := &f.Entries[i]
		switch k := e.kind(); k {
		case "post":
		case "comment":
			p, ok := posts[e.parent()]
			if !ok {
				slog.Debug("comment without post", "id", e.ID, "parent", e.parent())
				continue
			}
			date, err := parseTime(e.Published)
			if err != nil {
				return nil, fmt.Errorf("entry %d: comment %s: %w", i+1, e.ID, err)
			}
			p.Comments = append(p.Comments, Comment{
				ID:      e.ID,
				Date:    date,
				Author:  e.text(e.AuthorName),
				Content: e.Content,
			})
		default:
			ignored[k]++
		}
	}
	for k, n := range ignored {
		slog.Debug("entries ignored", "kind", k, "count", n)
	}

	export.Posts = make([]Post, 0, len(posts))
	for _, p := range posts {
		slices.SortStableFunc(p.Comments, func(a, b Comment) int {
			return cmp.Or(a.Date.Compare(b.Date), strings.Compare(a.ID, b.ID))
		})
		export.Posts = append(export.Posts, *p)
	}
	slices.SortFunc(export.Posts, func(a, b Post) int {
		return cmp.Or(a.Date().Compare(b.Date()), strings.Compare(a.ID, b.ID))
	})
	return export, nil
}

func (e *entry) post(baseURL string) (*Post, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return nil, errors.New("post without id")
	}
	published, err := parseTime(e.Published)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", id, err)
	}
	updated, err := parseTime(e.Updated)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", id, err)
	}
	if published.IsZero() && updated.IsZero() {
		return nil, fmt.Errorf("post %s: no publication date", id)
	}

	draft := e.isDraft()
	u := ""
	if !draft {
		u = e.url(baseURL)
	}
	return &Post{
		ID:        id,
		Title:     e.text(strings.TrimSpace(e.Title)),
		Content:   e.Content,
		Published: published,
		Updated:   updated,
		Author:    e.text(e.AuthorName),
		Tags:      e.tags(),
		Thumbnail: e.Thumbnail.URL,
		URL:       u,
		Draft:     draft,
	}, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
