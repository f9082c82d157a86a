// Package blogger reads Blogger exports: the "Back up content" Atom file and
// the feed.atom files found in a Google Takeout archive.
package blogger

import (
	"regexp"
	"time"
)

// Export is the content of one export document.
type Export struct {
	Title   string
	BaseURL string // https://name.blogspot.com, without trailing slash
	Posts   []Post // ordered by publication date, then id
}

// Post is a blog post extracted from the export.
type Post struct {
	ID        string // Atom id: tag:blogger.com,1999:blog-<blog>.post-<post>
	Title     string
	Content   string // HTML
	Published time.Time
	Updated   time.Time
	Author    string
	Tags      []string
	Thumbnail string
	URL       string // original URL on Blogger, empty for drafts
	Draft     bool
	Comments  []Comment // oldest first
}

type Comment struct {
	ID      string
	Date    time.Time
	Author  string
	Content string // HTML
}

var postIDRE = regexp.MustCompile(`post-(\d+)$`)

// NumericID returns the numeric part of the post id, or the whole id when it
// doesn't follow the Blogger convention.
func (p Post) NumericID() string {
	if m := postIDRE.FindStringSubmatch(p.ID); m != nil {
		return m[1]
	}
	return p.ID
}

// Date is the date used to name the post: the publication date, or the last
// update for drafts that were never published.
func (p Post) Date() time.Time {
	if !p.Published.IsZero() {
		return p.Published
	}
	return p.Updated
}
