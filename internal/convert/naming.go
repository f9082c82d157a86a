package convert

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"blogger2jekyll/internal/blogger"
	"blogger2jekyll/internal/filename"
)

const (
	postsDir  = "_posts"
	draftsDir = "_drafts"
)

// OutputFile is the Jekyll file generated for one post.
type OutputFile struct {
	Path       string // relative to the site folder, slash separated
	Identifier string // file name without extension, as used by post_url
	Content    []byte

	post *blogger.Post
}

// planFiles names the output file of every post. Posts must be ordered the
// same way on every run: the first post keeps the plain name, later
// homonyms get the Blogger post id, then a counter.
func planFiles(posts []blogger.Post, ext string) []OutputFile {
	files := make([]OutputFile, len(posts))
	used := map[string]bool{}
	for i := range posts {
		p := &posts[i]
		dir := postsDir
		if p.Draft {
			dir = draftsDir
		}

		base := p.Date().Format("2006-01-02") + "-" + postSlug(p)
		name := base
		for n := 1; used[strings.ToLower(dir+"/"+name)]; n++ {
			switch n {
			case 1:
				name = base + "-" + idSlug(p)
			default:
				name = fmt.Sprintf("%s-%s-%d", base, idSlug(p), n)
			}
		}
		used[strings.ToLower(dir+"/"+name)] = true

		files[i] = OutputFile{
			Path:       dir + "/" + name + ext,
			Identifier: name,
			post:       p,
		}
	}
	return files
}

// postSlug is the name of the post on Blogger (the last element of its URL
// without .html), or a slug of its title for unpublished posts.
func postSlug(p *blogger.Post) string {
	if p.URL != "" {
		if u, err := url.Parse(p.URL); err == nil {
			b := path.Base(u.Path)
			if s := filename.Slugify(strings.TrimSuffix(b, path.Ext(b))); s != "" {
				return s
			}
		}
	}
	if s := filename.Slugify(p.Title); s != "" {
		return s
	}
	return "untitled-" + idSlug(p)
}

func idSlug(p *blogger.Post) string {
	if s := filename.Slugify(p.NumericID()); s != "" {
		return s
	}
	return "post"
}
