package convert

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// linkIndex maps the original URLs of the published posts to their Jekyll
// identifier. It must be complete before any body is rewritten: a post can
// link to a post that comes after it in the export.
type linkIndex struct {
	byKey  map[string]string // host + path
	byPath map[string]string // path only, for posts known by path only
	hosts  map[string]bool   // hosts of the blog
	base   *url.URL
}

var blogspotCountry = regexp.MustCompile(`^(.+)\.blogspot\.[a-z]{2,3}(\.[a-z]{2})?$`)

// normalizeHost folds the spellings of the blog host: case, www. prefix,
// and the country domains Blogger redirects to (name.blogspot.fr).
func normalizeHost(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if m := blogspotCountry.FindStringSubmatch(host); m != nil {
		return m[1] + ".blogspot.com"
	}
	return host
}

func newLinkIndex(baseURL string, files []OutputFile) (*linkIndex, error) {
	ix := &linkIndex{
		byKey:  map[string]string{},
		byPath: map[string]string{},
		hosts:  map[string]bool{},
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
		if u.Host != "" {
			ix.base = u
			ix.hosts[normalizeHost(u.Hostname())] = true
		}
	}

	for _, f := range files {
		if f.post.Draft || f.post.URL == "" {
			continue
		}
		u, err := url.Parse(f.post.URL)
		if err != nil {
			return nil, fmt.Errorf("post %s: invalid URL %q: %w", f.post.ID, f.post.URL, err)
		}
		index := ix.byPath
		key := u.Path
		if u.Host != "" {
			host := normalizeHost(u.Hostname())
			ix.hosts[host] = true
			index = ix.byKey
			key = host + u.Path
		}
		if prev, ok := index[key]; ok {
			slog.Warn("several posts share the same URL", "url", f.post.URL, "kept", prev, "ignored", f.Identifier)
			continue
		}
		index[key] = f.Identifier
	}
	return ix, nil
}

// resolve returns the Liquid reference for href. internal reports whether
// href points to a post page of the blog, even when it can't be resolved.
func (ix *linkIndex) resolve(href string) (ref string, internal bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	host := ""
	switch {
	case u.Host != "":
		host = normalizeHost(u.Hostname())
	case u.Scheme == "" && strings.HasPrefix(u.Path, "/"):
		if ix.base != nil {
			host = normalizeHost(ix.base.Hostname())
		}
	default:
		return "", false
	}
	if host != "" && len(ix.hosts) > 0 && !ix.hosts[host] {
		return "", false
	}

	id, ok := ix.byKey[host+u.Path]
	if !ok {
		id, ok = ix.byPath[u.Path]
	}
	internal = strings.HasSuffix(u.Path, ".html") && (ok || ix.hosts[host])
	if !ok {
		return "", internal
	}
	ref = "{% post_url " + id + " %}"
	if u.Fragment != "" {
		ref += "#" + u.Fragment
	}
	return ref, true
}
