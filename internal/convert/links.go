package convert

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriteLinks replaces the href of the anchors pointing to another post of
// the blog with a post_url reference. The rest of the HTML is copied byte
// for byte. It returns the number of links rewritten and the internal links
// that could not be resolved.
func (ix *linkIndex) rewriteLinks(body string) (string, int, []string) {
	var (
		sb         strings.Builder
		rewritten  int
		unresolved []string
	)
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if !errors.Is(z.Err(), io.EOF) {
				return body, 0, nil
			}
			break
		}
		raw := string(z.Raw()) // Token() lower-cases the buffer in place
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			sb.WriteString(raw)
			continue
		}
		tok := z.Token()
		if tok.DataAtom != atom.A {
			sb.WriteString(raw)
			continue
		}

		changed := false
		for i, a := range tok.Attr {
			if a.Namespace != "" || a.Key != "href" {
				continue
			}
			ref, internal := ix.resolve(a.Val)
			switch {
			case ref != "":
				tok.Attr[i].Val = ref
				changed = true
			case internal:
				unresolved = append(unresolved, a.Val)
			}
			break
		}
		if !changed {
			sb.WriteString(raw)
			continue
		}
		rewritten++
		sb.WriteString(tok.String())
	}
	return sb.String(), rewritten, unresolved
}
