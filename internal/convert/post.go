package convert

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"blogger2jekyll/internal/blogger"

	"gopkg.in/yaml.v3"
)

// dateLayout is the Jekyll date format of the front matter.
const dateLayout = "2006-01-02 15:04:05 -0700"

// frontMatter is the YAML header of a post. Field order is the output order.
type frontMatter struct {
	Layout       string   `yaml:"layout"`
	Title        string   `yaml:"title"`
	Date         string   `yaml:"date"`
	Author       string   `yaml:"author,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	ModifiedTime string   `yaml:"modified_time,omitempty"`
	Thumbnail    string   `yaml:"thumbnail,omitempty"`
	BloggerID    string   `yaml:"blogger_id,omitempty"`
	BloggerURL   string   `yaml:"blogger_orig_url,omitempty"`
}

func (c *importer) frontMatter(p *blogger.Post) frontMatter {
	fm := frontMatter{
		Layout:    c.opts.Layout,
		Title:     p.Title,
		Date:      p.Date().Format(dateLayout),
		Author:    p.Author,
		Tags:      p.Tags,
		Thumbnail: p.Thumbnail,
	}
	if fm.Title == "" {
		fm.Title = p.Date().Format("2006-01-02") + " - Untitled"
	}
	if !p.Updated.IsZero() && !p.Updated.Equal(p.Date()) {
		fm.ModifiedTime = p.Updated.Format(dateLayout)
	}
	if !c.opts.NoBloggerInfo {
		fm.BloggerID = p.ID
		fm.BloggerURL = p.URL
	}
	return fm
}

// renderPost assembles the file: front matter, then the body in the
// requested format, then the comments.
func (c *importer) renderPost(ctx context.Context, f *OutputFile, body string, comments []blogger.Comment) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c.frontMatter(f.post)); err != nil {
		return nil, fmt.Errorf("can't encode the front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("can't encode the front matter: %w", err)
	}
	buf.WriteString("---\n")

	content, err := c.renderBody(ctx, f, body)
	if err != nil {
		return nil, err
	}
	buf.WriteString(content)

	if len(comments) > 0 {
		if err := c.writeComments(ctx, &buf, f, comments); err != nil {
			return nil, err
		}
	}
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (c *importer) renderBody(ctx context.Context, f *OutputFile, body string) (string, error) {
	if c.opts.Format != FormatMarkdown {
		return body, nil
	}
	md, err := newMarkdownConverter(f.Path).ConvertString(ctx, body)
	if err != nil {
		return "", fmt.Errorf("can't convert to markdown: %w", err)
	}
	return md, nil
}

func (c *importer) writeComments(ctx context.Context, buf *bytes.Buffer, f *OutputFile, comments []blogger.Comment) error {
	if c.opts.Format != FormatMarkdown {
		buf.WriteString("\n\n<section class=\"blogger-comments\">\n<h2>Comments</h2>\n")
		for _, cm := range comments {
			fmt.Fprintf(buf, "<div class=\"blogger-comment\">\n<p><strong>%s</strong> wrote on %s:</p>\n%s\n</div>\n",
				html.EscapeString(commentAuthor(cm)), commentDate(cm.Date), cm.Content)
		}
		buf.WriteString("</section>\n")
		return nil
	}

	buf.WriteString("\n\n>*Comments:*\n")
	for _, cm := range comments {
		text, err := newMarkdownConverter(f.Path).ConvertString(ctx, cm.Content)
		if err != nil {
			return fmt.Errorf("can't convert comment %s to markdown: %w", cm.ID, err)
		}
		buf.WriteString(">\n")
		buf.WriteString("> " + commentDate(cm.Date) + ": *" + commentAuthor(cm) + "* wrote:\n")
		for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
			buf.WriteString(strings.TrimRight("> "+l, " ") + "\n")
		}
	}
	return nil
}

func commentAuthor(cm blogger.Comment) string {
	if cm.Author == "" {
		return "Anonymous"
	}
	return cm.Author
}

func commentDate(t time.Time) string {
	return t.Format("2 January 2006")
}
