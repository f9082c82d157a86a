// Package convert imports a Blogger export into a Jekyll site.
//
// The import is a linear pipeline: read the export, parse it, index the
// original URLs of the posts, transform each post, then write the files.
// Nothing is written until every post has been transformed.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"blogger2jekyll/internal/blogger"
)

// Format is the format of the post bodies.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

func (f Format) ext() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".html"
}

// Options drive an import.
type Options struct {
	Source              []string // export file, Takeout folder or zip files
	Dest                string   // Jekyll site folder
	NoBloggerInfo       bool     // omit blogger_id and blogger_orig_url
	ReplaceInternalLink bool     // rewrite links between posts to post_url
	Format              Format
	Layout              string
	OnConflict          ConflictPolicy
	BaseURL             string // overrides the blog address of the export
	Blog                string // blog to import from a Takeout with several blogs
	Comments            bool   // append the comments to the posts
}

// DefaultOptions returns the options used when nothing is specified.
func DefaultOptions() Options {
	return Options{
		Dest:       ".",
		Format:     FormatHTML,
		Layout:     "post",
		OnConflict: Overwrite,
	}
}

func (o *Options) Validate() error {
	var err error
	if len(o.Source) == 0 {
		err = errors.Join(err, errors.New("missing source: use --source <export file>"))
	}
	if o.Dest == "" {
		err = errors.Join(err, errors.New("missing destination folder"))
	}
	switch o.Format {
	case FormatHTML, FormatMarkdown:
	default:
		err = errors.Join(err, fmt.Errorf("unknown format %q, expected html or markdown", o.Format))
	}
	switch o.OnConflict {
	case Overwrite, Skip, Fail:
	default:
		err = errors.Join(err, fmt.Errorf("unknown conflict policy %q, expected overwrite, skip or fail", o.OnConflict))
	}
	return err
}

// Result summarizes an import.
type Result struct {
	Blog            string
	Posts           int // published posts
	Drafts          int
	Written         []string // files written, relative to Dest
	Skipped         []string // existing files kept
	LinksRewritten  int
	LinksUnresolved int
}

type importer struct {
	opts Options
}

// Run imports the export described by opts.
// Errors are *StageError values naming the failing stage. Invalid options
// are reported as a read stage failure: nothing has been opened yet.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, failed(StageRead, err)
	}
	c := &importer{opts: opts}
	return c.run(ctx)
}

func (c *importer) run(ctx context.Context) (*Result, error) {
	src, err := blogger.OpenSource(ctx, c.opts.Source, c.opts.Blog)
	if err != nil {
		return nil, failed(StageRead, err)
	}
	defer src.Close()

	data, err := readAll(src)
	if err != nil {
		return nil, failed(StageRead, err)
	}
	slog.Debug("export read", "blog", src.Name, "path", src.Path(), "bytes", len(data))

	baseURL := c.opts.BaseURL
	if baseURL == "" {
		baseURL = src.BaseURL
	}
	export, err := blogger.Decode(ctx, bytes.NewReader(data), baseURL)
	if err != nil {
		return nil, failed(StageParse, err)
	}

	result := &Result{Blog: export.Title}
	if result.Blog == "" {
		result.Blog = src.Name
	}

	files := planFiles(export.Posts, c.opts.Format.ext())
	var ix *linkIndex
	if c.opts.ReplaceInternalLink {
		ix, err = newLinkIndex(export.BaseURL, files)
		if err != nil {
			return nil, failed(StageIndex, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, failed(StageIndex, err)
	}

	for i := range files {
		f := &files[i]
		if f.post.Draft {
			result.Drafts++
		} else {
			result.Posts++
		}

		body := f.post.Content
		var comments []blogger.Comment
		if c.opts.Comments {
			comments = append(comments, f.post.Comments...)
		}
		if ix != nil {
			body = c.rewrite(ix, f, body, result)
			for j := range comments {
				comments[j].Content = c.rewrite(ix, f, comments[j].Content, result)
			}
		}

		f.Content, err = c.renderPost(ctx, f, body, comments)
		if err != nil {
			return nil, failed(StageTransform, fmt.Errorf("%s: %w", f.Path, err))
		}
		slog.Debug("post converted", "file", f.Path, "title", f.post.Title, "date", f.post.Date().Format("2006-01-02"))
	}
	if err := ctx.Err(); err != nil {
		return nil, failed(StageTransform, err)
	}

	w := &writer{dest: c.opts.Dest, policy: c.opts.OnConflict}
	result.Written, result.Skipped, err = w.write(ctx, files)
	if err != nil {
		return nil, failed(StageWrite, err)
	}
	slog.Info("import done", "blog", result.Blog, "written", len(result.Written), "skipped", len(result.Skipped))
	return result, nil
}

func (c *importer) rewrite(ix *linkIndex, f *OutputFile, body string, result *Result) string {
	body, n, unresolved := ix.rewriteLinks(body)
	result.LinksRewritten += n
	result.LinksUnresolved += len(unresolved)
	for _, u := range unresolved {
		slog.Warn("internal link left as is", "file", f.Path, "link", u)
	}
	return body
}

func readAll(src *blogger.Source) ([]byte, error) {
	r, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", src.Path(), err)
	}
	return b, nil
}
