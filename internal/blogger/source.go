package blogger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"blogger2jekyll/internal/virtualfs"
)

// feedName is the export file of a blog inside a Takeout archive:
// Takeout/Blogger/Blogs/<blog name>/feed.atom
const feedName = "feed.atom"

// Source locates the export document to import.
type Source struct {
	Name    string // blog name, from the Takeout folder or the file name
	BaseURL string // blog address found in settings.csv, if any
	vfs     virtualfs.FileSystem
	feed    string // path of the export document in vfs
}

// OpenSource resolves the source given on the command line. It can be:
//   - an export file (the "Back up content" XML file or a feed.atom)
//   - a Takeout folder
//   - one or several Takeout zip files, or a glob of them
//
// When a Takeout holds several blogs, blog selects one of them by name.
func OpenSource(ctx context.Context, inputPaths []string, blog string) (*Source, error) {
	if len(inputPaths) == 0 {
		return nil, errors.New("no source given")
	}

	allZip := true
	for _, p := range inputPaths {
		if strings.ToLower(filepath.Ext(p)) != ".zip" {
			allZip = false
			break
		}
	}
	if allZip {
		zfs, err := virtualfs.NewZipFileSystem(inputPaths...)
		if err != nil {
			return nil, err
		}
		return discover(ctx, zfs, blog)
	}

	if len(inputPaths) != 1 {
		return nil, errors.New("only one source is supported when it is not a zip file")
	}
	s, err := os.Stat(inputPaths[0])
	if err != nil {
		return nil, err
	}
	if s.IsDir() {
		osfs, err := virtualfs.NewOSFileSystem(inputPaths[0])
		if err != nil {
			return nil, err
		}
		return discover(ctx, osfs, blog)
	}

	osfs, err := virtualfs.NewOSFileSystem(filepath.Dir(inputPaths[0]))
	if err != nil {
		return nil, err
	}
	base := filepath.Base(inputPaths[0])
	return &Source{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		vfs:  osfs,
		feed: base,
	}, nil
}

// Open returns a reader on the export document.
func (s *Source) Open() (io.ReadCloser, error) {
	return s.vfs.Open(s.feed)
}

// Path returns the location of the export document inside the source.
func (s *Source) Path() string {
	return s.feed
}

func (s *Source) Close() error {
	return s.vfs.Close()
}

// discover walks the file system for the blogs' feed.atom files.
func discover(ctx context.Context, vfs virtualfs.FileSystem, blog string) (*Source, error) {
	var found []*Source
	err := fs.WalkDir(vfs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || d.Name() != feedName {
			return nil
		}
		dir := path.Dir(p)
		src := &Source{
			Name: path.Base(dir),
			vfs:  vfs,
			feed: p,
		}
		settings, err := readSettingsCSV(vfs, path.Join(dir, "settings.csv"))
		switch {
		case err == nil:
			if settings.title != "" {
				src.Name = settings.title
			}
			src.BaseURL = settings.baseURL
		case errors.Is(err, fs.ErrNotExist):
		default:
			slog.Warn("can't read the blog settings", "path", dir, "error", err)
		}
		found = append(found, src)
		return nil
	})
	if err != nil {
		vfs.Close()
		return nil, err
	}

	if blog != "" {
		found = slices.DeleteFunc(found, func(s *Source) bool {
			return s.Name != blog && !strings.Contains(s.Name, blog) && path.Base(path.Dir(s.feed)) != blog
		})
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		vfs.Close()
		if blog != "" {
			return nil, fmt.Errorf("no blog matching %q: %w", blog, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("no %s found in the source: %w", feedName, fs.ErrNotExist)
	default:
		vfs.Close()
		names := make([]string, len(found))
		for i, s := range found {
			names[i] = s.Name
		}
		return nil, fmt.Errorf("several blogs found (%s), select one with --blog", strings.Join(names, ", "))
	}
}

type blogSettings struct {
	title   string
	baseURL string
}

// readSettingsCSV reads the settings.csv file placed next to feed.atom.
func readSettingsCSV(vfs virtualfs.FileSystem, name string) (*blogSettings, error) {
	f, err := vfs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	csvReader := csv.NewReader(f)
	headers, err := csvReader.Read()
	if err != nil {
		return nil, err
	}
	fields, err := csvReader.Read()
	if err != nil {
		return nil, err
	}

	var (
		s         blogSettings
		domain    string
		subDomain string
		custom    string
	)
	for i, field := range headers {
		if i >= len(fields) {
			break
		}
		switch field {
		case "blog_name":
			s.title = fields[i]
		case "blog_publishing_mode":
			if fields[i] == "BLOGSPOT" {
				domain = "blogspot.com"
			}
		case "blog_subdomain":
			subDomain = fields[i]
		case "blog_custom_domain":
			custom = fields[i]
		}
	}
	switch {
	case custom != "":
		s.baseURL = "https://" + custom
	case domain != "" && subDomain != "":
		s.baseURL = "https://" + subDomain + "." + domain
	}
	return &s, nil
}
