package virtualfs

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ZipFileSystem implements FileSystem over one or several zip archives.
// A Takeout export is often split in numbered parts; their entries are merged
// into a single sorted tree.
type ZipFileSystem struct {
	osFiles []*os.File
	entries []zipEntry // sorted by name, all parts merged
}

// NewZipFileSystem opens the given zip files. A single argument is treated as
// a glob pattern, so "takeout-*.zip" opens every part of the archive.
func NewZipFileSystem(zipFiles ...string) (*ZipFileSystem, error) {
	var err error
	if len(zipFiles) == 1 {
		pattern := zipFiles[0]
		zipFiles, err = filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		if len(zipFiles) == 0 {
			return nil, &fs.PathError{Op: "open", Path: pattern, Err: fs.ErrNotExist}
		}
	}
	if len(zipFiles) == 0 {
		return nil, errors.New("no zip file given")
	}

	zfs := &ZipFileSystem{}
	seen := map[string]bool{}
	for _, zipFile := range zipFiles {
		f, err := os.Open(zipFile)
		if err != nil {
			zfs.Close()
			return nil, err
		}
		zfs.osFiles = append(zfs.osFiles, f)

		info, err := f.Stat()
		if err != nil {
			zfs.Close()
			return nil, fmt.Errorf("can't stat zip file %s: %w", zipFile, err)
		}
		zr, err := zip.NewReader(f, info.Size())
		if err != nil {
			zfs.Close()
			return nil, fmt.Errorf("can't read zip file %s: %w", zipFile, err)
		}
		for _, file := range zr.File {
			if seen[file.Name] {
				if strings.HasSuffix(file.Name, "/") {
					continue // the same folder can appear in several parts
				}
				zfs.Close()
				return nil, fmt.Errorf("duplicate file name %s in zip files", file.Name)
			}
			seen[file.Name] = true
			zfs.entries = append(zfs.entries, zipEntry{f: file})
		}
	}

	slices.SortFunc(zfs.entries, func(a, b zipEntry) int {
		return strings.Compare(a.f.Name, b.f.Name)
	})
	return zfs, nil
}

// Close releases the underlying archive files.
func (zfs *ZipFileSystem) Close() error {
	var err error
	for _, file := range zfs.osFiles {
		err = errors.Join(err, file.Close())
	}
	zfs.osFiles = nil
	return err
}

// lookup returns the position of name in the sorted entries and the entry
// describing it. Folders don't need an explicit entry: any entry prefixed by
// "name/" makes name a folder.
func (zfs *ZipFileSystem) lookup(op, name string) (int, zipEntry, error) {
	notFound := &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	if len(zfs.entries) == 0 {
		return 0, zipEntry{}, notFound
	}
	name = strings.TrimSuffix(name, "/")
	if name == "" || name == "." {
		return 0, zipEntry{name: "."}, nil
	}

	i, found := slices.BinarySearchFunc(zfs.entries, name, func(e zipEntry, t string) int {
		return strings.Compare(e.f.Name, t)
	})
	if found {
		return i, zfs.entries[i], nil
	}

	dir := name + "/"
	i, _ = slices.BinarySearchFunc(zfs.entries, dir, func(e zipEntry, t string) int {
		return strings.Compare(e.f.Name, t)
	})
	if i < len(zfs.entries) && strings.HasPrefix(zfs.entries[i].f.Name, dir) {
		return i, zipEntry{name: path.Base(name)}, nil
	}
	return 0, zipEntry{}, notFound
}

func (zfs *ZipFileSystem) Stat(name string) (fs.FileInfo, error) {
	_, e, err := zfs.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (zfs *ZipFileSystem) Open(name string) (fs.File, error) {
	_, e, err := zfs.lookup("open", name)
	if err != nil {
		return nil, err
	}
	if e.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	r, err := e.f.Open()
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &zipEntry{f: e.f, r: r}, nil
}

// ReadDir lists the direct children of a folder. Folder names carry a
// trailing slash.
func (zfs *ZipFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	i, e, err := zfs.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	if !e.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}

	prefix := strings.TrimSuffix(name, "/")
	if prefix == "." {
		prefix = ""
	}
	if prefix != "" {
		prefix += "/"
	}

	var list []fs.DirEntry
	prev := ""
	for _, entry := range zfs.entries[i:] {
		if !strings.HasPrefix(entry.f.Name, prefix) {
			break
		}
		local := entry.f.Name[len(prefix):]
		if local == "" {
			continue // explicit entry of the folder itself
		}
		if j := strings.IndexRune(local, '/'); j >= 0 {
			local = local[:j+1]
		}
		if local == prev {
			continue
		}
		prev = local
		if strings.HasSuffix(local, "/") {
			list = append(list, zipEntry{name: local})
			continue
		}
		list = append(list, entry)
	}
	return list, nil
}

// zipEntry is either a file of the archive or a synthetic folder.
type zipEntry struct {
	f    *zip.File
	r    io.ReadCloser
	name string // folder name when f is nil
}

func (z *zipEntry) Stat() (fs.FileInfo, error) { return *z, nil }

func (z *zipEntry) Read(p []byte) (int, error) {
	if z.r == nil {
		return 0, &fs.PathError{Op: "read", Path: z.Name(), Err: fs.ErrClosed}
	}
	return z.r.Read(p)
}

func (z *zipEntry) Close() error {
	if z.r == nil {
		return nil
	}
	err := z.r.Close()
	z.r = nil
	return err
}

func (z zipEntry) Name() string {
	if z.f == nil {
		return z.name
	}
	return path.Base(z.f.Name)
}

func (z zipEntry) Size() int64 {
	if z.f == nil {
		return 0
	}
	return int64(z.f.UncompressedSize64)
}

func (z zipEntry) Mode() fs.FileMode {
	if z.IsDir() {
		return fs.ModeDir | 0o555
	}
	return z.f.Mode()
}

func (z zipEntry) ModTime() time.Time {
	if z.f == nil {
		return time.Time{}
	}
	return z.f.Modified
}

func (z zipEntry) IsDir() bool {
	return z.f == nil || strings.HasSuffix(z.f.Name, "/")
}

func (z zipEntry) Sys() any { return nil }

// fs.DirEntry
func (z zipEntry) Info() (fs.FileInfo, error) { return z, nil }
func (z zipEntry) Type() fs.FileMode          { return z.Mode().Type() }
