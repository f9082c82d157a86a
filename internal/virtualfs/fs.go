package virtualfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem abstracts read access to an export, either a folder of the OS
// file system or a set of zip archives.
type FileSystem interface {
	fs.FS
	fs.StatFS
	fs.ReadDirFS
	Close() error
}

// OSFileSystem implements FileSystem for a folder of the OS file system.
type OSFileSystem struct {
	dir string
}

func NewOSFileSystem(dir string) (*OSFileSystem, error) {
	s, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !s.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &OSFileSystem{dir: dir}, nil
}

func (fsys *OSFileSystem) join(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return filepath.Join(fsys.dir, filepath.FromSlash(name)), nil
}

func (fsys *OSFileSystem) Open(name string) (fs.File, error) {
	p, err := fsys.join("open", name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (fsys *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	p, err := fsys.join("stat", name)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func (fsys *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := fsys.join("readdir", name)
	if err != nil {
		return nil, err
	}
	return os.ReadDir(p)
}

func (fsys *OSFileSystem) Close() error { return nil }
