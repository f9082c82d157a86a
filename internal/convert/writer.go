package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
)

// ConflictPolicy tells what to do when an output file already exists.
type ConflictPolicy string

const (
	Overwrite ConflictPolicy = "overwrite" // replace the file
	Skip      ConflictPolicy = "skip"      // keep the existing file
	Fail      ConflictPolicy = "fail"      // abort before writing anything
)

// writer writes the output files under the site folder.
// Every target is checked before the first write; if a write fails, the
// files created by the run are removed.
type writer struct {
	dest   string
	policy ConflictPolicy
}

func (w *writer) write(ctx context.Context, files []OutputFile) (written, skipped []string, err error) {
	if len(files) == 0 {
		return nil, nil, nil
	}
	if err := os.MkdirAll(w.dest, 0o755); err != nil {
		return nil, nil, err
	}
	rfs, err := os.OpenRoot(w.dest)
	if err != nil {
		return nil, nil, err
	}
	defer rfs.Close()

	existing := map[string]bool{}
	for _, f := range files {
		_, err := rfs.Stat(f.Path)
		switch {
		case err == nil:
			if w.policy == Fail {
				return nil, nil, fmt.Errorf("%s: %w", f.Path, fs.ErrExist)
			}
			existing[f.Path] = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, nil, err
		}
	}

	var created []string
	rollback := func(err error) error {
		for _, p := range created {
			if rerr := rfs.Remove(p); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
				err = errors.Join(err, rerr)
			}
		}
		return err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, rollback(err)
		}
		if existing[f.Path] && w.policy == Skip {
			slog.Info("existing file kept", "file", f.Path)
			skipped = append(skipped, f.Path)
			continue
		}
		if err := mkDirAll(rfs, path.Dir(f.Path)); err != nil {
			return nil, nil, rollback(fmt.Errorf("can't create the folder of %s: %w", f.Path, err))
		}
		if err := writeFile(rfs, f); err != nil {
			if !existing[f.Path] {
				created = append(created, f.Path)
			}
			return nil, nil, rollback(err)
		}
		if !existing[f.Path] {
			created = append(created, f.Path)
		}
		written = append(written, f.Path)
	}
	return written, skipped, nil
}

func writeFile(rfs *os.Root, f OutputFile) error {
	dst, err := rfs.Create(f.Path)
	if err != nil {
		return fmt.Errorf("can't create %s: %w", f.Path, err)
	}
	_, err = dst.Write(f.Content)
	if err1 := dst.Close(); err == nil {
		err = err1
	}
	if err != nil {
		return fmt.Errorf("can't write %s: %w", f.Path, err)
	}
	return nil
}

func mkDirAll(rfs *os.Root, dirName string) error {
	dirName = strings.TrimPrefix(dirName, "/")
	if dirName == "" || dirName == "." {
		return nil
	}
	dir := ""
	for _, part := range strings.Split(dirName, "/") {
		dir = path.Join(dir, part)
		err := rfs.Mkdir(dir, 0o755)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
	}
	return nil
}
