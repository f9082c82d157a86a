package blogger

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const settingsCSV = "blog_name,blog_description,blog_publishing_mode,blog_subdomain\n" +
	"Takeout Blog,A blog,BLOGSPOT,takeout\n"

func writeZip(t *testing.T, name string, content map[string]string) {
	t.Helper()
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("can't create zip: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for p, data := range content {
		w, err := zw.Create(p)
		if err != nil {
			t.Fatalf("can't add %s: %v", p, err)
		}
		if _, err := io.WriteString(w, data); err != nil {
			t.Fatalf("can't write %s: %v", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("can't close zip: %v", err)
	}
}

func readSource(t *testing.T, src *Source) string {
	t.Helper()
	r, err := src.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return string(b)
}

func TestOpenSourceFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "blog-11-01-2017.xml")
	if err := os.WriteFile(name, []byte(classicExport), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := OpenSource(context.Background(), []string{name}, "")
	if err != nil {
		t.Fatalf("OpenSource failed: %v", err)
	}
	defer src.Close()
	if src.Name != "blog-11-01-2017" {
		t.Errorf("unexpected name %q", src.Name)
	}
	if readSource(t, src) != classicExport {
		t.Errorf("unexpected content")
	}
}

func TestOpenSourceMissing(t *testing.T) {
	_, err := OpenSource(context.Background(), []string{filepath.Join(t.TempDir(), "missing.xml")}, "")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestOpenSourceTakeoutZip(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "takeout-001.zip"), map[string]string{
		"Takeout/Blogger/Blogs/Takeout Blog/settings.csv": settingsCSV,
	})
	writeZip(t, filepath.Join(dir, "takeout-002.zip"), map[string]string{
		"Takeout/Blogger/Blogs/Takeout Blog/feed.atom": takeoutFeed,
		"Takeout/Blogger/Albums/Takeout Blog/img.jpg":  "jpg",
	})

	src, err := OpenSource(context.Background(), []string{filepath.Join(dir, "takeout-*.zip")}, "")
	if err != nil {
		t.Fatalf("OpenSource failed: %v", err)
	}
	defer src.Close()

	if src.Name != "Takeout Blog" {
		t.Errorf("unexpected name %q", src.Name)
	}
	if src.BaseURL != "https://takeout.blogspot.com" {
		t.Errorf("unexpected base URL %q", src.BaseURL)
	}
	if src.Path() != "Takeout/Blogger/Blogs/Takeout Blog/feed.atom" {
		t.Errorf("unexpected path %q", src.Path())
	}
	if readSource(t, src) != takeoutFeed {
		t.Errorf("unexpected content")
	}
}

func TestOpenSourceTakeoutFolder(t *testing.T) {
	dir := t.TempDir()
	for _, blog := range []string{"Cooking", "Travels"} {
		p := filepath.Join(dir, "Takeout", "Blogger", "Blogs", blog)
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(p, "feed.atom"), []byte("<feed>"+blog+"</feed>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := OpenSource(context.Background(), []string{dir}, "")
	if err == nil || !strings.Contains(err.Error(), "several blogs") {
		t.Errorf("expected an ambiguity error, got %v", err)
	}

	src, err := OpenSource(context.Background(), []string{dir}, "Trav")
	if err != nil {
		t.Fatalf("OpenSource failed: %v", err)
	}
	defer src.Close()
	if src.Name != "Travels" {
		t.Errorf("unexpected blog %q", src.Name)
	}
	if readSource(t, src) != "<feed>Travels</feed>" {
		t.Errorf("unexpected content")
	}

	_, err = OpenSource(context.Background(), []string{dir}, "Sport")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestOpenSourceZipWithoutFeed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "takeout.zip")
	writeZip(t, name, map[string]string{"Takeout/YouTube/x.csv": "a,b"})
	_, err := OpenSource(context.Background(), []string{name}, "")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
