package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirCacheRoundTrip(t *testing.T) {
	d := NewDirCache(t.TempDir())

	if _, ok, err := d.Lookup("/home/user/proj"); err != nil || ok {
		t.Fatalf("empty cache lookup = (%v, %v)", ok, err)
	}

	if err := d.Record("/home/user/proj", "php@8.3"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := d.Record("/home/user/legacy", "php@7.4"); err != nil {
		t.Fatal(err)
	}

	id, ok, err := d.Lookup("/home/user/proj")
	if err != nil || !ok {
		t.Fatalf("Lookup = (%v, %v)", ok, err)
	}
	if id != "php@8.3" {
		t.Errorf("got %s, want php@8.3", id)
	}
}

func TestDirCacheReplacesEntry(t *testing.T) {
	d := NewDirCache(t.TempDir())

	if err := d.Record("/proj", "php@8.1"); err != nil {
		t.Fatal(err)
	}
	if err := d.Record("/proj", "php@8.3"); err != nil {
		t.Fatal(err)
	}

	id, ok, _ := d.Lookup("/proj")
	if !ok || id != "php@8.3" {
		t.Errorf("got (%s, %v), want php@8.3", id, ok)
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "/proj:") != 1 {
		t.Errorf("entry should be replaced, not duplicated:\n%s", data)
	}
}

func TestDirCacheFileFormat(t *testing.T) {
	dir := t.TempDir()
	d := NewDirCache(dir)

	if err := d.Record("/b", "php@8.2"); err != nil {
		t.Fatal(err)
	}
	if err := d.Record("/a", "php@8.1"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "directories"))
	if err != nil {
		t.Fatal(err)
	}
	// Colon-separated lines, sorted by directory for stable diffs.
	if string(data) != "/a:php@8.1\n/b:php@8.2\n" {
		t.Errorf("unexpected file format:\n%s", data)
	}
}

func TestDirCacheSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "directories")
	content := "/good:php@8.2\nno-separator-line\n/bad-version:latest!\n:php@8.1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d := NewDirCache(dir)
	id, ok, err := d.Lookup("/good")
	if err != nil || !ok || id != "php@8.2" {
		t.Errorf("good entry should survive malformed neighbors: (%s, %v, %v)", id, ok, err)
	}
	if _, ok, _ := d.Lookup("/bad-version"); ok {
		t.Error("entry with unparseable version should be dropped")
	}
}

func TestDirCacheForgetAndClear(t *testing.T) {
	d := NewDirCache(t.TempDir())

	if err := d.Record("/proj", "php@8.3"); err != nil {
		t.Fatal(err)
	}
	if err := d.Forget("/proj"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := d.Lookup("/proj"); ok {
		t.Error("forgotten entry still present")
	}

	// Forgetting an unknown directory is a no-op.
	if err := d.Forget("/unknown"); err != nil {
		t.Errorf("Forget on unknown dir failed: %v", err)
	}

	if err := d.Record("/proj", "php@8.3"); err != nil {
		t.Fatal(err)
	}
	if err := d.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(d.path); !os.IsNotExist(err) {
		t.Error("Clear should remove the map file")
	}
}
