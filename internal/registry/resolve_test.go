package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, p string) {
	t.Helper()
	if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "m.json")
	touch(t, p)
	got, err := Resolve(p)
	if err != nil || got != p {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestResolve_RelativeToCwd(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "rel.json"))
	t.Chdir(dir)
	got, err := Resolve("rel.json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "rel.json" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestResolve_DirectoryPrefersDefault(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "other.json"))
	touch(t, filepath.Join(dir, DefaultModelFile))
	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if filepath.Base(got) != DefaultModelFile {
		t.Fatalf("expected default file, got %q", got)
	}
}

func TestResolve_DirectorySingleManifest(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "only.JSON"))
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if filepath.Base(got) != "only.JSON" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestResolve_DirectoryAmbiguous(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.json"))
	touch(t, filepath.Join(dir, "b.json"))
	_, err := Resolve(dir)
	if err == nil || !strings.Contains(err.Error(), "several manifests") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	_, err = Resolve(t.TempDir())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist for empty dir, got %v", err)
	}
}
