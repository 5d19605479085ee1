// Package registry locates the model artifact on disk.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"koiserve/internal/common/fsutil"
)

// DefaultModelFile is looked up when the configured model is a directory or unset.
const DefaultModelFile = "kepler_model_all_data.json"

// Resolve turns a configured model path into an absolute artifact path.
//
// Relative paths are tried against the working directory first and then the
// directory holding the executable, so a binary shipped next to its model
// works from any cwd. A directory resolves to DefaultModelFile inside it, or
// to its only *.json manifest.
func Resolve(path string) (string, error) {
	if path == "" {
		path = DefaultModelFile
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return "", err
	}
	for _, c := range candidates(p) {
		if !fsutil.PathExists(c) {
			continue
		}
		if fsutil.IsDir(c) {
			return fromDir(c)
		}
		return filepath.Abs(c)
	}
	return "", fmt.Errorf("model %q not found: %w", path, os.ErrNotExist)
}

func candidates(p string) []string {
	if filepath.IsAbs(p) {
		return []string{p}
	}
	out := []string{p}
	if dir, err := fsutil.ExecutableDir(); err == nil {
		out = append(out, filepath.Join(dir, p))
	}
	return out
}

func fromDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	def := filepath.Join(abs, DefaultModelFile)
	if fsutil.PathExists(def) {
		return def, nil
	}
	found, err := Manifests(abs)
	if err != nil {
		return "", err
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no model manifest in %s: %w", abs, os.ErrNotExist)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("several manifests in %s, pick one of: %s", abs, strings.Join(found, ", "))
	}
}

// Manifests lists the *.json files directly inside dir, sorted by name.
func Manifests(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
