package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sokinpui/sidediff/internal/ui"
)

// PathResolver finds the original files named by diff headers.
type PathResolver struct {
	lookupDirs []string
}

// NewPathResolver creates a resolver searching lookupDirs in order. With no
// directories it searches the current working directory.
func NewPathResolver(lookupDirs []string) (*PathResolver, error) {
	if len(lookupDirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
		return &PathResolver{lookupDirs: []string{wd}}, nil
	}

	absDirs := make([]string, 0, len(lookupDirs))
	for _, dir := range lookupDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			ui.Warning("Invalid lookup directory '%s', ignoring: %v", dir, err)
			continue
		}
		absDirs = append(absDirs, abs)
	}
	if len(absDirs) == 0 {
		return nil, fmt.Errorf("no usable lookup directory in %v", lookupDirs)
	}
	return &PathResolver{lookupDirs: absDirs}, nil
}

// Dirs returns the absolute lookup directories.
func (r *PathResolver) Dirs() []string {
	return r.lookupDirs
}

// Candidates lists the relative paths tried for a section, most specific first:
// the header path as written, the path without a/ b/ or ./ prefixes, then the
// display name.
func Candidates(path, name string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	add(path)
	trimmed := path
	for _, prefix := range []string{"a/", "b/", "./"} {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimPrefix(trimmed, prefix)
			break
		}
	}
	add(trimmed)
	add(name)
	return out
}

// ResolveExisting returns the first regular file found for any of the
// candidates, or "" when none exists.
func (r *PathResolver) ResolveExisting(candidates ...string) string {
	for _, rel := range candidates {
		if filepath.IsAbs(rel) {
			if isFile(rel) {
				return rel
			}
			continue
		}
		for _, dir := range r.lookupDirs {
			absPath := filepath.Join(dir, rel)
			if isFile(absPath) {
				return absPath
			}
		}
	}
	return ""
}

// Open opens the original file for a section. ok is false when no candidate exists.
func (r *PathResolver) Open(path, name string) (f *os.File, ok bool, err error) {
	abs := r.ResolveExisting(Candidates(path, name)...)
	if abs == "" {
		return nil, false, nil
	}
	f, err = os.Open(abs)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open original file %s: %w", abs, err)
	}
	return f, true, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
