package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// categoryOrder is the enumeration order used by Library.Paths.
var categoryOrder = []Category{CategoryPhoto, CategoryVideo, CategoryFinished}

// finishedDirs are directory names whose contents count as finished media.
var finishedDirs = map[string]bool{
	"finished": true,
	"enhanced": true,
	"final":    true,
}

// Library maps a category to its ordered paths. The engine does not scan
// directories itself; callers build a Library and hand over the paths.
type Library map[Category][]string

// Paths returns every path in the library, photo first, then video, then
// finished, preserving the order within each category.
func (l Library) Paths() []string {
	var out []string
	for _, c := range categoryOrder {
		out = append(out, l[c]...)
	}
	return out
}

// Len returns the total number of paths.
func (l Library) Len() int {
	n := 0
	for _, paths := range l {
		n += len(paths)
	}
	return n
}

// Contains reports whether path is listed under any category.
func (l Library) Contains(path string) bool {
	for _, paths := range l {
		for _, p := range paths {
			if p == path {
				return true
			}
		}
	}
	return false
}

// ScanOptions configures directory scanning behavior.
type ScanOptions struct {
	// MaxDepth limits recursion depth. 0 = unlimited, 1 = top-level only.
	MaxDepth int

	// Limit caps the number of media files returned. 0 = unlimited.
	Limit int
}

// ScanLibrary walks dirPath and groups supported media into categories.
// Files below a "finished" (or "enhanced"/"final") directory are finished
// media; other images are photos and other videos are videos.
// Symlinks to files are followed; symlinks to directories are skipped.
// Paths within each category are sorted for consistent ordering.
func ScanLibrary(dirPath string, opts ScanOptions) (Library, error) {
	log.Info().
		Str("path", dirPath).
		Int("max_depth", opts.MaxDepth).
		Int("limit", opts.Limit).
		Msg("Scanning media library")

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dirPath)
		}
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	baseDepth := strings.Count(absPath, string(os.PathSeparator))

	lib := Library{}
	total := 0
	limitReached := false

	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path, skipping")
			return nil
		}

		if opts.MaxDepth > 0 {
			currentDepth := strings.Count(path, string(os.PathSeparator)) - baseDepth
			if d.IsDir() && currentDepth >= opts.MaxDepth {
				return fs.SkipDir
			}
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to resolve symlink, skipping")
				return nil
			}
			if target.IsDir() {
				log.Debug().Str("path", path).Msg("Skipping symlink to directory")
				return nil
			}
		}

		if opts.Limit > 0 && total >= opts.Limit {
			limitReached = true
			return fs.SkipAll
		}

		ext := filepath.Ext(d.Name())
		if !IsSupported(ext) {
			return nil
		}

		c := classify(absPath, path)
		lib[c] = append(lib[c], path)
		total++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	for _, paths := range lib {
		sort.Strings(paths)
	}

	evt := log.Info().
		Int("photos", len(lib[CategoryPhoto])).
		Int("videos", len(lib[CategoryVideo])).
		Int("finished", len(lib[CategoryFinished])).
		Str("directory", dirPath)
	if limitReached {
		evt = evt.Bool("limit_reached", true)
	}
	evt.Msg("Library scan complete")

	return lib, nil
}

// classify picks the category of a file relative to the library root.
func classify(root, path string) Category {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err == nil && rel != "." {
		for _, seg := range strings.Split(rel, string(os.PathSeparator)) {
			if finishedDirs[strings.ToLower(seg)] {
				return CategoryFinished
			}
		}
	}
	if IsVideoPath(path) {
		return CategoryVideo
	}
	return CategoryPhoto
}
