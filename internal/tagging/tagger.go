// Package tagging infers descriptive tags for media paths.
//
// A Tagger must always return a non-empty, duplicate-free tag list whose
// order is stable across calls for the same path. HeuristicTagger is the
// reference implementation; GeminiTagger asks a model and falls back to the
// heuristic; CachedTagger memoizes any other Tagger.
package tagging

import (
	"context"
	"strings"
	"sync"
)

// Tagger maps a media path to its ordered, de-duplicated tags.
type Tagger interface {
	InferTags(ctx context.Context, path string) []string
}

// TaggerFunc adapts a plain function to the Tagger interface.
type TaggerFunc func(ctx context.Context, path string) []string

// InferTags calls f.
func (f TaggerFunc) InferTags(ctx context.Context, path string) []string {
	return f(ctx, path)
}

// Dedupe removes case-insensitive duplicates and blank entries, keeping the
// first-seen spelling and order.
func Dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// Aggregate infers tags for every path and returns their union in
// first-seen order, compared case-insensitively.
func Aggregate(ctx context.Context, t Tagger, paths []string) []string {
	var all []string
	for _, p := range paths {
		all = append(all, t.InferTags(ctx, p)...)
	}
	return Dedupe(all)
}

// CachedTagger memoizes another Tagger per path. Safe for concurrent use.
type CachedTagger struct {
	next  Tagger
	mu    sync.Mutex
	cache map[string][]string
}

// NewCachedTagger wraps next with a per-path cache.
func NewCachedTagger(next Tagger) *CachedTagger {
	return &CachedTagger{
		next:  next,
		cache: make(map[string][]string),
	}
}

// InferTags returns the cached tags for path, inferring them on first use.
func (c *CachedTagger) InferTags(ctx context.Context, path string) []string {
	c.mu.Lock()
	tags, ok := c.cache[path]
	c.mu.Unlock()
	if !ok {
		tags = c.next.InferTags(ctx, path)
		c.mu.Lock()
		c.cache[path] = tags
		c.mu.Unlock()
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// Forget drops a path from the cache, e.g. after the file was deleted.
func (c *CachedTagger) Forget(path string) {
	c.mu.Lock()
	delete(c.cache, path)
	c.mu.Unlock()
}
