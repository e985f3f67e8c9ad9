// Package engine is the operation surface of smart gallery: it wires the
// prompt parser, tagger, scorer, selector, enhancer, caption synthesizer and
// gallery store into the calls the CLI (or any other front end) makes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"time"

	"github.com/fpang/smart-gallery/internal/caption"
	"github.com/fpang/smart-gallery/internal/enhance"
	"github.com/fpang/smart-gallery/internal/gallery"
	"github.com/fpang/smart-gallery/internal/media"
	"github.com/fpang/smart-gallery/internal/metrics"
	"github.com/fpang/smart-gallery/internal/prompt"
	"github.com/fpang/smart-gallery/internal/scoring"
	"github.com/fpang/smart-gallery/internal/selection"
	"github.com/fpang/smart-gallery/internal/tagging"
	"github.com/rs/zerolog/log"
)

// Options configures an Engine. Store is required; everything else has a
// default.
type Options struct {
	Tagger   tagging.Tagger   // default: cached reference heuristic
	Enhancer enhance.Enhancer // nil disables enhancement
	Store    *gallery.Store
	Rand     *rand.Rand       // hashtag randomness, time-seeded when nil
	Metrics  *metrics.Emitter // nil discards metrics
}

// Engine runs gallery and caption operations. Safe for concurrent use.
type Engine struct {
	tagger   tagging.Tagger
	invoker  *enhance.Invoker
	captions *caption.Synthesizer
	store    *gallery.Store
	metrics  *metrics.Emitter
}

// New creates an Engine.
func New(opts Options) *Engine {
	t := opts.Tagger
	if t == nil {
		t = tagging.NewCachedTagger(tagging.NewHeuristicTagger(nil))
	}
	return &Engine{
		tagger:   t,
		invoker:  enhance.NewInvoker(opts.Enhancer),
		captions: caption.NewSynthesizer(t, opts.Rand),
		store:    opts.Store,
		metrics:  opts.Metrics,
	}
}

// GenerateResult is the outcome of GenerateGallery.
type GenerateResult struct {
	Keywords []string `json:"keywords"`
	Count    *int     `json:"count,omitempty"`
	// Selected are the chosen library paths, best first.
	Selected []string `json:"selected"`
	Scores   []int    `json:"scores"`
	// Paths are Selected with enhanced variants substituted where available.
	Paths []string `json:"paths"`
	// AutoSelected is set when the prompt named no count and every match
	// was returned.
	AutoSelected bool            `json:"auto_selected"`
	Enhancement  *enhance.Report `json:"enhancement,omitempty"`
}

// GenerateGallery selects the candidate paths that best match the prompt.
// It returns prompt.ErrNoKeywords when the prompt has nothing to search for
// and selection.ErrNoMatches (or ErrNoCandidates) when nothing matched.
func (e *Engine) GenerateGallery(ctx context.Context, candidates []string, promptText string, enhanceSelected bool) (*GenerateResult, error) {
	items := make([]*media.Item, 0, len(candidates))
	for _, p := range candidates {
		items = append(items, &media.Item{Path: p, Category: categoryOf(p)})
	}
	return e.GenerateFromItems(ctx, items, promptText, enhanceSelected)
}

// GenerateFromItems is GenerateGallery for items that already carry
// captions or tags. Items without tags are tagged in place.
func (e *Engine) GenerateFromItems(ctx context.Context, items []*media.Item, promptText string, enhanceSelected bool) (*GenerateResult, error) {
	start := time.Now()
	rec := e.metrics.New("GenerateGallery").Metric("CandidateCount", float64(len(items)), metrics.UnitCount)
	defer func() {
		rec.Duration("LatencyMs", start).Flush()
	}()

	parsed, err := prompt.Parse(promptText)
	if err != nil {
		rec.Property("outcome", "no_keywords")
		log.Info().Str("prompt", promptText).Msg("Prompt has no actionable keywords")
		return nil, err
	}

	log.Debug().
		Strs("keywords", parsed.Keywords).
		Int("keyword_count", len(parsed.Keywords)).
		Bool("has_count", parsed.HasCount()).
		Int("candidate_count", len(items)).
		Msg("Prompt parsed")

	candidates := scoring.ScoreAll(ctx, e.tagger, items, parsed.Keywords)
	sel, err := selection.Select(candidates, parsed.Count)
	if err != nil {
		rec.Property("outcome", "no_match")
		log.Info().Err(err).Str("prompt", promptText).Int("candidate_count", len(items)).Msg("No media selected")
		return nil, err
	}

	if sel.AutoSelected {
		log.Warn().
			Int("selected_count", len(sel.Paths)).
			Msg("No count in prompt, returning every match")
	}

	paths, report := e.invoker.MaybeEnhance(ctx, sel.Paths, enhanceSelected)

	rec.Property("outcome", "ok").
		Metric("SelectedCount", float64(len(sel.Paths)), metrics.UnitCount).
		Metric("EnhancedCount", float64(len(report.Enhanced)), metrics.UnitCount).
		Metric("EnhanceFailedCount", float64(len(report.Failed)), metrics.UnitCount)

	log.Info().
		Int("candidate_count", len(items)).
		Int("selected_count", len(sel.Paths)).
		Bool("auto_selected", sel.AutoSelected).
		Bool("enhance", enhanceSelected).
		Dur("duration", time.Since(start)).
		Msg("Gallery generated")

	return &GenerateResult{
		Keywords:     parsed.Keywords,
		Count:        parsed.Count,
		Selected:     sel.Paths,
		Scores:       sel.Scores,
		Paths:        paths,
		AutoSelected: sel.AutoSelected,
		Enhancement:  report,
	}, nil
}

// GenerateCaption synthesizes a caption for paths in the given tone. It
// returns caption.ErrNoMedia for an empty path list.
func (e *Engine) GenerateCaption(ctx context.Context, paths []string, tone string) (*caption.Result, error) {
	start := time.Now()
	rec := e.metrics.New("GenerateCaption").Metric("PathCount", float64(len(paths)), metrics.UnitCount)
	defer func() {
		rec.Duration("LatencyMs", start).Flush()
	}()

	res, err := e.captions.Synthesize(ctx, paths, tone)
	if err != nil {
		rec.Property("outcome", "no_media")
		return nil, err
	}
	rec.Property("outcome", "ok").
		Property("tone", res.Tone).
		Metric("HashtagCount", float64(len(res.Hashtags)), metrics.UnitCount)
	return res, nil
}

// InferTags returns the tags of a single path.
func (e *Engine) InferTags(ctx context.Context, path string) []string {
	return e.tagger.InferTags(ctx, path)
}

// SaveGallery persists a new gallery. The union of the media's tags is
// stored alongside.
func (e *Engine) SaveGallery(ctx context.Context, name string, paths []string, captionText string) (*gallery.Gallery, error) {
	tags := tagging.Aggregate(ctx, e.tagger, paths)
	return e.store.Save(ctx, name, paths, captionText, tags)
}

// ListGalleries returns every readable gallery, newest first.
func (e *Engine) ListGalleries(ctx context.Context) ([]*gallery.Gallery, error) {
	return e.store.List(ctx)
}

// GetGallery returns one gallery, or nil when it does not exist.
func (e *Engine) GetGallery(ctx context.Context, key string) (*gallery.Gallery, error) {
	return e.store.Get(ctx, key)
}

// UpdateGallery changes name and caption. An empty name or a nil caption
// leaves that field alone. False means not found.
func (e *Engine) UpdateGallery(ctx context.Context, key, name string, captionText *string) (bool, error) {
	return e.store.Update(ctx, key, name, captionText)
}

// AddMediaToGallery appends paths the gallery does not contain yet and
// returns how many were new. False means not found.
func (e *Engine) AddMediaToGallery(ctx context.Context, key string, paths []string) (int, bool, error) {
	added, ok, err := e.store.AddMedia(ctx, key, paths)
	if err != nil || !ok {
		return 0, ok, err
	}
	log.Info().Str("gallery", key).Int("added", added).Int("requested", len(paths)).Msg("Media added to gallery")
	return added, true, nil
}

// RemoveMediaEverywhere drops path from every gallery and returns how many
// galleries changed.
func (e *Engine) RemoveMediaEverywhere(ctx context.Context, path string) (int, error) {
	return e.store.RemoveMediaEverywhere(ctx, path)
}

// DeleteGallery removes a gallery. False means not found.
func (e *Engine) DeleteGallery(ctx context.Context, key string) (bool, error) {
	return e.store.Delete(ctx, key)
}

// forgetter is implemented by taggers that cache per path.
type forgetter interface {
	Forget(path string)
}

// DeleteMedia removes a media file from disk and then from every gallery.
// A file that is already gone still has its references cleaned up.
func (e *Engine) DeleteMedia(ctx context.Context, path string) (int, error) {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("delete media %s: %w", path, err)
		}
		log.Warn().Str("path", path).Msg("Media file already missing, cleaning up gallery references")
	}
	if f, ok := e.tagger.(forgetter); ok {
		f.Forget(path)
	}
	return e.store.RemoveMediaEverywhere(ctx, path)
}

func categoryOf(path string) media.Category {
	if media.IsVideoPath(path) {
		return media.CategoryVideo
	}
	return media.CategoryPhoto
}
