// Package enhance optionally swaps selected images for enhanced variants.
package enhance

import (
	"context"

	"github.com/fpang/smart-gallery/internal/media"
	"github.com/rs/zerolog/log"
)

// Enhancer produces an enhanced copy of an image and returns its path.
// Implementations must never modify the source file.
type Enhancer interface {
	Enhance(ctx context.Context, path string) (string, error)
}

// EnhancerFunc adapts a plain function to the Enhancer interface.
type EnhancerFunc func(ctx context.Context, path string) (string, error)

// Enhance calls f.
func (f EnhancerFunc) Enhance(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Report records what happened to each path of a batch.
type Report struct {
	Enhanced []string `json:"enhanced"` // original paths that were replaced
	Failed   []string `json:"failed"`   // image paths kept as-is after an enhancement error
	Skipped  []string `json:"skipped"`  // non-image paths
}

// Invoker applies an Enhancer to a batch with per-item fallback.
type Invoker struct {
	enhancer Enhancer
}

// NewInvoker creates an Invoker. A nil enhancer makes MaybeEnhance a no-op.
func NewInvoker(e Enhancer) *Invoker {
	return &Invoker{enhancer: e}
}

// MaybeEnhance returns paths with every successfully enhanced image replaced
// by its enhanced variant. When disabled the input is returned unchanged.
// Failures never abort the batch: the original path is kept instead.
func (inv *Invoker) MaybeEnhance(ctx context.Context, paths []string, enabled bool) ([]string, *Report) {
	out := make([]string, len(paths))
	copy(out, paths)
	report := &Report{}

	if !enabled {
		return out, report
	}
	if inv.enhancer == nil {
		log.Warn().Msg("Enhancement requested but no enhancer is configured")
		return out, report
	}

	for i, p := range paths {
		if !media.IsImagePath(p) {
			report.Skipped = append(report.Skipped, p)
			continue
		}

		enhanced, err := inv.enhancer.Enhance(ctx, p)
		if err != nil || enhanced == "" {
			log.Warn().
				Err(err).
				Str("path", p).
				Msg("Enhancement failed, keeping original")
			report.Failed = append(report.Failed, p)
			continue
		}

		out[i] = enhanced
		report.Enhanced = append(report.Enhanced, p)
		log.Debug().
			Str("path", p).
			Str("enhanced_path", enhanced).
			Msg("Image enhanced")
	}

	log.Info().
		Int("enhanced", len(report.Enhanced)).
		Int("failed", len(report.Failed)).
		Int("skipped", len(report.Skipped)).
		Msg("Enhancement batch complete")

	return out, report
}
