package tagging

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/fpang/smart-gallery/internal/media"
	"github.com/rs/zerolog/log"
)

// DefaultKnownTags is the exact-filename lookup table of the reference
// tagger. Keys are lowercase base names; values are returned verbatim.
var DefaultKnownTags = map[string][]string{
	"sourdough.jpg":      {"bread", "bakery", "food"},
	"staff1.jpg":         {"person", "portrait", "staff"},
	"staff2.jpg":         {"person", "portrait", "staff", "team"},
	"croissant.jpg":      {"croissant", "pastry", "bakery", "food"},
	"storefront.jpg":     {"storefront", "business", "location", "exterior"},
	"owner.jpg":          {"owner", "person", "portrait"},
	"logo.png":           {"logo", "branding", "marketing"},
	"opening_day.mp4":    {"event", "opening", "celebration", "video"},
	"kneading.mp4":       {"process", "baking", "bread", "video"},
	"gift_box.jpg":       {"product", "merchandise", "packaging"},
	"mural.jpg":          {"art", "mural", "decor"},
	"oven.jpg":           {"equipment", "oven", "kitchen"},
	"farmers_market.jpg": {"event", "market", "outdoor", "community"},
}

// category groups filename patterns with the tags they imply.
type category struct {
	name     string
	patterns []string
	tags     []string
}

// categories are evaluated in this order; every matching category
// contributes its matched patterns followed by its tags.
var categories = []category{
	{
		name:     "people",
		patterns: []string{"person", "people", "portrait", "staff", "team", "employee", "selfie", "headshot", "owner", "chef", "baker", "customer", "family", "friend", "crew"},
		tags:     []string{"person", "portrait", "people"},
	},
	{
		name:     "food",
		patterns: []string{"bread", "sourdough", "baguette", "croissant", "pastry", "cake", "cookie", "muffin", "bagel", "donut", "pie", "bakery", "food", "meal", "dish", "dessert", "coffee", "pizza", "loaf", "bun"},
		tags:     []string{"food", "bakery"},
	},
	{
		name:     "business",
		patterns: []string{"store", "shop", "storefront", "cafe", "restaurant", "office", "building", "interior", "exterior", "location", "counter", "signage", "business"},
		tags:     []string{"business", "location"},
	},
	{
		name:     "product",
		patterns: []string{"product", "merchandise", "merch", "item", "package", "packaging", "box", "bottle", "label", "catalog", "gift"},
		tags:     []string{"product", "merchandise"},
	},
	{
		name:     "equipment",
		patterns: []string{"oven", "mixer", "equipment", "tool", "machine", "kitchen", "appliance"},
		tags:     []string{"equipment"},
	},
	{
		name:     "events",
		patterns: []string{"event", "party", "wedding", "birthday", "festival", "celebration", "launch", "opening", "market", "workshop", "holiday"},
		tags:     []string{"event"},
	},
	{
		name:     "marketing",
		patterns: []string{"promo", "ad", "ads", "banner", "flyer", "poster", "campaign", "social", "instagram", "marketing", "sale", "logo", "brand", "branding"},
		tags:     []string{"marketing"},
	},
	{
		name:     "art",
		patterns: []string{"art", "painting", "drawing", "sketch", "illustration", "mural", "design", "artwork", "decor"},
		tags:     []string{"art"},
	},
	{
		name:     "nature",
		patterns: []string{"nature", "landscape", "forest", "flower", "garden", "sky", "sunset", "sunrise", "beach", "mountain", "park", "outdoor", "outdoors"},
		tags:     []string{"nature"},
	},
	{
		name:     "technology",
		patterns: []string{"computer", "laptop", "phone", "screen", "tech", "technology", "software", "app", "device", "tablet"},
		tags:     []string{"technology"},
	},
	{
		name:     "process",
		patterns: []string{"process", "making", "baking", "kneading", "prep", "preparation", "behind", "recipe", "step", "tutorial", "timelapse"},
		tags:     []string{"process"},
	},
}

var (
	cameraPattern      = regexp.MustCompile(`^(img|dsc|dscn|dscf|dcim|pxl|gopr|mvimg|vid|mov|photo)[_-]?\d+`)
	datePattern        = regexp.MustCompile(`(19|20)\d{2}[-_.]?(0[1-9]|1[0-2])[-_.]?(0[1-9]|[12]\d|3[01])`)
	generatedIDPattern = regexp.MustCompile(`^([0-9a-f]{8}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{12}|[0-9a-f]{16,}|[a-z0-9]{24,})$`)
)

// parentSegments is how many enclosing directories contribute tokens.
const parentSegments = 2

// HeuristicTagger infers tags from filename and directory names. It is a
// pure function of the path string.
type HeuristicTagger struct {
	known map[string][]string
}

// NewHeuristicTagger creates a tagger with the given lookup table. A nil
// table selects DefaultKnownTags.
func NewHeuristicTagger(known map[string][]string) *HeuristicTagger {
	if known == nil {
		known = DefaultKnownTags
	}
	lower := make(map[string][]string, len(known))
	for name, tags := range known {
		lower[strings.ToLower(name)] = tags
	}
	return &HeuristicTagger{known: lower}
}

// InferTags implements Tagger.
func (h *HeuristicTagger) InferTags(_ context.Context, path string) []string {
	tags, strategy := h.infer(path)
	log.Debug().
		Str("path", path).
		Strs("tags", tags).
		Str("strategy", strategy).
		Msg("Tags inferred")
	return tags
}

func (h *HeuristicTagger) infer(path string) ([]string, string) {
	base := strings.ToLower(filepath.Base(path))
	if tags, ok := h.known[base]; ok && len(Dedupe(tags)) > 0 {
		return Dedupe(tags), "lookup"
	}

	var tags []string
	strategy := "category"
	tokens := pathTokens(path)
	for _, c := range categories {
		matched := c.match(tokens)
		if len(matched) == 0 {
			continue
		}
		tags = append(tags, matched...)
		tags = append(tags, c.tags...)
	}

	if len(tags) == 0 {
		strategy = "naming"
		tags = namingTags(path)
	}

	tags = append(tags, extensionTags(path)...)
	return Dedupe(tags), strategy
}

// match returns the patterns of c found among tokens, in pattern order.
func (c category) match(tokens []string) []string {
	var out []string
	for _, p := range c.patterns {
		for _, tok := range tokens {
			if tokenMatches(tok, p) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func tokenMatches(tok, pattern string) bool {
	if tok == pattern || tok == pattern+"s" || tok == pattern+"es" {
		return true
	}
	return len(pattern) >= 4 && strings.Contains(tok, pattern)
}

// pathTokens splits the filename stem and the nearest parent directories
// into lowercase letter runs.
func pathTokens(path string) []string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := []string{stem}

	dir := filepath.Dir(path)
	for i := 0; i < parentSegments; i++ {
		seg := filepath.Base(dir)
		if seg == "." || seg == string(os.PathSeparator) || seg == "" {
			break
		}
		parts = append(parts, seg)
		dir = filepath.Dir(dir)
	}

	var tokens []string
	for _, part := range parts {
		tokens = append(tokens, strings.FieldsFunc(strings.ToLower(part), func(r rune) bool {
			return !unicode.IsLetter(r)
		})...)
	}
	return tokens
}

// namingTags derives content-agnostic tags from camera, date and generated
// naming conventions, or a generic set when none applies.
func namingTags(path string) []string {
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	var tags []string
	if cameraPattern.MatchString(stem) {
		tags = append(tags, "camera", "snapshot")
	}
	if datePattern.MatchString(stem) {
		tags = append(tags, "dated", "archive")
	}
	if generatedIDPattern.MatchString(stem) {
		tags = append(tags, "generated", "upload")
	}
	if len(tags) > 0 {
		return tags
	}

	kind := "photo"
	if media.IsVideoPath(path) {
		kind = "video"
	}
	return []string{kind, "content", "media"}
}

func extensionTags(path string) []string {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".gif":
		return []string{"animation", "image"}
	case media.IsImage(ext):
		return []string{"photograph", "image"}
	case media.IsVideo(ext):
		return []string{"video"}
	case media.IsDocument(ext):
		return []string{"document"}
	}
	return nil
}
