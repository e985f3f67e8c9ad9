// Package scoring ranks media items against prompt keywords.
//
// The score of an item is the sum over keywords of four independent signals
// (tag, caption, filename, category affinity). Items that collect nothing
// but still loosely relate to the prompt get a minimum score of 1.
package scoring

import (
	"context"
	"strings"

	"github.com/fpang/smart-gallery/internal/media"
	"github.com/fpang/smart-gallery/internal/tagging"
)

// Signal weights.
const (
	ExactTagWeight    = 10
	PartialTagWeight  = 8
	CaptionWeight     = 5
	FilenameWeight    = 3
	MinimumRelevance  = 1
	overlapPrefixSize = 4
)

// affinity awards a bonus when a keyword names the category and the item
// carries one of the category's tags.
type affinity struct {
	name     string
	keywords map[string]bool
	tags     map[string]bool
	bonus    int
}

// affinities are checked in precedence order; the first hit per keyword wins.
var affinities = []affinity{
	{
		name:     "food-exact",
		keywords: set("bread", "breads", "sourdough", "baguette", "croissant", "croissants", "pastry", "pastries", "cake", "cakes", "loaf", "loaves"),
		tags:     set("bread", "sourdough", "baguette", "croissant", "pastry", "cake", "loaf"),
		bonus:    5,
	},
	{
		name:     "food-related",
		keywords: set("food", "foods", "bakery", "baking", "meal", "meals", "dish", "dishes", "dessert", "desserts", "snack", "snacks", "breakfast", "lunch", "dinner", "delicious", "tasty"),
		tags:     set("food", "bakery", "bread", "pastry", "croissant", "dessert", "meal", "baking"),
		bonus:    3,
	},
	{
		name:     "people",
		keywords: set("staff", "team", "teams", "person", "people", "employee", "employees", "portrait", "portraits", "owner", "owners", "crew", "face", "faces", "headshot", "headshots"),
		tags:     set("person", "people", "portrait", "staff", "team", "owner", "employee"),
		bonus:    7,
	},
	{
		name:     "business",
		keywords: set("business", "store", "shop", "storefront", "location", "office", "cafe", "interior", "exterior"),
		tags:     set("business", "location", "storefront", "exterior", "interior", "shop", "store"),
		bonus:    4,
	},
	{
		name:     "product",
		keywords: set("product", "products", "merchandise", "merch", "item", "items", "gift", "gifts", "packaging"),
		tags:     set("product", "merchandise", "packaging", "gift"),
		bonus:    4,
	},
	{
		name:     "event",
		keywords: set("event", "events", "party", "parties", "celebration", "opening", "market", "festival", "launch", "workshop"),
		tags:     set("event", "celebration", "opening", "party", "market", "festival"),
		bonus:    4,
	},
}

// photoSynonyms are generic keywords that make any item minimally relevant.
var photoSynonyms = set("photo", "photos", "image", "images", "picture", "pictures", "pic", "pics", "shot", "shots")

// Candidate is a scored media path.
type Candidate struct {
	Path  string
	Score int
}

// Score computes the relevance of item for keywords using item.Tags. It is a
// pure function of its inputs.
func Score(item *media.Item, keywords []string) int {
	tags := normalizeTags(item.Tags)
	caption := strings.ToLower(item.Caption)
	filename := strings.ToLower(item.Filename())

	total := 0
	for _, raw := range keywords {
		kw := strings.ToLower(raw)
		if kw == "" {
			continue
		}
		total += tagSignal(tags, kw)
		if caption != "" && strings.Contains(caption, kw) {
			total += CaptionWeight
		}
		if strings.Contains(filename, kw) {
			total += FilenameWeight
		}
		total += affinityBonus(tags, kw)
	}

	if total == 0 && looselyRelated(tags, keywords) {
		return MinimumRelevance
	}
	return total
}

// ScoreAll infers tags for items that have none and scores each against
// keywords, preserving input order.
func ScoreAll(ctx context.Context, t tagging.Tagger, items []*media.Item, keywords []string) []Candidate {
	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		if len(item.Tags) == 0 {
			item.Tags = t.InferTags(ctx, item.Path)
		}
		out = append(out, Candidate{Path: item.Path, Score: Score(item, keywords)})
	}
	return out
}

func tagSignal(tags []string, kw string) int {
	for _, tag := range tags {
		if tag == kw {
			return ExactTagWeight
		}
	}
	for _, tag := range tags {
		if strings.Contains(tag, kw) || strings.Contains(kw, tag) {
			return PartialTagWeight
		}
	}
	return 0
}

func affinityBonus(tags []string, kw string) int {
	for _, a := range affinities {
		if !a.keywords[kw] {
			continue
		}
		for _, tag := range tags {
			if a.tags[tag] {
				return a.bonus
			}
		}
	}
	return 0
}

// looselyRelated reports whether any tag shares a prefix of at least
// overlapPrefixSize characters with a keyword, or a keyword is a generic
// synonym for "photo".
func looselyRelated(tags, keywords []string) bool {
	for _, raw := range keywords {
		kw := strings.ToLower(raw)
		if photoSynonyms[kw] {
			return true
		}
		if len(kw) < overlapPrefixSize {
			continue
		}
		for _, tag := range tags {
			if len(tag) >= overlapPrefixSize && tag[:overlapPrefixSize] == kw[:overlapPrefixSize] {
				return true
			}
		}
	}
	return false
}

// normalizeTags lowercases and trims tags. Blank tags are dropped since the
// empty string is a substring of every keyword.
func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
