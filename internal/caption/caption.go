// Package caption builds a short marketing caption and hashtags from the
// tags of a set of media items and a tone directive.
package caption

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/fpang/smart-gallery/internal/prompt"
	"github.com/fpang/smart-gallery/internal/tagging"
	"github.com/rs/zerolog/log"
)

// ErrNoMedia is returned when synthesis is requested for zero paths.
var ErrNoMedia = errors.New("no media given for caption")

// MaxHashtags caps the hashtag list.
const MaxHashtags = 5

const (
	maxSubjects     = 3
	maxRandomTags   = 2
	excitedWord     = "excited"
	excitedClosing  = "We're so excited for you to see it!"
	questionClosing = "What do you think? Let us know in the comments!"
	neutralBase     = "Here's a look at what we've been working on."
)

// tone maps trigger keywords to a base sentence.
type tone struct {
	name     string
	triggers []string
	base     string
}

// tones are matched in order; the first tone with a trigger keyword wins.
var tones = []tone{
	{"professional", []string{"professional", "formal", "business", "corporate"}, "Showcasing the quality and craftsmanship that go into everything we do."},
	{"casual", []string{"casual", "friendly", "relaxed", "chill"}, "Just a little something we wanted to share with you."},
	{"funny", []string{"funny", "humor", "humorous", "fun", "silly", "witty"}, "Warning: this post may cause sudden cravings and uncontrollable smiling."},
	{"inspirational", []string{"inspirational", "inspiring", "inspire", "motivational", "uplifting"}, "Every great creation starts with a simple idea and a lot of heart."},
	{excitedWord, []string{"excited", "exciting", "thrilled", "hype", "hyped"}, "We're so excited to share this with you!"},
	{"sarcastic", []string{"sarcastic", "sarcasm", "ironic", "snarky"}, "Oh sure, just another perfectly ordinary masterpiece."},
}

// bonusHashtags are added when any main subject is one of the keys.
var bonusHashtags = []struct {
	subjects []string
	hashtag  string
}{
	{[]string{"bakery", "bread"}, "#BakingLove"},
	{[]string{"food"}, "#Foodie"},
	{[]string{"people", "person"}, "#MeetTheTeam"},
	{[]string{"art"}, "#ArtOfInstagram"},
}

// genericHashtags is the pool random picks are drawn from.
var genericHashtags = []string{
	"#SmallBusiness", "#ShopLocal", "#InstaGood", "#PhotoOfTheDay",
	"#SupportLocal", "#Community", "#Handmade",
}

// Result is a synthesized caption.
type Result struct {
	Text     string   `json:"text"`
	Hashtags []string `json:"hashtags"`
	Tone     string   `json:"tone"`
	Subjects []string `json:"subjects"`
}

// Synthesizer produces captions. The random source is guarded so a single
// Synthesizer may be shared.
type Synthesizer struct {
	tagger tagging.Tagger
	mu     sync.Mutex
	rng    *rand.Rand
}

// NewRand returns a deterministic source for seed, or a time-seeded one
// when seed is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// NewSynthesizer creates a Synthesizer. A nil rng is time-seeded.
func NewSynthesizer(t tagging.Tagger, rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Synthesizer{tagger: t, rng: rng}
}

// Synthesize builds a caption for paths in the requested tone.
func (s *Synthesizer) Synthesize(ctx context.Context, paths []string, toneText string) (*Result, error) {
	if len(paths) == 0 {
		return nil, ErrNoMedia
	}

	tags := tagging.Aggregate(ctx, s.tagger, paths)
	subjects := tags
	if len(subjects) > maxSubjects {
		subjects = subjects[:maxSubjects]
	}

	toneWords := prompt.Keywords(toneText)
	t := matchTone(toneWords)

	sentences := []string{neutralBase}
	if t != nil {
		sentences[0] = t.base
	}
	sentences = append(sentences, subjectClause(subjects))

	switch {
	case wantsExcitement(toneWords) && !strings.Contains(strings.ToLower(sentences[0]), excitedWord):
		sentences = append(sentences, excitedClosing)
	case len(toneWords) == 0 && len(subjects) > 0:
		sentences = append(sentences, questionClosing)
	}

	res := &Result{
		Text:     strings.Join(sentences, " "),
		Hashtags: s.hashtags(subjects),
		Tone:     "neutral",
		Subjects: subjects,
	}
	if t != nil {
		res.Tone = t.name
	}

	log.Debug().
		Int("path_count", len(paths)).
		Str("tone", res.Tone).
		Strs("subjects", subjects).
		Strs("hashtags", res.Hashtags).
		Msg("Caption synthesized")

	return res, nil
}

func matchTone(words []string) *tone {
	for i := range tones {
		for _, trigger := range tones[i].triggers {
			for _, w := range words {
				if w == trigger {
					return &tones[i]
				}
			}
		}
	}
	return nil
}

// wantsExcitement reports whether any tone word triggers the excited tone,
// even when another tone took precedence for the base sentence.
func wantsExcitement(words []string) bool {
	for _, t := range tones {
		if t.name != excitedWord {
			continue
		}
		for _, trigger := range t.triggers {
			for _, w := range words {
				if w == trigger {
					return true
				}
			}
		}
	}
	return false
}

func subjectClause(subjects []string) string {
	switch len(subjects) {
	case 0:
		return "Take a moment to enjoy the details."
	case 1:
		return fmt.Sprintf("Focusing on %s.", subjects[0])
	case 2:
		return fmt.Sprintf("A look at %s and %s.", subjects[0], subjects[1])
	default:
		return fmt.Sprintf("Featuring %s.", strings.Join(subjects, ", "))
	}
}

func (s *Synthesizer) hashtags(subjects []string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(h string) {
		key := strings.ToLower(h)
		if len(out) >= MaxHashtags || h == "#" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, h)
	}

	for _, subj := range subjects {
		add("#" + strings.ReplaceAll(subj, " ", ""))
	}

	lower := make(map[string]bool, len(subjects))
	for _, subj := range subjects {
		lower[strings.ToLower(subj)] = true
	}
	for _, b := range bonusHashtags {
		for _, subj := range b.subjects {
			if lower[subj] {
				add(b.hashtag)
				break
			}
		}
	}

	s.mu.Lock()
	order := s.rng.Perm(len(genericHashtags))
	s.mu.Unlock()
	for _, i := range order[:maxRandomTags] {
		add(genericHashtags[i])
	}
	return out
}
