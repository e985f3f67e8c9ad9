package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fpang/smart-gallery/internal/media"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-3-flash-preview"

// maxInlineImageBytes caps how large an image may be to be sent inline.
const maxInlineImageBytes = 4 << 20

// maxModelTags bounds how many tags a model answer may contribute.
const maxModelTags = 8

const taggingInstruction = `You label media files for a small business's social media library.
Return ONLY a JSON array of 3 to 8 short lowercase tags (single words where possible)
describing the subject of the media, most important first. Include the kind of
subject (e.g. "bread", "portrait", "storefront") and the broader category
(e.g. "food", "person", "business"). No prose, no markdown.`

// contentGenerator is the subset of genai.Models used by GeminiTagger.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiTagger asks a Gemini model for tags, sending the image itself when
// it is small enough and the file name otherwise. Any failure or empty
// answer falls back to another Tagger so the non-empty contract holds.
type GeminiTagger struct {
	gen      contentGenerator
	model    string
	fallback Tagger
}

// NewGeminiTagger creates a Gemini-backed tagger. A nil fallback selects
// the reference heuristic.
func NewGeminiTagger(client *genai.Client, model string, fallback Tagger) *GeminiTagger {
	return newGeminiTagger(client.Models, model, fallback)
}

func newGeminiTagger(gen contentGenerator, model string, fallback Tagger) *GeminiTagger {
	if model == "" {
		model = DefaultGeminiModel
	}
	if fallback == nil {
		fallback = NewHeuristicTagger(nil)
	}
	return &GeminiTagger{gen: gen, model: model, fallback: fallback}
}

// InferTags implements Tagger.
func (g *GeminiTagger) InferTags(ctx context.Context, path string) []string {
	tags, err := g.ask(ctx, path)
	if err != nil || len(tags) == 0 {
		log.Warn().
			Err(err).
			Str("path", path).
			Str("model", g.model).
			Msg("Gemini tagging unavailable, using fallback tagger")
		return g.fallback.InferTags(ctx, path)
	}

	tags = append(tags, extensionTags(path)...)
	tags = Dedupe(tags)
	log.Debug().
		Str("path", path).
		Strs("tags", tags).
		Str("strategy", "gemini").
		Msg("Tags inferred")
	return tags
}

func (g *GeminiTagger) ask(ctx context.Context, path string) ([]string, error) {
	parts := []*genai.Part{}
	if blob := inlineImage(path); blob != nil {
		parts = append(parts, &genai.Part{InlineData: blob})
	}
	parts = append(parts, &genai.Part{
		Text: fmt.Sprintf("File name: %s\nFolder: %s", filepath.Base(path), filepath.Base(filepath.Dir(path))),
	})

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: taggingInstruction}},
		},
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	resp, err := g.gen.GenerateContent(ctx, g.model, []*genai.Content{{Role: "user", Parts: parts}}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	text := resp.Text()
	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Gemini tagging response received")

	return parseTagList(text)
}

// inlineImage returns the file as an inline blob when it is a small image.
func inlineImage(path string) *genai.Blob {
	if !media.IsImagePath(path) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxInlineImageBytes {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return &genai.Blob{MIMEType: media.MIMEType(path), Data: data}
}

// parseTagList extracts a JSON array of strings from a model answer that
// may be wrapped in markdown fences or surrounded by prose.
func parseTagList(raw string) ([]string, error) {
	text := stripMarkdownFences(raw)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array found (raw length: %d)", len(raw))
	}

	var tags []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &tags); err != nil {
		preview := text
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}

	for i := range tags {
		tags[i] = strings.ToLower(strings.TrimSpace(tags[i]))
	}
	tags = Dedupe(tags)
	if len(tags) > maxModelTags {
		tags = tags[:maxModelTags]
	}
	return tags, nil
}

// stripMarkdownFences removes ```json ... ``` wrapping from text.
func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.Join(lines[1:endIdx], "\n")
}
