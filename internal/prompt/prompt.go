// Package prompt turns a free-text request such as "best 3 bread photos for
// Instagram" into searchable keywords and an optional result count.
package prompt

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinKeywordLength is the shortest token kept as a keyword.
const MinKeywordLength = 3

// ErrNoKeywords is returned when nothing searchable remains after stopword
// removal. Callers should ask the user to be more specific instead of scoring.
var ErrNoKeywords = errors.New("prompt has no actionable keywords")

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "with": true,
	"of": true, "from": true,
}

// countPatterns are tried in order; the first numeric capture wins.
var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(pick|select|choose|get|show|the|top|best|find)\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s+(images?|items?|photos?|pictures?)`),
	regexp.MustCompile(`(\d+)`),
}

// Parsed is the immutable result of parsing a prompt.
type Parsed struct {
	Raw      string
	Keywords []string
	// Count is the desired number of results, nil when the prompt names none.
	Count *int
}

// HasCount reports whether an explicit count was found.
func (p *Parsed) HasCount() bool {
	return p.Count != nil
}

// Parse extracts keywords and the desired count. It returns ErrNoKeywords
// together with the partially filled result when no keyword survives.
func Parse(raw string) (*Parsed, error) {
	p := &Parsed{
		Raw:      raw,
		Keywords: Keywords(raw),
		Count:    DesiredCount(raw),
	}
	if len(p.Keywords) == 0 {
		return p, ErrNoKeywords
	}
	return p, nil
}

// Keywords tokenizes on whitespace, lowercases, trims surrounding
// punctuation and drops short tokens and stopwords. Order is preserved.
func Keywords(raw string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(raw)) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(tok) < MinKeywordLength || stopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// DesiredCount applies the count precedence: "a few" (3), "a couple" (2),
// then the regex family in order. Returns nil when nothing matches.
func DesiredCount(raw string) *int {
	text := strings.ToLower(raw)

	if strings.Contains(text, "a few") {
		return intPtr(3)
	}
	if strings.Contains(text, "a couple") {
		return intPtr(2)
	}

	for _, re := range countPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if n, err := strconv.Atoi(group); err == nil {
				return intPtr(n)
			}
		}
	}
	return nil
}

func intPtr(n int) *int {
	return &n
}
