// Package selection orders scored candidates and applies the desired count.
package selection

import (
	"errors"
	"sort"

	"github.com/fpang/smart-gallery/internal/scoring"
)

var (
	// ErrNoCandidates means there was nothing to select from.
	ErrNoCandidates = errors.New("no candidate media to select from")
	// ErrNoMatches means candidates existed but none scored above zero.
	ErrNoMatches = errors.New("no media matched the prompt")
)

// Selection is the ordered result of Select.
type Selection struct {
	Paths  []string
	Scores []int
	// AutoSelected is set when no count was requested and every positive
	// match was returned. Callers should tell the user how many were picked.
	AutoSelected bool
}

// Select sorts candidates by score, highest first, keeping input order for
// ties. With a positive count the result is truncated to that many items;
// otherwise every positively scored candidate is returned. Only positive
// scores are ever selected.
func Select(candidates []scoring.Candidate, count *int) (*Selection, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	ranked := make([]scoring.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score > 0 {
			ranked = append(ranked, c)
		}
	}
	if len(ranked) == 0 {
		return nil, ErrNoMatches
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	sel := &Selection{}
	if count != nil && *count > 0 {
		if *count < len(ranked) {
			ranked = ranked[:*count]
		}
	} else {
		sel.AutoSelected = true
	}

	for _, c := range ranked {
		sel.Paths = append(sel.Paths, c.Path)
		sel.Scores = append(sel.Scores, c.Score)
	}
	return sel, nil
}
