package selection

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fpang/smart-gallery/internal/scoring"
)

func intPtr(n int) *int { return &n }

func TestSelect(t *testing.T) {
	candidates := []scoring.Candidate{
		{Path: "a.jpg", Score: 5},
		{Path: "b.jpg", Score: 20},
		{Path: "c.jpg", Score: 0},
		{Path: "d.jpg", Score: 5},
		{Path: "e.jpg", Score: 20},
		{Path: "f.jpg", Score: 1},
	}

	tests := []struct {
		name     string
		count    *int
		want     []string
		wantAuto bool
	}{
		{"no count returns all positive", nil, []string{"b.jpg", "e.jpg", "a.jpg", "d.jpg", "f.jpg"}, true},
		{"count truncates", intPtr(3), []string{"b.jpg", "e.jpg", "a.jpg"}, false},
		{"count larger than matches", intPtr(10), []string{"b.jpg", "e.jpg", "a.jpg", "d.jpg", "f.jpg"}, false},
		{"zero count behaves as absent", intPtr(0), []string{"b.jpg", "e.jpg", "a.jpg", "d.jpg", "f.jpg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Select(candidates, tt.count)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if !reflect.DeepEqual(sel.Paths, tt.want) {
				t.Errorf("Paths = %v, want %v", sel.Paths, tt.want)
			}
			if sel.AutoSelected != tt.wantAuto {
				t.Errorf("AutoSelected = %v, want %v", sel.AutoSelected, tt.wantAuto)
			}
			if len(sel.Scores) != len(sel.Paths) {
				t.Errorf("Scores has %d entries for %d paths", len(sel.Scores), len(sel.Paths))
			}
		})
	}
}

func TestSelectStableTies(t *testing.T) {
	var candidates []scoring.Candidate
	for _, p := range []string{"z.jpg", "m.jpg", "a.jpg", "q.jpg"} {
		candidates = append(candidates, scoring.Candidate{Path: p, Score: 7})
	}
	sel, err := Select(candidates, intPtr(4))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	want := []string{"z.jpg", "m.jpg", "a.jpg", "q.jpg"}
	if !reflect.DeepEqual(sel.Paths, want) {
		t.Errorf("Paths = %v, want input order %v", sel.Paths, want)
	}
}

func TestSelectErrors(t *testing.T) {
	if _, err := Select(nil, nil); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Select(nil) error = %v, want ErrNoCandidates", err)
	}
	zero := []scoring.Candidate{{Path: "a.jpg"}, {Path: "b.jpg"}}
	if _, err := Select(zero, intPtr(1)); !errors.Is(err, ErrNoMatches) {
		t.Errorf("Select(all zero) error = %v, want ErrNoMatches", err)
	}
}
