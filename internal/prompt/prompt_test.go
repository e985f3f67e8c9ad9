package prompt

import (
	"errors"
	"reflect"
	"testing"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{"stopwords and short tokens", "pick 2 photos of staff", []string{"pick", "photos", "staff"}},
		{"case and punctuation", "Best Bread, for INSTAGRAM!", []string{"best", "bread", "instagram"}},
		{"only stopwords", "the and of a", nil},
		{"empty", "", nil},
		{"order preserved", "team bakery team", []string{"team", "bakery", "team"}},
		{"short non-ascii dropped", "面包 éé ßü", nil},
		{"non-ascii counted by rune", "crème brûlée 蛋糕店", []string{"crème", "brûlée", "蛋糕店"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.prompt)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestDesiredCount(t *testing.T) {
	tests := []struct {
		prompt string
		want   int // -1 = no count
	}{
		{"a few bread photos", 3},
		{"A couple of staff portraits", 2},
		{"pick 2 bread images", 2},
		{"best 3 bread photos for Instagram", 3},
		{"show me 4 photos", 4},
		{"photos from 2023 pick 5", 5},
		{"7 pictures of cake", 7},
		{"bread from 2019", 2019},
		{"bread", -1},
		{"a few, maybe pick 9", 3},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got := DesiredCount(tt.prompt)
			if tt.want < 0 {
				if got != nil {
					t.Errorf("DesiredCount(%q) = %d, want none", tt.prompt, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("DesiredCount(%q) = none, want %d", tt.prompt, tt.want)
			}
			if *got != tt.want {
				t.Errorf("DesiredCount(%q) = %d, want %d", tt.prompt, *got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	p, err := Parse("pick 2 photos of staff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.HasCount() || *p.Count != 2 {
		t.Errorf("Count = %v, want 2", p.Count)
	}
	if !reflect.DeepEqual(p.Keywords, []string{"pick", "photos", "staff"}) {
		t.Errorf("Keywords = %v", p.Keywords)
	}
}

func TestParseNoKeywords(t *testing.T) {
	for _, raw := range []string{"", "   ", "a 12 of the", "to in on", "面包", "éé", "ßü"} {
		p, err := Parse(raw)
		if !errors.Is(err, ErrNoKeywords) {
			t.Errorf("Parse(%q) error = %v, want ErrNoKeywords", raw, err)
		}
		if p == nil || len(p.Keywords) != 0 {
			t.Errorf("Parse(%q) keywords = %v, want none", raw, p)
		}
	}
}
