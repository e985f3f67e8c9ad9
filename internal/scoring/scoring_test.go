package scoring

import (
	"context"
	"testing"

	"github.com/fpang/smart-gallery/internal/media"
	"github.com/fpang/smart-gallery/internal/tagging"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		item     media.Item
		keywords []string
		want     int
	}{
		{
			name:     "exact tag, filename and people bonus",
			item:     media.Item{Path: "library/staff1.jpg", Tags: []string{"person", "portrait", "staff"}},
			keywords: []string{"pick", "photos", "staff"},
			want:     20,
		},
		{
			name:     "photo synonym fallback",
			item:     media.Item{Path: "library/sourdough.jpg", Tags: []string{"bread", "bakery", "food"}},
			keywords: []string{"pick", "photos", "staff"},
			want:     1,
		},
		{
			name:     "exact tag with food bonus",
			item:     media.Item{Path: "library/sourdough.jpg", Tags: []string{"bread", "bakery", "food"}},
			keywords: []string{"bread"},
			want:     15,
		},
		{
			name:     "caption only",
			item:     media.Item{Path: "x.jpg", Caption: "Fresh Bread today", Tags: []string{"food"}},
			keywords: []string{"bread"},
			want:     5,
		},
		{
			name:     "partial tag with people bonus",
			item:     media.Item{Path: "a.jpg", Tags: []string{"portrait"}},
			keywords: []string{"portraits"},
			want:     15,
		},
		{
			name:     "case insensitive",
			item:     media.Item{Path: "x.jpg", Tags: []string{"Staff"}},
			keywords: []string{"STAFF"},
			want:     17,
		},
		{
			name:     "shared prefix fallback",
			item:     media.Item{Path: "a.jpg", Tags: []string{"portrait"}},
			keywords: []string{"portray"},
			want:     1,
		},
		{
			name:     "unrelated",
			item:     media.Item{Path: "a.jpg", Tags: []string{"logo", "branding"}},
			keywords: []string{"sunset"},
			want:     0,
		},
		{
			name:     "blank tags match nothing",
			item:     media.Item{Path: "a.jpg", Tags: []string{"", "  ", "logo"}},
			keywords: []string{"sunset"},
			want:     0,
		},
		{
			name:     "blank tag beside a real one",
			item:     media.Item{Path: "a.jpg", Tags: []string{"", "portrait"}},
			keywords: []string{"staff"},
			want:     7,
		},
		{
			name:     "no keywords",
			item:     media.Item{Path: "a.jpg", Tags: []string{"logo"}},
			keywords: nil,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			got := Score(&item, tt.keywords)
			if got != tt.want {
				t.Errorf("Score(%s, %v) = %d, want %d", tt.item.Path, tt.keywords, got, tt.want)
			}
			if again := Score(&item, tt.keywords); again != got {
				t.Errorf("Score not deterministic: %d then %d", got, again)
			}
		})
	}
}

func TestScoreKeywordOrderIndependent(t *testing.T) {
	item := &media.Item{Path: "team/staff2.jpg", Caption: "our team", Tags: []string{"person", "portrait", "staff", "team"}}
	a := Score(item, []string{"team", "staff", "bread"})
	b := Score(item, []string{"bread", "staff", "team"})
	if a != b {
		t.Errorf("Score depends on keyword order: %d vs %d", a, b)
	}
}

func TestScoreAll(t *testing.T) {
	h := tagging.NewHeuristicTagger(nil)
	items := []*media.Item{
		{Path: "library/sourdough.jpg"},
		{Path: "library/staff1.jpg"},
		{Path: "library/staff2.jpg", Tags: []string{"preset"}},
	}

	got := ScoreAll(context.Background(), h, items, []string{"pick", "photos", "staff"})
	if len(got) != 3 {
		t.Fatalf("ScoreAll returned %d candidates, want 3", len(got))
	}

	want := []Candidate{
		{Path: "library/sourdough.jpg", Score: 1},
		{Path: "library/staff1.jpg", Score: 20},
		{Path: "library/staff2.jpg", Score: 3},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(items[0].Tags) == 0 {
		t.Error("ScoreAll did not attach inferred tags")
	}
}
