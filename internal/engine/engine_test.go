package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fpang/smart-gallery/internal/caption"
	"github.com/fpang/smart-gallery/internal/enhance"
	"github.com/fpang/smart-gallery/internal/gallery"
	"github.com/fpang/smart-gallery/internal/media"
	"github.com/fpang/smart-gallery/internal/metrics"
	"github.com/fpang/smart-gallery/internal/prompt"
	"github.com/fpang/smart-gallery/internal/selection"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	repo, err := gallery.NewFileRepository(filepath.Join(t.TempDir(), "galleries"))
	if err != nil {
		t.Fatalf("NewFileRepository() error = %v", err)
	}
	opts.Store = gallery.NewStore(repo)
	if opts.Rand == nil {
		opts.Rand = caption.NewRand(42)
	}
	return New(opts)
}

var library = []string{"library/sourdough.jpg", "library/staff1.jpg", "library/staff2.jpg"}

func TestGenerateGalleryStaffScenario(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.GenerateGallery(context.Background(), library, "pick 2 photos of staff", false)
	if err != nil {
		t.Fatalf("GenerateGallery() error = %v", err)
	}

	if !reflect.DeepEqual(res.Keywords, []string{"pick", "photos", "staff"}) {
		t.Errorf("Keywords = %v", res.Keywords)
	}
	if res.Count == nil || *res.Count != 2 {
		t.Errorf("Count = %v, want 2", res.Count)
	}
	want := []string{"library/staff1.jpg", "library/staff2.jpg"}
	if !reflect.DeepEqual(res.Selected, want) {
		t.Errorf("Selected = %v, want %v", res.Selected, want)
	}
	if !reflect.DeepEqual(res.Paths, want) {
		t.Errorf("Paths = %v, want %v", res.Paths, want)
	}
	if res.AutoSelected {
		t.Error("AutoSelected = true with an explicit count")
	}
	if res.Scores[0] <= 1 || res.Scores[1] <= 1 {
		t.Errorf("Scores = %v, want staff scores above the fallback", res.Scores)
	}
}

func TestGenerateGalleryAutoSelect(t *testing.T) {
	e := newTestEngine(t, Options{})
	candidates := []string{"library/staff1.jpg", "library/croissant.jpg", "library/sourdough.jpg"}

	res, err := e.GenerateGallery(context.Background(), candidates, "bread", false)
	if err != nil {
		t.Fatalf("GenerateGallery() error = %v", err)
	}
	if !res.AutoSelected {
		t.Error("AutoSelected = false without a count")
	}
	want := []string{"library/sourdough.jpg", "library/croissant.jpg"}
	if !reflect.DeepEqual(res.Selected, want) {
		t.Errorf("Selected = %v, want %v", res.Selected, want)
	}
}

func TestGenerateGalleryErrors(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	if _, err := e.GenerateGallery(ctx, library, "the of a", false); !errors.Is(err, prompt.ErrNoKeywords) {
		t.Errorf("vague prompt error = %v, want ErrNoKeywords", err)
	}
	if _, err := e.GenerateGallery(ctx, []string{"library/logo.png"}, "sunset beach", false); !errors.Is(err, selection.ErrNoMatches) {
		t.Errorf("unmatched prompt error = %v, want ErrNoMatches", err)
	}
	if _, err := e.GenerateGallery(ctx, nil, "bread", false); !errors.Is(err, selection.ErrNoCandidates) {
		t.Errorf("empty library error = %v, want ErrNoCandidates", err)
	}
}

func TestGenerateGalleryEnhance(t *testing.T) {
	enh := enhance.EnhancerFunc(func(_ context.Context, path string) (string, error) {
		if strings.Contains(path, "staff2") {
			return "", errors.New("boom")
		}
		return strings.Replace(path, "library/", "enhanced/", 1), nil
	})
	e := newTestEngine(t, Options{Enhancer: enh})

	res, err := e.GenerateGallery(context.Background(), library, "pick 2 photos of staff", true)
	if err != nil {
		t.Fatalf("GenerateGallery() error = %v", err)
	}
	want := []string{"enhanced/staff1.jpg", "library/staff2.jpg"}
	if !reflect.DeepEqual(res.Paths, want) {
		t.Errorf("Paths = %v, want %v", res.Paths, want)
	}
	if len(res.Enhancement.Failed) != 1 {
		t.Errorf("Failed = %v, want one failure", res.Enhancement.Failed)
	}
}

func TestGenerateFromItemsUsesCaptions(t *testing.T) {
	e := newTestEngine(t, Options{})
	items := []*media.Item{
		{Path: "library/IMG_0001.jpg", Caption: "Grand opening ribbon cutting"},
		{Path: "library/IMG_0002.jpg"},
	}
	res, err := e.GenerateFromItems(context.Background(), items, "ribbon", false)
	if err != nil {
		t.Fatalf("GenerateFromItems() error = %v", err)
	}
	if !reflect.DeepEqual(res.Selected, []string{"library/IMG_0001.jpg"}) {
		t.Errorf("Selected = %v", res.Selected)
	}
}

func TestGenerateEmitsMetrics(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(t, Options{Metrics: metrics.NewEmitter(&buf, "")})

	e.GenerateGallery(context.Background(), library, "pick 2 photos of staff", false)
	e.GenerateGallery(context.Background(), library, "the", false)
	e.GenerateCaption(context.Background(), library[:1], "excited")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d EMF lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"SelectedCount":2`) || !strings.Contains(lines[0], `"outcome":"ok"`) {
		t.Errorf("generate line = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"outcome":"no_keywords"`) {
		t.Errorf("parse error line = %s", lines[1])
	}
	if !strings.Contains(lines[2], `"Operation":"GenerateCaption"`) {
		t.Errorf("caption line = %s", lines[2])
	}
}

func TestGenerateCaption(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.GenerateCaption(context.Background(), []string{"library/sourdough.jpg"}, "excited")
	if err != nil {
		t.Fatalf("GenerateCaption() error = %v", err)
	}
	if !strings.Contains(res.Text, "excited") {
		t.Errorf("Text = %q", res.Text)
	}
	found := false
	for _, h := range res.Hashtags {
		if h == "#BakingLove" || h == "#Foodie" {
			found = true
		}
	}
	if !found || len(res.Hashtags) > caption.MaxHashtags {
		t.Errorf("Hashtags = %v", res.Hashtags)
	}

	if _, err := e.GenerateCaption(context.Background(), nil, "excited"); !errors.Is(err, caption.ErrNoMedia) {
		t.Errorf("empty paths error = %v, want ErrNoMedia", err)
	}
}

func TestGalleryLifecycle(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	g, err := e.SaveGallery(ctx, "Team", library[1:], "Meet the team")
	if err != nil {
		t.Fatalf("SaveGallery() error = %v", err)
	}
	if !reflect.DeepEqual(g.Tags, []string{"person", "portrait", "staff", "team"}) {
		t.Errorf("Tags = %v", g.Tags)
	}

	newCaption := "Say hi"
	ok, err := e.UpdateGallery(ctx, g.Filename(), "Our Team", &newCaption)
	if err != nil || !ok {
		t.Fatalf("UpdateGallery() = %v, %v", ok, err)
	}
	added, ok, err := e.AddMediaToGallery(ctx, g.ID, []string{"library/owner.jpg", "library/staff1.jpg"})
	if err != nil || !ok {
		t.Fatalf("AddMediaToGallery() = %v, %v", ok, err)
	}
	if added != 1 {
		t.Errorf("AddMediaToGallery() added = %d, want 1 (staff1.jpg already present)", added)
	}
	if _, ok, _ := e.AddMediaToGallery(ctx, "gallery_19990101_000000", []string{"x.jpg"}); ok {
		t.Error("AddMediaToGallery(missing) = true")
	}

	n, err := e.RemoveMediaEverywhere(ctx, "library/staff1.jpg")
	if err != nil || n != 1 {
		t.Fatalf("RemoveMediaEverywhere() = %d, %v", n, err)
	}

	list, err := e.ListGalleries(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListGalleries() = %v, %v", list, err)
	}
	got := list[0]
	if got.Name != "Our Team" || got.Caption != "Say hi" {
		t.Errorf("gallery = %+v", got)
	}
	if !reflect.DeepEqual(got.MediaPaths, []string{"library/staff2.jpg", "library/owner.jpg"}) {
		t.Errorf("MediaPaths = %v", got.MediaPaths)
	}

	ok, err = e.DeleteGallery(ctx, g.ID)
	if err != nil || !ok {
		t.Errorf("DeleteGallery() = %v, %v", ok, err)
	}
	if got, _ := e.GetGallery(ctx, g.ID); got != nil {
		t.Errorf("GetGallery after delete = %+v", got)
	}
}

func TestDeleteMedia(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	dir := t.TempDir()
	file := filepath.Join(dir, "oven.jpg")
	if err := os.WriteFile(file, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := e.SaveGallery(ctx, "A", []string{file, "library/mural.jpg"}, ""); err != nil {
		t.Fatalf("SaveGallery() error = %v", err)
	}

	n, err := e.DeleteMedia(ctx, file)
	if err != nil || n != 1 {
		t.Fatalf("DeleteMedia() = %d, %v", n, err)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Errorf("file still exists: %v", err)
	}

	list, _ := e.ListGalleries(ctx)
	if len(list) != 1 || list[0].Contains(file) {
		t.Errorf("galleries after DeleteMedia = %+v", list)
	}

	// Deleting again only cleans references, of which there are none.
	if n, err := e.DeleteMedia(ctx, file); err != nil || n != 0 {
		t.Errorf("second DeleteMedia() = %d, %v", n, err)
	}
}
