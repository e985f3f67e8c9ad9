package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsImage(t *testing.T) {
	tests := []struct {
		ext      string
		expected bool
	}{
		{".jpg", true},
		{".JPG", true},
		{".jpeg", true},
		{".png", true},
		{".heic", true},
		{".gif", true},
		{".mp4", false},
		{".txt", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := IsImage(tt.ext); got != tt.expected {
				t.Errorf("IsImage(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestIsVideo(t *testing.T) {
	tests := []struct {
		ext      string
		expected bool
	}{
		{".mp4", true},
		{".MOV", true},
		{".webm", true},
		{".jpg", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := IsVideo(tt.ext); got != tt.expected {
				t.Errorf("IsVideo(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/b/photo.JPG", "image/jpeg"},
		{"clip.mov", "video/quicktime"},
		{"menu.pdf", "application/pdf"},
		{"notes.xyz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := MIMEType(tt.path); got != tt.want {
				t.Errorf("MIMEType(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("not really media"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScanLibrary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sourdough.jpg"))
	writeFile(t, filepath.Join(root, "b_staff.png"))
	writeFile(t, filepath.Join(root, "clips", "opening.mp4"))
	writeFile(t, filepath.Join(root, "finished", "sourdough_enhanced.jpg"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	lib, err := ScanLibrary(root, ScanOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(lib[CategoryPhoto]); got != 2 {
		t.Errorf("photos = %d, want 2", got)
	}
	if got := len(lib[CategoryVideo]); got != 1 {
		t.Errorf("videos = %d, want 1", got)
	}
	if got := len(lib[CategoryFinished]); got != 1 {
		t.Errorf("finished = %d, want 1", got)
	}
	if lib.Len() != 4 {
		t.Errorf("Len() = %d, want 4", lib.Len())
	}

	photos := lib[CategoryPhoto]
	if filepath.Base(photos[0]) != "b_staff.png" || filepath.Base(photos[1]) != "sourdough.jpg" {
		t.Errorf("photos not sorted: %v", photos)
	}

	all := lib.Paths()
	if filepath.Base(all[len(all)-1]) != "sourdough_enhanced.jpg" {
		t.Errorf("finished media should enumerate last, got %v", all)
	}
	if !lib.Contains(photos[0]) {
		t.Errorf("Contains(%q) = false, want true", photos[0])
	}
}

func TestScanLibraryLimitAndDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"))
	writeFile(t, filepath.Join(root, "b.jpg"))
	writeFile(t, filepath.Join(root, "nested", "c.jpg"))

	lib, err := ScanLibrary(root, ScanOptions{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lib.Len() != 1 {
		t.Errorf("Len() with limit = %d, want 1", lib.Len())
	}

	lib, err = ScanLibrary(root, ScanOptions{MaxDepth: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lib.Len() != 2 {
		t.Errorf("Len() with max depth = %d, want 2", lib.Len())
	}
}

func TestScanLibraryMissingDirectory(t *testing.T) {
	if _, err := ScanLibrary(filepath.Join(t.TempDir(), "missing"), ScanOptions{}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoadItem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bread.jpg")
	writeFile(t, path)

	item, err := LoadItem(path, CategoryPhoto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Size != int64(len("not really media")) {
		t.Errorf("Size = %d, want %d", item.Size, len("not really media"))
	}
	if !item.TakenAt.IsZero() {
		t.Errorf("TakenAt = %v, want zero for a file without EXIF", item.TakenAt)
	}
	if item.Filename() != "bread.jpg" {
		t.Errorf("Filename() = %q, want bread.jpg", item.Filename())
	}

	if _, err := LoadItem(filepath.Dir(path), CategoryPhoto); err == nil {
		t.Error("expected error when loading a directory")
	}
}
