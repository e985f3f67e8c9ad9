// Package media models the items of a media library and the file-type
// tables used to classify them.
package media

import (
	"path/filepath"
	"strings"
	"time"
)

// Category is the library bucket an item was discovered in.
type Category string

const (
	CategoryPhoto    Category = "photo"
	CategoryVideo    Category = "video"
	CategoryFinished Category = "finished"
)

// SupportedImageExtensions maps image file extensions to MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
}

// SupportedVideoExtensions maps video file extensions to MIME types.
var SupportedVideoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".m4v":  "video/x-m4v",
}

// DocumentExtensions are non-media files that may still sit in a library.
var DocumentExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// Item is a single media file known to the library. Path is the stable key.
type Item struct {
	Path     string
	Category Category
	Size     int64
	Duration time.Duration // videos only, zero when unknown
	TakenAt  time.Time     // from EXIF when available
	Caption  string
	Tags     []string
}

// Filename returns the base name of the item's path.
func (i *Item) Filename() string {
	return filepath.Base(i.Path)
}

// IsImage returns true if the file extension corresponds to an image.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// IsVideo returns true if the file extension corresponds to a video.
func IsVideo(ext string) bool {
	_, ok := SupportedVideoExtensions[strings.ToLower(ext)]
	return ok
}

// IsDocument returns true for document extensions.
func IsDocument(ext string) bool {
	_, ok := DocumentExtensions[strings.ToLower(ext)]
	return ok
}

// IsSupported returns true if the file extension is supported (image or video).
func IsSupported(ext string) bool {
	return IsImage(ext) || IsVideo(ext)
}

// IsImagePath classifies a full path by its extension.
func IsImagePath(path string) bool {
	return IsImage(filepath.Ext(path))
}

// IsVideoPath classifies a full path by its extension.
func IsVideoPath(path string) bool {
	return IsVideo(filepath.Ext(path))
}

// MIMEType returns the MIME type for a path, or "" for unknown extensions.
func MIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if m, ok := SupportedImageExtensions[ext]; ok {
		return m
	}
	if m, ok := SupportedVideoExtensions[ext]; ok {
		return m
	}
	return DocumentExtensions[ext]
}
