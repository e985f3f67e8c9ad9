// Package gallery persists named, ordered collections of media paths.
//
// Every backend stores the same JSON document per gallery:
//
//	{"name": ..., "created_at": ..., "updated_at": ..., "media_paths": [...], "caption": ..., "tags": [...]}
//
// The record key is the creation time formatted as gallery_YYYYMMDD_HHMMSS,
// and the file-based backend stores it as <key>.json. "tags" is omitted when
// empty so tag-less records match the historic format exactly.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	keyPrefix    = "gallery_"
	keyLayout    = "20060102_150405"
	fileExt      = ".json"
	naiveISO8601 = "2006-01-02T15:04:05.999999"
	// timeLayout is what records are written with: local time, no offset,
	// always six fractional digits.
	timeLayout = "2006-01-02T15:04:05.000000"
)

// ErrInvalidKey is returned for keys that cannot name a record.
var ErrInvalidKey = errors.New("invalid gallery key")

// Gallery is a persisted collection.
type Gallery struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	MediaPaths []string
	Caption    string
	Tags       []string
}

// Filename is the storage handle of the gallery in the file-based backend.
func (g *Gallery) Filename() string {
	return g.ID + fileExt
}

// Contains reports whether path is one of the gallery's media paths.
func (g *Gallery) Contains(path string) bool {
	for _, p := range g.MediaPaths {
		if p == path {
			return true
		}
	}
	return false
}

// Repository stores gallery records by key. Get returns (nil, nil) when the
// record does not exist. Put replaces the whole record. Delete of a missing
// record is not an error. List skips records it cannot parse.
type Repository interface {
	Get(ctx context.Context, id string) (*Gallery, error)
	List(ctx context.Context) ([]*Gallery, error)
	Put(ctx context.Context, g *Gallery) error
	Delete(ctx context.Context, id string) error
}

// KeyFor returns the record key for a creation time.
func KeyFor(t time.Time) string {
	return keyPrefix + t.Format(keyLayout)
}

// NormalizeKey accepts a key with or without the .json extension and
// rejects anything that could escape the store.
func NormalizeKey(key string) (string, error) {
	id := strings.TrimSuffix(strings.TrimSpace(key), fileExt)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return id, nil
}

// document is the on-disk shape of a gallery.
type document struct {
	Name       string   `json:"name" dynamodbav:"name"`
	CreatedAt  string   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt  string   `json:"updated_at" dynamodbav:"updated_at"`
	MediaPaths []string `json:"media_paths" dynamodbav:"media_paths"`
	Caption    string   `json:"caption" dynamodbav:"caption"`
	Tags       []string `json:"tags,omitempty" dynamodbav:"tags,omitempty"`
}

func toDocument(g *Gallery) *document {
	paths := g.MediaPaths
	if paths == nil {
		paths = []string{}
	}
	return &document{
		Name:       g.Name,
		CreatedAt:  formatTime(g.CreatedAt),
		UpdatedAt:  formatTime(g.UpdatedAt),
		MediaPaths: paths,
		Caption:    g.Caption,
		Tags:       g.Tags,
	}
}

func fromDocument(id string, d *document) (*Gallery, error) {
	created, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	updated, err := parseTime(d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	return &Gallery{
		ID:         id,
		Name:       d.Name,
		CreatedAt:  created,
		UpdatedAt:  updated,
		MediaPaths: d.MediaPaths,
		Caption:    d.Caption,
		Tags:       d.Tags,
	}, nil
}

// Encode renders g as its JSON document.
func Encode(g *Gallery) ([]byte, error) {
	data, err := json.MarshalIndent(toDocument(g), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal gallery %s: %w", g.ID, err)
	}
	return data, nil
}

// Decode parses a JSON document stored under id.
func Decode(id string, data []byte) (*Gallery, error) {
	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal gallery %s: %w", id, err)
	}
	g, err := fromDocument(id, &d)
	if err != nil {
		return nil, fmt.Errorf("gallery %s: %w", id, err)
	}
	return g, nil
}

func formatTime(t time.Time) string {
	return t.In(time.Local).Format(timeLayout)
}

// parseTime accepts RFC 3339 and offset-less ISO-8601 timestamps. The
// latter are read as local time.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveISO8601, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t, nil
}
