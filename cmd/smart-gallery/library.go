package main

import (
	"fmt"
	"path/filepath"

	"github.com/fpang/smart-gallery/internal/cli"
	"github.com/fpang/smart-gallery/internal/media"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var detailsFlag bool

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List the media library by category",
	Args:  cobra.NoArgs,
	RunE:  runLibrary,
}

func init() {
	addLibraryFlags(libraryCmd)
	libraryCmd.Flags().BoolVar(&detailsFlag, "details", false, "Show size, capture date and video duration")
}

type libraryEntry struct {
	Path     string `json:"path"`
	Size     int64  `json:"size,omitempty"`
	TakenAt  string `json:"taken_at,omitempty"`
	Duration string `json:"duration,omitempty"`
}

func runLibrary(cmd *cobra.Command, _ []string) error {
	dir, lib, err := scanLibrary(cmd)
	if err != nil {
		return err
	}

	listing := make(map[media.Category][]libraryEntry, len(lib))
	for _, c := range []media.Category{media.CategoryPhoto, media.CategoryVideo, media.CategoryFinished} {
		for _, p := range lib[c] {
			listing[c] = append(listing[c], describe(p, c))
		}
	}

	if jsonFlag {
		return printJSON(listing)
	}

	fmt.Fprintf(out, "Library: %s (%d items)\n", dir, lib.Len())
	for _, c := range []media.Category{media.CategoryPhoto, media.CategoryVideo, media.CategoryFinished} {
		if len(listing[c]) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s (%d)\n", c, len(listing[c]))
		for _, e := range listing[c] {
			name := e.Path
			if rel, err := filepath.Rel(dir, e.Path); err == nil {
				name = rel
			}
			line := "  " + name
			if e.Size > 0 {
				line += " (" + cli.FormatSize(e.Size) + ")"
			}
			if e.Duration != "" {
				line += " " + e.Duration
			}
			if e.TakenAt != "" {
				line += " taken " + e.TakenAt
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

func describe(path string, c media.Category) libraryEntry {
	e := libraryEntry{Path: path}
	if !detailsFlag {
		return e
	}
	item, err := media.LoadItem(path, c)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load media details")
		return e
	}
	e.Size = item.Size
	if !item.TakenAt.IsZero() {
		e.TakenAt = item.TakenAt.Format("2006-01-02 15:04")
	}
	if item.Duration > 0 {
		e.Duration = cli.FormatDurationShort(item.Duration)
	}
	return e
}
