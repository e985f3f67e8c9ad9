package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fpang/smart-gallery/internal/caption"
	"github.com/fpang/smart-gallery/internal/cli"
	"github.com/fpang/smart-gallery/internal/engine"
	"github.com/fpang/smart-gallery/internal/media"
	"github.com/fpang/smart-gallery/internal/prompt"
	"github.com/fpang/smart-gallery/internal/selection"
	"github.com/spf13/cobra"
)

// Library flags, shared by generate and library.
var (
	directoryFlag string
	maxDepthFlag  int
	limitFlag     int
)

// Generate flags
var (
	enhanceFlag bool
	saveFlag    string
	toneFlag    string
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Select the library media that best match a prompt",
	Long: `Generate scans the library, scores every item against the keywords of the
prompt and returns the best matches. A number in the prompt ("pick 3 photos")
caps the selection; without one every match is returned.

With --save the selection is stored as a named gallery, captioned in the
--tone given (default: a neutral caption).`,
	Args: cobra.ArbitraryArgs,
	RunE: runGenerate,
}

func init() {
	addLibraryFlags(generateCmd)
	generateCmd.Flags().BoolVar(&enhanceFlag, "enhance", false, "Enhance the selected images")
	generateCmd.Flags().StringVar(&saveFlag, "save", "", "Save the selection as a gallery with this name")
	generateCmd.Flags().StringVar(&toneFlag, "tone", "", "Caption tone for --save (e.g. excited, funny)")
}

func addLibraryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&directoryFlag, "directory", "d", "", "Library directory (default: library.dir from config)")
	cmd.Flags().IntVar(&maxDepthFlag, "max-depth", 0, "Maximum recursion depth (0 = config value or unlimited)")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum media items to scan (0 = config value or unlimited)")
}

// scanLibrary resolves the library directory and scans it.
func scanLibrary(cmd *cobra.Command) (string, media.Library, error) {
	cfg := current.cfg
	dir := cfg.Library.Dir
	if dir == "" {
		dir = cli.PromptForDirectory()
	}
	dir = cli.ValidateAndResolveDirectory(dir)

	opts := media.ScanOptions{MaxDepth: cfg.Library.MaxDepth, Limit: cfg.Library.Limit}
	if cmd.Flags().Changed("max-depth") {
		opts.MaxDepth = maxDepthFlag
	}
	if cmd.Flags().Changed("limit") {
		opts.Limit = limitFlag
	}
	lib, err := media.ScanLibrary(dir, opts)
	return dir, lib, err
}

type generateOutput struct {
	*engine.GenerateResult
	Gallery string          `json:"gallery,omitempty"`
	Caption *caption.Result `json:"caption,omitempty"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	promptText := strings.TrimSpace(strings.Join(args, " "))
	if promptText == "" {
		return errors.New("a prompt is required, e.g. smart-gallery generate \"pick 3 photos of bread\"")
	}

	dir, lib, err := scanLibrary(cmd)
	if err != nil {
		return err
	}

	res, err := current.engine.GenerateGallery(ctx, lib.Paths(), promptText, enhanceFlag)
	switch {
	case errors.Is(err, prompt.ErrNoKeywords):
		return fmt.Errorf("%w: try naming what the photos should show", err)
	case errors.Is(err, selection.ErrNoCandidates):
		return fmt.Errorf("%w in %s", err, dir)
	case err != nil:
		return err
	}

	result := generateOutput{GenerateResult: res}
	if saveFlag != "" {
		capRes, err := current.engine.GenerateCaption(ctx, res.Paths, toneFlag)
		if err != nil {
			return err
		}
		text := capRes.Text
		if len(capRes.Hashtags) > 0 {
			text += "\n\n" + cli.FormatHashtags(capRes.Hashtags)
		}
		g, err := current.engine.SaveGallery(ctx, saveFlag, res.Paths, text)
		if err != nil {
			return err
		}
		result.Gallery = g.ID
		result.Caption = capRes
	}

	if jsonFlag {
		return printJSON(result)
	}

	fmt.Fprintf(out, "Keywords: %s\n", strings.Join(res.Keywords, ", "))
	if res.AutoSelected {
		fmt.Fprintln(out, "No count in the prompt, showing every match.")
	}
	for i, p := range res.Paths {
		fmt.Fprintf(out, "%3d. %s (score %d)\n", i+1, p, res.Scores[i])
	}
	if r := res.Enhancement; r != nil && enhanceFlag {
		fmt.Fprintf(out, "Enhanced %d, failed %d, skipped %d\n", len(r.Enhanced), len(r.Failed), len(r.Skipped))
	}
	if result.Gallery != "" {
		fmt.Fprintf(out, "Saved gallery %s\n", result.Gallery)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
