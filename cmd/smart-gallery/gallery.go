package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fpang/smart-gallery/internal/cli"
	"github.com/fpang/smart-gallery/internal/gallery"
	"github.com/spf13/cobra"
)

// Gallery flags
var (
	galleryNameFlag    string
	galleryCaptionFlag string
	yesFlag            bool
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage saved galleries",
}

var gallerySaveCmd = &cobra.Command{
	Use:   "save NAME path...",
	Short: "Save media paths as a new gallery",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := current.engine.SaveGallery(cmd.Context(), args[0], args[1:], galleryCaptionFlag)
		if err != nil {
			return err
		}
		if jsonFlag {
			return printGallery(g)
		}
		fmt.Fprintf(out, "Saved gallery %s (%d media)\n", g.ID, len(g.MediaPaths))
		return nil
	},
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List galleries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := current.engine.ListGalleries(cmd.Context())
		if err != nil {
			return err
		}
		if jsonFlag {
			docs := make([]any, 0, len(list))
			for _, g := range list {
				docs = append(docs, galleryJSON(g))
			}
			return printJSON(docs)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No galleries yet.")
			return nil
		}
		for _, g := range list {
			fmt.Fprintf(out, "%s  %-30s %3d media  %s\n",
				g.ID, g.Name, len(g.MediaPaths), g.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var galleryShowCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Show one gallery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := current.engine.GetGallery(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if g == nil {
			return notFound(args[0])
		}
		if jsonFlag {
			return printGallery(g)
		}
		fmt.Fprintf(out, "%s: %s\n", g.ID, g.Name)
		fmt.Fprintf(out, "Created: %s  Updated: %s\n",
			g.CreatedAt.Local().Format("2006-01-02 15:04:05"), g.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		if g.Caption != "" {
			fmt.Fprintf(out, "Caption: %s\n", g.Caption)
		}
		if len(g.Tags) > 0 {
			fmt.Fprintf(out, "Tags: %s\n", strings.Join(g.Tags, ", "))
		}
		for i, p := range g.MediaPaths {
			fmt.Fprintf(out, "%3d. %s\n", i+1, p)
		}
		return nil
	},
}

var galleryUpdateCmd = &cobra.Command{
	Use:   "update KEY",
	Short: "Rename a gallery or change its caption",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var captionText *string
		if cmd.Flags().Changed("caption") {
			captionText = &galleryCaptionFlag
		}
		ok, err := current.engine.UpdateGallery(cmd.Context(), args[0], galleryNameFlag, captionText)
		if err != nil {
			return err
		}
		if !ok {
			return notFound(args[0])
		}
		fmt.Fprintf(out, "Updated %s\n", args[0])
		return nil
	},
}

var galleryAddMediaCmd = &cobra.Command{
	Use:   "add-media KEY path...",
	Short: "Append media to a gallery",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		added, ok, err := current.engine.AddMediaToGallery(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		if !ok {
			return notFound(args[0])
		}
		fmt.Fprintf(out, "Added %d path(s) to %s\n", added, args[0])
		return nil
	},
}

var galleryRemoveMediaCmd = &cobra.Command{
	Use:   "remove-media path",
	Short: "Remove a media path from every gallery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := current.engine.RemoveMediaEverywhere(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %s from %d galler%s\n", args[0], n, plural(n))
		return nil
	},
}

var galleryDeleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Delete a gallery (its media files are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !yesFlag && !cli.Confirm(os.Stdin, "Delete gallery "+args[0]+"?") {
			return nil
		}
		ok, err := current.engine.DeleteGallery(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return notFound(args[0])
		}
		fmt.Fprintf(out, "Deleted %s\n", args[0])
		return nil
	},
}

var deleteMediaCmd = &cobra.Command{
	Use:   "delete-media path",
	Short: "Delete a media file and remove it from every gallery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !yesFlag && !cli.Confirm(os.Stdin, "Delete "+args[0]+" from disk?") {
			return nil
		}
		n, err := current.engine.DeleteMedia(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s; removed from %d galler%s\n", args[0], n, plural(n))
		return nil
	},
}

func init() {
	gallerySaveCmd.Flags().StringVarP(&galleryCaptionFlag, "caption", "c", "", "Gallery caption")
	galleryUpdateCmd.Flags().StringVarP(&galleryNameFlag, "name", "n", "", "New name (default: keep)")
	galleryUpdateCmd.Flags().StringVarP(&galleryCaptionFlag, "caption", "c", "", "New caption (default: keep)")
	galleryDeleteCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Do not ask for confirmation")
	deleteMediaCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Do not ask for confirmation")

	galleryCmd.AddCommand(gallerySaveCmd, galleryListCmd, galleryShowCmd, galleryUpdateCmd,
		galleryAddMediaCmd, galleryRemoveMediaCmd, galleryDeleteCmd)
}

func notFound(key string) error {
	return fmt.Errorf("gallery %s not found", key)
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// galleryJSON renders a gallery in its stored document form.
func galleryJSON(g *gallery.Gallery) any {
	data, err := gallery.Encode(g)
	if err != nil {
		return map[string]string{"id": g.ID, "error": err.Error()}
	}
	return json.RawMessage(data)
}

func printGallery(g *gallery.Gallery) error {
	return printJSON(galleryJSON(g))
}

