package main

import (
	"fmt"
	"strings"

	"github.com/fpang/smart-gallery/internal/cli"
	"github.com/spf13/cobra"
)

var captionCmd = &cobra.Command{
	Use:   "caption [flags] path...",
	Short: "Write a caption with hashtags for a set of media",
	Long: `Caption infers the subjects of the given media and writes a short caption
in the requested tone (professional, casual, funny, inspirational, excited,
sarcastic) followed by up to five hashtags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCaption,
}

var tagsCmd = &cobra.Command{
	Use:   "tags path...",
	Short: "Show the tags inferred for each path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := make(map[string][]string, len(args))
		for _, p := range args {
			result[p] = current.engine.InferTags(cmd.Context(), p)
		}
		if jsonFlag {
			return printJSON(result)
		}
		for _, p := range args {
			fmt.Fprintf(out, "%s: %s\n", p, strings.Join(result[p], ", "))
		}
		return nil
	},
}

func init() {
	captionCmd.Flags().StringVarP(&toneFlag, "tone", "t", "", "Desired tone, free text (e.g. \"excited and fun\")")
}

func runCaption(cmd *cobra.Command, args []string) error {
	res, err := current.engine.GenerateCaption(cmd.Context(), args, toneFlag)
	if err != nil {
		return err
	}
	if jsonFlag {
		return printJSON(res)
	}
	fmt.Fprintln(out, res.Text)
	if len(res.Hashtags) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.FormatHashtags(res.Hashtags))
	}
	return nil
}
