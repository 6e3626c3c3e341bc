package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eternisai/taleweaver/internal/story"
	"github.com/eternisai/taleweaver/internal/studio"
)

var (
	storyReq      studio.StoryRequest
	noAudioFlag   bool
	noImagesFlag  bool
	saveFlag      bool
	narrateReq    studio.NarrateRequest
	illustrateReq studio.IllustrateRequest
	inputFile     string
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Generate a story with narration and illustrations",
	Long: `Generate a complete story bundle and print it as JSON. Media files are written to
MEDIA_DIR.

Examples:
  taleweaver story --topic kindness --culture Indian
  taleweaver story --topic courage --culture African --language fr --no-images
  taleweaver story --topic water --culture Asian --text-provider template --save`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		audio, images := !noAudioFlag, !noImagesFlag
		storyReq.GenerateAudio = &audio
		storyReq.GenerateImages = &images

		bundle, err := service.CreateStory(ctx, storyReq)
		if err != nil {
			return err
		}

		if saveFlag {
			saved, err := service.SaveStory(ctx, studio.SaveRequest{
				Title:   bundle.Story.Artifact.Title,
				Content: bundle.Story.Artifact.Content,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), saved.Status)
		}

		return printJSON(cmd.OutOrStdout(), bundle)
	},
}

var narrateCmd = &cobra.Command{
	Use:   "narrate [text]",
	Short: "Narrate text read from an argument, --file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		narrateReq.Text = text

		service, err := newService()
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		res, err := service.Narrate(ctx, narrateReq)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var illustrateCmd = &cobra.Command{
	Use:   "illustrate [text]",
	Short: "Illustrate the scenes of a story read from an argument, --file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		illustrateReq.Content = text

		service, err := newService()
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		res, err := service.Illustrate(ctx, illustrateReq)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [culture]",
	Short: "List topic ideas for a culture",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		culture := ""
		if len(args) == 1 {
			culture = args[0]
		}
		for _, s := range story.Suggestions(culture) {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
	},
}

func init() {
	f := storyCmd.Flags()
	f.StringVarP(&storyReq.Topic, "topic", "t", "", "Story topic (required)")
	f.StringVarP(&storyReq.Culture, "culture", "c", "Indian", "Cultural background")
	f.StringVar(&storyReq.StoryType, "type", story.DefaultStoryType, "Story type")
	f.StringVarP(&storyReq.Language, "language", "l", story.DefaultLanguage, "Story language (en, hi, es, fr)")
	f.StringVar(&storyReq.TextProvider, "text-provider", "", "Pin the text provider")
	f.StringVar(&storyReq.AudioProvider, "audio-provider", "", "Pin the audio provider")
	f.StringVar(&storyReq.ImageProvider, "image-provider", "", "Pin the image provider")
	f.StringVar(&storyReq.ArtStyle, "art-style", "", "Illustration style")
	f.StringVar(&storyReq.Voice, "voice", "", "Narration voice")
	f.StringVar(&storyReq.Speed, "speed", "", "Narration speed (slow, normal, fast)")
	f.BoolVar(&storyReq.Collage, "collage", false, "Also compose the scene images into a collage")
	f.BoolVar(&noAudioFlag, "no-audio", false, "Skip narration")
	f.BoolVar(&noImagesFlag, "no-images", false, "Skip scene images")
	f.BoolVar(&saveFlag, "save", false, "Save the story text to STORIES_DIR")
	_ = storyCmd.MarkFlagRequired("topic")

	f = narrateCmd.Flags()
	f.StringVarP(&inputFile, "file", "f", "", "Read text from a file")
	f.StringVarP(&narrateReq.Language, "language", "l", "", "Narration language")
	f.StringVar(&narrateReq.Voice, "voice", "", "Narration voice")
	f.StringVar(&narrateReq.Speed, "speed", "", "Narration speed (slow, normal, fast)")
	f.StringVar(&narrateReq.Provider, "provider", "", "Pin the audio provider")

	f = illustrateCmd.Flags()
	f.StringVarP(&inputFile, "file", "f", "", "Read the story from a file")
	f.StringVarP(&illustrateReq.Topic, "topic", "t", "", "Story topic (required)")
	f.StringVarP(&illustrateReq.Culture, "culture", "c", "Indian", "Cultural background")
	f.StringVar(&illustrateReq.ArtStyle, "art-style", "", "Illustration style")
	f.StringVar(&illustrateReq.Provider, "provider", "", "Pin the image provider")
	f.BoolVar(&illustrateReq.Collage, "collage", false, "Also compose the scene images into a collage")
	_ = illustrateCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(storyCmd, narrateCmd, illustrateCmd, suggestCmd)
}

func newService() (*studio.Service, error) {
	cfg, log, store, err := setup()
	if err != nil {
		return nil, err
	}
	return studio.NewService(cfg, store, log, nil)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// readInput returns the positional argument, the --file contents or stdin, in that order.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
