package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"storycast/internal/jobs"
	"storycast/internal/media"
	"storycast/internal/pipeline"
	"storycast/internal/speech"
	"storycast/internal/story"
	"storycast/internal/textsource"
	"storycast/internal/types"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var (
		textFlag    string
		fileFlag    string
		urlFlag     string
		subjectFlag string
		styleFlag   string
		videoFlag   string
		voiceFlag   string
		maxWords    int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: speech, narration merge, captions, burn-in",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			title, text, err := resolveStory(cmd, cctx, textFlag, fileFlag, urlFlag, subjectFlag, styleFlag)
			if err != nil {
				return err
			}

			voice := voiceFlag
			if voice == "" {
				voice = cfg.Speech.Voice
			}
			words := maxWords
			if !cmd.Flags().Changed("max-words") {
				words = cfg.Captions.MaxWordsPerCue
			}

			job := &types.Job{
				StoryTitle:      title,
				StoryText:       text,
				Voice:           voice,
				BackgroundVideo: videoFlag,
				Style:           cfg.CaptionStyle(),
				MaxWordsPerCue:  words,
			}

			// The lock file lives inside the output root, so the layout
			// must exist before the runner can lock it.
			layout := jobs.NewLayout(cfg.Paths.OutputRoot)
			if err := layout.Ensure(); err != nil {
				return fmt.Errorf("output layout: %w", err)
			}
			orch := pipeline.New(cfg,
				layout,
				speech.NewCommandSynthesizer(cfg),
				speech.NewWhisperTranscriber(cfg),
				media.NewComposer(cfg),
			)
			runner := pipeline.NewRunner(orch.Run, filepath.Join(cfg.Paths.OutputRoot, ".storycast.lock"))

			done, err := runner.Start(cmd.Context(), job)
			if err != nil {
				return err
			}
			completion := <-done
			if completion.Err != nil {
				if completion.Result != nil && completion.Result.FailedStage != "" {
					return fmt.Errorf("job %s failed at the %s stage: %w",
						completion.Result.JobID, completion.Result.FailedStage, completion.Result.Err)
				}
				return completion.Err
			}

			log.Printf("final video: %s", completion.Result.FinalFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&textFlag, "text", "", "Story text to narrate")
	cmd.Flags().StringVar(&fileFlag, "text-file", "", "File containing the story text")
	cmd.Flags().StringVar(&urlFlag, "url", "", "Reddit post URL to fetch the story from")
	cmd.Flags().StringVar(&subjectFlag, "subject", "", "Generate a story about this subject")
	cmd.Flags().StringVar(&styleFlag, "style", "", "Writing style for generated stories")
	cmd.Flags().StringVar(&videoFlag, "video", "", "Background video file (required)")
	cmd.Flags().StringVar(&voiceFlag, "voice", "", "TTS voice (defaults to config)")
	cmd.Flags().IntVar(&maxWords, "max-words", 0, "Max words per caption cue (0 = one cue per transcript segment)")
	_ = cmd.MarkFlagRequired("video")

	return cmd
}

// resolveStory picks exactly one story source: direct text, a text file, a
// fetched URL, or a generated subject.
func resolveStory(cmd *cobra.Command, cctx *commandContext, text, file, url, subject, style string) (string, string, error) {
	set := 0
	for _, v := range []string{text, file, url, subject} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return "", "", fmt.Errorf("one of --text, --text-file, --url or --subject is required")
	}
	if set > 1 {
		return "", "", fmt.Errorf("--text, --text-file, --url and --subject are mutually exclusive")
	}

	switch {
	case text != "":
		return "", text, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("read story file: %w", err)
		}
		return "", string(data), nil
	case url != "":
		src, err := textsource.New()
		if err != nil {
			return "", "", err
		}
		return fetchStory(cmd, src, url)
	default:
		cfg, err := cctx.ensureConfig()
		if err != nil {
			return "", "", err
		}
		body, err := story.New(cfg).Generate(cmd.Context(), subject, style, 0)
		if err != nil {
			return "", "", err
		}
		return subject, body, nil
	}
}

func fetchStory(cmd *cobra.Command, src *textsource.Source, url string) (string, string, error) {
	title, body, err := src.Fetch(cmd.Context(), url)
	if err != nil {
		return "", "", err
	}
	return title, body, nil
}
