package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storycast/internal/publish"
)

func newPublishCommand(cctx *commandContext) *cobra.Command {
	var (
		titleFlag       string
		descriptionFlag string
		tagsFlag        string
		visibilityFlag  string
	)

	cmd := &cobra.Command{
		Use:   "publish <video-file>",
		Short: "Upload a finished video to YouTube",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tags []string
			for _, tag := range strings.Split(tagsFlag, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					tags = append(tags, tag)
				}
			}

			_, url, err := publish.NewUploader().Upload(cmd.Context(), args[0], publish.Metadata{
				Title:       titleFlag,
				Description: descriptionFlag,
				Tags:        tags,
				Visibility:  visibilityFlag,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}

	cmd.Flags().StringVar(&titleFlag, "title", "", "Video title (required)")
	cmd.Flags().StringVar(&descriptionFlag, "description", "", "Video description")
	cmd.Flags().StringVar(&tagsFlag, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar(&visibilityFlag, "visibility", "unlisted", "public, unlisted or private")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
