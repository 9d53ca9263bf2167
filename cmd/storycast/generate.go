package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storycast/internal/story"
)

func newGenerateCommand(cctx *commandContext) *cobra.Command {
	var styleFlag string
	var maxTokens int

	cmd := &cobra.Command{
		Use:   "generate <subject>",
		Short: "Generate a story with the configured language model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			text, err := story.New(cfg).Generate(cmd.Context(), args[0], styleFlag, maxTokens)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&styleFlag, "style", "", "Writing style")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Token budget (defaults to config)")
	return cmd
}
