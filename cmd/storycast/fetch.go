package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storycast/internal/textsource"
)

func newFetchCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <reddit-post-url>",
		Short: "Fetch a story's title and body from a reddit post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := textsource.New()
			if err != nil {
				return err
			}
			title, body, err := src.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if title != "" {
				fmt.Fprintln(cmd.OutOrStdout(), title)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}
}
