package main

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"storycast/internal/config"
)

// commandContext carries flag state and the lazily loaded config shared by
// every subcommand.
type commandContext struct {
	configPath string
	cfg        *config.Config
}

// ensureConfig loads the configured yaml file once. A missing default config
// file falls back to built-in defaults; an explicitly given path must exist.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := c.configPath
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "storycast",
		Short:         "Turn a text story into a narrated, subtitled video",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
