package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prolearn/prolearn/frontend/internal/apiclient"
	"github.com/prolearn/prolearn/frontend/internal/setup"
	"github.com/prolearn/prolearn/shared/config"
	"github.com/prolearn/prolearn/shared/logger"
)

// cli holds what every command shares. cfg is loaded before any command runs.
type cli struct {
	configFolder string
	jsonOutput   bool
	logLevel     string
	apiBaseURL   string
	cfg          *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:           "prolearn",
		Short:         "prolearn is the web frontend and command line client of the learning platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd.Flags().Changed("config"))
		},
	}

	cmd.Version = "0.0.0"
	cmd.PersistentFlags().StringVar(&c.configFolder, "config", "config", "path to folder with public.yaml and private.yaml")
	cmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level")
	cmd.PersistentFlags().StringVar(&c.apiBaseURL, "api", "", "backend base URL, overrides api_base_url")

	cmd.AddCommand(
		newServeCmd(c),
		newPostsCmd(c),
		newCommentsCmd(c),
	)

	return cmd
}

// load reads the config folder. A missing default folder falls back to built-in defaults;
// an explicitly given one must exist.
func (c *cli) load(explicit bool) error {
	cfg, err := config.Load(c.configFolder)
	if err != nil {
		if explicit {
			return err
		}
		if _, statErr := os.Stat(c.configFolder); statErr == nil {
			return err
		}
		cfg = config.Default()
	}
	if c.apiBaseURL != "" {
		cfg.Public.APIBaseURL = c.apiBaseURL
	}
	if c.logLevel != "" {
		cfg.Public.LogLevel = c.logLevel
	}
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)
	c.cfg = cfg
	return nil
}

func (c *cli) client() (*apiclient.APIClient, error) {
	if c.cfg == nil {
		return nil, errors.New("config not initialized")
	}
	client, _, err := setup.NewAPIClient(c.cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot build backend client: %w", err)
	}
	return client, nil
}

func (c *cli) withClient(fn func(*apiclient.APIClient) error) error {
	client, err := c.client()
	if err != nil {
		return err
	}
	return fn(client)
}
