// Package cli defines the folionotify command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"folionotify/internal/app"
	"folionotify/internal/config"
)

// ErrPassFailed is returned when a pass ends with an error outcome. The
// outcome itself has already been printed.
var ErrPassFailed = errors.New("pass failed")

const defaultConfigFile = "config.json"

type globals struct {
	configPath string
	envPath    string
}

// NewRootCmd builds the command tree. Without a subcommand the root runs one
// pass and prints its outcome.
func NewRootCmd(stdout io.Writer) *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "folionotify",
		Short:         "Watchlist news and disclosure notifier",
		Long:          "Fetches news and disclosures for a company watchlist and sends only unseen items to Telegram.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := a.Run(cmd.Context())
			fmt.Fprintln(stdout, out.String())
			if out.IsError() {
				return ErrPassFailed
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "path to config (.json, .yaml); defaults to ./config.json when present")
	root.PersistentFlags().StringVar(&g.envPath, "env", defaultEnvFile, "path to the .env file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve HTTP triggers and the optional cron tick",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := g.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				return a.Serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Clear the record of announced items",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := g.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "state reset")
				return nil
			},
		},
	)
	return root
}

func (g *globals) open(cmd *cobra.Command) (*app.App, error) {
	if _, err := loadEnv(g.envPath, cmd.Flags().Changed("env")); err != nil {
		return nil, err
	}
	sec, err := config.LoadSecrets()
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{ConfigPath: g.resolveConfig(), Secrets: sec})
}

func (g *globals) resolveConfig() string {
	if p := strings.TrimSpace(g.configPath); p != "" {
		return p
	}
	if st, err := os.Stat(defaultConfigFile); err == nil && !st.IsDir() {
		return defaultConfigFile
	}
	return ""
}
