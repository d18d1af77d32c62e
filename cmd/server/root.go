package main

import (
	"fmt"
	"os"

	"github.com/dom/qa-assessment/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Global flags available to all subcommands.
var envFile string

// NewRootCmd creates the root command. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Blog API with session authentication",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default ./.env if present)")

	serve := NewServeCmd()
	cmd.RunE = serve.RunE
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// flagEnv maps command flags onto the environment variables they override.
var flagEnv = map[string]string{
	"port":  "PORT",
	"store": "STORE_BACKEND",
}

// loadConfig applies flag overrides to the environment and then reads the
// configuration, so flags take precedence over both the process
// environment and the dotenv file.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	for name, key := range flagEnv {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return nil, err
		}
		if err := os.Setenv(key, value); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
