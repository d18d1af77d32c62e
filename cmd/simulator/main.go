// Command simulator drives a running blog server for manual testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:          "simulator",
		Short:        "Development tool that exercises a running server",
		SilenceUsage: true,
	}

	defaultURL := "http://localhost:3000"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		defaultURL = envURL
	}
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "backend API URL (env API_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "smoke",
		Short: "Register, login, logout and verify the revoked token is rejected",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println("=== Session smoke test ===")
			if err := RunSmoke(NewAPIClient(apiURL), cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("smoke test failed: %w", err)
			}
			cmd.Println("All checks passed")
			return nil
		},
	})

	var count int
	populate := &cobra.Command{
		Use:   "populate",
		Short: "Create users that each publish a post",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 || count > 100 {
				return fmt.Errorf("--count must be between 1 and 100")
			}
			cmd.Printf("Adding %d writers:\n", count)
			return Populate(NewAPIClient(apiURL), count, cmd.OutOrStdout())
		},
	}
	populate.Flags().IntVar(&count, "count", 5, "number of users to create")
	cmd.AddCommand(populate)

	return cmd
}
