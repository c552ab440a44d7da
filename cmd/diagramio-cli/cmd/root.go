package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"diagramio/internal/adapters/restapi"
	"diagramio/internal/config"
)

var (
	apiURL string
	client *restapi.Client
)

var rootCmd = &cobra.Command{
	Use:   "diagramio-cli",
	Short: "CLI for managing diagrams",
	Long: `diagramio-cli is a command-line interface for the diagramio backend.

It provides commands to list, create, move, delete, export, and rewrite
diagrams, and to inspect the folder hierarchy.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		client = restapi.NewClient(apiURL)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "u", config.APIURL(), "base URL of the backend")
}

// GetClient returns the initialized backend client
func GetClient() *restapi.Client {
	return client
}
