// Command catalogctl manages the movie and TV show catalog from a terminal.
package main

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iliyamo/movie-show-catalog/internal/client"
	"github.com/iliyamo/movie-show-catalog/internal/logging"
)

var (
	apiURL     string
	jsonOutput bool
	timeout    time.Duration
)

var (
	okLabel    = color.New(color.FgGreen)
	errorLabel = color.New(color.FgRed)
	headLabel  = color.New(color.FgHiWhite, color.Bold)
	dimLabel   = color.New(color.Faint)
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl [command] [flags]",
	Short: "Command line client for the movie and TV show catalog",
	Long: `catalogctl lists, searches, creates, edits and deletes catalog entries
through the catalog HTTP API.

Examples:
  # Browse all TV shows page by page
  catalogctl browse --type "TV Show"

  # Search titles, directors and genres
  catalogctl list --search nolan

  # Add a film
  catalogctl add --title Heat --type Movie --director "Michael Mann" --year 1995

  # Clear the genre of entry 7
  catalogctl edit 7 --clear genre`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		_, err := logging.Init(logging.Options{Level: os.Getenv("LOG_LEVEL"), Console: true})
		return err
	},
}

func init() {
	def := os.Getenv("CATALOG_API_URL")
	if def == "" {
		def = client.DefaultBaseURL
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", def, "catalog API base URL (env CATALOG_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "output JSON")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "per-request timeout")
	rootCmd.AddCommand(listCmd, getCmd, addCmd, editCmd, rmCmd, browseCmd)
}

func newCatalog() *client.Catalog {
	return client.NewCatalog(client.New(apiURL))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
