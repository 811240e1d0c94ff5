package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Sheezylodhi/Scrapper/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scrapper",
	Short: "Vehicle listing scraper with a dashboard API",
	Long: `Scrapper collects for-sale vehicle listings from marketplace sites,
extracts seller contact details from free-form descriptions, and keeps
the results in temporary and permanent Postgres stores behind a small
authenticated HTTP API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
