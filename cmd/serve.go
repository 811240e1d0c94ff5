package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/Sheezylodhi/Scrapper/scraper/sites"
	"github.com/Sheezylodhi/Scrapper/server"
	"github.com/Sheezylodhi/Scrapper/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	// Expiry is also enforced on read and before each scrape; the cron
	// sweep keeps the table small between requests.
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if purged, err := store.PurgeExpired(context.Background()); err != nil {
			log.Warn("scheduled purge failed", "err", err)
		} else if purged > 0 {
			log.Info("scheduled purge removed expired listings", "count", purged)
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	srv := server.New(cfg, store, sites.NewRegistry(cfg))
	return srv.Run(ctx)
}
