package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Sheezylodhi/Scrapper/scraper"
	"github.com/Sheezylodhi/Scrapper/scraper/sites"
	"github.com/Sheezylodhi/Scrapper/services"
	"github.com/Sheezylodhi/Scrapper/storage"
)

var scrapeFlags struct {
	site     string
	url      string
	keyword  string
	fromDate string
	toDate   string
	maxPages int
	csvPath  string
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape from the command line and export to CSV",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeFlags.site, "site", "", "site to scrape (e.g. eBay, Hemmings, Craigslist)")
	scrapeCmd.Flags().StringVar(&scrapeFlags.url, "url", "", "search results URL to start from")
	scrapeCmd.Flags().StringVar(&scrapeFlags.keyword, "keyword", "", "keep only listings matching this keyword")
	scrapeCmd.Flags().StringVar(&scrapeFlags.fromDate, "from", "", "oldest posted date to keep (yyyy-mm-dd)")
	scrapeCmd.Flags().StringVar(&scrapeFlags.toDate, "to", "", "newest posted date to keep (yyyy-mm-dd)")
	scrapeCmd.Flags().IntVar(&scrapeFlags.maxPages, "max-pages", 0, "page cap (0 uses the configured default)")
	scrapeCmd.Flags().StringVar(&scrapeFlags.csvPath, "csv", "", "CSV output path (defaults to the configured path)")
	_ = scrapeCmd.MarkFlagRequired("site")
	_ = scrapeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := sites.NewRegistry(cfg)
	adapter, err := registry.Resolve(scrapeFlags.site)
	if err != nil {
		return err
	}

	from, err := parseFlagDate(scrapeFlags.fromDate)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseFlagDate(scrapeFlags.toDate)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	opts := scraper.Options{
		SearchURL: scrapeFlags.url,
		MaxPages:  scrapeFlags.maxPages,
		Keyword:   scrapeFlags.keyword,
		From:      from,
		To:        to,
		SiteName:  scrapeFlags.site,
	}
	if err := opts.Normalize(); err != nil {
		return err
	}

	log.Info("scraping", "site", adapter.Name(), "url", opts.SearchURL)
	start := time.Now()

	sess := scraper.NewSession(ctx, cfg)
	defer sess.Close()

	listings, err := adapter.Scrape(ctx, sess, opts)
	if err != nil {
		return err
	}

	listings = services.CleanListings(listings)
	log.Info("scrape finished", "listings", len(listings), "took", time.Since(start).Round(time.Second))

	csvPath := scrapeFlags.csvPath
	if csvPath == "" {
		csvPath = cfg.CSVPath
	}
	if err := storage.NewCSVWriter(csvPath).Write(listings); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	log.Info("exported CSV", "path", csvPath)

	services.PrintReport(services.GenerateReport(listings))
	return nil
}

func parseFlagDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, cfg.Location())
	if err != nil {
		return nil, err
	}
	return &t, nil
}
