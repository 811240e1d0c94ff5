package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Sheezylodhi/Scrapper/models"
)

// CSVWriter exports a scrape's enriched listings to disk, for runs
// where no database is in play (the one-off CLI).
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write saves all listings to the CSV file, creating the output
// directory if needed.
func (w *CSVWriter) Write(listings []models.Listing) error {
	if len(listings) == 0 {
		log.Warn("no listings to write")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"site", "title", "price", "product_link", "seller_name",
		"seller_contact", "seller_email", "posted_date", "scraped_at",
	})

	for _, l := range listings {
		writer.Write([]string{
			l.SiteName,
			l.Title,
			l.Price,
			l.ProductLink,
			l.SellerName,
			l.SellerContact,
			l.SellerEmail,
			l.PostedDate,
			l.ScrapedAt.Format(time.RFC3339),
		})
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	log.Info("saved listings to csv", "count", len(listings), "path", w.path)
	return nil
}
