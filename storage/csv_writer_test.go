package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sheezylodhi/Scrapper/models"
)

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "listings.csv")
	w := NewCSVWriter(path)

	listings := []models.Listing{
		{
			SiteName:      "ebay",
			Title:         "1967 Mustang",
			Price:         "$45,000",
			ProductLink:   "https://x.test/1",
			SellerName:    "Joe",
			SellerContact: "630-943-7111",
			ScrapedAt:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, w.Write(listings))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "site", rows[0][0])
	assert.Equal(t, "ebay", rows[1][0])
	assert.Equal(t, "1967 Mustang", rows[1][1])
	assert.Equal(t, "630-943-7111", rows[1][5])
	assert.Equal(t, "2026-08-30T12:00:00Z", rows[1][8])
}

func TestCSVWriterEmptyIsNoop(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, NewCSVWriter(path).Write(nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
