package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sheezylodhi/Scrapper/models"
)

func TestCleanListings(t *testing.T) {
	t.Parallel()

	in := []models.Listing{
		{Title: "  1967 Mustang  ", ProductLink: " https://x.test/1 ", SellerName: " Joe "},
		{Title: "", ProductLink: "https://x.test/2"},
		{Title: "No link"},
		{Title: "1957 Bel Air", ProductLink: "https://x.test/3", Price: "$10"},
		{Title: "1957 Bel Air (updated)", ProductLink: "https://x.test/3", Price: "$12"},
	}

	out := CleanListings(in)
	require.Len(t, out, 2)

	assert.Equal(t, "1967 Mustang", out[0].Title)
	assert.Equal(t, "https://x.test/1", out[0].ProductLink)
	assert.Equal(t, "Joe", out[0].SellerName)

	assert.Equal(t, "1957 Bel Air (updated)", out[1].Title, "duplicate link keeps last occurrence")
	assert.Equal(t, "$12", out[1].Price)
}

func TestGenerateReport(t *testing.T) {
	t.Parallel()

	listings := []models.Listing{
		{Title: "A", ProductLink: "https://x.test/1", SiteName: "ebay", Price: "$10,000", SellerContact: "630-943-7111"},
		{Title: "B", ProductLink: "https://x.test/2", SiteName: "ebay", Price: "$20,000", SellerEmail: "a@b.com"},
		{Title: "C", ProductLink: "https://x.test/3", SiteName: "hemmings", Price: "Call for price", FetchError: "timeout"},
	}

	r := GenerateReport(listings)

	assert.Equal(t, 3, r.TotalListings)
	assert.Equal(t, map[string]int{"ebay": 2, "hemmings": 1}, r.BySite)
	assert.Equal(t, 1, r.WithPhone)
	assert.Equal(t, 1, r.WithEmail)
	assert.Equal(t, 1, r.FailedFetches)
	assert.InDelta(t, 15000, r.AveragePrice, 0.01)
	assert.InDelta(t, 10000, r.MinPrice, 0.01)
	assert.InDelta(t, 20000, r.MaxPrice, 0.01)
}

func TestGenerateReportEmpty(t *testing.T) {
	t.Parallel()

	r := GenerateReport(nil)
	assert.Equal(t, 0, r.TotalListings)
	assert.Zero(t, r.AveragePrice)
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 45000.0, ParsePrice("$45,000"))
	assert.Equal(t, 12500.5, ParsePrice("asking 12,500.50 obo"))
	assert.Equal(t, 0.0, ParsePrice("Call for price"))
	assert.Equal(t, 0.0, ParsePrice(""))
}
