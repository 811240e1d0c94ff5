package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Sheezylodhi/Scrapper/models"
)

// Report summarizes one scrape run for the CLI.
type Report struct {
	TotalListings int
	BySite        map[string]int
	WithPhone     int
	WithEmail     int
	FailedFetches int
	AveragePrice  float64
	MinPrice      float64
	MaxPrice      float64
}

// CleanListings trims fields and drops records that cannot be keyed or
// displayed. Duplicate product links keep their last occurrence, which
// mirrors the upsert the store would do.
func CleanListings(listings []models.Listing) []models.Listing {
	byLink := make(map[string]int)
	var cleaned []models.Listing

	for _, l := range listings {
		l.Title = strings.TrimSpace(l.Title)
		l.ProductLink = strings.TrimSpace(l.ProductLink)
		l.SellerName = strings.TrimSpace(l.SellerName)
		if l.Title == "" || l.ProductLink == "" {
			continue
		}

		if i, seen := byLink[l.ProductLink]; seen {
			cleaned[i] = l
			continue
		}
		byLink[l.ProductLink] = len(cleaned)
		cleaned = append(cleaned, l)
	}
	return cleaned
}

// GenerateReport computes run statistics over a cleaned result set.
func GenerateReport(listings []models.Listing) Report {
	cleaned := CleanListings(listings)

	report := Report{
		TotalListings: len(cleaned),
		BySite:        make(map[string]int),
	}
	if len(cleaned) == 0 {
		return report
	}

	var (
		priceSum   float64
		priceCount int
		maxPrice   = -1.0
		minPrice   = math.MaxFloat64
	)

	for _, l := range cleaned {
		report.BySite[l.SiteName]++
		if l.SellerContact != "" {
			report.WithPhone++
		}
		if l.SellerEmail != "" {
			report.WithEmail++
		}
		if l.FetchError != "" {
			report.FailedFetches++
		}

		if p := ParsePrice(l.Price); p > 0 {
			priceSum += p
			priceCount++
			if p > maxPrice {
				maxPrice = p
			}
			if p < minPrice {
				minPrice = p
			}
		}
	}

	if priceCount > 0 {
		report.AveragePrice = priceSum / float64(priceCount)
		report.MinPrice = minPrice
		report.MaxPrice = maxPrice
	}
	return report
}

var priceRe = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// ParsePrice pulls the first money-looking number out of a free-text
// price string. Anything unparsable is 0.
func ParsePrice(raw string) float64 {
	m := priceRe.FindString(raw)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// PrintReport writes the run summary to stdout.
func PrintReport(r Report) {
	fmt.Println()
	fmt.Println("══════════════ SCRAPE REPORT ══════════════")
	fmt.Printf("  Total listings : %d\n", r.TotalListings)
	fmt.Printf("  With phone     : %d\n", r.WithPhone)
	fmt.Printf("  With email     : %d\n", r.WithEmail)
	fmt.Printf("  Failed fetches : %d\n", r.FailedFetches)
	if r.AveragePrice > 0 {
		fmt.Printf("  Price avg/min/max : $%.0f / $%.0f / $%.0f\n",
			r.AveragePrice, r.MinPrice, r.MaxPrice)
	}

	sites := make([]string, 0, len(r.BySite))
	for site := range r.BySite {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	for _, site := range sites {
		fmt.Printf("  %-20s %d\n", site, r.BySite[site])
	}
	fmt.Println("═══════════════════════════════════════════")
	fmt.Println()
}
