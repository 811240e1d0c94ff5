package models

import "time"

// SellerUnknown is the sentinel stored when a detail page exposes no
// seller identity at all.
const SellerUnknown = "unknown"

// Stub is the lightweight summary captured from one results-page card.
// Stubs live only for the duration of a scrape run; the detail fetcher
// turns each one into exactly one Listing.
type Stub struct {
	Title          string
	Link           string
	Price          string
	Image          string
	PostedDateText string

	// Details carries extra card text some sites expose on the results
	// page (specs, location line). Used for keyword matching and as a
	// contact-extraction fallback.
	Details string
}

// Listing is a stub enriched with detail-page data. ProductLink is the
// natural key: re-scraping the same site must emit the same link so the
// storage layer can upsert instead of duplicate.
type Listing struct {
	ID                int64      `json:"id,omitempty"`
	Title             string     `json:"title"`
	ProductLink       string     `json:"productLink"`
	Price             string     `json:"price"`
	Image             string     `json:"image"`
	PostedDate        string     `json:"postedDate,omitempty"`
	SellerName        string     `json:"sellerName,omitempty"`
	SellerProfileLink string     `json:"sellerProfile,omitempty"`
	SellerContact     string     `json:"sellerContact,omitempty"`
	SellerEmail       string     `json:"sellerEmail,omitempty"`
	Description       string     `json:"description,omitempty"`
	SiteName          string     `json:"siteName"`
	ScrapedAt         time.Time  `json:"scrapedAt"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`

	// FetchError records why detail enrichment failed, for diagnostics
	// only. A listing with a FetchError is still a valid record.
	FetchError string `json:"-"`
}

// FromStub seeds a Listing with the stub fields shared by every adapter.
func FromStub(s Stub, siteName string) Listing {
	return Listing{
		Title:       s.Title,
		ProductLink: s.Link,
		Price:       s.Price,
		Image:       s.Image,
		PostedDate:  s.PostedDateText,
		SiteName:    siteName,
	}
}
