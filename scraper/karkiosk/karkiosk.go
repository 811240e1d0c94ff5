package karkiosk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/models"
	"github.com/Sheezylodhi/Scrapper/scraper"
	"github.com/Sheezylodhi/Scrapper/scraper/contact"
	"github.com/Sheezylodhi/Scrapper/utils"
)

// Karkiosk lists everything of interest on the first results page, so
// the pager degenerates to a single visit. Cards come out of the
// rendered HTML with goquery.

const sellerNameScript = `
	(() => {
		const el = document.querySelector('.kk-user-name, .user-name, .seller-name');
		return el ? el.innerText.trim() : '';
	})()
`

type Adapter struct {
	cfg       *config.Config
	extractor *contact.Extractor
	log       *log.Logger
}

func New(cfg *config.Config) *Adapter {
	return &Adapter{
		cfg:       cfg,
		extractor: contact.NewExtractor(),
		log:       log.With("site", "karkiosk"),
	}
}

func (a *Adapter) Name() string { return "karkiosk" }

func (a *Adapter) Scrape(ctx context.Context, sess *scraper.Session, opts scraper.Options) ([]models.Listing, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	var html string
	err := utils.Retry(ctx, 2, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(opts.SearchURL),
			utils.HideWebDriver(),
			chromedp.Sleep(800*time.Millisecond),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
	})
	if err != nil {
		a.log.Warn("search page failed", "err", err)
		return nil, nil
	}

	cards, err := ParseCards(html)
	if err != nil {
		a.log.Warn("card parse failed", "err", err)
		return nil, nil
	}
	a.log.Info("cards found", "count", len(cards))

	var stubs []models.Stub
	for _, stub := range cards {
		if opts.KeepStub(stub) {
			stubs = append(stubs, stub)
		}
	}

	listings := scraper.EnrichAll(ctx, stubs, a.cfg.MaxWorkers, func(ctx context.Context, stub models.Stub) models.Listing {
		return a.fetchDetail(ctx, sess, stub, opts.SiteName)
	})
	return listings, nil
}

func (a *Adapter) fetchDetail(ctx context.Context, sess *scraper.Session, stub models.Stub, siteName string) models.Listing {
	listing := models.FromStub(stub, siteName)
	listing.ScrapedAt = time.Now()

	var body, sellerName string
	err := utils.Retry(ctx, a.cfg.MaxRetries, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(stub.Link),
			utils.HideWebDriver(),
			chromedp.Sleep(500*time.Millisecond),
			chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &body),
			chromedp.Evaluate(sellerNameScript, &sellerName),
		)
	})
	if err != nil {
		listing.FetchError = err.Error()
		listing.SellerName = "Private Seller"
		a.log.Warn("detail failed", "link", stub.Link, "err", err)
		return listing
	}

	if sellerName == "" {
		sellerName = "Private Seller"
	}
	listing.SellerName = sellerName
	listing.Description = truncate(body, 800)
	listing.SellerContact = a.extractor.Phone(body)
	listing.SellerEmail = a.extractor.Email(body)

	a.log.Info("detail done", "title", stub.Title, "seller", sellerName)
	return listing
}

// ParseCards extracts the .featured-car grid from a rendered results
// page. The location/city/mileage line rides along as detail text for
// keyword matching.
func ParseCards(html string) ([]models.Stub, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var stubs []models.Stub
	doc.Find(".featured-car").Each(func(_ int, n *goquery.Selection) {
		link, _ := n.Find("a.product-img").First().Attr("href")
		title := strings.TrimSpace(n.Find("h2.cat-head").First().Text())
		if title == "" || link == "" {
			return
		}

		image, _ := n.Find("img.img-box").First().Attr("src")
		price := strings.TrimSpace(n.Find(".kk-price-box .kk-price-num").First().Text())

		location := strings.TrimSpace(n.Find(".kk-category-list li:nth-child(1) .cate-title").First().Text())
		city := strings.TrimSpace(n.Find(".kk-category-list li:nth-child(2) .cate-title").First().Text())
		mileage := strings.TrimSpace(n.Find("span[data-qa='mileage']").First().Text())

		stubs = append(stubs, models.Stub{
			Title:   title,
			Link:    link,
			Price:   price,
			Image:   image,
			Details: strings.TrimSpace(strings.Join([]string{location, city, mileage}, " ")),
		})
	})
	return stubs, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
