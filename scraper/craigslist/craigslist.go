package craigslist

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/models"
	"github.com/Sheezylodhi/Scrapper/scraper"
	"github.com/Sheezylodhi/Scrapper/scraper/contact"
	"github.com/Sheezylodhi/Scrapper/utils"
)

// Craigslist serves one static results page per search URL. Card dates
// are unreliable; the authoritative posted date lives on the detail
// page's time[datetime], so the date window is judged per detail visit,
// in feed order: a "started" latch skips cards newer than the window's
// end without stopping, and the first detail older than the start ends
// the whole run. That ordering requirement makes this adapter's detail
// phase sequential by design.

const cardScript = `
	Array.from(document.querySelectorAll('li.cl-static-search-result, li.result-row')).map(n => {
		const img = n.querySelector('img');
		return {
			title: n.querySelector('.title, .result-title')?.innerText?.trim() || '',
			link: n.querySelector('a')?.href || '',
			price: n.querySelector('.price, .result-price')?.innerText?.trim() || '',
			image: img?.src || img?.getAttribute('data-src') || img?.getAttribute('data-lazy-src') || img?.getAttribute('data-original') || '',
			postedDate: n.querySelector('time')?.getAttribute('datetime') || n.querySelector('.date')?.innerText?.trim() || '',
		};
	})
`

const detailScript = `
	(() => {
		const t = document.querySelector('time[datetime]');
		const body = document.querySelector('#postingbody');
		const img = document.querySelector('#postingbody img') || document.querySelector('.gallery img');
		return {
			postedDate: t?.getAttribute('datetime') || document.querySelector('.date, .postinginfo time')?.innerText?.trim() || '',
			description: body?.innerText?.trim() || '',
			bodyText: document.body ? document.body.innerText : '',
			image: img?.src || img?.getAttribute('data-src') || img?.getAttribute('data-lazy-src') || '',
		};
	})()
`

type card struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	Price      string `json:"price"`
	Image      string `json:"image"`
	PostedDate string `json:"postedDate"`
}

type detail struct {
	PostedDate  string `json:"postedDate"`
	Description string `json:"description"`
	BodyText    string `json:"bodyText"`
	Image       string `json:"image"`
}

type Adapter struct {
	cfg       *config.Config
	extractor *contact.Extractor
	loc       *time.Location
	log       *log.Logger
}

func New(cfg *config.Config) *Adapter {
	return &Adapter{
		cfg:       cfg,
		extractor: contact.NewExtractor(),
		loc:       cfg.Location(),
		log:       log.With("site", "craigslist"),
	}
}

func (a *Adapter) Name() string { return "craigslist" }

func (a *Adapter) Scrape(ctx context.Context, sess *scraper.Session, opts scraper.Options) ([]models.Listing, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	cards, err := a.loadCards(ctx, sess, opts.SearchURL)
	if err != nil {
		a.log.Warn("search page failed", "err", err)
		return nil, nil
	}
	a.log.Info("cards found", "count", len(cards))

	window := opts.Window()
	started := !window.Enabled() || window.To == nil

	var listings []models.Listing
	for i, c := range cards {
		if ctx.Err() != nil {
			break
		}

		stub := models.Stub{
			Title:          c.Title,
			Link:           c.Link,
			Price:          c.Price,
			Image:          c.Image,
			PostedDateText: c.PostedDate,
		}
		if !opts.KeepStub(stub) {
			continue
		}

		a.log.Info("processing", "n", i+1, "of", len(cards), "title", c.Title)

		listing, postedAt := a.fetchDetail(ctx, sess, stub, opts.SiteName)

		if !started {
			// haven't crossed under the window's end yet; newer cards
			// are skipped, not stopped on
			if postedAt.IsZero() || !postedAt.After(*window.To) {
				started = true
			} else {
				continue
			}
		}
		if started && window.From != nil && !postedAt.IsZero() && postedAt.Before(*window.From) {
			a.log.Info("date boundary crossed, stopping", "postedAt", postedAt)
			break
		}

		listings = append(listings, listing)
		utils.RandomDelay(ctx, a.cfg.MinDelay, a.cfg.MaxDelay)
	}

	a.log.Info("done", "saved", len(listings))
	return listings, nil
}

func (a *Adapter) loadCards(ctx context.Context, sess *scraper.Session, searchURL string) ([]card, error) {
	var cards []card
	err := utils.Retry(ctx, 2, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(searchURL),
			utils.HideWebDriver(),
			chromedp.Sleep(400*time.Millisecond),
			chromedp.Evaluate(cardScript, &cards),
		)
	})
	return cards, err
}

// fetchDetail enriches one stub and reports the detail page's posted
// date for the window latch. Failure still yields a record.
func (a *Adapter) fetchDetail(ctx context.Context, sess *scraper.Session, stub models.Stub, siteName string) (models.Listing, time.Time) {
	listing := models.FromStub(stub, siteName)
	listing.SellerName = "Private Seller"
	listing.ScrapedAt = time.Now()

	var d detail
	err := utils.Retry(ctx, a.cfg.MaxRetries, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(stub.Link),
			utils.HideWebDriver(),
			chromedp.Sleep(300*time.Millisecond),
			chromedp.Evaluate(detailScript, &d),
		)
	})
	if err != nil {
		listing.FetchError = err.Error()
		a.log.Warn("detail failed", "link", stub.Link, "err", err)
		return listing, parsePostedDate(stub.PostedDateText, a.loc)
	}

	postedAt := parsePostedDate(d.PostedDate, a.loc)
	if postedAt.IsZero() {
		postedAt = parsePostedDate(stub.PostedDateText, a.loc)
	}
	if !postedAt.IsZero() {
		listing.PostedDate = postedAt.UTC().Format(time.RFC3339)
	}

	listing.Description = d.Description
	listing.SellerContact = a.extractor.Phone(d.Description)
	listing.SellerEmail = a.extractor.Email(d.Description)
	if listing.SellerEmail == "" {
		listing.SellerEmail = a.extractor.Email(d.BodyText)
	}
	if listing.Image == "" {
		listing.Image = d.Image
	}
	return listing, postedAt
}

var postedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parsePostedDate tries craigslist's datetime attribute formats against
// the configured zone. Unparsable input yields the zero time.
func parsePostedDate(text string, loc *time.Location) time.Time {
	if text == "" {
		return time.Time{}
	}
	for _, layout := range postedLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
