package kbb

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/models"
	"github.com/Sheezylodhi/Scrapper/scraper"
	"github.com/Sheezylodhi/Scrapper/scraper/contact"
	"github.com/Sheezylodhi/Scrapper/utils"
)

// KBB paginates with a "Show More Results" button instead of page URLs:
// each click appends another page of cards to the same document. The
// page is heavy, so images/styles/fonts are blocked at the network
// layer before loading it.

const showMoreXPath = `//button[contains(., 'Show More Results')]`

const cardScript = `
	Array.from(document.querySelectorAll('[data-cmp="inventorySpotlightListing"]')).map(n => ({
		title: n.querySelector('h2[data-cmp="subheading"]')?.innerText?.trim() || '',
		price: n.querySelector('[data-cmp="firstPrice"]')?.innerText?.trim() || '',
		image: n.querySelector('img[data-cmp="inventoryImage"]')?.src || '',
		link: n.querySelector('a[data-cmp="link"]')?.href || '',
		specs: n.querySelector('[data-cmp="listingSpecifications"]')?.innerText?.trim() || '',
	}))
`

const autoScrollScript = `
	new Promise((resolve) => {
		let total = 0;
		const distance = 600;
		const timer = setInterval(() => {
			window.scrollBy(0, distance);
			total += distance;
			if (total >= document.body.scrollHeight - window.innerHeight) {
				clearInterval(timer);
				resolve(true);
			}
		}, 300);
	})
`

var blockedURLPatterns = []string{
	"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp", "*.svg",
	"*.css", "*.woff", "*.woff2", "*.ttf", "*.mp4",
}

type card struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Image string `json:"image"`
	Link  string `json:"link"`
	Specs string `json:"specs"`
}

type Adapter struct {
	cfg       *config.Config
	extractor *contact.Extractor
	log       *log.Logger
}

func New(cfg *config.Config) *Adapter {
	return &Adapter{
		cfg:       cfg,
		extractor: contact.NewExtractor(),
		log:       log.With("site", "kbb"),
	}
}

func (a *Adapter) Name() string { return "kbb" }

func (a *Adapter) Scrape(ctx context.Context, sess *scraper.Session, opts scraper.Options) ([]models.Listing, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	cards, err := a.collect(ctx, sess, opts)
	if err != nil {
		a.log.Warn("search page failed", "err", err)
		return nil, nil
	}

	var stubs []models.Stub
	for _, c := range cards {
		stub := models.Stub{
			Title:   c.Title,
			Link:    c.Link,
			Price:   c.Price,
			Image:   c.Image,
			Details: c.Specs,
		}
		if opts.KeepStub(stub) {
			stubs = append(stubs, stub)
		}
	}
	a.log.Info("stubs after filter", "count", len(stubs))

	listings := scraper.EnrichAll(ctx, stubs, a.cfg.MaxWorkers, func(ctx context.Context, stub models.Stub) models.Listing {
		return a.fetchDetail(ctx, sess, stub, opts.SiteName)
	})
	return listings, nil
}

func (a *Adapter) collect(ctx context.Context, sess *scraper.Session, opts scraper.Options) ([]card, error) {
	// the whole show-more walk happens inside one long-lived tab
	tabCtx, done := sess.NewTab(3 * a.cfg.RequestTimeout)
	defer done()

	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetBlockedURLs(blockedURLPatterns),
		chromedp.Navigate(opts.SearchURL),
		utils.HideWebDriver(),
		chromedp.Sleep(time.Second),
	)
	if err != nil {
		return nil, err
	}

	// each click loads roughly one more page of results; the page
	// budget bounds the walk even if the button never disappears
	for i := 1; i < opts.MaxPages; i++ {
		var present bool
		if err := chromedp.Run(tabCtx, chromedp.Evaluate(
			`document.evaluate("`+showMoreXPath+`", document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue !== null`,
			&present,
		)); err != nil || !present {
			break
		}

		a.log.Info("loading more results", "round", i)
		err := chromedp.Run(tabCtx,
			chromedp.Click(showMoreXPath, chromedp.BySearch),
			chromedp.Sleep(3*time.Second),
			chromedp.Evaluate(autoScrollScript, nil, awaitPromise),
		)
		if err != nil {
			a.log.Warn("show-more click failed", "err", err)
			break
		}
	}

	var cards []card
	err = chromedp.Run(tabCtx,
		chromedp.Evaluate(autoScrollScript, nil, awaitPromise),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.Evaluate(cardScript, &cards),
	)
	if err != nil {
		return nil, err
	}
	a.log.Info("cards found", "count", len(cards))
	return cards, nil
}

func (a *Adapter) fetchDetail(ctx context.Context, sess *scraper.Session, stub models.Stub, siteName string) models.Listing {
	listing := models.FromStub(stub, siteName)
	listing.ScrapedAt = time.Now()

	var desc string
	err := utils.Retry(ctx, a.cfg.MaxRetries, func() error {
		tabCtx, done := sess.NewTab(2 * a.cfg.RequestTimeout)
		defer done()

		return chromedp.Run(tabCtx,
			network.Enable(),
			network.SetBlockedURLs(blockedURLPatterns),
			chromedp.Navigate(stub.Link),
			utils.HideWebDriver(),
			chromedp.Sleep(800*time.Millisecond),
			chromedp.Evaluate(`document.querySelector('p')?.innerText || ''`, &desc),
		)
	})
	if err != nil {
		listing.FetchError = err.Error()
		a.log.Warn("detail failed", "link", stub.Link, "err", err)
		return listing
	}

	listing.Description = desc
	listing.SellerContact = a.extractor.Phone(desc)
	listing.SellerEmail = a.extractor.Email(desc)

	a.log.Info("detail done", "title", stub.Title, "phone", listing.SellerContact != "")
	return listing
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}
