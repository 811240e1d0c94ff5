package bestcarfinder

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/models"
	"github.com/Sheezylodhi/Scrapper/scraper"
	"github.com/Sheezylodhi/Scrapper/scraper/contact"
	"github.com/Sheezylodhi/Scrapper/utils"
)

// BestCarFinder pages with a &page=N parameter and stops when a page
// comes back empty or the paging buttons disappear. Phone numbers
// usually need a "Call Seller" click before they render.

const cardScript = `
	Array.from(document.querySelectorAll('li .car_ad')).map(n => {
		const titleEl = n.querySelector('.car_vehicle a');
		return {
			title: titleEl?.innerText?.trim() || '',
			link: titleEl?.href || '',
			price: n.querySelector('.car_price span')?.innerText?.trim() || '',
		};
	})
`

const phoneScanScript = `
	(() => {
		const selectors = [
			'span.car_contact', '.car_contact', '#mphonenumber',
			'i#mphonenumber', '.msg_auto_item .car_contact',
		];
		for (const sel of selectors) {
			const el = document.querySelector(sel);
			if (el && el.innerText && el.innerText.trim()) return el.innerText.trim();
		}
		return '';
	})()
`

var callButtonSelectors = []string{
	"#btnCallSellerTop",
	"#btnCallSellerMobile",
	"#btnCallSeller",
}

type card struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Price string `json:"price"`
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
		log:       log.With("site", "bestcarfinder"),
	}
}

func (a *Adapter) Name() string { return "bestcarfinder" }

func (a *Adapter) Scrape(ctx context.Context, sess *scraper.Session, opts scraper.Options) ([]models.Listing, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	stubs := a.collect(ctx, sess, opts)
	a.log.Info("stubs collected", "count", len(stubs))

	listings := scraper.EnrichAll(ctx, stubs, a.cfg.MaxWorkers, func(ctx context.Context, stub models.Stub) models.Listing {
		return a.fetchDetail(ctx, sess, stub, opts.SiteName)
	})
	return listings, nil
}

func (a *Adapter) collect(ctx context.Context, sess *scraper.Session, opts scraper.Options) []models.Stub {
	var stubs []models.Stub

	for page := 1; page <= opts.MaxPages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := PageURL(opts.SearchURL, page)
		a.log.Info("visiting page", "page", page, "url", pageURL)

		var cards []card
		var hasNext bool
		err := utils.Retry(ctx, 2, func() error {
			tabCtx, done := sess.Tab()
			defer done()

			return chromedp.Run(tabCtx,
				chromedp.Navigate(pageURL),
				utils.HideWebDriver(),
				chromedp.Sleep(600*time.Millisecond),
				chromedp.Evaluate(cardScript, &cards),
				chromedp.Evaluate(`document.querySelector("a.pagingbuttons[href*='page=']") !== null`, &hasNext),
			)
		})
		if err != nil {
			a.log.Warn("page failed, skipping", "page", page, "err", err)
			continue
		}

		// an empty page is the legitimate end of results
		if len(cards) == 0 {
			break
		}

		for _, c := range cards {
			stub := models.Stub{Title: c.Title, Link: c.Link, Price: c.Price}
			if opts.KeepStub(stub) {
				stubs = append(stubs, stub)
			}
		}

		if !hasNext {
			break
		}
		utils.RandomDelay(ctx, a.cfg.MinDelay, a.cfg.MaxDelay)
	}
	return stubs
}

func (a *Adapter) fetchDetail(ctx context.Context, sess *scraper.Session, stub models.Stub, siteName string) models.Listing {
	listing := models.FromStub(stub, siteName)
	listing.ScrapedAt = time.Now()

	var lastErr error
	for attempt := 1; attempt <= 2 && listing.SellerContact == ""; attempt++ {
		if err := a.tryDetail(ctx, sess, stub, &listing); err != nil {
			lastErr = err
			a.log.Warn("detail attempt failed", "attempt", attempt, "link", stub.Link, "err", err)
			utils.Sleep(ctx, 800*time.Millisecond)
		}
	}
	if listing.SellerContact == "" && lastErr != nil {
		listing.FetchError = lastErr.Error()
	}

	a.log.Info("detail done", "title", stub.Title, "phone", listing.SellerContact)
	return listing
}

func (a *Adapter) tryDetail(ctx context.Context, sess *scraper.Session, stub models.Stub, listing *models.Listing) error {
	tabCtx, done := sess.Tab()
	defer done()

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(stub.Link),
		utils.HideWebDriver(),
		chromedp.Sleep(time.Second),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", stub.Link, err)
	}

	phone := a.scanPhone(tabCtx)

	if phone == "" {
		// reveal buttons only react once the page has been scrolled
		_ = chromedp.Run(tabCtx,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight / 2)`, nil),
			chromedp.Sleep(800*time.Millisecond),
		)

		for _, sel := range callButtonSelectors {
			var present bool
			if err := chromedp.Run(tabCtx, chromedp.Evaluate(
				`document.querySelector('`+sel+`') !== null`, &present,
			)); err != nil || !present {
				continue
			}
			if err := chromedp.Run(tabCtx,
				chromedp.Click(sel, chromedp.ByQuery),
				chromedp.Sleep(700*time.Millisecond),
			); err != nil {
				continue
			}
			if phone = a.scanPhone(tabCtx); phone != "" {
				break
			}
		}
	}

	if phone == "" {
		// some templates surface the number in a vex dialog instead
		var dialogText string
		if err := chromedp.Run(tabCtx, chromedp.Evaluate(
			`document.querySelector('.vex-content, .vex-dialog-message')?.innerText || ''`,
			&dialogText,
		)); err == nil {
			phone = matchPlainPhone(dialogText)
		}
	}

	listing.SellerContact = phone

	var email, image string
	_ = chromedp.Run(tabCtx,
		chromedp.Evaluate(`document.querySelector('#youremail')?.value || ''`, &email),
		chromedp.Evaluate(`document.querySelector('#main_car_pic')?.src || ''`, &image),
	)
	if email != "" {
		listing.SellerEmail = email
	}
	if image != "" {
		listing.Image = image
	}
	return nil
}

// scanPhone walks the known contact selectors, then falls back to a
// body-text regex.
func (a *Adapter) scanPhone(tabCtx context.Context) string {
	var fromSelector string
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(phoneScanScript, &fromSelector)); err == nil && fromSelector != "" {
		if digits := contact.DigitsOnly(fromSelector); len(digits) >= 7 {
			return contact.FormatPhone(digits)
		}
	}

	var body string
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(
		`document.body ? document.body.innerText : ''`, &body,
	)); err == nil {
		return matchPlainPhone(body)
	}
	return ""
}

var plainPhoneRe = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

func matchPlainPhone(text string) string {
	m := plainPhoneRe.FindString(text)
	if m == "" {
		return ""
	}
	return contact.FormatPhone(contact.DigitsOnly(m))
}

var pageParamRe = regexp.MustCompile(`([?&])page=\d+`)

// PageURL rewrites or appends the page parameter.
func PageURL(searchURL string, page int) string {
	if pageParamRe.MatchString(searchURL) {
		return pageParamRe.ReplaceAllString(searchURL, fmt.Sprintf("${1}page=%d", page))
	}
	sep := "?"
	if strings.Contains(searchURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", searchURL, sep, page)
}
