package privateparty

import (
	"context"
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

// PrivatePartyCars hides seller contact behind an "inquire" modal, so
// the detail fetch is modal-first: click the first trigger that exists,
// wait for the dialog, and only then fall back to card text and page
// body. The site's own support line is printed in every page template
// and must never be reported as a seller number.

const templateSupportNumber = "7753234478"

// ordered candidate triggers; the first one present gets the click
var inquireSelectors = []string{
	"#ask-owner",
	".inquire_link",
	`a[onclick*="inquire"]`,
	`input[value*="More Information"]`,
	"#inquire",
	`a[href*='inquireform']`,
	`a[onclick*='inquireform']`,
	".openinquireform",
}

const cardScript = `
	Array.from(document.querySelectorAll('.results_main a.results_link')).map(a => ({
		title: a.querySelector('.results_title')?.innerText?.trim() || '',
		price: a.querySelector('.results_price')?.innerText?.trim() || '',
		details: a.querySelector('.results_details')?.innerText?.trim() || '',
		image: a.querySelector('img')?.src || '',
		link: a.href || '',
	}))
`

const modalTextScript = `
	Array.from(document.querySelectorAll('#inquireform_main, .inquireform_main, .vex-content, .vex-dialog-message'))
		.map(n => n.innerText).join('\n')
`

const sellerNameScript = `
	(() => {
		const el = document.querySelector('#inquireform_main .inquireform_div, .inquireform_div');
		if (!el) return '';
		const m = (el.innerText || '').match(/Name:\s*([^\n\r]+)/);
		return m ? m[1].trim() : '';
	})()
`

type card struct {
	Title   string `json:"title"`
	Price   string `json:"price"`
	Details string `json:"details"`
	Image   string `json:"image"`
	Link    string `json:"link"`
}

type Adapter struct {
	cfg       *config.Config
	extractor *contact.Extractor
	log       *log.Logger
}

func New(cfg *config.Config) *Adapter {
	return &Adapter{
		cfg:       cfg,
		extractor: contact.NewExtractor(templateSupportNumber),
		log:       log.With("site", "privatepartycars"),
	}
}

func (a *Adapter) Name() string { return "privatepartycars" }

func (a *Adapter) Scrape(ctx context.Context, sess *scraper.Session, opts scraper.Options) ([]models.Listing, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	var cards []card
	err := utils.Retry(ctx, 2, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(opts.SearchURL),
			utils.HideWebDriver(),
			chromedp.Sleep(600*time.Millisecond),
			chromedp.Evaluate(cardScript, &cards),
		)
	})
	if err != nil {
		a.log.Warn("search page failed", "err", err)
		return nil, nil
	}
	a.log.Info("cards found", "count", len(cards))

	var stubs []models.Stub
	for _, c := range cards {
		stub := models.Stub{
			Title:   c.Title,
			Link:    c.Link,
			Price:   c.Price,
			Image:   c.Image,
			Details: c.Details,
		}
		if opts.KeepStub(stub) {
			stubs = append(stubs, stub)
		}
	}
	a.log.Info("stubs after filter", "count", len(stubs), "keyword", opts.Keyword)

	listings := scraper.EnrichAll(ctx, stubs, a.cfg.MaxWorkers, func(ctx context.Context, stub models.Stub) models.Listing {
		return a.fetchDetail(ctx, sess, stub, opts.SiteName)
	})
	return listings, nil
}

func (a *Adapter) fetchDetail(ctx context.Context, sess *scraper.Session, stub models.Stub, siteName string) models.Listing {
	listing := models.FromStub(stub, siteName)
	listing.ScrapedAt = time.Now()
	listing.Description = stub.Details

	tabCtx, done := sess.Tab()
	defer done()

	err := utils.Retry(ctx, 2, func() error {
		return chromedp.Run(tabCtx,
			chromedp.Navigate(stub.Link),
			utils.HideWebDriver(),
			chromedp.Sleep(800*time.Millisecond),
		)
	})
	if err != nil {
		listing.FetchError = err.Error()
		a.log.Warn("detail failed", "link", stub.Link, "err", err)
		return listing
	}

	// 1) modal first
	if a.openInquireModal(tabCtx) {
		var modalText, sellerName string
		if err := chromedp.Run(tabCtx,
			chromedp.Sleep(700*time.Millisecond),
			chromedp.Evaluate(modalTextScript, &modalText),
			chromedp.Evaluate(sellerNameScript, &sellerName),
		); err == nil {
			if phone := a.extractor.Phone(modalText); phone != "" {
				listing.SellerContact = phone
				if sellerName != "" {
					listing.SellerName = sellerName
				}
			}
			if email := a.extractor.Email(modalText); email != "" {
				listing.SellerEmail = email
			}
		}
	}

	// 2) then the card's own detail text
	if listing.SellerContact == "" {
		listing.SellerContact = a.extractor.Phone(stub.Details)
	}

	// 3) last, page body — but only when a contact word sits near the
	// match, otherwise template noise leaks through
	if listing.SellerContact == "" {
		var body string
		if err := chromedp.Run(tabCtx,
			chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &body),
		); err == nil {
			listing.SellerContact = a.phoneNearContactWord(body)
			if listing.SellerEmail == "" {
				listing.SellerEmail = a.extractor.Email(body)
			}
		}
	}

	if listing.SellerName == "" {
		listing.SellerName = models.SellerUnknown
	}

	a.log.Info("detail done", "title", stub.Title, "phone", listing.SellerContact)
	return listing
}

// openInquireModal clicks the first trigger present on the page and
// reports whether anything was clicked.
func (a *Adapter) openInquireModal(tabCtx context.Context) bool {
	for _, sel := range inquireSelectors {
		var present bool
		if err := chromedp.Run(tabCtx, chromedp.Evaluate(
			`document.querySelector(`+"`"+sel+"`"+`) !== null`, &present,
		)); err != nil || !present {
			continue
		}

		err := chromedp.Run(tabCtx,
			chromedp.ScrollIntoView(sel, chromedp.ByQuery),
			chromedp.Sleep(250*time.Millisecond),
			chromedp.Click(sel, chromedp.ByQuery),
		)
		if err != nil {
			a.log.Debug("inquire click failed", "selector", sel, "err", err)
			continue
		}
		return true
	}
	return false
}

var plainPhoneRe = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

var contactWords = []string{"contact", "mobile", "phone", "owner", "call"}

// phoneNearContactWord accepts a body-text phone only when the 300-char
// snippet around it mentions contacting someone.
func (a *Adapter) phoneNearContactWord(body string) string {
	for _, loc := range plainPhoneRe.FindAllStringIndex(body, -1) {
		match := body[loc[0]:loc[1]]
		digits := contact.DigitsOnly(match)
		if digits == templateSupportNumber {
			continue
		}

		start := loc[0] - 120
		if start < 0 {
			start = 0
		}
		end := start + 300
		if end > len(body) {
			end = len(body)
		}
		snippet := strings.ToLower(body[start:end])

		for _, w := range contactWords {
			if strings.Contains(snippet, w) {
				return contact.FormatPhone(digits)
			}
		}
	}
	return ""
}
