package hemmings

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
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

const siteHost = "https://www.hemmings.com"

// Hemmings renders server-side enough that cards can be parsed straight
// out of the page HTML with goquery. Seller identity often lives behind
// a profile link; contact data found there outranks whatever the
// listing page itself shows.

const sellerNameScript = `
	(() => {
		const labels = document.querySelectorAll('.hmn-content-label');
		for (const label of labels) {
			if (label.textContent.trim().toUpperCase() === 'SELLER') {
				const nameEl = label.closest('div')?.querySelector('h3.text-base');
				if (nameEl) return nameEl.innerText.trim();
			}
		}
		const alt = document.querySelector(
			".seller-info .seller-name, .seller-details .seller-name, [data-testid='seller-name'], .classified-seller, .listing-seller-info h3"
		);
		return alt ? alt.innerText.trim() : '';
	})()
`

const detailScript = `
	(() => {
		const desc = document.querySelector('#description, .description, .listing-description, .classified-description');
		const profile = document.querySelector("a[href*='/profiles/'], a[href*='/user/'], a[href*='/classifieds/seller']");
		return {
			description: desc?.innerText?.trim() || '',
			bodyText: document.body ? document.body.innerText : '',
			profileLink: profile?.href || '',
		};
	})()
`

type detail struct {
	Description string `json:"description"`
	BodyText    string `json:"bodyText"`
	ProfileLink string `json:"profileLink"`
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
		log:       log.With("site", "hemmings"),
	}
}

func (a *Adapter) Name() string { return "hemmings" }

func (a *Adapter) Scrape(ctx context.Context, sess *scraper.Session, opts scraper.Options) ([]models.Listing, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	totalPages := a.detectTotalPages(ctx, sess, opts)
	a.log.Info("pager bounds", "totalPages", totalPages)

	var stubs []models.Stub
	for page := 1; page <= totalPages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := PageURL(opts.SearchURL, page)
		a.log.Info("visiting page", "page", page, "url", pageURL)

		html, err := a.loadPageHTML(ctx, sess, pageURL)
		if err != nil {
			a.log.Warn("page failed, skipping", "page", page, "err", err)
			continue
		}

		cards, err := ParseCards(html)
		if err != nil {
			a.log.Warn("card parse failed", "page", page, "err", err)
			continue
		}
		a.log.Info("cards found", "page", page, "count", len(cards))

		for _, stub := range cards {
			if opts.KeepStub(stub) {
				stubs = append(stubs, stub)
			}
		}
		utils.RandomDelay(ctx, a.cfg.MinDelay, a.cfg.MaxDelay)
	}

	a.log.Info("stubs collected", "count", len(stubs))

	listings := scraper.EnrichAll(ctx, stubs, a.cfg.MaxWorkers, func(ctx context.Context, stub models.Stub) models.Listing {
		return a.fetchDetail(ctx, sess, stub, opts.SiteName)
	})
	return listings, nil
}

// detectTotalPages reads the highest page-link numeral off the first
// results page, capped by the caller's budget. Failure means one page.
func (a *Adapter) detectTotalPages(ctx context.Context, sess *scraper.Session, opts scraper.Options) int {
	var texts []string
	err := utils.Retry(ctx, 2, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(opts.SearchURL),
			utils.HideWebDriver(),
			chromedp.Sleep(time.Second),
			chromedp.Evaluate(
				`Array.from(document.querySelectorAll("a[href*='page=']")).map(e => e.textContent.trim())`,
				&texts,
			),
		)
	})
	if err != nil {
		a.log.Warn("page detection failed", "err", err)
		return 1
	}

	total := MaxPageNumeral(texts)
	if total > opts.MaxPages {
		total = opts.MaxPages
	}
	return total
}

func (a *Adapter) loadPageHTML(ctx context.Context, sess *scraper.Session, pageURL string) (string, error) {
	var html string
	err := utils.Retry(ctx, 2, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(pageURL),
			utils.HideWebDriver(),
			chromedp.Sleep(700*time.Millisecond),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
	})
	return html, err
}

func (a *Adapter) fetchDetail(ctx context.Context, sess *scraper.Session, stub models.Stub, siteName string) models.Listing {
	listing := models.FromStub(stub, siteName)
	listing.ScrapedAt = time.Now()

	var d detail
	var sellerName string
	err := utils.Retry(ctx, 2, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(stub.Link),
			utils.HideWebDriver(),
			chromedp.Sleep(600*time.Millisecond),
			chromedp.Evaluate(detailScript, &d),
			chromedp.Evaluate(sellerNameScript, &sellerName),
		)
	})
	if err != nil {
		listing.FetchError = err.Error()
		listing.SellerName = models.SellerUnknown
		a.log.Warn("detail failed", "link", stub.Link, "err", err)
		return listing
	}

	if sellerName == "" {
		sellerName = models.SellerUnknown
	}
	listing.SellerName = sellerName
	listing.SellerProfileLink = d.ProfileLink

	listing.Description = d.Description
	if listing.Description == "" {
		listing.Description = truncate(d.BodyText, 1500)
	}

	listing.SellerContact = a.extractor.Phone(d.BodyText)
	listing.SellerEmail = a.extractor.Email(d.BodyText)

	// profile pages carry the seller's own contact block; trust it over
	// page-level text when present
	if d.ProfileLink != "" {
		if phone, email := a.fetchProfileContact(ctx, sess, d.ProfileLink); phone != "" || email != "" {
			if phone != "" {
				listing.SellerContact = phone
			}
			if email != "" {
				listing.SellerEmail = email
			}
		}
	}

	a.log.Info("detail done", "title", stub.Title, "seller", sellerName)
	return listing
}

func (a *Adapter) fetchProfileContact(ctx context.Context, sess *scraper.Session, profileURL string) (phone, email string) {
	var body string
	err := utils.Retry(ctx, 2, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(profileURL),
			utils.HideWebDriver(),
			chromedp.Sleep(500*time.Millisecond),
			chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &body),
		)
	})
	if err != nil {
		a.log.Warn("profile page failed", "url", profileURL, "err", err)
		return "", ""
	}
	return a.extractor.Phone(body), a.extractor.Email(body)
}

// ParseCards extracts listing stubs from one rendered results page.
func ParseCards(html string) ([]models.Stub, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var stubs []models.Stub
	doc.Find("article, div.shadow-md, li.classified-card").Each(func(_ int, n *goquery.Selection) {
		title := strings.TrimSpace(n.Find("h3").First().Text())

		link, _ := n.Find("a[href*='/classifieds/listing']").First().Attr("href")
		if link == "" {
			link, _ = n.Find("a").First().Attr("href")
		}
		if title == "" || link == "" {
			return
		}

		price := strings.TrimSpace(n.Find(".heading-label + span").First().Text())
		if price == "" {
			price = strings.TrimSpace(n.Find(".price").First().Text())
		}

		image, _ := n.Find("img").First().Attr("src")
		if image == "" {
			image, _ = n.Find("img").First().Attr("data-src")
		}

		stubs = append(stubs, models.Stub{
			Title: title,
			Link:  AbsoluteLink(link),
			Price: CleanPrice(price),
			Image: image,
		})
	})
	return stubs, nil
}

// AbsoluteLink resolves relative listing links against the site host.
func AbsoluteLink(link string) string {
	if strings.HasPrefix(link, "http") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return siteHost + link
}

var priceNoiseRe = regexp.MustCompile(`[^0-9$,]`)

// CleanPrice strips label noise and guarantees a leading $.
func CleanPrice(raw string) string {
	p := strings.TrimSpace(priceNoiseRe.ReplaceAllString(raw, ""))
	if p != "" && !strings.HasPrefix(p, "$") {
		p = "$" + p
	}
	return p
}

// MaxPageNumeral picks the highest integer out of pagination link texts.
func MaxPageNumeral(texts []string) int {
	max := 1
	for _, t := range texts {
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n > max {
			max = n
		}
	}
	return max
}

// PageURL appends the page parameter with the right separator.
func PageURL(searchURL string, page int) string {
	sep := "?"
	if strings.Contains(searchURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", searchURL, sep, page)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
