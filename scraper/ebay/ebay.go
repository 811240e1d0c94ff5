package ebay

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
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

// eBay pages through search results with the _pgn query parameter and
// prints card dates like "Oct-22 14:30" (current year implied). Sellers
// here lean hard on digit obfuscation, so detail pages go through the
// full extractor.

const cardScript = `
	Array.from(document.querySelectorAll('li.s-item, li.s-card')).map(n => ({
		title: n.querySelector('.s-card__title span, .s-item__title, .s-item__title span')?.innerText?.trim() || '',
		link: n.querySelector("a.s-item__link, a[href*='/itm/']")?.href || '',
		price: n.querySelector('.s-item__price, .s-card__price')?.innerText?.trim() || '',
		image: n.querySelector('img.s-item__image-img, img.s-card__image')?.src || '',
		postedDate: n.querySelector('.s-item__subtitle, .s-item__listingDate')?.innerText?.trim() || '',
	}))
`

type card struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	Price      string `json:"price"`
	Image      string `json:"image"`
	PostedDate string `json:"postedDate"`
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
		log:       log.With("site", "ebay"),
	}
}

func (a *Adapter) Name() string { return "ebay" }

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
	window := opts.Window()
	now := time.Now().In(a.loc)

	var stubs []models.Stub
	for page := 1; page <= opts.MaxPages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := pageURL(opts.SearchURL, page)
		a.log.Info("visiting page", "page", page, "url", pageURL)

		cards, err := a.loadCards(ctx, sess, pageURL)
		if err != nil {
			// one bad page never aborts the run
			a.log.Warn("page failed, skipping", "page", page, "err", err)
			continue
		}

		stop := false
		for _, c := range cards {
			verdict := window.Judge(parseCardDate(c.PostedDate, a.loc, now))
			if verdict == scraper.StopPaging {
				stop = true
				break
			}
			if verdict == scraper.SkipCard {
				continue
			}

			stub := models.Stub{
				Title:          c.Title,
				Link:           canonicalLink(c.Link),
				Price:          c.Price,
				Image:          c.Image,
				PostedDateText: c.PostedDate,
			}
			if !opts.KeepStub(stub) {
				continue
			}
			stubs = append(stubs, stub)
		}

		if stop {
			a.log.Info("date boundary crossed, stopping pager", "page", page)
			break
		}
		utils.RandomDelay(ctx, a.cfg.MinDelay, a.cfg.MaxDelay)
	}
	return stubs
}

func (a *Adapter) loadCards(ctx context.Context, sess *scraper.Session, pageURL string) ([]card, error) {
	var cards []card

	err := utils.Retry(ctx, 2, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(pageURL),
			utils.HideWebDriver(),
			chromedp.Sleep(250*time.Millisecond),
			chromedp.Evaluate(cardScript, &cards),
		)
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (a *Adapter) fetchDetail(ctx context.Context, sess *scraper.Session, stub models.Stub, siteName string) models.Listing {
	listing := models.FromStub(stub, siteName)
	listing.ScrapedAt = time.Now()

	var body string
	err := utils.Retry(ctx, a.cfg.MaxRetries, func() error {
		tabCtx, done := sess.Tab()
		defer done()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(stub.Link),
			utils.HideWebDriver(),
			chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &body),
		)
	})
	if err != nil {
		listing.FetchError = err.Error()
		a.log.Warn("detail failed", "link", stub.Link, "err", err)
		return listing
	}

	listing.SellerContact = a.extractor.Phone(body)
	listing.SellerEmail = a.extractor.Email(body)
	a.log.Debug("detail done", "title", stub.Title, "phone", listing.SellerContact != "")
	return listing
}

// pageURL sets _pgn on the search URL for the wanted page index.
func pageURL(searchURL string, page int) string {
	u, err := url.Parse(searchURL)
	if err != nil {
		return searchURL
	}
	q := u.Query()
	q.Set("_pgn", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// canonicalLink strips the tracking query so the same listing always
// dedupes to the same key.
func canonicalLink(link string) string {
	if i := strings.IndexByte(link, '?'); i >= 0 {
		return link[:i]
	}
	return link
}

var cardDateRe = regexp.MustCompile(`([A-Za-z]+)-(\d{1,2})\s+(\d{2}):(\d{2})`)

// parseCardDate reads eBay's "Oct-22 14:30" card date in the configured
// zone, assuming the current year. Unparsable text yields the zero time.
func parseCardDate(text string, loc *time.Location, now time.Time) time.Time {
	m := cardDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}

	mon, err := parseMonth(m[1])
	if err != nil {
		return time.Time{}
	}
	day, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	min, _ := strconv.Atoi(m[4])
	return time.Date(now.Year(), mon, day, hour, min, 0, 0, loc)
}

func parseMonth(name string) (time.Month, error) {
	t, err := time.Parse("Jan", name[:min(3, len(name))])
	if err != nil {
		return 0, fmt.Errorf("bad month %q: %w", name, err)
	}
	return t.Month(), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
