package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sheezylodhi/Scrapper/models"
)

// Adapter is the per-site implementation of the shared two-phase
// contract: collect stubs across result pages, then enrich each stub
// from its detail page. Adapters never bubble per-page or per-listing
// failures; only invalid input aborts a run.
type Adapter interface {
	Name() string
	Scrape(ctx context.Context, sess *Session, opts Options) ([]models.Listing, error)
}

// Options are the caller-supplied parameters of one scrape run.
type Options struct {
	SearchURL string
	MaxPages  int
	Keyword   string
	From      *time.Time
	To        *time.Time
	SiteName  string
}

var ErrMissingSearchURL = errors.New("searchUrl is required")

// Normalize validates required input and fills defaults. This is the
// only place a scrape can fail before it starts.
func (o *Options) Normalize() error {
	o.SearchURL = strings.TrimSpace(o.SearchURL)
	if o.SearchURL == "" {
		return ErrMissingSearchURL
	}
	if _, err := url.ParseRequestURI(o.SearchURL); err != nil {
		return fmt.Errorf("invalid searchUrl %q: %w", o.SearchURL, err)
	}
	if o.MaxPages < 1 {
		o.MaxPages = 50
	}
	o.Keyword = strings.TrimSpace(o.Keyword)
	if o.From != nil && o.To != nil && o.To.Before(*o.From) {
		return fmt.Errorf("date window ends (%s) before it starts (%s)", o.To, o.From)
	}
	return nil
}

// MatchesKeyword reports whether any of the texts contains the keyword,
// case-insensitively. No keyword matches everything.
func (o Options) MatchesKeyword(texts ...string) bool {
	if o.Keyword == "" {
		return true
	}
	kw := strings.ToLower(o.Keyword)
	for _, t := range texts {
		if strings.Contains(strings.ToLower(t), kw) {
			return true
		}
	}
	return false
}

// Window bundles the optional date bounds for collector-side judgment.
func (o Options) Window() DateWindow {
	return DateWindow{From: o.From, To: o.To}
}

// KeepStub applies the shared card filter: placeholder or empty titles
// and link-less cards are discarded, and the keyword (when set) must
// appear in the title or the card's detail text.
func (o Options) KeepStub(s models.Stub) bool {
	title := strings.TrimSpace(s.Title)
	if title == "" || IsPlaceholderTitle(title) {
		return false
	}
	if strings.TrimSpace(s.Link) == "" {
		return false
	}
	return o.MatchesKeyword(s.Title, s.Details)
}

// IsPlaceholderTitle recognizes the ad/sponsored slot titles sites
// inject into result lists.
func IsPlaceholderTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	return t == "sponsored" || strings.HasPrefix(t, "shop on ")
}

// Verdict is the collector's decision for one dated card in a
// newest-first feed.
type Verdict int

const (
	// KeepCard — inside the window (or no window / no parsable date).
	KeepCard Verdict = iota
	// SkipCard — newer than the window's end; later cards may still fit.
	SkipCard
	// StopPaging — older than the window's start; everything after this
	// card is older still, so the whole pager stops.
	StopPaging
)

// DateWindow is an inclusive (from, to) bound over posted dates.
type DateWindow struct {
	From *time.Time
	To   *time.Time
}

func (w DateWindow) Enabled() bool {
	return w.From != nil || w.To != nil
}

// Judge classifies a card's posted date. The zero time means the date
// text was absent or unparsable; such cards are kept, because the
// window is an optimization that must never cause a false negative.
func (w DateWindow) Judge(t time.Time) Verdict {
	if t.IsZero() {
		return KeepCard
	}
	if w.To != nil && t.After(*w.To) {
		return SkipCard
	}
	if w.From != nil && t.Before(*w.From) {
		return StopPaging
	}
	return KeepCard
}
