package sites

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/scraper"
	"github.com/Sheezylodhi/Scrapper/scraper/bestcarfinder"
	"github.com/Sheezylodhi/Scrapper/scraper/craigslist"
	"github.com/Sheezylodhi/Scrapper/scraper/ebay"
	"github.com/Sheezylodhi/Scrapper/scraper/hemmings"
	"github.com/Sheezylodhi/Scrapper/scraper/karkiosk"
	"github.com/Sheezylodhi/Scrapper/scraper/kbb"
	"github.com/Sheezylodhi/Scrapper/scraper/privateparty"
)

// Registry maps site names to adapters. Dashboard requests arrive with
// the display names the job form has always used ("eBay (US)",
// "Craigslist (Chicago)"), so those resolve too; regional variants of
// one site share an adapter and differ only by search URL and tag.
type Registry struct {
	adapters map[string]scraper.Adapter
	aliases  map[string]string
}

func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		adapters: make(map[string]scraper.Adapter),
		aliases:  make(map[string]string),
	}

	r.add(ebay.New(cfg), "eBay", "eBay (US)", "eBay (UK)", "eBay (Aus)")
	r.add(hemmings.New(cfg), "Hemmings", "Hemming")
	r.add(craigslist.New(cfg), "Craigslist", "Craigslist (Chicago)", "Craigslist (NewYork)")
	r.add(karkiosk.New(cfg), "Karkiosk", "Karkis")
	r.add(kbb.New(cfg), "KBB")
	r.add(privateparty.New(cfg), "PrivatePartyCars", "PrivateParty")
	r.add(bestcarfinder.New(cfg), "BestCarFinder")

	return r
}

func (r *Registry) add(a scraper.Adapter, aliases ...string) {
	r.adapters[a.Name()] = a
	for _, alias := range aliases {
		r.aliases[normalize(alias)] = a.Name()
	}
}

// Resolve finds the adapter for a site name or alias.
func (r *Registry) Resolve(siteName string) (scraper.Adapter, error) {
	key := normalize(siteName)
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	if a, ok := r.adapters[key]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("unsupported site %q", siteName)
}

// Names lists the canonical adapter names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
