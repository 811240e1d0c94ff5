package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sheezylodhi/Scrapper/config"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry(config.DefaultConfig())

	cases := []struct {
		in   string
		want string
	}{
		{"eBay", "ebay"},
		{"eBay (US)", "ebay"},
		{"EBAY (uk)", "ebay"},
		{"Hemmings", "hemmings"},
		{"Hemming", "hemmings"},
		{"Craigslist (Chicago)", "craigslist"},
		{"craigslist", "craigslist"},
		{"Karkis", "karkiosk"},
		{"KBB", "kbb"},
		{"PrivateParty", "privatepartycars"},
		{"BestCarFinder", "bestcarfinder"},
		{"  bestcarfinder  ", "bestcarfinder"},
	}
	for _, tc := range cases {
		a, err := r.Resolve(tc.in)
		require.NoError(t, err, "resolving %q", tc.in)
		assert.Equal(t, tc.want, a.Name(), "resolving %q", tc.in)
	}

	_, err := r.Resolve("AutoTrader")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	t.Parallel()

	r := NewRegistry(config.DefaultConfig())
	assert.Equal(t, []string{
		"bestcarfinder", "craigslist", "ebay", "hemmings",
		"karkiosk", "kbb", "privatepartycars",
	}, r.Names())
}
