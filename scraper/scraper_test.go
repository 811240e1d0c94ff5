package scraper

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sheezylodhi/Scrapper/models"
)

func TestOptionsNormalize(t *testing.T) {
	t.Parallel()

	t.Run("missing url", func(t *testing.T) {
		o := Options{}
		assert.ErrorIs(t, o.Normalize(), ErrMissingSearchURL)
	})

	t.Run("whitespace url", func(t *testing.T) {
		o := Options{SearchURL: "   "}
		assert.ErrorIs(t, o.Normalize(), ErrMissingSearchURL)
	})

	t.Run("invalid url", func(t *testing.T) {
		o := Options{SearchURL: "not a url"}
		assert.Error(t, o.Normalize())
	})

	t.Run("defaults max pages", func(t *testing.T) {
		o := Options{SearchURL: "https://example.com/search?q=corvette"}
		require.NoError(t, o.Normalize())
		assert.Equal(t, 50, o.MaxPages)
	})

	t.Run("keeps explicit max pages", func(t *testing.T) {
		o := Options{SearchURL: "https://example.com/search", MaxPages: 3}
		require.NoError(t, o.Normalize())
		assert.Equal(t, 3, o.MaxPages)
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		from := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
		to := from.Add(-24 * time.Hour)
		o := Options{SearchURL: "https://example.com/search", From: &from, To: &to}
		assert.Error(t, o.Normalize())
	})

	t.Run("trims keyword", func(t *testing.T) {
		o := Options{SearchURL: "https://example.com/search", Keyword: "  mustang  "}
		require.NoError(t, o.Normalize())
		assert.Equal(t, "mustang", o.Keyword)
	})
}

func TestMatchesKeyword(t *testing.T) {
	t.Parallel()

	assert.True(t, Options{}.MatchesKeyword("anything"))
	assert.True(t, Options{Keyword: "Mustang"}.MatchesKeyword("1967 Ford MUSTANG Fastback"))
	assert.True(t, Options{Keyword: "mustang"}.MatchesKeyword("1967 Ford", "clean mustang, garage kept"))
	assert.False(t, Options{Keyword: "corvette"}.MatchesKeyword("1967 Ford Mustang"))
}

func TestKeepStub(t *testing.T) {
	t.Parallel()

	o := Options{Keyword: "mustang"}

	assert.True(t, o.KeepStub(models.Stub{Title: "1967 Mustang", Link: "https://x.test/1"}))
	assert.True(t, o.KeepStub(models.Stub{Title: "Classic coupe", Link: "https://x.test/2", Details: "rare Mustang trim"}))

	assert.False(t, o.KeepStub(models.Stub{Title: "", Link: "https://x.test/3"}), "empty title")
	assert.False(t, o.KeepStub(models.Stub{Title: "Sponsored", Link: "https://x.test/4"}), "ad slot")
	assert.False(t, o.KeepStub(models.Stub{Title: "Shop on eBay", Link: "https://x.test/5"}), "placeholder")
	assert.False(t, o.KeepStub(models.Stub{Title: "1967 Mustang", Link: "  "}), "no link")
	assert.False(t, o.KeepStub(models.Stub{Title: "1971 Corvette", Link: "https://x.test/6"}), "keyword miss")
}

func TestIsPlaceholderTitle(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPlaceholderTitle("Sponsored"))
	assert.True(t, IsPlaceholderTitle("  sponsored  "))
	assert.True(t, IsPlaceholderTitle("Shop on eBay"))
	assert.False(t, IsPlaceholderTitle("1967 Mustang sponsored by nobody"))
}

func TestDateWindowJudge(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	w := DateWindow{From: &from, To: &to}

	assert.Equal(t, KeepCard, w.Judge(time.Time{}), "unparsable dates are kept")
	assert.Equal(t, KeepCard, w.Judge(from.Add(48*time.Hour)))
	assert.Equal(t, KeepCard, w.Judge(from), "inclusive start")
	assert.Equal(t, KeepCard, w.Judge(to), "inclusive end")
	assert.Equal(t, SkipCard, w.Judge(to.Add(time.Hour)), "newer than the window")
	assert.Equal(t, StopPaging, w.Judge(from.Add(-time.Hour)), "older than the window")

	assert.False(t, DateWindow{}.Enabled())
	assert.Equal(t, KeepCard, DateWindow{}.Judge(time.Now()))

	openEnd := DateWindow{From: &from}
	assert.True(t, openEnd.Enabled())
	assert.Equal(t, KeepCard, openEnd.Judge(to.Add(time.Hour)))
}

func TestEnrichAllOneListingPerStub(t *testing.T) {
	t.Parallel()

	stubs := make([]models.Stub, 10)
	for i := range stubs {
		stubs[i] = models.Stub{Title: "car", Link: "https://x.test/" + string(rune('a'+i))}
	}

	out := EnrichAll(context.Background(), stubs, 3, func(_ context.Context, s models.Stub) models.Listing {
		return models.Listing{Title: s.Title, ProductLink: s.Link}
	})

	require.Len(t, out, len(stubs))
	for i, l := range out {
		assert.Equal(t, stubs[i].Link, l.ProductLink, "stub order preserved")
	}
}

func TestEnrichAllBoundsConcurrency(t *testing.T) {
	t.Parallel()

	const workers = 3
	stubs := make([]models.Stub, 8)

	var inFlight, peak int32
	var mu sync.Mutex

	EnrichAll(context.Background(), stubs, workers, func(_ context.Context, s models.Stub) models.Listing {
		n := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return models.Listing{}
	})

	assert.LessOrEqual(t, peak, int32(workers))
}

func TestEnrichAllCancelledStillYieldsRecords(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stubs := make([]models.Stub, 5)
	var calls int32
	out := EnrichAll(ctx, stubs, 2, func(_ context.Context, s models.Stub) models.Listing {
		atomic.AddInt32(&calls, 1)
		return models.Listing{FetchError: "cancelled"}
	})

	assert.Len(t, out, len(stubs))
	assert.Equal(t, int32(len(stubs)), atomic.LoadInt32(&calls))
}
