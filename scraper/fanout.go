package scraper

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/Sheezylodhi/Scrapper/models"
)

// DetailFunc enriches one stub. It must always return a listing — on
// unrecoverable failure a degraded record with the error noted in
// FetchError, never a dropped one.
type DetailFunc func(ctx context.Context, stub models.Stub) models.Listing

// EnrichAll fans detail fetches out in batches of at most workers,
// collecting a whole batch before the next starts. That keeps peak
// concurrent tab usage bounded at the worker count for the entire run.
// Exactly one listing comes back per stub, in stub order.
func EnrichAll(ctx context.Context, stubs []models.Stub, workers int, fetch DetailFunc) []models.Listing {
	if workers < 1 {
		workers = 1
	}

	out := make([]models.Listing, len(stubs))
	for start := 0; start < len(stubs); start += workers {
		end := start + workers
		if end > len(stubs) {
			end = len(stubs)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				out[i] = fetch(gctx, stubs[i])
				return nil
			})
		}
		// fetch funcs never return errors; Wait only orders the batch
		_ = g.Wait()

		if ctx.Err() != nil {
			log.Warn("enrichment cancelled", "done", end, "total", len(stubs))
			// remaining stubs still yield records, just unenriched
			for i := end; i < len(stubs); i++ {
				out[i] = fetch(ctx, stubs[i])
			}
			break
		}
	}
	return out
}
