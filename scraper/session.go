package scraper

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/utils"
)

// Session owns one browser process for the duration of one scrape
// invocation. Tabs are carved out of it per page visit and must be
// released on every exit path; Close tears the whole browser down. No
// two concurrent scrape runs share a session.
type Session struct {
	cfg *config.Config

	allocCtx    context.Context
	allocCancel context.CancelFunc

	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewSession(ctx context.Context, cfg *config.Config) *Session {
	log.Debug("launching browser", "headless", cfg.Headless)

	allocCtx, allocCancel := chromedp.NewExecAllocator(
		ctx,
		utils.StealthOpts(cfg.Headless)...,
	)
	// first context from the allocator starts the browser; tabs derive
	// from it so they share the process
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &Session{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}
}

// NewTab opens a fresh tab with its own deadline. The returned cancel
// closes the tab; callers defer it on every path.
func (s *Session) NewTab(timeout time.Duration) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	ctx, cancel := context.WithTimeout(tabCtx, timeout)
	return ctx, func() {
		cancel()
		tabCancel()
	}
}

// Tab opens a tab with the session's default request timeout.
func (s *Session) Tab() (context.Context, context.CancelFunc) {
	return s.NewTab(s.cfg.RequestTimeout)
}

func (s *Session) Config() *config.Config { return s.cfg }

func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}
