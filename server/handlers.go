package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sheezylodhi/Scrapper/models"
	"github.com/Sheezylodhi/Scrapper/scraper"
	"github.com/Sheezylodhi/Scrapper/storage"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	_, hash, err := s.store.AdminByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		s.log.Error("admin lookup failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.jwt.GenerateToken(req.Username)
	if err != nil {
		s.log.Error("token generation failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type scrapeRequest struct {
	SearchURL string `json:"searchUrl"`
	SiteName  string `json:"siteName"`
	Keyword   string `json:"keyword"`
	FromDate  string `json:"fromDate"`
	ToDate    string `json:"toDate"`
	MaxPages  int    `json:"maxPages"`
}

// handleScrape is the ingestion coordinator: resolve the adapter, run
// it with a fresh browser session, stamp expiry, and upsert into the
// temporary store. Only bad input fails a request; a partial scrape
// still returns whatever it produced.
func (s *Server) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.SearchURL == "" || req.SiteName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "searchUrl and siteName required"})
		return
	}

	adapter, err := s.registry.Resolve(req.SiteName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, err := parseDateField(req.FromDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromDate: " + err.Error()})
		return
	}
	to, err := parseDateField(req.ToDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toDate: " + err.Error()})
		return
	}

	opts := scraper.Options{
		SearchURL: req.SearchURL,
		MaxPages:  req.MaxPages,
		Keyword:   req.Keyword,
		From:      from,
		To:        to,
		SiteName:  req.SiteName,
	}
	if err := opts.Normalize(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runID := uuid.NewString()
	runLog := s.log.With("run", runID, "site", adapter.Name())
	runLog.Info("scrape starting", "url", opts.SearchURL, "maxPages", opts.MaxPages)

	ctx := c.Request.Context()
	sess := scraper.NewSession(ctx, s.cfg)
	defer sess.Close()

	listings, err := adapter.Scrape(ctx, sess, opts)
	if err != nil {
		runLog.Error("scrape failed", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	expires := now.Add(s.cfg.ListingTTL)
	for i := range listings {
		listings[i].ScrapedAt = now
		listings[i].ExpiresAt = &expires
	}

	if purged, err := s.store.PurgeExpired(ctx); err != nil {
		runLog.Warn("purge failed", "err", err)
	} else if purged > 0 {
		runLog.Info("purged expired listings", "count", purged)
	}

	saved, err := s.store.UpsertListings(ctx, listings)
	if err != nil {
		runLog.Error("upsert failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save listings"})
		return
	}

	runLog.Info("scrape complete", "scraped", len(listings), "saved", saved)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"runId":   runID,
		"count":   saved,
		"results": listings,
	})
}

func (s *Server) handleListings(c *gin.Context) {
	listings, err := s.store.ActiveListings(c.Request.Context())
	if err != nil {
		s.log.Error("listings query failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": listings})
}

func (s *Server) handleDeleteListing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	err = s.store.DeleteListing(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete listing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handlePermanent(c *gin.Context) {
	listings, err := s.store.PermanentListings(c.Request.Context())
	if err != nil {
		s.log.Error("permanent query failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch permanent data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": listings})
}

// handlePromote accepts either one listing or an array; promotion is
// idempotent by product link, so already-permanent records are counted
// as existing rather than erroring.
func (s *Server) handlePromote(c *gin.Context) {
	ctx := c.Request.Context()

	var many []models.Listing
	if err := c.ShouldBindBodyWithJSON(&many); err == nil {
		saved, err := s.store.PromoteMany(ctx, many)
		if err != nil {
			s.log.Error("bulk promote failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save permanently"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"savedCount": saved})
		return
	}

	var one models.Listing
	if err := c.ShouldBindBodyWithJSON(&one); err != nil || one.ProductLink == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing with productLink required"})
		return
	}

	saved, err := s.store.Promote(ctx, one)
	if err != nil {
		s.log.Error("promote failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save permanently"})
		return
	}
	if !saved {
		c.JSON(http.StatusOK, gin.H{"exists": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDeletePermanent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	err = s.store.DeletePermanent(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "permanent record not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete permanent record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleOverview(c *gin.Context) {
	from, err := parseDateField(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from: " + err.Error()})
		return
	}
	to, err := parseDateField(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to: " + err.Error()})
		return
	}

	overview, err := s.store.Overview(c.Request.Context(), from, to)
	if err != nil {
		s.log.Error("overview query failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch overview"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDateField parses the optional date inputs the dashboard sends.
// Empty means absent; anything unparsable is an input error.
func parseDateField(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("unrecognized date format")
}
