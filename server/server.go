package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Sheezylodhi/Scrapper/auth"
	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/models"
	"github.com/Sheezylodhi/Scrapper/scraper/sites"
	"github.com/Sheezylodhi/Scrapper/storage"
)

// Store is the slice of the persistence layer the handlers need. The
// postgres store satisfies it; tests substitute a fake.
type Store interface {
	UpsertListings(ctx context.Context, listings []models.Listing) (int, error)
	ActiveListings(ctx context.Context) ([]models.Listing, error)
	DeleteListing(ctx context.Context, id int64) error
	PurgeExpired(ctx context.Context) (int64, error)
	Promote(ctx context.Context, l models.Listing) (bool, error)
	PromoteMany(ctx context.Context, listings []models.Listing) (int, error)
	PermanentListings(ctx context.Context) ([]models.Listing, error)
	DeletePermanent(ctx context.Context, id int64) error
	Overview(ctx context.Context, from, to *time.Time) (storage.Overview, error)
	AdminByUsername(ctx context.Context, username string) (int64, string, error)
}

// Server is the dashboard API: login, scrape-by-site-name, and CRUD
// over the temporary and permanent stores.
type Server struct {
	cfg      *config.Config
	store    Store
	registry *sites.Registry
	jwt      *auth.JWTManager
	log      *log.Logger
}

func New(cfg *config.Config, store Store, registry *sites.Registry) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		registry: registry,
		jwt:      auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry),
		log:      log.With("component", "server"),
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	api.POST("/auth/login", s.handleLogin)

	authed := api.Group("", s.requireAuth())
	authed.POST("/scrape", s.handleScrape)
	authed.GET("/listings", s.handleListings)
	authed.DELETE("/listings/:id", s.handleDeleteListing)
	authed.GET("/permanent", s.handlePermanent)
	authed.POST("/permanent", s.handlePromote)
	authed.DELETE("/permanent/:id", s.handleDeletePermanent)
	authed.GET("/overview", s.handleOverview)

	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
