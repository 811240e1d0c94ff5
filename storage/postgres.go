package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/models"
)

// Store owns the two listing tables: `listings` is the temporary store
// whose rows expire, `permanent_listings` holds explicitly promoted
// records. product_link is the upsert key in both — re-scraping a site
// updates rows instead of duplicating them.
type Store struct {
	pool *pgxpool.Pool
}

var ErrNotFound = errors.New("not found")

func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(dialCtx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS listings (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		price TEXT,
		image TEXT,
		product_link TEXT NOT NULL UNIQUE,
		seller_name TEXT,
		seller_profile TEXT,
		seller_contact TEXT,
		seller_email TEXT,
		posted_date TEXT,
		description TEXT,
		site_name TEXT NOT NULL,
		scraped_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_listings_expires_at ON listings(expires_at);
	CREATE INDEX IF NOT EXISTS idx_listings_scraped_at ON listings(scraped_at);

	CREATE TABLE IF NOT EXISTS permanent_listings (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		price TEXT,
		image TEXT,
		product_link TEXT NOT NULL UNIQUE,
		seller_name TEXT,
		seller_profile TEXT,
		seller_contact TEXT,
		seller_email TEXT,
		site_name TEXT,
		scraped_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS admins (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// UpsertListings writes a scrape's output into the temporary store,
// overwriting earlier rows with the same product_link.
func (s *Store) UpsertListings(ctx context.Context, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	insertSQL := `
	INSERT INTO listings (
		title, price, image, product_link, seller_name, seller_profile,
		seller_contact, seller_email, posted_date, description, site_name,
		scraped_at, expires_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (product_link) DO UPDATE SET
		title = EXCLUDED.title,
		price = EXCLUDED.price,
		image = EXCLUDED.image,
		seller_name = EXCLUDED.seller_name,
		seller_profile = EXCLUDED.seller_profile,
		seller_contact = EXCLUDED.seller_contact,
		seller_email = EXCLUDED.seller_email,
		posted_date = EXCLUDED.posted_date,
		description = EXCLUDED.description,
		site_name = EXCLUDED.site_name,
		scraped_at = EXCLUDED.scraped_at,
		expires_at = EXCLUDED.expires_at;
	`

	enqueued := 0
	for _, l := range listings {
		title := strings.TrimSpace(l.Title)
		link := strings.TrimSpace(l.ProductLink)
		if title == "" || link == "" {
			continue
		}
		batch.Queue(insertSQL,
			title, l.Price, l.Image, link, l.SellerName, l.SellerProfileLink,
			l.SellerContact, l.SellerEmail, l.PostedDate, l.Description,
			l.SiteName, l.ScrapedAt, l.ExpiresAt,
		)
		enqueued++
	}
	if enqueued == 0 {
		return 0, nil
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < enqueued; i++ {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("batch upsert failed at row %d: %w", i, err)
		}
	}
	return enqueued, nil
}

const listingColumns = `
	id, title, COALESCE(price,''), COALESCE(image,''), product_link,
	COALESCE(seller_name,''), COALESCE(seller_profile,''),
	COALESCE(seller_contact,''), COALESCE(seller_email,''),
	COALESCE(posted_date,''), COALESCE(description,''), site_name,
	scraped_at, expires_at`

// ActiveListings returns unexpired temporary rows, newest scrape first.
func (s *Store) ActiveListings(ctx context.Context) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE expires_at > NOW()
		ORDER BY scraped_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var out []models.Listing
	for rows.Next() {
		var l models.Listing
		var expires time.Time
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Price, &l.Image, &l.ProductLink,
			&l.SellerName, &l.SellerProfileLink, &l.SellerContact,
			&l.SellerEmail, &l.PostedDate, &l.Description, &l.SiteName,
			&l.ScrapedAt, &expires,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		l.ExpiresAt = &expires
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) DeleteListing(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired removes temporary rows past their expiry.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge expired listings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Promote copies one listing into the permanent store. Promoting a link
// that is already permanent is a no-op, reported via the bool.
func (s *Store) Promote(ctx context.Context, l models.Listing) (bool, error) {
	if strings.TrimSpace(l.ProductLink) == "" {
		return false, errors.New("productLink required")
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO permanent_listings (
			title, price, image, product_link, seller_name, seller_profile,
			seller_contact, seller_email, site_name, scraped_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (product_link) DO NOTHING`,
		l.Title, l.Price, l.Image, l.ProductLink, l.SellerName,
		l.SellerProfileLink, l.SellerContact, l.SellerEmail, l.SiteName,
		l.ScrapedAt,
	)
	if err != nil {
		return false, fmt.Errorf("promote %s: %w", l.ProductLink, err)
	}
	return tag.RowsAffected() > 0, nil
}

// PromoteMany bulk-promotes and returns how many were newly saved.
func (s *Store) PromoteMany(ctx context.Context, listings []models.Listing) (int, error) {
	saved := 0
	for _, l := range listings {
		ok, err := s.Promote(ctx, l)
		if err != nil {
			return saved, err
		}
		if ok {
			saved++
		}
	}
	return saved, nil
}

// PermanentListings returns the permanent store, newest scrape first.
func (s *Store) PermanentListings(ctx context.Context) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, COALESCE(price,''), COALESCE(image,''), product_link,
			COALESCE(seller_name,''), COALESCE(seller_profile,''),
			COALESCE(seller_contact,''), COALESCE(seller_email,''),
			COALESCE(site_name,''), COALESCE(scraped_at, created_at)
		FROM permanent_listings
		ORDER BY scraped_at DESC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("query permanent listings: %w", err)
	}
	defer rows.Close()

	var out []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Price, &l.Image, &l.ProductLink,
			&l.SellerName, &l.SellerProfileLink, &l.SellerContact,
			&l.SellerEmail, &l.SiteName, &l.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("scan permanent listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) DeletePermanent(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM permanent_listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete permanent listing %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Overview counts both stores inside an optional scraped-at window.
type Overview struct {
	TempCount int64 `json:"tempCount"`
	PermCount int64 `json:"permCount"`
}

func (s *Store) Overview(ctx context.Context, from, to *time.Time) (Overview, error) {
	var o Overview

	cond, args := scrapedAtFilter(from, to)
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listings WHERE expires_at > NOW()`+cond, args...,
	).Scan(&o.TempCount); err != nil {
		return o, fmt.Errorf("count temporary listings: %w", err)
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM permanent_listings WHERE TRUE`+cond, args...,
	).Scan(&o.PermCount); err != nil {
		return o, fmt.Errorf("count permanent listings: %w", err)
	}
	return o, nil
}

func scrapedAtFilter(from, to *time.Time) (string, []any) {
	var cond strings.Builder
	var args []any
	if from != nil {
		args = append(args, *from)
		fmt.Fprintf(&cond, " AND scraped_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		fmt.Fprintf(&cond, " AND scraped_at <= $%d", len(args))
	}
	return cond.String(), args
}

// AdminByUsername looks a dashboard user up for login.
func (s *Store) AdminByUsername(ctx context.Context, username string) (id int64, passwordHash string, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT id, password_hash FROM admins WHERE username = $1`, username,
	).Scan(&id, &passwordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("query admin %q: %w", username, err)
	}
	return id, passwordHash, nil
}

// CreateAdmin inserts or replaces a dashboard user.
func (s *Store) CreateAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admins (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		username, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("create admin %q: %w", username, err)
	}
	return nil
}
