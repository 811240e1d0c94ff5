package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sheezylodhi/Scrapper/config"
	"github.com/Sheezylodhi/Scrapper/models"
	"github.com/Sheezylodhi/Scrapper/scraper/sites"
	"github.com/Sheezylodhi/Scrapper/storage"
)

// fakeStore keeps everything in memory so handler behavior is testable
// without a database.
type fakeStore struct {
	listings  []models.Listing
	permanent []models.Listing
	admins    map[string]string // username -> bcrypt hash
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{admins: map[string]string{}, nextID: 1}
}

func (f *fakeStore) UpsertListings(_ context.Context, listings []models.Listing) (int, error) {
	for _, l := range listings {
		l.ID = f.nextID
		f.nextID++
		f.listings = append(f.listings, l)
	}
	return len(listings), nil
}

func (f *fakeStore) ActiveListings(_ context.Context) ([]models.Listing, error) {
	return f.listings, nil
}

func (f *fakeStore) DeleteListing(_ context.Context, id int64) error {
	for i, l := range f.listings {
		if l.ID == id {
			f.listings = append(f.listings[:i], f.listings[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) PurgeExpired(_ context.Context) (int64, error) { return 0, nil }

func (f *fakeStore) Promote(_ context.Context, l models.Listing) (bool, error) {
	for _, p := range f.permanent {
		if p.ProductLink == l.ProductLink {
			return false, nil
		}
	}
	l.ID = f.nextID
	f.nextID++
	f.permanent = append(f.permanent, l)
	return true, nil
}

func (f *fakeStore) PromoteMany(ctx context.Context, listings []models.Listing) (int, error) {
	saved := 0
	for _, l := range listings {
		ok, _ := f.Promote(ctx, l)
		if ok {
			saved++
		}
	}
	return saved, nil
}

func (f *fakeStore) PermanentListings(_ context.Context) ([]models.Listing, error) {
	return f.permanent, nil
}

func (f *fakeStore) DeletePermanent(_ context.Context, id int64) error {
	for i, l := range f.permanent {
		if l.ID == id {
			f.permanent = append(f.permanent[:i], f.permanent[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) Overview(_ context.Context, _, _ *time.Time) (storage.Overview, error) {
	return storage.Overview{
		TempCount: int64(len(f.listings)),
		PermCount: int64(len(f.permanent)),
	}, nil
}

func (f *fakeStore) AdminByUsername(_ context.Context, username string) (int64, string, error) {
	hash, ok := f.admins[username]
	if !ok {
		return 0, "", storage.ErrNotFound
	}
	return 1, hash, nil
}

func newTestServer(t *testing.T, store Store) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.JWTSecret = "test-secret"
	return New(cfg, store, sites.NewRegistry(cfg))
}

func seedAdmin(t *testing.T, f *fakeStore, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	f.admins[username] = string(hash)
}

func doJSON(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler, username, password string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	seedAdmin(t, store, "admin", "hunter22hunter22")
	r := newTestServer(t, store).Router()

	t.Run("success", func(t *testing.T) {
		token := login(t, r, "admin", "hunter22hunter22")
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "admin", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "nobody", "password": "whatever",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	store := newFakeStore()
	r := newTestServer(t, store).Router()

	w := doJSON(r, http.MethodGet, "/api/listings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/listings", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListingsAndDelete(t *testing.T) {
	store := newFakeStore()
	seedAdmin(t, store, "admin", "hunter22hunter22")
	store.listings = []models.Listing{
		{ID: 7, Title: "1967 Mustang", ProductLink: "https://x.test/1", SiteName: "ebay"},
	}
	r := newTestServer(t, store).Router()
	token := login(t, r, "admin", "hunter22hunter22")

	w := doJSON(r, http.MethodGet, "/api/listings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Results []models.Listing `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "1967 Mustang", resp.Results[0].Title)

	w = doJSON(r, http.MethodDelete, "/api/listings/7", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/listings/7", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/listings/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPromote(t *testing.T) {
	store := newFakeStore()
	seedAdmin(t, store, "admin", "hunter22hunter22")
	r := newTestServer(t, store).Router()
	token := login(t, r, "admin", "hunter22hunter22")

	listing := models.Listing{Title: "1957 Bel Air", ProductLink: "https://x.test/2", SiteName: "hemmings"}

	w := doJSON(r, http.MethodPost, "/api/permanent", token, listing)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	// promoting the same link again is a no-op, not an error
	w = doJSON(r, http.MethodPost, "/api/permanent", token, listing)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exists":true`)

	// bulk promote counts only the newly saved
	bulk := []models.Listing{
		listing,
		{Title: "1971 Corvette", ProductLink: "https://x.test/3", SiteName: "ebay"},
	}
	w = doJSON(r, http.MethodPost, "/api/permanent", token, bulk)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"savedCount":1`)

	w = doJSON(r, http.MethodGet, "/api/permanent", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Results []models.Listing `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 2)
}

func TestOverview(t *testing.T) {
	store := newFakeStore()
	seedAdmin(t, store, "admin", "hunter22hunter22")
	store.listings = []models.Listing{{ID: 1, Title: "A", ProductLink: "https://x.test/1"}}
	store.permanent = []models.Listing{{ID: 2, Title: "B", ProductLink: "https://x.test/2"}}
	r := newTestServer(t, store).Router()
	token := login(t, r, "admin", "hunter22hunter22")

	w := doJSON(r, http.MethodGet, "/api/overview", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var o storage.Overview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	assert.Equal(t, int64(1), o.TempCount)
	assert.Equal(t, int64(1), o.PermCount)

	w = doJSON(r, http.MethodGet, "/api/overview?from=not-a-date", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrapeValidation(t *testing.T) {
	store := newFakeStore()
	seedAdmin(t, store, "admin", "hunter22hunter22")
	r := newTestServer(t, store).Router()
	token := login(t, r, "admin", "hunter22hunter22")

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/scrape", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unsupported site", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/scrape", token, map[string]string{
			"searchUrl": "https://example.com/search",
			"siteName":  "AutoTrader",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unsupported site")
	})

	t.Run("bad date", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/scrape", token, map[string]string{
			"searchUrl": "https://example.com/search",
			"siteName":  "eBay",
			"fromDate":  "last tuesday",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestParseDateField(t *testing.T) {
	t.Parallel()

	got, err := parseDateField("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDateField("2026-08-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC), *got)

	_, err = parseDateField("15/08/2026")
	assert.Error(t, err)
}
