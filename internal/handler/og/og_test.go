package og_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/handler/og"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) *og.Handler {
	t.Helper()
	store := catalog.NewStore(nil, zerolog.Nop())
	store.SetProducts([]domain.Product{
		{
			ID:          "p1",
			Name:        "Bánh Kem Dâu",
			Category:    "banh-kem",
			Description: "Bánh kem dâu tươi",
			Images:      []string{"https://img.example/dau.jpg"},
		},
	})
	store.SetCategories([]domain.Category{{Key: "banh-kem", Title: "Bánh Kem"}})

	shell := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(shell, []byte("<html><body>spa shell</body></html>"), 0o644))

	site := og.Site{
		URL:          "https://camly.example",
		Name:         "Cẩm Ly Bakery",
		DefaultTitle: "Cẩm Ly Bakery",
		DefaultDesc:  "Bánh ngon mỗi ngày",
		DefaultImage: "https://img.example/logo.jpg",
	}
	return og.NewHandler(store, site, shell, zerolog.Nop())
}

func serve(t *testing.T, h *og.Handler, target, userAgent string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("User-Agent", userAgent)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Serve(e.NewContext(req, rec)))
	return rec
}

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15"
const crawlerUA = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"

func TestServe_BrowserGetsShell(t *testing.T) {
	h := newHandler(t)

	rec := serve(t, h, "/?pid=p1", browserUA)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spa shell")
}

func TestServe_CrawlerGetsProductMeta(t *testing.T) {
	h := newHandler(t)

	rec := serve(t, h, "/?pid=p1", crawlerUA)

	body := rec.Body.String()
	assert.Contains(t, body, `og:title" content="Bánh Kem Dâu"`)
	assert.Contains(t, body, "https://img.example/dau.jpg")
	assert.Contains(t, body, "Bánh kem dâu tươi")
}

func TestServe_CrawlerProductByName(t *testing.T) {
	h := newHandler(t)

	rec := serve(t, h, "/?pid=banh%20kem%20dau", crawlerUA)

	assert.Contains(t, rec.Body.String(), "Bánh Kem Dâu")
}

func TestServe_CrawlerCategoryMeta(t *testing.T) {
	h := newHandler(t)

	rec := serve(t, h, "/?cat=banh-kem", crawlerUA)

	body := rec.Body.String()
	assert.Contains(t, body, "Bánh Kem")
	assert.Contains(t, body, "https://img.example/dau.jpg", "first product image represents the category")
}

func TestServe_CrawlerViewAliasesCategory(t *testing.T) {
	h := newHandler(t)

	rec := serve(t, h, "/?view=banh-kem", crawlerUA)

	body := rec.Body.String()
	assert.Contains(t, body, "Bánh Kem")
	assert.Contains(t, body, "https://img.example/dau.jpg")
}

func TestServe_CrawlerViewHomeIsNotACategory(t *testing.T) {
	h := newHandler(t)

	rec := serve(t, h, "/?view=home", crawlerUA)

	assert.Contains(t, rec.Body.String(), `og:title" content="Cẩm Ly Bakery"`)
}

func TestServe_CrawlerDefaults(t *testing.T) {
	h := newHandler(t)

	rec := serve(t, h, "/", crawlerUA)

	body := rec.Body.String()
	assert.Contains(t, body, "Cẩm Ly Bakery")
	assert.Contains(t, body, "https://img.example/logo.jpg")
}

func TestServe_ZaloCrawler(t *testing.T) {
	h := newHandler(t)

	rec := serve(t, h, "/?pid=p1", "Zalo/1.0 Zalobot")

	assert.Contains(t, rec.Body.String(), "og:title")
}
