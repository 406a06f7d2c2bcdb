package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/handler/admin"
	"github.com/camly/storefront/internal/handler/og"
	"github.com/camly/storefront/internal/handler/storefront"
	"github.com/camly/storefront/internal/middleware"
	"github.com/camly/storefront/internal/routes"
	"github.com/camly/storefront/internal/sheets"
	"github.com/camly/storefront/internal/worker"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	store := catalog.NewStore(nil, log)

	shell := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(shell, []byte("<html>shell</html>"), 0o644))

	client := sheets.NewClient("sheet-id", log)
	reg := prometheus.NewRegistry()
	syncer := worker.New(client, store, worker.TabConfig{}, log, worker.WithRegisterer(reg))

	e := echo.New()
	routes.Register(e, routes.Deps{
		Catalog: storefront.NewCatalogHandler(store, log),
		Content: storefront.NewContentHandler(store, log),
		OG:      og.NewHandler(store, og.Site{Name: "Test"}, shell, log),
		Auth:    admin.NewAuthHandler("admin", "", "pw", []byte("secret"), time.Hour, log),
		Sync:    admin.NewSyncHandler(syncer, log),
		Metrics: middleware.NewMetrics(reg),
		Log:     log,
	})
	return e
}

func TestHealthz(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductsEndpointMounted(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDomainErrorsMapToStatus(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "not found")
}

func TestAdminRoutesGuarded(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/sync", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsMounted(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatchAllServesShell(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/some/spa/route", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shell")
}
