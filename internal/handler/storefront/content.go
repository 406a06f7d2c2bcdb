package storefront

import (
	"net/http"
	"time"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ContentHandler serves the navigation, category, tag, page and
// announcement endpoints.
type ContentHandler struct {
	store *catalog.Store
	log   zerolog.Logger
}

// NewContentHandler builds a ContentHandler.
func NewContentHandler(store *catalog.Store, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		store: store,
		log:   log.With().Str("handler", "content").Logger(),
	}
}

// Menu serves GET /api/menu, the public navigation tree.
func (h *ContentHandler) Menu(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"menu": h.store.Menu()})
}

// Categories serves GET /api/categories.
func (h *ContentHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"categories": h.store.Categories()})
}

// Tags serves GET /api/tags.
func (h *ContentHandler) Tags(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"tags": h.store.Tags()})
}

// Sizes serves GET /api/sizes, the global size catalog for the filter UI.
func (h *ContentHandler) Sizes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"sizes": h.store.Sizes()})
}

type pageSummary struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Pages serves GET /api/pages, keys and titles only.
func (h *ContentHandler) Pages(c echo.Context) error {
	pages := h.store.Pages()
	out := make([]pageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageSummary{Key: p.Key, Title: p.Title})
	}
	return c.JSON(http.StatusOK, map[string]any{"pages": out})
}

// Page serves GET /api/pages/:key with the full body.
func (h *ContentHandler) Page(c echo.Context) error {
	key := c.Param("key")
	p, ok := h.store.Page(key)
	if !ok {
		return domain.NotFound("storefront.Page", "page", key)
	}
	return c.JSON(http.StatusOK, p)
}

// Announcements serves GET /api/announcements, the ticker messages active
// right now.
func (h *ContentHandler) Announcements(c echo.Context) error {
	list := h.store.ActiveAnnouncements(time.Now())
	texts := make([]string, 0, len(list))
	for _, a := range list {
		texts = append(texts, a.Text)
	}
	return c.JSON(http.StatusOK, map[string]any{"announcements": texts})
}
