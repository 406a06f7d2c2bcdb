package storefront

import (
	"net/http"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/pricing"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// CatalogHandler serves the product listing, the quick-view detail and the
// search suggestions.
type CatalogHandler struct {
	store *catalog.Store
	log   zerolog.Logger
}

// NewCatalogHandler builds a CatalogHandler.
func NewCatalogHandler(store *catalog.Store, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		store: store,
		log:   log.With().Str("handler", "catalog").Logger(),
	}
}

type listResponse struct {
	Count    int              `json:"count"`
	Products []domain.Product `json:"products"`
}

// List serves GET /api/products: category scoping, then search, then the
// ANDed filters and the requested sort.
func (h *CatalogHandler) List(c echo.Context) error {
	params := c.QueryParams()

	base := h.store.ProductsIn(params.Get(paramCategory))
	if q := params.Get(paramQuery); q != "" {
		base = catalog.Search(base, q, h.store.CategoryTitles())
	}
	list := catalog.Apply(base, decodeFilter(params))

	return c.JSON(http.StatusOK, listResponse{Count: len(list), Products: list})
}

type detailResponse struct {
	Product     domain.Product      `json:"product"`
	SizeOptions []domain.SizeOption `json:"sizeOptions,omitempty"`
	DefaultSize string              `json:"defaultSize,omitempty"`
	Price       float64             `json:"price,omitempty"`
	HasPrice    bool                `json:"hasPrice"`
}

// Get serves GET /api/products/:id, the quick-view payload. When an active
// price filter is in the query the pre-selected size respects it, matching
// what the shopper filtered for.
func (h *CatalogHandler) Get(c echo.Context) error {
	id := c.Param("id")
	p, ok := h.store.Product(id)
	if !ok {
		return domain.NotFound("storefront.Get", "product", id)
	}

	opts := pricing.SizeOptions(p)
	var rng *domain.PriceRange
	if r := decodePriceRange(c.QueryParam(paramPrice)); r.Active {
		rng = &r
	}
	def := pricing.PickDefaultSize(opts, rng)
	price, hasPrice := pricing.PriceFor(p, def)

	return c.JSON(http.StatusOK, detailResponse{
		Product:     p,
		SizeOptions: opts,
		DefaultSize: def,
		Price:       price,
		HasPrice:    hasPrice,
	})
}

// Suggest serves GET /api/suggest for the search-as-you-type dropdown.
func (h *CatalogHandler) Suggest(c echo.Context) error {
	q := c.QueryParam(paramQuery)
	suggestions := catalog.Suggest(q, h.store.Categories(), h.store.Products(), h.store.Tags())
	if suggestions == nil {
		suggestions = []catalog.Suggestion{}
	}
	return c.JSON(http.StatusOK, map[string]any{"suggestions": suggestions})
}
