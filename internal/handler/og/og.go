// Package og answers every non-API route: social crawlers get a minimal
// document with Open Graph tags for the deep-linked product, category or
// search, everyone else gets the SPA shell.
package og

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/vntext"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var crawlerPattern = regexp.MustCompile(`(?i)facebookexternalhit|facebot|twitterbot|telegrambot|zalo|linkedinbot|slackbot|whatsapp|discordbot|pinterest|vkshare|skypeuripreview|googlebot`)

// Site is the static identity rendered into OG tags.
type Site struct {
	URL          string
	Name         string
	DefaultTitle string
	DefaultDesc  string
	DefaultImage string
}

// Handler serves the catch-all route.
type Handler struct {
	store *catalog.Store
	site  Site
	shell string // path to the SPA index.html
	log   zerolog.Logger
	tmpl  *template.Template
}

// NewHandler builds the OG responder. shellPath points at the built SPA
// entry document.
func NewHandler(store *catalog.Store, site Site, shellPath string, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		site:  site,
		shell: shellPath,
		log:   log.With().Str("handler", "og").Logger(),
		tmpl:  template.Must(template.New("og").Parse(ogDocument)),
	}
}

// Serve renders OG metadata for crawlers and the SPA shell for browsers.
func (h *Handler) Serve(c echo.Context) error {
	if !crawlerPattern.MatchString(c.Request().UserAgent()) {
		return c.File(h.shell)
	}

	meta := h.metaFor(c.QueryParams())
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().Header().Set("Cache-Control", "public, max-age=300")
	c.Response().WriteHeader(http.StatusOK)
	return h.tmpl.Execute(c.Response(), meta)
}

type ogMeta struct {
	Title       string
	Description string
	Image       string
	URL         string
	SiteName    string
}

// metaFor builds the OG fields for the deep link: a product by pid, a
// category by cat or view, a search by q, falling back to the site
// defaults. view is the legacy name for cat; its "home" value is not a
// category.
func (h *Handler) metaFor(params url.Values) ogMeta {
	meta := ogMeta{
		Title:       h.site.DefaultTitle,
		Description: h.site.DefaultDesc,
		Image:       h.site.DefaultImage,
		URL:         h.site.URL,
		SiteName:    h.site.Name,
	}

	if pid := params.Get("pid"); pid != "" {
		if p, ok := h.findProduct(pid); ok {
			meta.Title = p.Name
			if p.Description != "" {
				meta.Description = p.Description
			}
			if len(p.Images) > 0 {
				meta.Image = p.Images[0]
			}
			meta.URL = h.site.URL + "/?pid=" + url.QueryEscape(pid)
			return meta
		}
	}
	cat := params.Get("cat")
	if cat == "" {
		if v := params.Get("view"); v != "" && v != "home" {
			cat = v
		}
	}
	if cat != "" {
		title := h.store.CategoryTitles()[cat]
		if title == "" {
			title = cat
		}
		products := h.store.ProductsIn(cat)
		meta.Title = title
		meta.Description = fmt.Sprintf("%s (%d sản phẩm)", title, len(products))
		for _, p := range products {
			if len(p.Images) > 0 {
				meta.Image = p.Images[0]
				break
			}
		}
		meta.URL = h.site.URL + "/?cat=" + url.QueryEscape(cat)
		return meta
	}
	if q := strings.TrimSpace(params.Get("q")); q != "" {
		meta.Title = fmt.Sprintf("Tìm kiếm: %s", q)
		meta.URL = h.site.URL + "/?q=" + url.QueryEscape(q)
	}
	return meta
}

// findProduct matches the pid by id first, then by folded name so legacy
// links that carried the display name still resolve.
func (h *Handler) findProduct(pid string) (domain.Product, bool) {
	if p, ok := h.store.Product(pid); ok {
		return p, true
	}
	folded := vntext.Fold(pid)
	for _, p := range h.store.Products() {
		if vntext.Fold(p.Name) == folded {
			return p, true
		}
	}
	return domain.Product{}, false
}

const ogDocument = `<!doctype html>
<html lang="vi">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:type" content="website">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
{{if .Image}}<meta property="og:image" content="{{.Image}}">
{{end}}<meta property="og:url" content="{{.URL}}">
<meta property="og:site_name" content="{{.SiteName}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="description" content="{{.Description}}">
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
</body>
</html>
`
