// Package routes wires the HTTP surface onto an echo instance.
package routes

import (
	"net/http"

	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/handler/admin"
	"github.com/camly/storefront/internal/handler/og"
	"github.com/camly/storefront/internal/handler/storefront"
	appmw "github.com/camly/storefront/internal/middleware"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Deps carries every handler the router mounts.
type Deps struct {
	Catalog *storefront.CatalogHandler
	Content *storefront.ContentHandler
	OG      *og.Handler
	Auth    *admin.AuthHandler
	Sync    *admin.SyncHandler
	Metrics *appmw.Metrics
	Log     zerolog.Logger

	// AssetsDir serves the SPA's static assets; empty disables it.
	AssetsDir string
}

// Register mounts all routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = errorHandler(d.Log)
	e.Use(echomw.Recover())
	e.Use(appmw.RequestLogger(d.Log))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(echomw.GzipWithConfig(echomw.GzipConfig{
		Skipper: func(c echo.Context) bool { return c.Path() == "/metrics" },
	}))

	api := e.Group("/api")
	api.GET("/products", d.Catalog.List)
	api.GET("/products/:id", d.Catalog.Get)
	api.GET("/suggest", d.Catalog.Suggest)
	api.GET("/menu", d.Content.Menu)
	api.GET("/categories", d.Content.Categories)
	api.GET("/tags", d.Content.Tags)
	api.GET("/sizes", d.Content.Sizes)
	api.GET("/pages", d.Content.Pages)
	api.GET("/pages/:key", d.Content.Page)
	api.GET("/announcements", d.Content.Announcements)

	adm := api.Group("/admin")
	adm.POST("/login", d.Auth.Login)
	adm.POST("/sync", d.Sync.Trigger, d.Auth.Middleware())
	adm.GET("/sync", d.Sync.Status, d.Auth.Middleware())

	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if d.AssetsDir != "" {
		e.Static("/assets", d.AssetsDir)
	}
	e.GET("/*", d.OG.Serve)
}

// errorHandler maps domain error codes to HTTP statuses and hides internal
// details behind a generic message.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := domain.ErrorMessage(err)

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
		} else {
			switch domain.ErrorCode(err) {
			case domain.EINVALID:
				status = http.StatusBadRequest
			case domain.ENOTFOUND:
				status = http.StatusNotFound
			case domain.EUNAUTHORIZED:
				status = http.StatusUnauthorized
			case domain.EUNAVAILABLE:
				status = http.StatusServiceUnavailable
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		}

		var resErr error
		if c.Request().Method == http.MethodHead {
			resErr = c.NoContent(status)
		} else {
			resErr = c.JSON(status, map[string]string{"error": message})
		}
		if resErr != nil {
			log.Error().Err(resErr).Msg("error response write failed")
		}
	}
}
