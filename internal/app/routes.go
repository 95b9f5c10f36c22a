package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/middleware"
	"github.com/simp-lee/bookshelf/internal/pkg"
	"github.com/simp-lee/bookshelf/internal/route"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Table   *route.Table
	Modules []Module
	Views   map[route.View]gin.HandlerFunc
	// Static serves /static/*; nil disables static assets.
	Static      fs.FS
	CacheStatic bool
	DB          *gorm.DB
	CSRF        middleware.CSRFConfig
	Metrics     *middleware.Metrics
	MetricsPath string
}

// RegisterRoutes mounts everything under the table's base path: static
// assets, health, metrics, the JSON API and one page per route.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if deps.Table == nil {
		return errors.New("route table is nil")
	}
	if strings.TrimSpace(deps.CSRF.Secret) == "" {
		return errors.New("csrf secret is required")
	}

	root := r.Group(deps.Table.Base())

	if deps.Static != nil {
		root.GET("/static/*filepath", staticHandler(deps.Table.Join("/static"), deps.Static, deps.CacheStatic))
	}

	root.GET("/health", healthHandler(deps.DB))

	if deps.Metrics != nil {
		root.GET(deps.MetricsPath, gin.WrapH(deps.Metrics.Handler()))
	}

	api := root.Group("/api/v1")
	registerRouteAPI(api, deps.Table)
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	pages := root.Group("/", middleware.CSRF(deps.CSRF))
	if err := mountViews(pages, deps.Table, deps.Views); err != nil {
		return fmt.Errorf("mount views: %w", err)
	}

	r.NoRoute(noRouteHandler(deps.Table.Join("/api/")))

	return nil
}

// healthHandler pings the database with a one second deadline.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if err := pingDB(c.Request.Context(), db); err != nil {
			dbStatus = "error"
		}

		status, code := "ok", http.StatusOK
		if dbStatus != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"components": gin.H{"database": dbStatus},
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// noRouteHandler answers unmatched paths: JSON under the API prefix, an error
// page or JSON elsewhere depending on Accept.
func noRouteHandler(apiPrefix string) gin.HandlerFunc {
	apiRoot := strings.TrimSuffix(apiPrefix, "/")
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == apiRoot || strings.HasPrefix(p, apiPrefix) {
			pkg.NotFound(c, "not found")
			return
		}
		renderError(c, http.StatusNotFound, "not found")
	}
}

// staticHandler serves files from fsys under prefix. With cache set, responses
// carry a one day Cache-Control header.
func staticHandler(prefix string, fsys fs.FS, cache bool) gin.HandlerFunc {
	fileServer := http.StripPrefix(prefix, http.FileServer(http.FS(fsys)))
	return func(c *gin.Context) {
		if cache {
			c.Header("Cache-Control", "public, max-age=86400")
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
