package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
	"github.com/simp-lee/bookshelf/internal/route"
)

// Views rendered by the page router.
const (
	ViewMain    route.View = "MainView"
	ViewAuthors route.View = "Authors"
	ViewBooks   route.View = "Books"
	ViewGenres  route.View = "Genres"
)

// catalogRoutes is the navigation table of the site, in menu order.
var catalogRoutes = []route.Route{
	{Name: "main", Path: "/", View: ViewMain},
	{Name: "authors", Path: "/authors", View: ViewAuthors},
	{Name: "books", Path: "/books", View: ViewBooks},
	{Name: "genres", Path: "/genres", View: ViewGenres},
}

var navLabels = map[string]string{
	"main":    "Home",
	"authors": "Authors",
	"books":   "Books",
	"genres":  "Genres",
}

// NewRouteTable builds the catalog route table mounted at base.
func NewRouteTable(base, history string) (*route.Table, error) {
	return route.NewTable(catalogRoutes, route.WithBase(base), route.WithHistory(history))
}

// navItems lists every route of the table as a navigation entry.
func navItems(t *route.Table) []pkg.NavItem {
	routes := t.Routes()
	items := make([]pkg.NavItem, len(routes))
	for i, r := range routes {
		label, ok := navLabels[r.Name]
		if !ok {
			label = r.Name
		}
		items[i] = pkg.NavItem{Name: r.Name, Label: label, Href: t.Join(r.Path)}
	}
	return items
}

// mountViews registers a GET handler on group for every route of the table.
// Every view named by the table must have a handler. Before the view runs,
// the request is tagged with its route name and the navigation.
func mountViews(group *gin.RouterGroup, t *route.Table, views map[route.View]gin.HandlerFunc) error {
	nav := navItems(t)
	for _, r := range t.Routes() {
		h, ok := views[r.View]
		if !ok || h == nil {
			return fmt.Errorf("route %q: no handler for view %q", r.Name, r.View)
		}
		name := r.Name
		setNav := func(c *gin.Context) {
			pkg.SetNav(c, nav, name)
			c.Next()
		}
		group.GET(r.Path, setNav, h)
	}
	return nil
}

// catalogCounts holds the totals shown on the main view.
type catalogCounts struct {
	Authors int64
	Books   int64
	Genres  int64
}

// counter returns the total number of rows for one entity.
type counter func(ctx context.Context) (int64, error)

func countOf[T any](list func(context.Context, domain.PageRequest) (*domain.PageResult[T], error)) counter {
	return func(ctx context.Context) (int64, error) {
		res, err := list(ctx, domain.PageRequest{Page: 1, PageSize: 1})
		if err != nil {
			return 0, err
		}
		return res.Total, nil
	}
}

// mainView renders the landing page with catalog totals.
func mainView(authors domain.AuthorService, books domain.BookService, genres domain.GenreService) gin.HandlerFunc {
	countAuthors := countOf(authors.ListAuthors)
	countBooks := countOf(books.ListBooks)
	countGenres := countOf(genres.ListGenres)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var counts catalogCounts
		var err error
		for _, f := range []struct {
			dst *int64
			fn  counter
		}{
			{&counts.Authors, countAuthors},
			{&counts.Books, countBooks},
			{&counts.Genres, countGenres},
		} {
			if *f.dst, err = f.fn(ctx); err != nil {
				slog.ErrorContext(ctx, "main view counts", slog.Any("error", err))
				c.HTML(http.StatusInternalServerError, "errors/500.html", pkg.PageData(c, nil))
				return
			}
		}

		c.HTML(http.StatusOK, "main.html", pkg.PageData(c, gin.H{
			"Counts": counts,
		}))
	}
}
