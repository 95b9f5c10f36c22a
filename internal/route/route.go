// Package route declares the page route table: an ordered, immutable set of
// routes that map a symbolic name and a URL path to the view rendered there.
//
// A Table holds only a View key for each route. The view layer owns the
// handler bound to that key, so the table stays free of rendering concerns
// and can be consulted by the HTTP router, navigation menus and the route
// introspection API alike.
package route

import (
	"errors"
	"fmt"
	"strings"
)

// View identifies the view component rendered for a route.
type View string

// Route associates a URL path and a symbolic name with a view.
type Route struct {
	Name string `json:"name"`
	Path string `json:"path"`
	View View   `json:"view"`
}

// Errors returned by NewTable. They are wrapped with the offending route.
var (
	ErrEmptyName     = errors.New("route name is empty")
	ErrEmptyView     = errors.New("route view is empty")
	ErrInvalidPath   = errors.New("route path is invalid")
	ErrDuplicateName = errors.New("duplicate route name")
	ErrDuplicatePath = errors.New("duplicate route path")
	ErrInvalidBase   = errors.New("base path is invalid")
	ErrUnknownRoute  = errors.New("unknown route")
	ErrHistoryMode   = errors.New("unsupported history mode")
)

// HistoryWeb selects path-based (HTML5) history: each route is addressed by
// its own URL path under the base path.
const HistoryWeb = "web"

// validate checks a single route in isolation.
func (r Route) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(string(r.View)) == "" {
		return ErrEmptyView
	}
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("%w: %q must start with '/'", ErrInvalidPath, r.Path)
	}
	if strings.ContainsAny(r.Path, ":*{}?#") {
		return fmt.Errorf("%w: %q must be a static path", ErrInvalidPath, r.Path)
	}
	if strings.Contains(r.Path, "//") {
		return fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPath, r.Path)
	}
	return nil
}

// matchKey folds a path into the form used for lookups: lower case, with one
// trailing slash removed except on the root path. Paths ending in "//" are
// left as they are and so never match a route.
func matchKey(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		if trimmed := strings.TrimSuffix(p, "/"); !strings.HasSuffix(trimmed, "/") {
			p = trimmed
		}
	}
	return strings.ToLower(p)
}
