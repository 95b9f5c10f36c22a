package route

import (
	"fmt"
	"net/url"
	"strings"
)

// Table is an immutable, ordered route table. It is safe for concurrent use
// because nothing mutates it after NewTable returns.
type Table struct {
	base   string
	routes []Route
	byName map[string]int
	byPath map[string]int
}

// Option configures a Table under construction.
type Option func(*options) error

type options struct {
	base    string
	history string
}

// WithBase mounts every route under the given base path, for example
// "/library". An empty value or "/" mounts the table at the root.
func WithBase(base string) Option {
	return func(o *options) error {
		b, err := NormalizeBase(base)
		if err != nil {
			return err
		}
		o.base = b
		return nil
	}
}

// WithHistory selects the navigation history mode. Only HistoryWeb is
// supported; an empty value means HistoryWeb.
func WithHistory(mode string) Option {
	return func(o *options) error {
		mode = strings.ToLower(strings.TrimSpace(mode))
		if mode == "" {
			mode = HistoryWeb
		}
		if mode != HistoryWeb {
			return fmt.Errorf("%w: %q", ErrHistoryMode, mode)
		}
		o.history = mode
		return nil
	}
}

// NewTable validates routes and builds the table. Route order is kept.
// Names must be unique, and so must paths after case folding and trailing
// slash removal, since those forms match the same requests.
func NewTable(routes []Route, opts ...Option) (*Table, error) {
	o := options{base: "/", history: HistoryWeb}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	t := &Table{
		base:   o.base,
		routes: make([]Route, 0, len(routes)),
		byName: make(map[string]int, len(routes)),
		byPath: make(map[string]int, len(routes)),
	}

	for i, r := range routes {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("route %d (%q): %w", i, r.Name, err)
		}
		if prev, exists := t.byName[r.Name]; exists {
			return nil, fmt.Errorf("route %d (%q): %w: already declared at %d", i, r.Name, ErrDuplicateName, prev)
		}
		key := matchKey(r.Path)
		if prev, exists := t.byPath[key]; exists {
			return nil, fmt.Errorf("route %d (%q): %w: %q conflicts with %q", i, r.Name, ErrDuplicatePath, r.Path, t.routes[prev].Path)
		}

		t.byName[r.Name] = len(t.routes)
		t.byPath[key] = len(t.routes)
		t.routes = append(t.routes, r)
	}

	return t, nil
}

// MustNewTable is like NewTable but panics on error. It is meant for tables
// declared as package-level configuration.
func MustNewTable(routes []Route, opts ...Option) *Table {
	t, err := NewTable(routes, opts...)
	if err != nil {
		panic("route.MustNewTable: " + err.Error())
	}
	return t
}

// Base returns the normalized base path, "/" when the table is mounted at the root.
func (t *Table) Base() string {
	return t.base
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Routes returns a copy of the routes in declaration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Lookup returns the route with the given name.
func (t *Table) Lookup(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Match returns the route whose path matches the request path, or false when
// no route matches. The request path must lie under the base path; the base
// is stripped before the lookup. Letter case and a single trailing slash are
// ignored.
func (t *Table) Match(requestPath string) (Route, bool) {
	rel, ok := t.strip(requestPath)
	if !ok {
		return Route{}, false
	}
	i, ok := t.byPath[matchKey(rel)]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Href returns the absolute link to the named route under the base path.
func (t *Table) Href(name string) (string, error) {
	r, ok := t.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	return t.Join(r.Path), nil
}

// Join prefixes a route path with the base path.
func (t *Table) Join(p string) string {
	if t.base == "/" {
		return p
	}
	if p == "/" {
		return t.base + "/"
	}
	return t.base + p
}

// strip removes the base path from a request path, ignoring letter case. It
// reports false when the path is outside the base.
func (t *Table) strip(p string) (string, bool) {
	if p == "" {
		p = "/"
	}
	if t.base == "/" {
		return p, true
	}
	if len(p) < len(t.base) || !strings.EqualFold(p[:len(t.base)], t.base) {
		return "", false
	}
	rest := p[len(t.base):]
	if rest == "" {
		return "/", true
	}
	if !strings.HasPrefix(rest, "/") {
		// "/library2" is not under "/library".
		return "", false
	}
	return rest, true
}

// NormalizeBase trims s and returns it with a leading slash and without a
// trailing one. An empty value yields "/". Values carrying a scheme, host,
// query or fragment are rejected.
func NormalizeBase(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "/" {
		return "/", nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidBase, s, err)
	}
	if u.Scheme != "" || u.Host != "" || u.RawQuery != "" || u.Fragment != "" || strings.ContainsAny(s, "?#") {
		return "", fmt.Errorf("%w: %q must be a plain path", ErrInvalidBase, s)
	}
	if strings.ContainsAny(s, ":*{}") {
		return "", fmt.Errorf("%w: %q must be a static path", ErrInvalidBase, s)
	}

	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	s = strings.TrimRight(s, "/")
	if s == "" {
		return "/", nil
	}
	if strings.Contains(s, "//") {
		return "", fmt.Errorf("%w: %q contains an empty segment", ErrInvalidBase, s)
	}
	return s, nil
}
