package app

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/middleware"
	"github.com/simp-lee/bookshelf/internal/pkg"
	"github.com/simp-lee/bookshelf/internal/route"
	"github.com/simp-lee/bookshelf/web"
)

const testCSRFSecret = "route-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// echoViews answers each view with its name and the route name in context.
func echoViews() map[route.View]gin.HandlerFunc {
	views := make(map[route.View]gin.HandlerFunc)
	for _, v := range []route.View{ViewMain, ViewAuthors, ViewBooks, ViewGenres} {
		view := v
		views[view] = func(c *gin.Context) {
			c.String(http.StatusOK, "view=%s route=%s", view, pkg.CurrentRoute(c))
		}
	}
	return views
}

func staticTestFS() fstest.MapFS {
	return fstest.MapFS{
		"css/app.css": &fstest.MapFile{Data: []byte("body{}")},
	}
}

type testSite struct {
	engine *gin.Engine
	table  *route.Table
}

func newTestSite(t *testing.T, base string, mutate func(*RouteDeps)) testSite {
	t.Helper()
	table, err := NewRouteTable(base, "web")
	if err != nil {
		t.Fatalf("NewRouteTable() error = %v", err)
	}
	renderer, err := NewTemplateRenderer(web.EmbeddedFS, false, table)
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error = %v", err)
	}

	r := gin.New()
	r.RedirectFixedPath = true
	r.HTMLRender = renderer

	deps := &RouteDeps{
		Table:  table,
		Views:  echoViews(),
		Static: staticTestFS(),
		DB:     openTestSQLiteDB(t),
		CSRF:   middleware.CSRFConfig{Secret: testCSRFSecret, CookiePath: table.Base()},
	}
	if mutate != nil {
		mutate(deps)
	}
	if err := RegisterRoutes(r, deps); err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}
	return testSite{engine: r, table: table}
}

func (s testSite) get(target, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return body
}

type mockModule struct {
	called bool
}

func (m *mockModule) RegisterRoutes(api *gin.RouterGroup) {
	m.called = true
	api.GET("/mock", func(c *gin.Context) { pkg.Success(c, "mock") })
}

func TestRegisterRoutes_Errors(t *testing.T) {
	table, _ := NewRouteTable("/", "web")
	valid := func() *RouteDeps {
		return &RouteDeps{Table: table, Views: echoViews(), CSRF: middleware.CSRFConfig{Secret: "s"}}
	}

	tests := []struct {
		name   string
		engine *gin.Engine
		deps   func() *RouteDeps
		want   string
	}{
		{"nil router", nil, valid, "router is nil"},
		{"nil deps", gin.New(), func() *RouteDeps { return nil }, "dependencies are nil"},
		{"nil table", gin.New(), func() *RouteDeps { d := valid(); d.Table = nil; return d }, "route table is nil"},
		{"empty csrf secret", gin.New(), func() *RouteDeps { d := valid(); d.CSRF.Secret = " "; return d }, "csrf secret is required"},
		{"nil module", gin.New(), func() *RouteDeps { d := valid(); d.Modules = []Module{nil}; return d }, "module at index 0 is nil"},
		{"missing view", gin.New(), func() *RouteDeps { d := valid(); delete(d.Views, ViewGenres); return d }, `no handler for view "Genres"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RegisterRoutes(tt.engine, tt.deps())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("RegisterRoutes() error = %v; want containing %q", err, tt.want)
			}
		})
	}
}

func TestRegisterRoutes_ModulesMountedUnderAPI(t *testing.T) {
	m := &mockModule{}
	site := newTestSite(t, "/library", func(d *RouteDeps) { d.Modules = []Module{m} })

	if !m.called {
		t.Fatal("module RegisterRoutes was not called")
	}
	if w := site.get("/library/api/v1/mock", ""); w.Code != http.StatusOK {
		t.Errorf("GET /library/api/v1/mock status = %d; want 200", w.Code)
	}
}

func TestPages_EveryRouteServesItsView(t *testing.T) {
	for _, base := range []string{"/", "/library"} {
		site := newTestSite(t, base, nil)
		for _, r := range site.table.Routes() {
			target := site.table.Join(r.Path)
			t.Run(target, func(t *testing.T) {
				w := site.get(target, "")
				if w.Code != http.StatusOK {
					t.Fatalf("status = %d; want 200", w.Code)
				}
				want := "view=" + string(r.View) + " route=" + r.Name
				if w.Body.String() != want {
					t.Errorf("body = %q; want %q", w.Body.String(), want)
				}
			})
		}
	}
}

func TestPages_PathVariantsRedirect(t *testing.T) {
	site := newTestSite(t, "/library", nil)

	tests := []struct {
		target   string
		location string
	}{
		{"/library/BOOKS", "/library/books"},
		{"/library/books/", "/library/books"},
		{"/library", "/library/"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := site.get(tt.target, "")
			if w.Code != http.StatusMovedPermanently {
				t.Fatalf("status = %d; want 301", w.Code)
			}
			if got := w.Header().Get("Location"); got != tt.location {
				t.Errorf("Location = %q; want %q", got, tt.location)
			}
		})
	}
}

func TestPages_SetCSRFCookieOnBasePath(t *testing.T) {
	site := newTestSite(t, "/library", nil)
	w := site.get("/library/genres", "")

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "_csrf_token" {
			found = true
			if c.Path != "/library" {
				t.Errorf("cookie path = %q; want /library", c.Path)
			}
		}
	}
	if !found {
		t.Error("page response has no CSRF cookie")
	}
}

func TestNoRoute_OutsideBase(t *testing.T) {
	site := newTestSite(t, "/library", nil)

	w := site.get("/books", "text/html")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Page not found") {
		t.Errorf("body should be the 404 page, got %q", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `href="/library/"`) {
		t.Error("404 page links should honour the base path")
	}
}

func TestNoRoute_JSON(t *testing.T) {
	site := newTestSite(t, "/library", nil)

	tests := []struct {
		name   string
		target string
		accept string
	}{
		{"api path", "/library/api/v1/publishers", "text/html"},
		{"api root", "/library/api", "*/*"},
		{"json client", "/library/nowhere", "application/json"},
		{"non html client", "/library/nowhere", "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := site.get(tt.target, tt.accept)
			if w.Code != http.StatusNotFound {
				t.Fatalf("status = %d; want 404", w.Code)
			}
			body := decodeResponse(t, w)
			if body["message"] != "not found" || body["code"] != float64(http.StatusNotFound) {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestRouteAPI_List(t *testing.T) {
	site := newTestSite(t, "/library", nil)
	w := site.get("/library/api/v1/routes", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	var body struct {
		Data []routeInfo `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []routeInfo{
		{Name: "main", Path: "/", Href: "/library/", View: ViewMain},
		{Name: "authors", Path: "/authors", Href: "/library/authors", View: ViewAuthors},
		{Name: "books", Path: "/books", Href: "/library/books", View: ViewBooks},
		{Name: "genres", Path: "/genres", Href: "/library/genres", View: ViewGenres},
	}
	if len(body.Data) != len(want) {
		t.Fatalf("got %d routes; want %d", len(body.Data), len(want))
	}
	for i := range want {
		if body.Data[i] != want[i] {
			t.Errorf("route %d = %+v; want %+v", i, body.Data[i], want[i])
		}
	}
}

func TestRouteAPI_Resolve(t *testing.T) {
	site := newTestSite(t, "/library", nil)

	tests := []struct {
		query    string
		wantCode int
		wantName string
	}{
		{"?path=/library/Books/", http.StatusOK, "books"},
		{"?path=/library", http.StatusOK, "main"},
		{"?path=/books", http.StatusNotFound, ""},
		{"?path=/library/publishers", http.StatusNotFound, ""},
		{"", http.StatusBadRequest, ""},
		{"?path=%20", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := site.get("/library/api/v1/routes/resolve"+tt.query, "")
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d", w.Code, tt.wantCode)
			}
			if tt.wantName == "" {
				return
			}
			var body struct {
				Data routeInfo `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Data.Name != tt.wantName {
				t.Errorf("name = %q; want %q", body.Data.Name, tt.wantName)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	for _, cache := range []bool{false, true} {
		site := newTestSite(t, "/library", func(d *RouteDeps) { d.CacheStatic = cache })
		w := site.get("/library/static/css/app.css", "")
		if w.Code != http.StatusOK {
			t.Fatalf("cache=%v status = %d; want 200", cache, w.Code)
		}
		if w.Body.String() != "body{}" {
			t.Errorf("body = %q", w.Body.String())
		}
		got := w.Header().Get("Cache-Control")
		if cache && got != "public, max-age=86400" {
			t.Errorf("Cache-Control = %q; want one day", got)
		}
		if !cache && got != "" {
			t.Errorf("Cache-Control = %q; want none", got)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := middleware.NewMetrics()
	site := newTestSite(t, "/library", func(d *RouteDeps) {
		d.Metrics = m
		d.MetricsPath = "/metrics"
	})

	w := site.get("/library/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("metrics exposition missing runtime collector")
	}
}

func TestHealthHandler_OK(t *testing.T) {
	site := newTestSite(t, "/library", nil)
	w := site.get("/library/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	body := decodeResponse(t, w)
	if body["status"] != "ok" {
		t.Errorf("status = %v; want ok", body["status"])
	}
	if comps, _ := body["components"].(map[string]any); comps["database"] != "ok" {
		t.Errorf("components = %v", body["components"])
	}
}

func TestHealthHandler_DBDown(t *testing.T) {
	r := gin.New()
	db := openTestSQLiteDB(t)
	sqlDB, _ := db.DB()
	sqlDB.Close()
	r.GET("/health", healthHandler(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
	body := decodeResponse(t, w)
	if body["status"] != "degraded" {
		t.Errorf("status = %v; want degraded", body["status"])
	}
}

func TestHealthHandler_NilDB(t *testing.T) {
	r := gin.New()
	r.GET("/health", healthHandler(nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
}

func TestHealthHandler_UsesRequestContextTimeout(t *testing.T) {
	registerBlockingPingDriver()

	sqlDB, err := sql.Open(blockingPingDriverName, "")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	r := gin.New()
	r.GET("/health", healthHandler(db))

	reqCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	t.Cleanup(cancel)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(reqCtx)

	start := time.Now()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Fatalf("health check ignored the request deadline, elapsed=%v", elapsed)
	}
}

func openTestSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

const blockingPingDriverName = "bookshelf_blocking_ping"

var registerBlockingPingDriverOnce sync.Once

func registerBlockingPingDriver() {
	registerBlockingPingDriverOnce.Do(func() {
		sql.Register(blockingPingDriverName, blockingPingDriver{})
	})
}

type blockingPingDriver struct{}

func (blockingPingDriver) Open(string) (driver.Conn, error) {
	return blockingPingConn{}, nil
}

type blockingPingConn struct{}

func (blockingPingConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (blockingPingConn) Close() error                        { return nil }
func (blockingPingConn) Begin() (driver.Tx, error)           { return blockingPingTx{}, nil }

func (blockingPingConn) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type blockingPingTx struct{}

func (blockingPingTx) Commit() error   { return nil }
func (blockingPingTx) Rollback() error { return nil }
