package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/config"
	"github.com/simp-lee/bookshelf/internal/middleware"
	"github.com/simp-lee/bookshelf/internal/module/author"
	"github.com/simp-lee/bookshelf/internal/module/book"
	"github.com/simp-lee/bookshelf/internal/module/genre"
	"github.com/simp-lee/bookshelf/internal/route"
	"github.com/simp-lee/bookshelf/web"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine  *gin.Engine
	db      *gorm.DB
	logger  *logger.Logger
	cfg     *config.Config
	table   *route.Table
	limiter *middleware.RateLimiter
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if timeout > 0 {
		srv.ReadTimeout = timeout
		srv.WriteTimeout = timeout
	}
	return srv
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New wires the application from cfg: logger, database, route table,
// catalog modules, middleware, templates and routes. Resources opened before
// a failure are released.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	table, err := NewRouteTable(cfg.Server.BasePath, cfg.Server.History)
	if err != nil {
		return nil, fmt.Errorf("build route table: %w", err)
	}

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeDB(db, log.Logger)
	}()

	if cfg.Server.Mode == gin.DebugMode {
		if err := config.Migrate(db, log.Logger); err != nil {
			return nil, err
		}
	}

	// repository -> service -> handler
	authorSvc := author.NewAuthorService(author.NewAuthorRepository(db))
	genreSvc := genre.NewGenreService(genre.NewGenreRepository(db))
	bookSvc := book.NewBookService(book.NewBookRepository(db))

	authorMod := author.NewModule(author.NewAuthorHandler(authorSvc), author.NewAuthorPageHandler(authorSvc))
	genreMod := genre.NewModule(genre.NewGenreHandler(genreSvc), genre.NewGenrePageHandler(genreSvc))
	bookMod := book.NewModule(book.NewBookHandler(bookSvc), book.NewBookPageHandler(bookSvc))

	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	// Page paths match case-insensitively, as the route table does.
	engine.RedirectFixedPath = true

	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)
	if err != nil {
		return nil, err
	}

	engine.Use(
		middleware.Recovery(log.Logger, panicResponse),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: false}),
		middleware.Logger(log.Logger),
		middleware.CORS(corsConfig),
	)

	var metrics *middleware.Metrics
	if cfg.Server.Metrics.Enabled {
		metrics = middleware.NewMetrics()
		engine.Use(metrics.Middleware())
	}

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RPS:   cfg.Server.RateLimit.RPS,
			Burst: cfg.Server.RateLimit.Burst,
		})
		engine.Use(limiter.Middleware())
	}

	debug := cfg.Server.Mode == gin.DebugMode
	fsys := fs.FS(web.EmbeddedFS)
	if debug {
		if fsys, err = resolveDebugWebFS(); err != nil {
			return nil, fmt.Errorf("resolve debug web fs: %w", err)
		}
	}

	renderer, err := NewTemplateRenderer(fsys, debug, table)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer

	staticFS, err := fs.Sub(fsys, "static")
	if err != nil {
		return nil, fmt.Errorf("static filesystem: %w", err)
	}

	csrfSecret, err := resolveCSRFSecret(cfg.Server.Mode, cfg.Server.CSRFSecret)
	if err != nil {
		return nil, err
	}
	if csrfSecret != cfg.Server.CSRFSecret {
		log.Warn("no csrf_secret configured, using random secret in non-release mode (will change on restart)")
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Table:   table,
		Modules: []Module{authorMod, bookMod, genreMod},
		Views: map[route.View]gin.HandlerFunc{
			ViewMain:    mainView(authorSvc, bookSvc, genreSvc),
			ViewAuthors: authorMod.ListPage(),
			ViewBooks:   bookMod.ListPage(),
			ViewGenres:  genreMod.ListPage(),
		},
		Static:      staticFS,
		CacheStatic: !debug,
		DB:          db,
		CSRF: middleware.CSRFConfig{
			Secret:     csrfSecret,
			CookiePath: table.Base(),
			Secure:     cfg.Server.Mode == gin.ReleaseMode,
		},
		Metrics:     metrics,
		MetricsPath: cfg.Server.Metrics.Path,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	log.Info("route table ready",
		slog.String("base", table.Base()),
		slog.String("history", cfg.Server.History),
		slog.Int("routes", table.Len()),
	)

	success = true
	return &App{
		engine:  engine,
		db:      db,
		logger:  log,
		cfg:     cfg,
		table:   table,
		limiter: limiter,
	}, nil
}

// Handler returns the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.engine
}

func isPlaceholderCSRFSecret(secret string) bool {
	switch strings.ToLower(strings.TrimSpace(secret)) {
	case "", "change-me-to-a-random-secret", "change-me-in-env":
		return true
	default:
		return false
	}
}

// resolveCSRFSecret returns the configured secret, or a random one outside
// release mode when only a placeholder is configured.
func resolveCSRFSecret(mode, secret string) (string, error) {
	if !isPlaceholderCSRFSecret(secret) {
		return secret, nil
	}
	if mode == gin.ReleaseMode {
		return "", errors.New("csrf_secret must be a non-placeholder value in release mode")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// resolveCORSConfig merges the configured CORS settings over the defaults.
// Without an allow list, release mode denies cross-origin requests.
func resolveCORSConfig(mode string, c config.CORSConfig) (middleware.CORSConfig, error) {
	out := middleware.DefaultCORSConfig()

	switch {
	case len(c.AllowOrigins) > 0:
		out.AllowOrigins = c.AllowOrigins
	case mode == gin.ReleaseMode:
		out.AllowOrigins = []string{}
	}
	if len(c.AllowMethods) > 0 {
		out.AllowMethods = c.AllowMethods
	}
	if len(c.AllowHeaders) > 0 {
		out.AllowHeaders = c.AllowHeaders
	}
	out.AllowCredentials = c.AllowCredentials
	if c.MaxAge != "" {
		d, err := time.ParseDuration(c.MaxAge)
		if err != nil {
			return out, fmt.Errorf("invalid server.cors.max_age %q: %w", c.MaxAge, err)
		}
		out.MaxAge = d
	}
	return out, nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// resolveDebugWebFS finds the web/ directory on disk: next to the source tree
// when run with go run, or next to the executable.
func resolveDebugWebFS() (fs.FS, error) {
	var candidates []string
	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "..", "..", "web"))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "web"))
	}
	for _, dir := range candidates {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return os.DirFS(filepath.Clean(dir)), nil
		}
	}
	return nil, errors.New("debug web directory not found")
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down with a five second
// deadline and closes the database and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	var timeout time.Duration
	if a.cfg.Server.Timeout != "" {
		timeout, _ = time.ParseDuration(a.cfg.Server.Timeout)
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, timeout)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.limiter != nil {
		go sweepLimiter(ctx, a.limiter, time.Minute)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr), slog.String("base", a.table.Base()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if a.db != nil {
		closeDB(a.db, log)
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

// sweepLimiter drops idle rate limit clients every interval until ctx ends.
func sweepLimiter(ctx context.Context, l *middleware.RateLimiter, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
