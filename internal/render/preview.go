package render

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rcliao/pressplan/internal/model"
	"github.com/rcliao/pressplan/internal/pageplan"
)

// ReloadFunc produces a fresh plan for the preview server.
type ReloadFunc func(ctx context.Context) (*pageplan.Plan, error)

// PreviewServer answers, for any path, which page the plan would build
// there. It is also a Renderer: descriptors emitted into it are published
// on Commit.
type PreviewServer struct {
	echo    *echo.Echo
	logger  *slog.Logger
	siteURL *url.URL
	reload  ReloadFunc

	mu    sync.RWMutex
	pages []model.PageDescriptor
	index map[string]int

	// emitMu serializes emits into the server.
	emitMu    sync.Mutex
	pending   []model.PageDescriptor
	prevPages []model.PageDescriptor
	prevIndex map[string]int
}

// PreviewOption configures a PreviewServer.
type PreviewOption func(*PreviewServer)

// WithReload enables POST /_reload.
func WithReload(fn ReloadFunc) PreviewOption {
	return func(s *PreviewServer) { s.reload = fn }
}

// WithPreviewLogger sets the request logger.
func WithPreviewLogger(l *slog.Logger) PreviewOption {
	return func(s *PreviewServer) { s.logger = l }
}

// NewPreviewServer builds the server. siteURL roots the served sitemap.
func NewPreviewServer(siteURL string, opts ...PreviewOption) (*PreviewServer, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, err
	}
	s := &PreviewServer{
		echo:    echo.New(),
		logger:  slog.Default(),
		siteURL: base,
		index:   map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/_plan", s.handlePlan)
	e.GET("/_sitemap.xml", s.handleSitemap)
	e.POST("/_reload", s.handleReload)
	e.GET("/*", s.handlePage)
	return s, nil
}

// Handler exposes the server for tests and embedding.
func (s *PreviewServer) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown.
func (s *PreviewServer) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *PreviewServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *PreviewServer) Render(_ context.Context, d model.PageDescriptor) error {
	s.pending = append(s.pending, d)
	return nil
}

func (s *PreviewServer) Close() error { return nil }

// Commit publishes the descriptors rendered since the last commit.
func (s *PreviewServer) Commit() error {
	index := make(map[string]int, len(s.pending))
	for i, d := range s.pending {
		index[d.Path] = i
	}
	s.mu.Lock()
	s.prevPages, s.prevIndex = s.pages, s.index
	s.pages, s.index = s.pending, index
	s.mu.Unlock()
	s.pending = nil
	return nil
}

// Rollback restores the plan served before the last Commit.
func (s *PreviewServer) Rollback() error {
	s.mu.Lock()
	if s.prevIndex != nil {
		s.pages, s.index = s.prevPages, s.prevIndex
	}
	s.mu.Unlock()
	s.prevPages, s.prevIndex = nil, nil
	return nil
}

func (s *PreviewServer) Release() error {
	s.prevPages, s.prevIndex = nil, nil
	return nil
}

func (s *PreviewServer) Discard() error {
	s.pending = nil
	return nil
}

// Publish replaces the served plan.
func (s *PreviewServer) Publish(ctx context.Context, plan *pageplan.Plan) error {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	return Emit(ctx, plan, s)
}

func (s *PreviewServer) lookup(path string) (model.PageDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[path]
	if !ok {
		return model.PageDescriptor{}, false
	}
	return s.pages[i], true
}

func (s *PreviewServer) snapshot() []model.PageDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PageDescriptor, len(s.pages))
	copy(out, s.pages)
	return out
}

func (s *PreviewServer) handlePlan(c echo.Context) error {
	return c.JSON(http.StatusOK, s.snapshot())
}

func (s *PreviewServer) handleSitemap(c echo.Context) error {
	pages := s.snapshot()
	urls := make([]sitemapURL, 0, len(pages))
	for _, d := range pages {
		urls = append(urls, sitemapURL{Loc: s.siteURL.JoinPath(d.Path).String()})
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), urls)
}

func (s *PreviewServer) handleReload(c echo.Context) error {
	if s.reload == nil {
		return echo.NewHTTPError(http.StatusNotFound, "reload is not enabled")
	}
	ctx := c.Request().Context()
	plan, err := s.reload(ctx)
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := s.Publish(ctx, plan); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"pages": len(plan.Descriptors)})
}

func (s *PreviewServer) handlePage(c echo.Context) error {
	path := c.Request().URL.Path
	d, ok := s.lookup(path)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no page planned at "+path)
	}
	return c.JSON(http.StatusOK, d)
}
