// Package server serves a directory of Markdown as rendered pages for
// previewing. Pages are rendered on first request and cached until a file
// watcher invalidates them.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-gfmrender/internal/fileutil"
	"github.com/alnah/go-gfmrender/internal/metrics"
)

// Server timeout defaults. WriteTimeout leaves room for a cold browser
// rendering a diagram-heavy page.
const (
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 2 * time.Minute
	DefaultIdleTimeout       = 60 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20 // 1 MB
	shutdownTimeout          = 5 * time.Second
)

// PageRenderer turns one Markdown file into a complete HTML page.
type PageRenderer interface {
	RenderPage(ctx context.Context, path string) (string, error)
}

// Options configures a Server.
type Options struct {
	Root     string       // Directory served
	Renderer PageRenderer // Required
	ThemeCSS string       // Served at /theme.css
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Server renders and caches pages under Root.
type Server struct {
	root     string
	renderer PageRenderer
	css      string
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[string]string // absolute source path -> page
	gen   uint64            // bumped on invalidation; stale renders are not cached
	group singleflight.Group
}

// New creates a Server. Root is resolved to an absolute path.
func New(opts Options) (*Server, error) {
	if opts.Renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	if !fileutil.DirExists(root) {
		return nil, fmt.Errorf("server: root %s is not a directory", root)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		root:     root,
		renderer: opts.Renderer,
		css:      opts.ThemeCSS,
		metrics:  opts.Metrics,
		logger:   logger,
		cache:    make(map[string]string),
	}, nil
}

// Handler builds the router:
//
//	GET /             index of Markdown files
//	GET /theme.css    highlighting stylesheet
//	GET /metrics      Prometheus (when configured)
//	GET /-/healthy    liveness
//	GET /*            page.md or page.html renders page.md; other files are static
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)
	r.Use(middleware.Compress(5,
		"text/html",
		"text/css",
		"image/svg+xml",
	))

	r.Get("/-/healthy", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/theme.css", s.serveCSS)
	r.Get("/", s.serveIndex)
	r.Get("/*", s.serveFile)

	return r
}

// Invalidate drops cached pages for the given source paths.
func (s *Server) Invalidate(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		delete(s.cache, abs)
		s.group.Forget(abs)
	}
	s.gen++
}

// InvalidateAll drops every cached page.
func (s *Server) InvalidateAll() {
	s.mu.Lock()
	for abs := range s.cache {
		s.group.Forget(abs)
	}
	clear(s.cache)
	s.gen++
	s.mu.Unlock()
}

// Serve serves on ln until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := NewHTTPServer(ln.Addr().String(), s.Handler())

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", ln.Addr().String(), "root", s.root)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("preview server shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// NewHTTPServer wraps handler with the default timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		MaxHeaderBytes:    DefaultMaxHeaderBytes,
	}
}

func (s *Server) serveCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(s.css))
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + chi.URLParam(r, "*"))
	if hasHiddenSegment(rel) {
		http.NotFound(w, r)
		return
	}

	source := rel
	if fileutil.HasExt(rel, ".html") {
		source = fileutil.ReplaceExt(rel, ".md")
	}
	if fileutil.HasExt(source, ".md", ".markdown") {
		abs := filepath.Join(s.root, filepath.FromSlash(source))
		if fileutil.FileExists(abs) {
			s.servePage(w, r, abs)
			return
		}
	}

	// Static assets (images, stylesheets) next to the sources
	http.FileServer(http.Dir(s.root)).ServeHTTP(w, r)
}

// hasHiddenSegment reports whether any path segment is a dotfile or hidden
// directory, which the index never lists.
func hasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, abs string) {
	page, err := s.page(r.Context(), abs)
	if err != nil {
		s.logger.Error("rendering page", "path", abs, "error", err)
		http.Error(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(page))
}

// page returns the cached page for abs, rendering it once if missing.
// Concurrent requests for the same page share one render.
func (s *Server) page(ctx context.Context, abs string) (string, error) {
	s.mu.RLock()
	cached, ok := s.cache[abs]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		if s.metrics != nil {
			s.metrics.IncCacheHit()
		}
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.IncCacheMiss()
	}

	v, err, _ := s.group.Do(abs, func() (any, error) {
		start := time.Now()
		page, err := s.renderer.RenderPage(context.WithoutCancel(ctx), abs)
		if s.metrics != nil {
			s.metrics.ObservePageRender(time.Since(start), err == nil)
		}
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		if s.gen == gen {
			s.cache[abs] = page
		}
		s.mu.Unlock()
		return page, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<ul>
{{- range .Pages}}
<li><a href="{{.Href}}">{{.Name}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

type indexEntry struct {
	Name string
	Href string
}

func (s *Server) serveIndex(w http.ResponseWriter, _ *http.Request) {
	var pages []indexEntry
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !fileutil.HasExt(p, ".md", ".markdown") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pages = append(pages, indexEntry{Name: rel, Href: "/" + fileutil.ReplaceExt(rel, ".html")})
		return nil
	})
	if err != nil {
		http.Error(w, "listing failed", http.StatusInternalServerError)
		return
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTemplate.Execute(w, struct {
		Title string
		Pages []indexEntry
	}{Title: filepath.Base(s.root), Pages: pages})
}

// accessLog logs one line per request at debug level.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
