// Package server serves an interactive chart over HTTP.
//
// The page at "/" embeds the chart SVG together with a small script that
// forwards raw pointer events over a websocket. All gesture handling happens
// server side: each connection owns a [render.Pointer] that turns the events
// into chart operations, and every change is pushed back to all connected
// pages as a fresh scene.
//
// Routes:
//
//	GET    /                         interactive page
//	GET    /chart.svg|.json|.dot     current layout in one format
//	POST   /api/people/{id}/expand   fetch and merge a person's network
//	POST   /api/people/{id}/collapse toggle a person's descendants
//	POST   /api/positions/reset      unpin cards ({"ids": [...]} or all)
//	PUT    /api/orientation          {"orientation": "horizontal"}
//	DELETE /api/chart                remove everyone
//	GET    /api/notices              active notices
//	GET    /ws                       pointer events in, scenes and notices out
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/kintree/pkg/chart"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
	"github.com/matzehuels/kintree/pkg/render/sink"
)

// Options configures a [Server].
type Options struct {
	Logger *log.Logger
	// Title is shown in the page header and the SVG title.
	Title string
	// SVG options applied to every rendered scene.
	SVG []sink.SVGOption
}

// Server exposes one coordinator over HTTP and websockets.
type Server struct {
	coord    *chart.Coordinator
	logger   *log.Logger
	title    string
	svgOpts  []sink.SVGOption
	upgrader websocket.Upgrader
	router   chi.Router

	mu      sync.Mutex
	clients map[*client]struct{}

	stopNotices func()
}

// New builds the router and subscribes to chart changes.
func New(coord *chart.Coordinator, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Title == "" {
		opts.Title = "kintree"
	}
	s := &Server{
		coord:   coord,
		logger:  opts.Logger,
		title:   opts.Title,
		svgOpts: opts.SVG,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1 << 16,
		},
		clients: make(map[*client]struct{}),
	}
	s.router = s.routes()
	coord.OnChange(s.broadcastScene)

	notices, stop := coord.NoticeCenter().Subscribe()
	s.stopNotices = stop
	go s.forwardNotices(notices)
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/chart.svg", s.handleRender(sink.NewSVG(s.svgOpts...)))
	r.Get("/chart.json", s.handleRender(sink.NewJSON()))
	r.Get("/chart.dot", s.handleRender(nodelink.DOT{}))
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/people/{id}/expand", s.handleExpand)
		r.Post("/people/{id}/collapse", s.handleCollapse)
		r.Post("/positions/reset", s.handleResetPositions)
		r.Put("/orientation", s.handleOrientation)
		r.Delete("/chart", s.handleClear)
		r.Get("/notices", s.handleNotices)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving chart", "addr", "http://"+addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops notice forwarding and disconnects all pages.
func (s *Server) Close() {
	s.stopNotices()
	s.closeClients()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
