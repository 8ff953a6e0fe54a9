package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerOptions configures a Server.
type ServerOptions struct {
	Host  string
	Port  int
	Watch bool // push data-dir changes to websocket clients

	// Gatherer serves /metrics. Nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer
}

// Server wraps the HTTP server, the websocket hub and the data-dir watcher.
type Server struct {
	app        *AppContext
	httpServer *http.Server
	watcher    *FileWatcher
	wsHub      *WebSocketHub
}

// NewServer creates a new server for the given handler.
func NewServer(handler *Handler, opts ServerOptions) *Server {
	app := handler.app
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	wsHub := NewWebSocketHub(app.Logger)
	mux.HandleFunc("GET /api/v1/ws", wsHub.ServeWS)
	handler.SetPublisher(wsHub)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	uploads := http.FileServer(http.Dir(app.Paths.UploadsDir()))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", uploads))

	var watcher *FileWatcher
	if opts.Watch {
		var err error
		watcher, err = NewFileWatcher(app.Paths.DataDir(), app.Logger)
		if err != nil {
			app.Logger.Warn("failed to create file watcher", "error", err)
		} else {
			watcher.Subscribe(wsHub)
		}
	}

	return &Server{
		app: app,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
			Handler:           Logging(app.Logger, app.Metrics, Cors(mux)),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
		watcher: watcher,
		wsHub:   wsHub,
	}
}

// Start begins listening for HTTP requests. Blocks until shutdown, after
// which it returns nil.
func (s *Server) Start() error {
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.app.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	s.app.Logger.Info("server listening", "addr", s.httpServer.Addr, "data_dir", s.app.Paths.DataDir())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the watcher and the HTTP server, then writes the color
// state one last time.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.app.Logger.Warn("failed to stop file watcher", "error", err)
		}
	}

	shutdownErr := s.httpServer.Shutdown(ctx)
	if err := s.app.Engine.Flush(ctx); err != nil {
		s.app.Logger.Error("failed to flush color state", "error", err)
		return errors.Join(shutdownErr, err)
	}
	return shutdownErr
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	return s.wsHub.ClientCount()
}
