package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithGatherer sets the metrics source for /metrics (default
// prometheus.DefaultGatherer).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLoop adds the loop's counters to the stats snapshot.
func WithLoop(l *runtime.Loop) Option {
	return func(s *Server) {
		s.loop = l
	}
}

// WithEcho enables or disables /ws/echo (enabled by default).
func WithEcho(enabled bool) Option {
	return func(s *Server) {
		s.echo = enabled
	}
}

// WithShutdownTimeout bounds graceful shutdown (default 5s).
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// Server is the devtools HTTP server.
type Server struct {
	registry        *subscription.Registry
	loop            *runtime.Loop
	gatherer        prometheus.Gatherer
	logger          *slog.Logger
	shutdownTimeout time.Duration
	echo            bool

	hub    *hub
	router chi.Router
}

// Snapshot is the body of /debug/subscriptions and of /ws/stats messages.
type Snapshot struct {
	Stats         subscription.Stats  `json:"stats"`
	Subscriptions []subscription.Info `json:"subscriptions"`
	Loop          *runtime.LoopStats  `json:"loop,omitempty"`
}

// New creates a server inspecting reg.
func New(reg *subscription.Registry, opts ...Option) *Server {
	s := &Server{
		registry:        reg,
		gatherer:        prometheus.DefaultGatherer,
		logger:          slog.Default(),
		shutdownTimeout: 5 * time.Second,
		echo:            true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "devtools")
	s.hub = newHub(s.logger)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/debug/subscriptions", s.handleSubscriptions)
	if s.echo {
		r.Get("/ws/echo", s.hub.handleEcho)
	}
	r.Get("/ws/stats", func(w http.ResponseWriter, r *http.Request) {
		s.hub.handleStats(w, r, s.Snapshot())
	})
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Snapshot collects the current stats.
func (s *Server) Snapshot() Snapshot {
	snap := Snapshot{
		Stats:         s.registry.Stats(),
		Subscriptions: s.registry.Snapshot(),
	}
	if snap.Subscriptions == nil {
		snap.Subscriptions = []subscription.Info{}
	}
	if s.loop != nil {
		ls := s.loop.Stats()
		snap.Loop = &ls
	}
	return snap
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Snapshot()); err != nil {
		s.logger.Warn("encode snapshot failed", "error", err)
	}
}

// Publish sends the current snapshot to every /ws/stats client.
func (s *Server) Publish() {
	s.hub.broadcast(s.Snapshot())
}

// Clients returns the number of connected /ws/stats clients.
func (s *Server) Clients() int {
	return s.hub.count()
}

// Watch publishes a snapshot every interval while the registry stats keep
// changing, until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last subscription.Stats
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := s.registry.Stats()
			if stats == last {
				continue
			}
			last = stats
			s.Publish()
		}
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devtools listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.hub.close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.logger.Info("devtools stopped")
	return nil
}
