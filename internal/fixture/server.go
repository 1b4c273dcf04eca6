package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gojson "github.com/goccy/go-json"
)

// MaxOrderSize caps the body of a created order.
const MaxOrderSize = 1 << 20

// Config holds configuration for the fixture server.
type Config struct {
	// Addr is the TCP address to listen on.
	Addr string
	// Key is the order field used as the ID of created orders.
	Key string
}

// DefaultConfig returns the defaults used by `orderlens fixture`.
func DefaultConfig() Config {
	return Config{
		Addr: "127.0.0.1:8000",
		Key:  DefaultKey,
	}
}

// Metrics counts requests served.
type Metrics struct {
	Requests int64 `json:"requests"`
	Found    int64 `json:"found"`
	NotFound int64 `json:"not_found"`
	Created  int64 `json:"created"`
	Rejected int64 `json:"rejected"`
	Orders   int   `json:"orders"`
	Uptime   int64 `json:"uptime_seconds"`
}

// Server serves an order catalog over HTTP.
type Server struct {
	cfg       Config
	orders    *Orders
	logger    *slog.Logger
	startTime time.Time

	requests atomic.Int64
	found    atomic.Int64
	notFound atomic.Int64
	created  atomic.Int64
	rejected atomic.Int64
}

// NewServer creates a server for orders. A nil logger discards.
func NewServer(cfg Config, orders *Orders, logger *slog.Logger) *Server {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if orders == nil {
		orders = NewOrders()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		cfg:       cfg,
		orders:    orders,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.logMiddleware)
	router.Use(middleware.Recoverer)

	router.Get("/health", s.handleHealth)
	router.Get("/api/metrics", s.handleMetrics)
	router.Route("/api/order", func(r chi.Router) {
		r.Get("/{id}", s.handleGetOrder)
		r.Post("/", s.handleCreateOrder)
	})
	return router
}

// Metrics returns a snapshot of the request counters.
func (s *Server) Metrics() Metrics {
	return Metrics{
		Requests: s.requests.Load(),
		Found:    s.found.Load(),
		NotFound: s.notFound.Load(),
		Created:  s.created.Load(),
		Rejected: s.rejected.Load(),
		Orders:   s.orders.Len(),
		Uptime:   int64(time.Since(s.startTime).Seconds()),
	}
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("fixture server listening", "addr", ln.Addr().String(), "orders", s.orders.Len())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("fixture server shutting down")
		return srv.Shutdown(shutdownCtx)
	case err, ok := <-serverErr:
		if !ok {
			return nil
		}
		return err
	}
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, ok := s.orders.Get(id)
	if !ok {
		s.notFound.Add(1)
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
		return
	}
	s.found.Add(1)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxOrderSize+1))
	if err != nil {
		s.rejected.Add(1)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(body) > MaxOrderSize {
		s.rejected.Add(1)
		s.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "order too large"})
		return
	}
	id, err := orderID(body, s.cfg.Key)
	if err != nil {
		s.rejected.Add(1)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.orders.Put(id, body)
	s.created.Add(1)
	s.logger.Info("order created", "order_id", id, "size", len(body))
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Metrics())
}

// logMiddleware logs one line per request.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		s.requests.Add(1)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start).String(),
			"remote", remoteHost(r.RemoteAddr),
		)
	})
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.TrimSpace(addr)
	}
	return host
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to write response", "status", status, "error", err)
	}
}
