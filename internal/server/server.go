// Package server exposes the two monitor lifecycles over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/and161185/typestate-monitor/internal/config"
	"github.com/and161185/typestate-monitor/internal/monitor"
	"github.com/and161185/typestate-monitor/internal/monitor/checked"
	"github.com/and161185/typestate-monitor/internal/monitor/typed"
	"github.com/and161185/typestate-monitor/internal/server/middleware"
)

const shutdownTimeout = 5 * time.Second

// Server serves both monitor lifecycles and their metrics over HTTP.
type Server struct {
	Source   monitor.Source
	Config   *config.ServerConfig
	Registry *prometheus.Registry

	metrics *lifecycleMetrics
}

// NewServer wires a server around source. Lifecycle metrics are registered on a
// fresh registry exposed at /metrics.
func NewServer(source monitor.Source, cfg *config.ServerConfig) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		Source:   source,
		Config:   cfg,
		Registry: reg,
		metrics:  newLifecycleMetrics(reg),
	}
}

// Router builds the HTTP handler tree.
func (srv *Server) Router() (http.Handler, error) {
	trusted, err := middleware.TrustedCIDR(srv.Config.TrustedSubnet)
	if err != nil {
		return nil, err
	}
	limiter := middleware.NewClientLimiter(srv.Config.RateLimit, srv.Config.RateBurst, 0)
	// X-Real-IP is only trusted when a proxy subnet is configured
	limitKey := middleware.PeerIP
	if srv.Config.TrustedSubnet != "" {
		limitKey = middleware.ClientIP
	}

	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.LogMiddleware(srv.Config.Logger))
	router.Use(cors.AllowAll().Handler)
	router.Use(trusted)
	router.Use(middleware.CompressMiddleware)

	router.Get("/ping", srv.PingHandler)
	router.Handle("/metrics", promhttp.HandlerFor(srv.Registry, promhttp.HandlerOpts{}))
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter, limitKey))
		r.Get("/safe", srv.SafeMonitorHandler)
		r.Get("/unsafe", srv.UnsafeMonitorHandler)
		r.Get("/unsafe/misuse", srv.MisuseHandler)
	})

	if srv.Config.StaticDir != "" {
		router.NotFound(http.FileServer(http.Dir(srv.Config.StaticDir)).ServeHTTP)
	}
	return router, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	router, err := srv.Router()
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              srv.Config.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.Config.Logger.Infof("Server running on http://%s", srv.Config.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// SafeMonitorHandler runs one phase-typed lifecycle pass.
func (srv *Server) SafeMonitorHandler(w http.ResponseWriter, r *http.Request) {
	logger := srv.Config.Logger
	logger.Info("[SAFE] starting type-state enforced operation")

	start := time.Now()
	lines, err := typed.Run(r.Context(), srv.Source, logger)
	srv.metrics.observe(variantTyped, start, err)
	if err != nil {
		logger.Errorf("[SAFE] lifecycle failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logger.Info("[SAFE] operation completed, order enforced by the compiler")
	writeJSON(w, lines)
}

// UnsafeMonitorHandler runs one runtime-checked lifecycle pass.
func (srv *Server) UnsafeMonitorHandler(w http.ResponseWriter, r *http.Request) {
	logger := srv.Config.Logger
	logger.Info("[UNSAFE] starting runtime-checked operation")

	start := time.Now()
	lines, err := checked.Run(r.Context(), srv.Source, logger)
	srv.metrics.observe(variantChecked, start, err)
	if err != nil {
		logger.Errorf("[UNSAFE] lifecycle failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, lines)
}

// MisuseHandler calls fetch on a runtime-checked monitor that was never
// connected and reports the resulting precondition error.
func (srv *Server) MisuseHandler(w http.ResponseWriter, r *http.Request) {
	logger := srv.Config.Logger
	logger.Info("[UNSAFE] trying to fetch data without connecting first")

	m := checked.New(srv.Source, logger)
	defer m.Close()

	start := time.Now()
	err := m.Fetch(r.Context()) // phaseorder:ignore
	srv.metrics.observe(variantMisuse, start, err)

	var output []string
	if err == nil {
		logger.Error("[UNSAFE] fetch without connect succeeded")
		output = []string{"[ERROR] This should never succeed - we didn't connect!"}
	} else {
		logger.Warnf("[UNSAFE] runtime error: %v", err)
		output = []string{fmt.Sprintf("[RUNTIME ERROR] %v", err)}
	}
	writeJSON(w, output)
}

// PingHandler reports liveness.
func (srv *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		srv.Config.Logger.Errorf("failed to write ping response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
