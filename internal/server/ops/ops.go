// Package ops serves liveness, readiness and metrics over HTTP and the
// standard gRPC health service.
package ops

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/lifestyle/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Settings are the listen addresses. An empty address disables that listener.
type Settings struct {
	HTTPAddr string
	GRPCAddr string
}

type Server struct {
	settings Settings
	logger   logging.Logger
	gatherer prometheus.Gatherer
	health   *health.Server
	ready    atomic.Bool
}

// New builds the ops server. Metrics are read from gatherer.
func New(s Settings, l logging.Logger, gatherer prometheus.Gatherer) *Server {
	srv := &Server{
		settings: s,
		logger:   l.With("module", "ops"),
		gatherer: gatherer,
		health:   health.NewServer(),
	}
	srv.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return srv
}

// SetReady flips /healthz and the gRPC health status.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Handler serves /livez, /healthz and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if s.ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// RunHTTP serves Handler until ctx is done.
func (s *Server) RunHTTP(ctx context.Context) error {
	if s.settings.HTTPAddr == "" {
		return nil
	}

	srv := &http.Server{
		Addr:              s.settings.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "ops http shutdown incomplete", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting ops HTTP server", "address", s.settings.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunGRPC serves the gRPC health service until ctx is done.
func (s *Server) RunGRPC(ctx context.Context) error {
	if s.settings.GRPCAddr == "" {
		return nil
	}

	listen, err := net.Listen("tcp", s.settings.GRPCAddr)
	if err != nil {
		return err
	}
	return s.serveGRPC(ctx, listen)
}

func (s *Server) serveGRPC(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
