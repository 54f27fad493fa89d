package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
)

// SeederService is the health service name reported for the seeding daemon.
const SeederService = "restaurant.seeder"

// Pinger checks a dependency.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// Health owns the gRPC server and its health service.
type Health struct {
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewHealth registers the standard gRPC health service. Both the overall
// status and SeederService start as SERVING.
func NewHealth(logger *slog.Logger) *Health {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(SeederService, grpc_health_v1.HealthCheckResponse_SERVING)
	return &Health{grpc: gs, health: hs, logger: logger}
}

// Serve blocks serving gRPC on addr until Stop.
func (h *Health) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	h.logger.Info("grpc.health.listening", "addr", addr)
	return h.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains the server.
func (h *Health) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}

// SetServing flips the seeder service status.
func (h *Health) SetServing(ok bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(SeederService, st)
}

// Status returns the current status of service.
func (h *Health) Status(ctx context.Context, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Watch pings dep every interval and mirrors the result into the seeder
// service status until ctx is done.
func (h *Health) Watch(ctx context.Context, dep Pinger, interval, timeout time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		h.check(ctx, dep, timeout)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (h *Health) check(ctx context.Context, dep Pinger, timeout time.Duration) {
	err := dep.HealthCheck(ctx, timeout)
	if err != nil && ctx.Err() == nil {
		h.logger.Warn("health.db.failed", "code", status.Code(common.StatusFromError(err)).String(), "err", err)
	}
	h.SetServing(err == nil)
}

// NewMetricsServer exposes the default Prometheus registry on /metrics.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
