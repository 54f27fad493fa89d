package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/repository/repotest"
)

type fakePinger struct{ err error }

func (f fakePinger) HealthCheck(context.Context, time.Duration) error { return f.err }

func TestHealth_CheckMirrorsDependency(t *testing.T) {
	ctx := context.Background()
	h := NewHealth(nil)

	st, err := h.Status(ctx, SeederService)
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, st)

	h.check(ctx, fakePinger{err: errors.Join(common.ErrDatabase, errors.New("connection refused"))}, time.Second)
	st, err = h.Status(ctx, SeederService)
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, st)

	h.check(ctx, fakePinger{}, time.Second)
	st, err = h.Status(ctx, SeederService)
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, st)
}

func TestHealth_WatchStopsWithContext(t *testing.T) {
	h := NewHealth(nil)
	store := repotest.Open(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Watch(ctx, store, 10*time.Millisecond, time.Second)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestMetricsServer_ServesRegistry(t *testing.T) {
	srv := NewMetricsServer(":0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
