package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_FailureThreshold(t *testing.T) {
	var fail atomic.Bool
	c := &check{
		name:    "db",
		timeout: time.Second,
		fn: func(_ context.Context) error {
			if fail.Load() {
				return errors.New("connection refused")
			}
			return nil
		},
	}
	c.healthy.Store(true)
	ctx := context.Background()

	fail.Store(true)
	c.run(ctx)
	c.run(ctx)
	assert.True(t, c.healthy.Load(), "two failures stay under the threshold")

	c.run(ctx)
	assert.False(t, c.healthy.Load(), "third consecutive failure flips unhealthy")

	fail.Store(false)
	c.run(ctx)
	assert.True(t, c.healthy.Load(), "one success recovers")

	fail.Store(true)
	c.run(ctx)
	c.run(ctx)
	assert.True(t, c.healthy.Load(), "the failure counter was reset by the success")
}

func TestService_Endpoints(t *testing.T) {
	s := New()
	dbErr := atomic.Bool{}
	s.AddReadinessCheck("postgres", time.Second, func(_ context.Context) error {
		if dbErr.Load() {
			return errors.New("dial tcp: refused")
		}
		return nil
	})
	s.AddLivenessCheck("goroutines", time.Second, GoroutineCountCheck(100000))

	s.Start(context.Background(), 10*time.Millisecond)
	defer s.Stop()
	s.SetReady(true)

	require.Eventually(t, s.IsReady, time.Second, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	s.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Sustained backend failure flips readiness after the threshold.
	dbErr.Store(true)
	require.Eventually(t, func() bool { return !s.IsReady() }, time.Second, 10*time.Millisecond)

	rec = httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "postgres")

	// Liveness is unaffected by readiness failures.
	rec = httptest.NewRecorder()
	s.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestService_ManualReadinessGate(t *testing.T) {
	s := New()
	s.SetReady(false)

	rec := httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, s.IsReady())

	s.SetReady(true)
	rec = httptest.NewRecorder()
	s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.IsReady())
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
