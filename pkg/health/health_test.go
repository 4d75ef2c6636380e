package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysPass(_ context.Context) error { return nil }

func alwaysFail(msg string) CheckFunc {
	return func(_ context.Context) error {
		return errors.New(msg)
	}
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) probeReport {
	t.Helper()
	var body probeReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestLiveEndpointAllPassing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, alwaysPass)
	h.AddLivenessCheck("gc", time.Second, alwaysPass)

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decodeReport(t, w).Status)
}

func TestLiveEndpointFailureThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, alwaysFail("connection refused"))
	p := h.liveness[0]
	ctx := context.Background()

	// Two consecutive failures stay under the threshold.
	p.observe(ctx)
	p.observe(ctx)

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// The third failure flips the probe.
	p.observe(ctx)

	w = httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeReport(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestProbeRecovers(t *testing.T) {
	failing := true
	h := New()
	h.AddLivenessCheck("flaky", time.Second, func(_ context.Context) error {
		if failing {
			return errors.New("down")
		}
		return nil
	})
	p := h.liveness[0]
	ctx := context.Background()

	for range failThreshold {
		p.observe(ctx)
	}
	assert.False(t, p.last.Load().healthy)

	failing = false
	p.observe(ctx)
	assert.True(t, p.last.Load().healthy, "one pass should recover the probe")
}

func TestReadyEndpointGate(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, alwaysPass)

	// Not ready until SetReady(true).
	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decodeReport(t, w).Checks, "_readiness")

	h.SetReady(true)
	w = httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Shutdown closes the gate again.
	h.SetReady(false)
	w = httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyEndpointOneFailing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, alwaysPass)
	h.AddReadinessCheck("redis", time.Second, alwaysFail("cache down"))
	h.SetReady(true)

	ctx := context.Background()
	for range failThreshold {
		h.readiness[1].observe(ctx)
	}

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeReport(t, w)
	assert.Contains(t, body.Checks, "redis")
	assert.NotContains(t, body.Checks, "postgres")
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, alwaysPass)

	assert.False(t, h.IsReady())
	h.SetReady(true)
	assert.True(t, h.IsReady())
	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestNoProbesRegistered(t *testing.T) {
	h := New()
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStopIdempotent(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, alwaysPass)

	h.Start(context.Background(), 100*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestConcurrentEndpointReads(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, alwaysFail("err"))
	h.AddReadinessCheck("postgres", time.Second, alwaysPass)
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 10*time.Millisecond)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				h.IsReady()

				w := httptest.NewRecorder()
				h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

				w = httptest.NewRecorder()
				h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}

func TestPingCheck(t *testing.T) {
	assert.NoError(t, PingCheck(pingerFunc(func(_ context.Context) error { return nil }))(context.Background()))

	err := PingCheck(pingerFunc(func(_ context.Context) error {
		return errors.New("refused")
	}))(context.Background())
	assert.ErrorContains(t, err, "refused")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
