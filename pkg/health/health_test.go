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

func alwaysHealthy(context.Context) error { return nil }

func alwaysFailing(msg string) Check {
	return func(context.Context) error { return errors.New(msg) }
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func hitLive(s *Service) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	return w
}

func hitReady(s *Service) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return w
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	s := New()
	s.AddLivenessCheck("one", time.Second, alwaysHealthy)
	s.AddLivenessCheck("two", time.Second, alwaysHealthy)
	s.poll(context.Background())

	w := hitLive(s)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decodeStatus(t, w).Status)
}

func TestLiveEndpoint_FailingCheckDebounced(t *testing.T) {
	s := New()
	s.AddLivenessCheck("db", time.Second, alwaysFailing("connection refused"))
	ctx := context.Background()

	// Below the fail threshold the probe still reports healthy.
	s.poll(ctx)
	s.poll(ctx)
	assert.Equal(t, http.StatusOK, hitLive(s).Code)

	// The third consecutive failure flips it.
	s.poll(ctx)
	w := hitLive(s)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeStatus(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestCheckRecovery(t *testing.T) {
	failing := true
	s := New()
	s.AddLivenessCheck("flaky", time.Second, func(context.Context) error {
		if failing {
			return errors.New("down")
		}
		return nil
	})
	ctx := context.Background()

	for range failAfter {
		s.poll(ctx)
	}
	assert.Equal(t, http.StatusServiceUnavailable, hitLive(s).Code)

	// One passing poll is enough to recover.
	failing = false
	s.poll(ctx)
	assert.Equal(t, http.StatusOK, hitLive(s).Code)
}

func TestReadyEndpoint_GatedOnSetReady(t *testing.T) {
	s := New()
	s.AddReadinessCheck("postgres", time.Second, alwaysHealthy)
	s.poll(context.Background())

	w := hitReady(s)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decodeStatus(t, w).Checks, "_readiness")

	s.SetReady(true)
	assert.Equal(t, http.StatusOK, hitReady(s).Code)

	s.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, hitReady(s).Code)
}

func TestReadyEndpoint_OneFailingCheck(t *testing.T) {
	s := New()
	s.AddReadinessCheck("postgres", time.Second, alwaysHealthy)
	s.AddReadinessCheck("cache", time.Second, alwaysFailing("cache down"))
	s.SetReady(true)

	ctx := context.Background()
	for range failAfter {
		s.poll(ctx)
	}

	w := hitReady(s)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeStatus(t, w)
	assert.Contains(t, body.Checks, "cache")
	assert.NotContains(t, body.Checks, "postgres")
}

func TestIsReady(t *testing.T) {
	s := New()
	s.AddReadinessCheck("postgres", time.Second, alwaysHealthy)

	assert.False(t, s.IsReady())

	s.SetReady(true)
	assert.True(t, s.IsReady())

	s.SetReady(false)
	assert.False(t, s.IsReady())
}

func TestEndpoints_NoChecks(t *testing.T) {
	s := New()
	s.SetReady(true)

	assert.Equal(t, http.StatusOK, hitLive(s).Code)
	assert.Equal(t, http.StatusOK, hitReady(s).Code)
}

func TestStopIsIdempotent(t *testing.T) {
	s := New()
	s.AddLivenessCheck("noop", time.Second, alwaysHealthy)

	s.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	s.Stop()
	s.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	s.AddLivenessCheck("broken", time.Second, alwaysFailing("err"))
	s.AddReadinessCheck("fine", time.Second, alwaysHealthy)
	s.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx, 5*time.Millisecond)
	defer s.Stop()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.IsReady()
				hitLive(s)
				hitReady(s)
			}
		}()
	}
	wg.Wait()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goroutines")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
