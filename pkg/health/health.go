// Package health serves Kubernetes-style /livez and /readyz endpoints backed
// by periodically polled checks.
//
// Checks are debounced so a single hiccup does not flip a probe: a check has
// to fail several polls in a row before it reports unhealthy, and one passing
// poll brings it back.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Check reports the state of one dependency. A nil return means healthy.
type Check func(ctx context.Context) error

const (
	failAfter    = 3
	recoverAfter = 1
)

// probe is one registered check plus its debounce state. All fields after fn
// are guarded by the owning Service's mutex.
type probe struct {
	name    string
	timeout time.Duration
	fn      Check

	failStreak int
	okStreak   int
	down       bool
	lastErr    error
}

// Service polls registered checks on a fixed interval and answers liveness
// and readiness requests from the poll results. The zero state is not ready;
// call SetReady(true) once startup finishes.
type Service struct {
	mu        sync.Mutex
	ready     bool
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
	done      chan struct{}
}

// New returns an empty Service. Register checks, then call Start.
func New() *Service {
	return &Service{}
}

func (s *Service) addCheck(list *[]*probe, name string, timeout time.Duration, fn Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*list = append(*list, &probe{name: name, timeout: timeout, fn: fn})
}

// AddLivenessCheck registers a check that decides whether the process itself
// is still functioning, such as a goroutine count ceiling.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn Check) {
	s.addCheck(&s.liveness, name, timeout, fn)
}

// AddReadinessCheck registers a check that decides whether the service should
// receive traffic, such as database connectivity.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn Check) {
	s.addCheck(&s.readiness, name, timeout, fn)
}

// Start launches the background poller. All checks run once immediately and
// then every interval until Stop is called or the context ends.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.poll(ctx)
			}
		}
	}()
}

// poll runs every registered check once and updates its debounce state.
func (s *Service) poll(ctx context.Context) {
	s.mu.Lock()
	probes := make([]*probe, 0, len(s.liveness)+len(s.readiness))
	probes = append(probes, s.liveness...)
	probes = append(probes, s.readiness...)
	s.mu.Unlock()

	for _, p := range probes {
		checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.fn(checkCtx)
		cancel()

		s.mu.Lock()
		p.lastErr = err
		if err != nil {
			p.okStreak = 0
			if p.failStreak++; p.failStreak >= failAfter {
				p.down = true
			}
		} else {
			p.failStreak = 0
			if p.okStreak++; p.okStreak >= recoverAfter {
				p.down = false
			}
		}
		s.mu.Unlock()
	}
}

// SetReady flips the manual readiness gate. Pass false during graceful
// shutdown so load balancers stop routing new requests here.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// IsReady reports whether the gate is open and every readiness check passes.
func (s *Service) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return false
	}
	for _, p := range s.readiness {
		if p.down {
			return false
		}
	}
	return true
}

// Stop halts the poller and waits for it to exit. Safe to call twice.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint answers /livez: 200 while every liveness check passes,
// 503 with the failing checks otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := failureMap(s.liveness)
	s.mu.Unlock()

	writeStatus(w, failures)
}

// ReadyEndpoint answers /readyz: 200 only when the manual gate is open and
// every readiness check passes.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := failureMap(s.readiness)
	if !s.ready {
		failures["_readiness"] = "service is not ready"
	}
	s.mu.Unlock()

	writeStatus(w, failures)
}

// failureMap must be called with the mutex held.
func failureMap(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		if !p.down {
			continue
		}
		msg := "check is unhealthy"
		if p.lastErr != nil {
			msg = p.lastErr.Error()
		}
		failures[p.name] = msg
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp = statusResponse{Status: "unhealthy", Checks: failures}
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
