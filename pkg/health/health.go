// Package health backs the API server's /livez and /readyz endpoints.
//
// Registered checks run on a background ticker. A check flips unhealthy only
// after failThreshold consecutive failures, so one slow database ping does
// not drop the server out of the load balancer rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const (
	failThreshold    = 3
	recoverThreshold = 1
)

// CheckFunc reports on one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// probe is a named check plus its last observed outcome. Only the ticker
// goroutine writes the outcome; endpoint handlers load it atomically.
type probe struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
	last    atomic.Pointer[outcome]
}

// outcome carries the health verdict together with the failure and recovery
// streaks, so the whole state swaps in a single atomic store.
type outcome struct {
	healthy bool
	detail  string
	fails   int
	passes  int
}

func newProbe(name string, timeout time.Duration, fn CheckFunc) *probe {
	p := &probe{name: name, timeout: timeout, fn: fn}
	// A probe counts as healthy until it has failed enough times in a row.
	p.last.Store(&outcome{healthy: true})
	return p
}

// observe runs the check once and advances the streak counters. Must only be
// called from a single goroutine per probe.
func (p *probe) observe(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err := p.fn(cctx)

	prev := p.last.Load()
	next := outcome{healthy: prev.healthy, fails: prev.fails, passes: prev.passes}
	if err != nil {
		next.detail = err.Error()
		next.passes = 0
		next.fails++
		if next.fails >= failThreshold {
			next.healthy = false
		}
	} else {
		next.fails = 0
		next.passes++
		if next.passes >= recoverThreshold {
			next.healthy = true
		}
	}
	p.last.Store(&next)
}

func (p *probe) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.observe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.observe(ctx)
		}
	}
}

// Health tracks liveness and readiness probes for the server.
//
// The mutex guards the probe slices and the stop func. Registration happens
// before Start; handlers clone the slice under RLock and read probe outcomes
// without holding it.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	stop      context.CancelFunc
}

// New returns a Health that reports not-ready until SetReady(true) is called
// after startup completes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check for /livez. Liveness covers the process
// itself: goroutine leaks, GC stalls.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	h.liveness = append(h.liveness, newProbe(name, timeout, fn))
	h.mu.Unlock()
}

// AddReadinessCheck registers a check for /readyz. Readiness covers the
// dependencies the server needs to serve traffic: Postgres, Redis.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	h.readiness = append(h.readiness, newProbe(name, timeout, fn))
	h.mu.Unlock()
}

// Start launches one ticker goroutine per registered probe. Register all
// probes before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.stop = cancel
	probes := append(slices.Clone(h.liveness), h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

// SetReady flips the manual readiness gate. Called with true once startup
// completes and with false at the top of graceful shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the gate is open and every readiness probe passes.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.RLock()
	probes := h.readiness
	h.mu.RUnlock()

	for _, p := range probes {
		if !p.last.Load().healthy {
			return false
		}
	}
	return true
}

// Stop cancels the probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stop != nil {
		h.stop()
		h.stop = nil
	}
}

type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while every liveness probe passes, 503 with
// the failing checks otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	probes := slices.Clone(h.liveness)
	h.mu.RUnlock()

	report(w, failing(probes))
}

// ReadyEndpoint serves /readyz: 200 once SetReady(true) has been called and
// every readiness probe passes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	probes := slices.Clone(h.readiness)
	h.mu.RUnlock()

	failures := failing(probes)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	report(w, failures)
}

func failing(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		o := p.last.Load()
		if o.healthy {
			continue
		}
		detail := o.detail
		if detail == "" {
			detail = "check is unhealthy"
		}
		failures[p.name] = detail
	}
	return failures
}

func report(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	body := probeReport{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		body.Status = "unhealthy"
		body.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
