// Package health provides liveness and readiness probe endpoints. Each
// registered check runs periodically in the background with a failure
// threshold so a single flaky probe does not flip the state.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. It returns nil when healthy.
type CheckFunc func(ctx context.Context) error

// failureThreshold is how many consecutive failures mark a check unhealthy.
const failureThreshold = 3

// check holds the configuration and state of a single registered probe.
// The consecutive-failure counter is only touched by the runner goroutine;
// healthy and lastErr are shared with HTTP handlers via atomics.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	fails   int
	healthy atomic.Bool
	lastErr atomic.Pointer[error]
}

func (c *check) run(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.fn(cctx); err != nil {
		c.fails++
		c.lastErr.Store(&err)
		if c.fails >= failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.lastErr.Store(nil)
	c.healthy.Store(true)
}

// Service runs the registered checks and serves the probe endpoints.
type Service struct {
	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	ready     atomic.Bool
	stop      context.CancelFunc
	done      chan struct{}
}

// New creates an empty health Service. The service is not ready until
// SetReady(true) is called.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a liveness probe. Liveness failure means the
// process should be restarted.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.add(&s.liveness, name, timeout, fn)
}

// AddReadinessCheck registers a readiness probe. Readiness failure means the
// process should stop receiving traffic.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.add(&s.readiness, name, timeout, fn)
}

func (s *Service) add(list *[]*check, name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &check{name: name, timeout: timeout, fn: fn}
	c.healthy.Store(true)
	*list = append(*list, c)
}

// Start launches one runner goroutine per registered check, each probing at
// the given interval until Stop or context cancellation.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, s.stop = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.mu.Lock()
	checks := append(append([]*check{}, s.liveness...), s.readiness...)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range checks {
		wg.Add(1)
		go func(c *check) {
			defer wg.Done()
			c.run(ctx)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					c.run(ctx)
				}
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(s.done)
	}()
}

// Stop halts the background runners and waits for them to exit.
func (s *Service) Stop() {
	if s.stop != nil {
		s.stop()
		<-s.done
	}
}

// SetReady flips the manual readiness gate, e.g. during graceful shutdown.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the manual gate and every readiness check pass.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.readiness {
		if !c.healthy.Load() {
			return false
		}
	}
	return true
}

// LiveEndpoint serves the liveness probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := collectFailures(s.liveness)
	s.mu.Unlock()
	writeProbe(w, len(failures) == 0, failures)
}

// ReadyEndpoint serves the readiness probe.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := collectFailures(s.readiness)
	s.mu.Unlock()
	if !s.ready.Load() {
		failures["service"] = "not ready"
	}
	writeProbe(w, len(failures) == 0, failures)
}

func collectFailures(checks []*check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		if c.healthy.Load() {
			continue
		}
		msg := "check failed"
		if errp := c.lastErr.Load(); errp != nil && *errp != nil {
			msg = (*errp).Error()
		}
		failures[c.name] = msg
	}
	return failures
}

func writeProbe(w http.ResponseWriter, ok bool, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	status := http.StatusOK
	result := "ok"
	if !ok {
		status = http.StatusServiceUnavailable
		result = "unavailable"
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   result,
		"failures": failures,
	})
}
