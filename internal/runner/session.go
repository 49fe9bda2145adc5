package runner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/dice-autopilot/internal/events"
)

const (
	// staticPerJob seeds the estimate before enough jobs have completed to
	// measure a real pace (10 jobs per minute).
	staticPerJob = 6 * time.Second

	// etaWindow is how many recent per-job durations feed the estimate.
	etaWindow = 10

	// etaMinSamples is how many jobs must complete before measured durations
	// replace the static seed.
	etaMinSamples = 3
)

// Session holds the transient state of a single run. One worker goroutine
// writes it; Stop may be called from any goroutine.
type Session struct {
	ID      string
	started time.Time
	running atomic.Bool

	mu        sync.Mutex
	phase     events.Phase
	found     int
	applied   int
	failed    int
	durations []time.Duration
}

// NewSession creates a live session in the Idle phase.
func NewSession() *Session {
	s := &Session{
		ID:      uuid.NewString(),
		started: time.Now(),
		phase:   events.PhaseIdle,
	}
	s.running.Store(true)
	return s
}

// Stop requests cooperative cancellation. The worker honors it at the next
// check point; in-flight page loads and job attempts run to completion.
func (s *Session) Stop() {
	s.running.Store(false)
}

// Active reports whether the run should keep going.
func (s *Session) Active() bool {
	return s.running.Load()
}

func (s *Session) setPhase(p events.Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Phase returns the run's current phase.
func (s *Session) Phase() events.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) setFound(n int) {
	s.mu.Lock()
	s.found = n
	s.mu.Unlock()
}

// recordOutcome bumps the applied or failed counter and stores the job's
// duration for the pace estimate.
func (s *Session) recordOutcome(applied bool, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if applied {
		s.applied++
	} else {
		s.failed++
	}
	s.durations = append(s.durations, d)
	if len(s.durations) > etaWindow {
		s.durations = s.durations[len(s.durations)-etaWindow:]
	}
}

// Counts returns the found/applied/failed counters.
func (s *Session) Counts() (found, applied, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.found, s.applied, s.failed
}

// ETA estimates the time left to work through remaining jobs. Until
// etaMinSamples jobs have completed it assumes a static pace; after that it
// averages the most recent durations.
func (s *Session) ETA(remaining int) time.Duration {
	if remaining <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.durations) < etaMinSamples {
		return time.Duration(remaining) * staticPerJob
	}
	var total time.Duration
	for _, d := range s.durations {
		total += d
	}
	mean := total / time.Duration(len(s.durations))
	return time.Duration(remaining) * mean
}

// Elapsed is the wall time since the session started.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.started)
}
