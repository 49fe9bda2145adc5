// Package events carries run-progress notifications from the worker to any
// number of listeners without letting a slow listener stall the run.
package events

import (
	"sync"
	"time"
)

// Phase labels where in the run an event originates.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseSearching   Phase = "searching"
	PhaseReconciling Phase = "reconciling"
	PhaseApplying    Phase = "applying"
	PhaseCompleted   Phase = "completed"
	PhaseStopped     Phase = "stopped"
	PhaseFailed      Phase = "failed"
)

// Event is a progress snapshot published during a run.
type Event struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
	Found   int    `json:"found"`
	Applied int    `json:"applied"`
	Failed  int    `json:"failed"`
	// ETA is the estimated time left in the apply phase; zero when unknown.
	ETA time.Duration `json:"eta"`
}

type Hub struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan Event]struct{})}
}

func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

// Publish delivers evt to every subscriber whose buffer has room. Slow
// subscribers miss events rather than block the publisher.
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}
