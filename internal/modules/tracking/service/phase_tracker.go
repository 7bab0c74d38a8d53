package service

import (
	"sync"

	"worktrack/internal/modules/tracking/domain"
	"worktrack/internal/platform/observable"
)

// CommutePhaseTracker follows progress inside a commute session:
//
//	none -> OUTBOUND -> IN_OFFICE <-> RETURN -> COMPLETED
//
// Calls that do not match the chain are no-ops. COMPLETED stays visible
// until the next StartCommute overwrites it.
type CommutePhaseTracker struct {
	mu    sync.Mutex
	phase *observable.Value[domain.CommutePhase]
}

func NewCommutePhaseTracker() *CommutePhaseTracker {
	return &CommutePhaseTracker{phase: observable.NewValue(domain.PhaseNone)}
}

func (t *CommutePhaseTracker) Phase() domain.CommutePhase {
	return t.phase.Get()
}

func (t *CommutePhaseTracker) Subscribe() (<-chan domain.CommutePhase, func()) {
	return t.phase.Subscribe()
}

// StartCommute begins a new commute from any phase.
func (t *CommutePhaseTracker) StartCommute() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase.Set(domain.PhaseOutbound)
}

func (t *CommutePhaseTracker) EnterOffice() bool {
	return t.advance(domain.PhaseInOffice, domain.PhaseOutbound, domain.PhaseReturn)
}

func (t *CommutePhaseTracker) ExitOffice() bool {
	return t.advance(domain.PhaseReturn, domain.PhaseInOffice)
}

// CompleteCommute ends the return trip. A commute that never reached the
// office completes straight from OUTBOUND.
func (t *CommutePhaseTracker) CompleteCommute() bool {
	return t.advance(domain.PhaseCompleted, domain.PhaseReturn, domain.PhaseOutbound)
}

// Clear drops any commute in progress, including a COMPLETED one.
func (t *CommutePhaseTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase.Get() != domain.PhaseNone {
		t.phase.Set(domain.PhaseNone)
	}
}

func (t *CommutePhaseTracker) advance(to domain.CommutePhase, from ...domain.CommutePhase) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.phase.Get()
	for _, f := range from {
		if current == f {
			t.phase.Set(to)
			return true
		}
	}
	return false
}
