package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"worktrack/internal/modules/tracking/domain"
	"worktrack/internal/modules/tracking/service"
	"worktrack/internal/platform/clock"
	apperrors "worktrack/internal/platform/errors"
)

// Monday.
var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type ledgerSession struct {
	typ       domain.SessionType
	auto      bool
	start     time.Time
	end       time.Time
	openPause string
	pauses    int
}

type fakeLedger struct {
	mu        sync.Mutex
	seq       int
	sessions  map[string]*ledgerSession
	open      string
	exits     []time.Time
	startErr  error
	startCall int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{sessions: map[string]*ledgerSession{}}
}

func (f *fakeLedger) StartSession(_ context.Context, typ domain.SessionType, auto bool, at time.Time) (domain.LedgerSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCall++
	if f.startErr != nil {
		return domain.LedgerSession{}, f.startErr
	}
	if f.open != "" {
		return domain.LedgerSession{}, apperrors.ErrActiveSessionExists
	}
	f.seq++
	id := fmt.Sprintf("s-%d", f.seq)
	f.sessions[id] = &ledgerSession{typ: typ, auto: auto, start: at}
	f.open = id
	return domain.LedgerSession{ID: id, Type: typ, StartTime: at}, nil
}

func (f *fakeLedger) StopSession(_ context.Context, id string, end time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open != id {
		return apperrors.ErrNoActiveSession
	}
	f.sessions[id].end = end
	f.open = ""
	return nil
}

func (f *fakeLedger) StartPause(_ context.Context, id string, _ time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || f.open != id {
		return "", apperrors.ErrNoActiveSession
	}
	s.pauses++
	s.openPause = fmt.Sprintf("%s-p%d", id, s.pauses)
	return s.openPause, nil
}

func (f *fakeLedger) StopPause(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.openPause == "" {
		return apperrors.ErrNoOpenPause
	}
	s.openPause = ""
	return nil
}

func (f *fakeLedger) ActiveSession(context.Context) (domain.LedgerSession, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open == "" {
		return domain.LedgerSession{}, false, nil
	}
	s := f.sessions[f.open]
	return domain.LedgerSession{ID: f.open, Type: s.typ, StartTime: s.start, OpenPauseID: s.openPause}, true, nil
}

func (f *fakeLedger) RecordOfficeEntry(context.Context, string, time.Time) error { return nil }

func (f *fakeLedger) RecordOfficeExit(_ context.Context, _ string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exits = append(f.exits, at)
	return nil
}

func (f *fakeLedger) HasCompletedOfficeVisitToday(_ context.Context, d time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	y, m, dd := d.Date()
	for _, e := range f.exits {
		ey, em, ed := e.In(d.Location()).Date()
		if ey == y && em == m && ed == dd {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) session(id string) ledgerSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.sessions[id]
}

type staticPolicy struct{ policy domain.Policy }

func (s staticPolicy) Policy() domain.Policy { return s.policy }

func defaultPolicy() domain.Policy {
	return domain.Policy{
		CommuteDays:    domain.Workweek,
		OutboundWindow: domain.MustWindow(domain.At(6, 0), domain.At(10, 0)),
		ReturnWindow:   domain.MustWindow(domain.At(15, 0), domain.At(20, 0)),
		WorkWindow:     domain.MustWindow(domain.At(6, 0), domain.At(22, 0)),
		Location:       time.UTC,
	}
}

type harness struct {
	orch   *service.Orchestrator
	ledger *fakeLedger
	store  *memoryStateStore
	clock  *clock.Fake
}

func newHarness(t *testing.T) harness {
	t.Helper()
	h := harness{
		ledger: newFakeLedger(),
		store:  newMemoryStateStore(),
		clock:  clock.NewFake(at(12, 0)),
	}
	h.orch = service.NewOrchestrator(
		h.ledger,
		service.NewStatePersistence(h.store, nil),
		service.NewCommutePhaseTracker(),
		staticPolicy{policy: defaultPolicy()},
		nil,
		h.clock,
		nil,
	)
	return h
}

func (h harness) process(t *testing.T, ev domain.Event) domain.State {
	t.Helper()
	state, err := h.orch.ProcessEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("process %s: %v", ev.Name(), err)
	}
	return state
}

func TestCommuteDayEndsAtHomeStationEventTime(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	state := h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(8, 0)})
	tracking, ok := state.(domain.Tracking)
	if !ok || tracking.Type != domain.SessionCommuteOffice {
		t.Fatalf("expected commute tracking, got %#v", state)
	}
	if h.orch.Phase() != domain.PhaseOutbound {
		t.Fatalf("expected OUTBOUND, got %s", h.orch.Phase())
	}
	h.process(t, domain.GeofenceEntered{Zone: domain.ZoneOffice, Time: at(8, 45)})
	if h.orch.Phase() != domain.PhaseInOffice {
		t.Fatalf("expected IN_OFFICE, got %s", h.orch.Phase())
	}
	h.process(t, domain.GeofenceExited{Zone: domain.ZoneOffice, Time: at(16, 30)})
	if h.orch.Phase() != domain.PhaseReturn {
		t.Fatalf("expected RETURN, got %s", h.orch.Phase())
	}

	h.clock.Set(at(19, 0))
	state = h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(17, 0)})
	if !domain.IsIdle(state) {
		t.Fatalf("expected idle, got %#v", state)
	}
	if got := h.ledger.session(tracking.SessionID).end; !got.Equal(at(17, 0)) {
		t.Fatalf("expected session end 17:00, got %s", got)
	}
	if h.orch.Phase() != domain.PhaseCompleted {
		t.Fatalf("expected COMPLETED, got %s", h.orch.Phase())
	}
}

func TestHomeStationOutsideOutboundWindowIsIgnored(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	state := h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(11, 0)})
	if !domain.IsIdle(state) {
		t.Fatalf("expected idle, got %#v", state)
	}
	if h.ledger.startCall != 0 {
		t.Fatalf("expected no session to be created")
	}
}

func TestHomeStationOnWeekendIsIgnored(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	saturday := at(8, 0).AddDate(0, 0, 5)
	state := h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: saturday})
	if !domain.IsIdle(state) {
		t.Fatalf("expected idle on a non-commute day, got %#v", state)
	}
}

func TestHomeOfficeEndsAtLastSighting(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	state := h.process(t, domain.BeaconDetected{BeaconID: "b", Time: at(9, 0)})
	tracking, ok := state.(domain.Tracking)
	if !ok || tracking.Type != domain.SessionHomeOffice {
		t.Fatalf("expected home office tracking, got %#v", state)
	}
	if !h.ledger.session(tracking.SessionID).auto {
		t.Fatalf("beacon sessions must be marked auto-detected")
	}
	state = h.process(t, domain.BeaconLost{Time: at(18, 10), LastSeen: at(18, 0)})
	if !domain.IsIdle(state) {
		t.Fatalf("expected idle, got %#v", state)
	}
	if got := h.ledger.session(tracking.SessionID).end; !got.Equal(at(18, 0)) {
		t.Fatalf("expected end at last sighting 18:00, got %s", got)
	}
}

func TestBeaconLostWithoutLastSeenUsesEventTime(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	tracking := h.process(t, domain.BeaconDetected{Time: at(9, 0)}).(domain.Tracking)
	h.process(t, domain.BeaconLost{Time: at(18, 10)})
	if got := h.ledger.session(tracking.SessionID).end; !got.Equal(at(18, 10)) {
		t.Fatalf("expected end 18:10, got %s", got)
	}
}

func TestBeaconLostIgnoresSightingBeforeSessionStart(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	tracking := h.process(t, domain.ManualStart{Type: domain.SessionHomeOffice, Time: at(13, 0)}).(domain.Tracking)
	h.process(t, domain.BeaconLost{Time: at(13, 40), LastSeen: at(8, 15)})
	if got := h.ledger.session(tracking.SessionID).end; !got.Equal(at(13, 40)) {
		t.Fatalf("expected end at loss 13:40, got %s", got)
	}
}

func TestCommuteWithoutOfficeVisitCompletesAtHome(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(8, 0)})
	state := h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(17, 0)})
	if !domain.IsIdle(state) {
		t.Fatalf("expected idle, got %#v", state)
	}
	if h.orch.Phase() != domain.PhaseCompleted {
		t.Fatalf("expected COMPLETED, got %s", h.orch.Phase())
	}
}

func TestHomeStationOutsideReturnWindowKeepsCommuteRunning(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(8, 0)})
	state := h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(9, 0)})
	if _, ok := state.(domain.Tracking); !ok {
		t.Fatalf("expected commute to keep running, got %#v", state)
	}
}

func TestPauseAndResumePreserveSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	started := h.process(t, domain.ManualStart{Type: domain.SessionManual, Time: at(9, 0)}).(domain.Tracking)

	paused, ok := h.process(t, domain.PauseStart{}).(domain.Paused)
	if !ok {
		t.Fatalf("expected paused state")
	}
	if paused.SessionID != started.SessionID || paused.Type != started.Type || paused.PauseID == "" {
		t.Fatalf("unexpected paused state %#v", paused)
	}
	resumed := h.process(t, domain.PauseEnd{})
	if diff := cmp.Diff(domain.State(started), resumed); diff != "" {
		t.Fatalf("resume changed the session (-want +got):\n%s", diff)
	}
}

func TestManualStopWhilePausedClosesPause(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	started := h.process(t, domain.ManualStart{Type: domain.SessionManual}).(domain.Tracking)
	if !started.StartTime.Equal(at(12, 0)) {
		t.Fatalf("expected zero start time to default to now, got %s", started.StartTime)
	}
	h.process(t, domain.PauseStart{})
	h.clock.Advance(30 * time.Minute)
	if state := h.process(t, domain.ManualStop{}); !domain.IsIdle(state) {
		t.Fatalf("expected idle, got %#v", state)
	}
	s := h.ledger.session(started.SessionID)
	if s.openPause != "" {
		t.Fatalf("pause left open after stop")
	}
	if !s.end.Equal(at(12, 30)) {
		t.Fatalf("expected end 12:30, got %s", s.end)
	}
}

func TestOfficeExitInReturnWindowPausesAndStationExitResumes(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(7, 30)})
	h.process(t, domain.GeofenceEntered{Zone: domain.ZoneOffice, Time: at(8, 30)})

	// Lunch outside the return window does not pause.
	if _, ok := h.process(t, domain.GeofenceExited{Zone: domain.ZoneOffice, Time: at(12, 0)}).(domain.Tracking); !ok {
		t.Fatalf("lunch exit must keep tracking")
	}
	h.process(t, domain.GeofenceEntered{Zone: domain.ZoneOffice, Time: at(12, 45)})

	if _, ok := h.process(t, domain.GeofenceExited{Zone: domain.ZoneOffice, Time: at(16, 0)}).(domain.Paused); !ok {
		t.Fatalf("office exit in return window must pause")
	}
	if h.orch.Phase() != domain.PhaseReturn {
		t.Fatalf("expected RETURN, got %s", h.orch.Phase())
	}
	if _, ok := h.process(t, domain.GeofenceExited{Zone: domain.ZoneOfficeStation, Time: at(16, 15)}).(domain.Tracking); !ok {
		t.Fatalf("leaving the office station must resume")
	}
	if !domain.IsIdle(h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(17, 0)})) {
		t.Fatalf("expected commute to end at home")
	}
}

func TestIgnoredEventsLeaveStateUntouched(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	for _, ev := range []domain.Event{
		domain.ManualStop{},
		domain.PauseStart{},
		domain.PauseEnd{},
		domain.BeaconLost{Time: at(12, 0)},
		domain.GeofenceExited{Zone: domain.ZoneOffice, Time: at(12, 0)},
		domain.AppRestarted{},
	} {
		if state := h.process(t, ev); !domain.IsIdle(state) {
			t.Fatalf("%s while idle changed state to %#v", ev.Name(), state)
		}
	}

	started := h.process(t, domain.ManualStart{Type: domain.SessionManual, Time: at(9, 0)})
	for _, ev := range []domain.Event{
		domain.ManualStart{Type: domain.SessionHomeOffice},
		domain.BeaconDetected{Time: at(9, 5)},
		domain.BeaconLost{Time: at(9, 10)},
		domain.GeofenceEntered{Zone: domain.ZoneOffice, Time: at(9, 15)},
		domain.PauseEnd{},
	} {
		if state := h.process(t, ev); state != started {
			t.Fatalf("%s while tracking a manual session changed state to %#v", ev.Name(), state)
		}
	}
	if h.ledger.startCall != 1 {
		t.Fatalf("expected exactly one session start, got %d", h.ledger.startCall)
	}
}

func TestLedgerFailureKeepsState(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.ledger.startErr = errors.New("database locked")
	state, err := h.orch.ProcessEvent(context.Background(), domain.ManualStart{Type: domain.SessionManual})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsIdle(state) || !domain.IsIdle(h.orch.State()) {
		t.Fatalf("failed start must leave idle, got %#v", state)
	}
	if _, ok := h.store.values[service.KeySessionID]; ok {
		t.Fatalf("nothing may be persisted for a failed transition")
	}
}

func TestPersistFailureKeepsInMemoryState(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.store.failErr = errors.New("disk full")
	if _, err := h.orch.ProcessEvent(context.Background(), domain.ManualStart{Type: domain.SessionManual}); err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsIdle(h.orch.State()) {
		t.Fatalf("state moved although persistence failed: %#v", h.orch.State())
	}
}

func TestInvalidManualSessionTypeIsRejected(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	_, err := h.orch.ProcessEvent(context.Background(), domain.ManualStart{Type: "GYM"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := h.orch.ProcessEvent(context.Background(), nil); !errors.Is(err, apperrors.ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent for nil event, got %v", err)
	}
}

func TestEveryTransitionIsPersisted(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.process(t, domain.ManualStart{Type: domain.SessionManual, Time: at(9, 0)})
	if h.store.values[service.KeyStateType] != "TRACKING" {
		t.Fatalf("expected TRACKING persisted, got %v", h.store.values)
	}
	h.process(t, domain.PauseStart{})
	if h.store.values[service.KeyStateType] != "PAUSED" || h.store.values[service.KeyPauseID] == "" {
		t.Fatalf("expected PAUSED persisted, got %v", h.store.values)
	}
	h.process(t, domain.ManualStop{})
	if diff := cmp.Diff(map[string]string{service.KeyStateType: "IDLE"}, h.store.values); diff != "" {
		t.Fatalf("expected bare IDLE record (-want +got):\n%s", diff)
	}
}

func TestConcurrentStartsCreateOneSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.orch.ProcessEvent(context.Background(), domain.ManualStart{Type: domain.SessionManual})
		}()
	}
	wg.Wait()
	if h.ledger.startCall != 1 {
		t.Fatalf("expected one ledger start, got %d", h.ledger.startCall)
	}
	if _, ok := h.orch.State().(domain.Tracking); !ok {
		t.Fatalf("expected tracking, got %#v", h.orch.State())
	}
}

func TestStateSubscribersSeeTransitions(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	updates, cancel := h.orch.SubscribeState()
	defer cancel()
	if got := <-updates; !domain.IsIdle(got) {
		t.Fatalf("expected initial idle, got %#v", got)
	}
	started := h.process(t, domain.ManualStart{Type: domain.SessionManual, Time: at(9, 0)})
	if got := <-updates; got != started {
		t.Fatalf("expected %#v, got %#v", started, got)
	}
}

func TestRestoreReplacesOrphanedTrackingWithIdle(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.store.values = map[string]string{
		service.KeyStateType:   "TRACKING",
		service.KeySessionID:   "ghost",
		service.KeySessionType: "MANUAL",
		service.KeyStartTime:   at(8, 0).Format(time.RFC3339Nano),
	}
	state, err := h.orch.RestoreState(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !domain.IsIdle(state) {
		t.Fatalf("expected idle, got %#v", state)
	}
	if diff := cmp.Diff(map[string]string{service.KeyStateType: "IDLE"}, h.store.values); diff != "" {
		t.Fatalf("idle was not re-persisted (-want +got):\n%s", diff)
	}
}

func TestRestoreKeepsMatchingTracking(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	session, _ := h.ledger.StartSession(context.Background(), domain.SessionHomeOffice, true, at(9, 0))
	want := domain.Tracking{SessionID: session.ID, Type: domain.SessionHomeOffice, StartTime: at(9, 0)}
	if err := service.NewStatePersistence(h.store, nil).Save(context.Background(), want); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	state, err := h.orch.RestoreState(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if diff := cmp.Diff(domain.State(want), state); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}
}

func TestRestoreTakesPauseFromLedger(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	session, _ := h.ledger.StartSession(ctx, domain.SessionManual, false, at(9, 0))
	persist := service.NewStatePersistence(h.store, nil)

	// Persisted as tracking, but the ledger has an open pause.
	if err := persist.Save(ctx, domain.Tracking{SessionID: session.ID, Type: domain.SessionManual, StartTime: at(9, 0)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	pauseID, _ := h.ledger.StartPause(ctx, session.ID, at(10, 0))
	state, err := h.orch.RestoreState(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	want := domain.Paused{SessionID: session.ID, Type: domain.SessionManual, PauseID: pauseID}
	if diff := cmp.Diff(domain.State(want), state); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}

	// Persisted as paused, but the pause was closed.
	_ = h.ledger.StopPause(ctx, session.ID, at(10, 30))
	state, err = h.orch.RestoreState(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	wantTracking := domain.Tracking{SessionID: session.ID, Type: domain.SessionManual, StartTime: at(9, 0)}
	if diff := cmp.Diff(domain.State(wantTracking), state); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}
	if h.store.values[service.KeyStateType] != "TRACKING" {
		t.Fatalf("correction was not persisted: %v", h.store.values)
	}
}

func TestOfficeStationExitLeavesManualPause(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(7, 30)})
	paused, ok := h.process(t, domain.PauseStart{}).(domain.Paused)
	if !ok || paused.Auto {
		t.Fatalf("expected manual pause, got %#v", paused)
	}
	state := h.process(t, domain.GeofenceExited{Zone: domain.ZoneOfficeStation, Time: at(12, 5)})
	if diff := cmp.Diff(domain.State(paused), state); diff != "" {
		t.Fatalf("station exit changed a manual pause (-want +got):\n%s", diff)
	}
	if _, ok := h.process(t, domain.PauseEnd{}).(domain.Tracking); !ok {
		t.Fatalf("pause end must resume")
	}
}

func TestOfficeStationPauseIsAutomatic(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.process(t, domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at(7, 30)})
	paused, ok := h.process(t, domain.GeofenceEntered{Zone: domain.ZoneOfficeStation, Time: at(8, 10)}).(domain.Paused)
	if !ok || !paused.Auto {
		t.Fatalf("expected automatic pause, got %#v", paused)
	}
	if h.store.values[service.KeyPauseAuto] != "true" {
		t.Fatalf("automatic pause not persisted: %v", h.store.values)
	}
	if _, ok := h.process(t, domain.GeofenceExited{Zone: domain.ZoneOfficeStation, Time: at(8, 20)}).(domain.Tracking); !ok {
		t.Fatalf("station exit must resume an automatic pause")
	}
}

func TestRestoreAdoptsOpenSessionBehindIdleRecord(t *testing.T) {
	t.Parallel()
	cases := map[string]map[string]string{
		"idle":    {service.KeyStateType: "IDLE"},
		"corrupt": {service.KeyStateType: "TRACKNG", service.KeySessionID: "s-1"},
		"missing": {},
		"other session": {
			service.KeyStateType:   "TRACKING",
			service.KeySessionID:   "ghost",
			service.KeySessionType: "MANUAL",
			service.KeyStartTime:   at(7, 0).Format(time.RFC3339Nano),
		},
	}
	for name, record := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			session, _ := h.ledger.StartSession(context.Background(), domain.SessionHomeOffice, false, at(9, 0))
			h.store.values = record

			state, err := h.orch.RestoreState(context.Background())
			if err != nil {
				t.Fatalf("restore: %v", err)
			}
			want := domain.Tracking{SessionID: session.ID, Type: domain.SessionHomeOffice, StartTime: at(9, 0)}
			if diff := cmp.Diff(domain.State(want), state); diff != "" {
				t.Fatalf("restore mismatch (-want +got):\n%s", diff)
			}
			if h.store.values[service.KeySessionID] != session.ID {
				t.Fatalf("adopted session was not persisted: %v", h.store.values)
			}

			h.clock.Advance(time.Hour)
			if !domain.IsIdle(h.process(t, domain.ManualStop{})) {
				t.Fatalf("manual stop must close the adopted session")
			}
			if _, ok := h.process(t, domain.ManualStart{Type: domain.SessionManual}).(domain.Tracking); !ok {
				t.Fatalf("a new session must start after the adopted one stopped")
			}
		})
	}
}

func TestRestoreAdoptsOpenPauseBehindIdleRecord(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	session, _ := h.ledger.StartSession(ctx, domain.SessionCommuteOffice, true, at(7, 30))
	pauseID, _ := h.ledger.StartPause(ctx, session.ID, at(8, 10))

	state, err := h.orch.RestoreState(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	want := domain.Paused{SessionID: session.ID, Type: domain.SessionCommuteOffice, PauseID: pauseID}
	if diff := cmp.Diff(domain.State(want), state); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}
	if h.store.values[service.KeyStateType] != "PAUSED" {
		t.Fatalf("adopted pause was not persisted: %v", h.store.values)
	}
}
