package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"worktrack/internal/modules/tracking/domain"
	trackingout "worktrack/internal/modules/tracking/port/out"
	"worktrack/internal/platform/clock"
	apperrors "worktrack/internal/platform/errors"
	"worktrack/internal/platform/logging"
	"worktrack/internal/platform/observable"
	"worktrack/internal/platform/tx"
)

// Orchestrator is the primary tracking state machine. It is the only
// writer of the current State. Events are resolved one at a time: policy
// check, ledger command, persist, publish. Ledger and persistence writes
// for one event share a transaction, and the in-memory state only moves
// once that transaction commits.
type Orchestrator struct {
	mu      sync.Mutex
	ledger  trackingout.Ledger
	persist *StatePersistence
	phases  *CommutePhaseTracker
	policy  trackingout.PolicySource
	tx      tx.Manager
	clock   clock.Clock
	log     *zap.Logger
	state   *observable.Value[domain.State]
}

func NewOrchestrator(
	ledger trackingout.Ledger,
	persist *StatePersistence,
	phases *CommutePhaseTracker,
	policy trackingout.PolicySource,
	txm tx.Manager,
	clk clock.Clock,
	logger *zap.Logger,
) *Orchestrator {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &Orchestrator{
		ledger:  ledger,
		persist: persist,
		phases:  phases,
		policy:  policy,
		tx:      txm,
		clock:   clk,
		log:     logging.OrNop(logger).Named("orchestrator"),
		state:   observable.NewValue[domain.State](domain.Idle{}),
	}
}

func (o *Orchestrator) State() domain.State {
	return o.state.Get()
}

func (o *Orchestrator) SubscribeState() (<-chan domain.State, func()) {
	return o.state.Subscribe()
}

func (o *Orchestrator) Phase() domain.CommutePhase {
	return o.phases.Phase()
}

func (o *Orchestrator) SubscribePhase() (<-chan domain.CommutePhase, func()) {
	return o.phases.Subscribe()
}

// transition is what one event resolved to: the next state (nil when
// unchanged) and a commute phase step applied after commit.
type transition struct {
	next  domain.State
	phase func()
}

// ProcessEvent resolves ev against the current state and returns the state
// afterwards. Ignored events return the current state and a nil error.
func (o *Orchestrator) ProcessEvent(ctx context.Context, ev domain.Event) (domain.State, error) {
	if ev == nil {
		return o.State(), apperrors.ErrUnknownEvent
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	current := o.state.Get()
	var tr transition
	err := o.tx.Within(ctx, func(ctx context.Context) error {
		var err error
		tr, err = o.dispatch(ctx, current, ev)
		if err != nil || tr.next == nil {
			return err
		}
		return o.persist.Save(ctx, tr.next)
	})
	if err != nil {
		return current, fmt.Errorf("process %s: %w", ev.Name(), err)
	}

	if tr.phase != nil {
		tr.phase()
	}
	if tr.next == nil {
		return current, nil
	}
	o.state.Set(tr.next)
	o.log.Info("tracking state changed",
		zap.String("event", ev.Name()),
		zap.String("from", string(current.Kind())),
		zap.String("to", string(tr.next.Kind())),
		zap.String("phase", o.phases.Phase().String()))
	return tr.next, nil
}

// RestoreState loads the persisted state and checks it against the ledger.
// The ledger wins: an open session is adopted even when the record says
// Idle or was unreadable, a session the ledger closed becomes Idle, and
// pause details come from the ledger. Corrections are written back
// immediately.
func (o *Orchestrator) RestoreState(ctx context.Context) (domain.State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var restored domain.State
	err := o.tx.Within(ctx, func(ctx context.Context) error {
		loaded, err := o.persist.Load(ctx)
		if err != nil {
			return err
		}
		validated, err := o.validate(ctx, loaded)
		if err != nil {
			return err
		}
		restored = validated
		if validated == loaded {
			return nil
		}
		o.log.Warn("persisted tracking state corrected against ledger",
			zap.String("loaded", string(loaded.Kind())),
			zap.String("restored", string(validated.Kind())))
		return o.persist.Save(ctx, validated)
	})
	if err != nil {
		return o.state.Get(), fmt.Errorf("restore state: %w", err)
	}
	o.state.Set(restored)
	return restored, nil
}

func (o *Orchestrator) validate(ctx context.Context, loaded domain.State) (domain.State, error) {
	active, open, err := o.ledger.ActiveSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("read active session: %w", err)
	}
	if !open {
		return domain.Idle{}, nil
	}
	typ, err := domain.ParseSessionType(string(active.Type))
	if err != nil {
		o.log.Warn("open session has unknown type, treating as manual",
			zap.String("session_id", active.ID), zap.String("session_type", string(active.Type)))
		typ = domain.SessionManual
	}
	if id, _, ok := domain.ActiveSession(loaded); !ok || id != active.ID {
		o.log.Warn("adopting open ledger session",
			zap.String("session_id", active.ID),
			zap.String("persisted", string(loaded.Kind())))
	}
	if active.OpenPauseID != "" {
		if paused, ok := loaded.(domain.Paused); ok && paused.SessionID == active.ID && paused.PauseID == active.OpenPauseID {
			return paused, nil
		}
		return domain.Paused{SessionID: active.ID, Type: typ, PauseID: active.OpenPauseID}, nil
	}
	if tracking, ok := loaded.(domain.Tracking); ok && tracking.SessionID == active.ID {
		return tracking, nil
	}
	return domain.Tracking{SessionID: active.ID, Type: typ, StartTime: active.StartTime}, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, current domain.State, ev domain.Event) (transition, error) {
	if _, ok := ev.(domain.AppRestarted); ok {
		return transition{}, nil
	}
	switch st := current.(type) {
	case domain.Idle:
		return o.fromIdle(ctx, ev)
	case domain.Tracking:
		return o.fromTracking(ctx, st, ev)
	case domain.Paused:
		return o.fromPaused(ctx, st, ev)
	default:
		return o.ignore(ev, "unknown state")
	}
}

func (o *Orchestrator) fromIdle(ctx context.Context, ev domain.Event) (transition, error) {
	policy := o.policy.Policy()
	switch e := ev.(type) {
	case domain.GeofenceEntered:
		if e.Zone != domain.ZoneHomeStation {
			return o.ignore(ev, "zone does not start a commute")
		}
		if !policy.IsCommuteDay(e.Time) {
			return o.ignore(ev, "not a commute day")
		}
		if !policy.InOutboundWindow(e.Time) {
			return o.ignore(ev, "outside outbound window")
		}
		return o.start(ctx, domain.SessionCommuteOffice, true, e.Time)
	case domain.BeaconDetected:
		if !policy.InWorkWindow(e.Time) {
			return o.ignore(ev, "outside work window")
		}
		return o.start(ctx, domain.SessionHomeOffice, true, e.Time)
	case domain.ManualStart:
		return o.start(ctx, e.Type, false, o.eventTime(e.Time))
	default:
		return o.ignore(ev, "nothing to do while idle")
	}
}

func (o *Orchestrator) fromTracking(ctx context.Context, st domain.Tracking, ev domain.Event) (transition, error) {
	commute := st.Type == domain.SessionCommuteOffice
	switch e := ev.(type) {
	case domain.ManualStart, domain.BeaconDetected:
		return o.ignore(ev, "session already active")
	case domain.GeofenceEntered:
		if !commute {
			return o.ignore(ev, "not a commute session")
		}
		switch e.Zone {
		case domain.ZoneHomeStation:
			return o.arriveHome(ctx, st.SessionID, false, e.Time)
		case domain.ZoneOffice:
			return o.enterOffice(ctx, st.SessionID, e.Time)
		default:
			return o.pause(ctx, st.SessionID, st.Type, true, e.Time)
		}
	case domain.GeofenceExited:
		if !commute {
			return o.ignore(ev, "not a commute session")
		}
		if e.Zone != domain.ZoneOffice {
			return o.ignore(ev, "exit does not change a running commute")
		}
		tr, err := o.exitOffice(ctx, st.SessionID, e.Time)
		if err != nil || !o.policy.Policy().InReturnWindow(e.Time) {
			return tr, err
		}
		paused, err := o.pause(ctx, st.SessionID, st.Type, true, e.Time)
		if err != nil {
			return transition{}, err
		}
		paused.phase = tr.phase
		return paused, nil
	case domain.BeaconLost:
		if st.Type != domain.SessionHomeOffice {
			return o.ignore(ev, "not a home office session")
		}
		end := e.EndTime()
		if end.Before(st.StartTime) {
			end = e.Time
		}
		return o.stop(ctx, st.SessionID, false, end, nil)
	case domain.ManualStop:
		return o.stop(ctx, st.SessionID, false, o.clock.Now(), o.phases.Clear)
	case domain.PauseStart:
		return o.pause(ctx, st.SessionID, st.Type, false, o.clock.Now())
	default:
		return o.ignore(ev, "no transition while tracking")
	}
}

func (o *Orchestrator) fromPaused(ctx context.Context, st domain.Paused, ev domain.Event) (transition, error) {
	commute := st.Type == domain.SessionCommuteOffice
	switch e := ev.(type) {
	case domain.ManualStart, domain.BeaconDetected:
		return o.ignore(ev, "session already active")
	case domain.PauseEnd:
		return o.resume(ctx, st, o.clock.Now())
	case domain.ManualStop:
		return o.stop(ctx, st.SessionID, true, o.clock.Now(), o.phases.Clear)
	case domain.GeofenceEntered:
		if !commute {
			return o.ignore(ev, "not a commute session")
		}
		switch e.Zone {
		case domain.ZoneHomeStation:
			return o.arriveHome(ctx, st.SessionID, true, e.Time)
		case domain.ZoneOffice:
			return o.enterOffice(ctx, st.SessionID, e.Time)
		default:
			return o.ignore(ev, "already paused")
		}
	case domain.GeofenceExited:
		if !commute {
			return o.ignore(ev, "not a commute session")
		}
		switch e.Zone {
		case domain.ZoneOfficeStation:
			if !st.Auto {
				return o.ignore(ev, "manual pause waits for pause end")
			}
			return o.resume(ctx, st, e.Time)
		case domain.ZoneOffice:
			return o.exitOffice(ctx, st.SessionID, e.Time)
		default:
			return o.ignore(ev, "home station exit is not tracked")
		}
	default:
		return o.ignore(ev, "no transition while paused")
	}
}

// arriveHome ends a commute at the home station. Inside the return window
// a completed office visit is the normal case; a commute whose office
// geofence never resolved (phase OUTBOUND, IN_OFFICE, or lost across a
// restart) is closed here too so a missed transition cannot leave the
// session open overnight.
func (o *Orchestrator) arriveHome(ctx context.Context, sessionID string, paused bool, at time.Time) (transition, error) {
	policy := o.policy.Policy()
	if !policy.InReturnWindow(at) {
		return o.ignore(domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at}, "outside return window")
	}
	visited, err := o.ledger.HasCompletedOfficeVisitToday(ctx, policy.Local(at))
	if err != nil {
		return transition{}, fmt.Errorf("check office visit: %w", err)
	}
	if !visited && o.phases.Phase() == domain.PhaseReturn {
		return o.ignore(domain.GeofenceEntered{Zone: domain.ZoneHomeStation, Time: at}, "no office visit completed today")
	}
	return o.stop(ctx, sessionID, paused, at, func() {
		o.phases.ExitOffice()
		o.phases.CompleteCommute()
	})
}

func (o *Orchestrator) enterOffice(ctx context.Context, sessionID string, at time.Time) (transition, error) {
	if err := o.ledger.RecordOfficeEntry(ctx, sessionID, at); err != nil {
		return transition{}, fmt.Errorf("record office entry: %w", err)
	}
	return transition{phase: func() { o.phases.EnterOffice() }}, nil
}

func (o *Orchestrator) exitOffice(ctx context.Context, sessionID string, at time.Time) (transition, error) {
	if err := o.ledger.RecordOfficeExit(ctx, sessionID, at); err != nil {
		return transition{}, fmt.Errorf("record office exit: %w", err)
	}
	return transition{phase: func() { o.phases.ExitOffice() }}, nil
}

func (o *Orchestrator) start(ctx context.Context, typ domain.SessionType, auto bool, at time.Time) (transition, error) {
	if _, err := domain.ParseSessionType(string(typ)); err != nil {
		return transition{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	session, err := o.ledger.StartSession(ctx, typ, auto, at)
	if err != nil {
		return transition{}, fmt.Errorf("start session: %w", err)
	}
	tr := transition{next: domain.Tracking{SessionID: session.ID, Type: typ, StartTime: session.StartTime}}
	if typ == domain.SessionCommuteOffice {
		tr.phase = o.phases.StartCommute
	}
	return tr, nil
}

func (o *Orchestrator) stop(ctx context.Context, sessionID string, paused bool, at time.Time, phase func()) (transition, error) {
	if paused {
		if err := o.ledger.StopPause(ctx, sessionID, at); err != nil {
			return transition{}, fmt.Errorf("stop pause: %w", err)
		}
	}
	if err := o.ledger.StopSession(ctx, sessionID, at); err != nil {
		return transition{}, fmt.Errorf("stop session: %w", err)
	}
	return transition{next: domain.Idle{}, phase: phase}, nil
}

func (o *Orchestrator) pause(ctx context.Context, sessionID string, typ domain.SessionType, auto bool, at time.Time) (transition, error) {
	pauseID, err := o.ledger.StartPause(ctx, sessionID, at)
	if err != nil {
		return transition{}, fmt.Errorf("start pause: %w", err)
	}
	return transition{next: domain.Paused{SessionID: sessionID, Type: typ, PauseID: pauseID, Auto: auto}}, nil
}

func (o *Orchestrator) resume(ctx context.Context, st domain.Paused, at time.Time) (transition, error) {
	if err := o.ledger.StopPause(ctx, st.SessionID, at); err != nil {
		return transition{}, fmt.Errorf("stop pause: %w", err)
	}
	active, open, err := o.ledger.ActiveSession(ctx)
	if err != nil {
		return transition{}, fmt.Errorf("read active session: %w", err)
	}
	if !open || active.ID != st.SessionID {
		return transition{}, fmt.Errorf("resume %s: %w", st.SessionID, apperrors.ErrNoActiveSession)
	}
	return transition{next: domain.Tracking{SessionID: st.SessionID, Type: st.Type, StartTime: active.StartTime}}, nil
}

func (o *Orchestrator) ignore(ev domain.Event, reason string) (transition, error) {
	o.log.Debug("event ignored", zap.String("event", ev.Name()), zap.String("reason", reason))
	return transition{}, nil
}

func (o *Orchestrator) eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return o.clock.Now()
	}
	return t
}
