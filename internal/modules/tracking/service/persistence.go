package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"worktrack/internal/modules/tracking/domain"
	trackingout "worktrack/internal/modules/tracking/port/out"
	"worktrack/internal/platform/logging"
)

const (
	KeyStateType   = "state_type"
	KeySessionID   = "session_id"
	KeyPauseID     = "pause_id"
	KeySessionType = "session_type"
	KeyStartTime   = "start_time"
	KeyPauseAuto   = "pause_auto"
)

var stateKeys = []string{KeyStateType, KeySessionID, KeyPauseID, KeySessionType, KeyStartTime, KeyPauseAuto}

// StatePersistence stores the primary machine's state as a discriminator
// plus the fields of that variant. Fields a variant does not use are
// removed on every save so nothing stale survives.
type StatePersistence struct {
	store trackingout.StateStore
	log   *zap.Logger
}

func NewStatePersistence(store trackingout.StateStore, logger *zap.Logger) *StatePersistence {
	return &StatePersistence{store: store, log: logging.OrNop(logger).Named("persistence")}
}

func (p *StatePersistence) Save(ctx context.Context, state domain.State) error {
	set, clear := EncodeState(state)
	if err := p.store.Apply(ctx, set, clear); err != nil {
		return fmt.Errorf("save tracking state: %w", err)
	}
	return nil
}

// Load returns the persisted state. Malformed records decode to Idle; only
// store failures are returned as errors.
func (p *StatePersistence) Load(ctx context.Context) (domain.State, error) {
	record, err := p.store.Load(ctx, stateKeys)
	if err != nil {
		return domain.Idle{}, fmt.Errorf("load tracking state: %w", err)
	}
	state, ok := DecodeState(record)
	if !ok {
		p.log.Warn("persisted tracking state unusable, falling back to idle",
			zap.String("state_type", record[KeyStateType]),
			zap.String("session_id", record[KeySessionID]))
	}
	return state, nil
}

// EncodeState splits state into the keys to write and the keys to clear.
// The start time keeps its UTC offset, so a decoded Tracking names the same
// instant at the same offset, though its Location is a fixed zone.
func EncodeState(state domain.State) (map[string]string, []string) {
	switch st := state.(type) {
	case domain.Tracking:
		return map[string]string{
			KeyStateType:   string(domain.KindTracking),
			KeySessionID:   st.SessionID,
			KeySessionType: string(st.Type),
			KeyStartTime:   st.StartTime.Format(time.RFC3339Nano),
		}, []string{KeyPauseID, KeyPauseAuto}
	case domain.Paused:
		set := map[string]string{
			KeyStateType:   string(domain.KindPaused),
			KeySessionID:   st.SessionID,
			KeySessionType: string(st.Type),
			KeyPauseID:     st.PauseID,
		}
		clear := []string{KeyStartTime}
		if st.Auto {
			set[KeyPauseAuto] = "true"
		} else {
			clear = append(clear, KeyPauseAuto)
		}
		return set, clear
	default:
		return map[string]string{
			KeyStateType: string(domain.KindIdle),
		}, []string{KeySessionID, KeyPauseID, KeySessionType, KeyStartTime, KeyPauseAuto}
	}
}

// DecodeState rebuilds a state from a record. ok is false when the record
// was present but unusable and Idle was substituted.
func DecodeState(record map[string]string) (domain.State, bool) {
	kind, present := record[KeyStateType]
	if !present {
		return domain.Idle{}, true
	}
	switch domain.StateKind(kind) {
	case domain.KindIdle:
		return domain.Idle{}, true
	case domain.KindTracking:
		id, typ, ok := decodeSession(record)
		if !ok {
			return domain.Idle{}, false
		}
		start, err := time.Parse(time.RFC3339Nano, record[KeyStartTime])
		if err != nil {
			return domain.Idle{}, false
		}
		return domain.Tracking{SessionID: id, Type: typ, StartTime: start}, true
	case domain.KindPaused:
		id, typ, ok := decodeSession(record)
		if !ok || record[KeyPauseID] == "" {
			return domain.Idle{}, false
		}
		return domain.Paused{
			SessionID: id,
			Type:      typ,
			PauseID:   record[KeyPauseID],
			Auto:      record[KeyPauseAuto] == "true",
		}, true
	default:
		return domain.Idle{}, false
	}
}

func decodeSession(record map[string]string) (string, domain.SessionType, bool) {
	id := record[KeySessionID]
	if id == "" {
		return "", "", false
	}
	typ, err := domain.ParseSessionType(record[KeySessionType])
	if err != nil {
		return "", "", false
	}
	return id, typ, true
}
