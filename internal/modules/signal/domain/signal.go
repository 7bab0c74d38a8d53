package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

type Capability string

const (
	CapabilityGeofence Capability = "geofence"
	CapabilityBeacon   Capability = "beacon"
	CapabilityManual   Capability = "manual"
)

var (
	ErrSourceDisabled   = errors.New("signal source is disabled")
	ErrChecksumMismatch = errors.New("signal source checksum mismatch")
	ErrCapabilityDenied = errors.New("signal not permitted by source capabilities")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest registers one signal-source plugin binary.
type Manifest struct {
	Name         string            `json:"name" yaml:"name"`
	Version      string            `json:"version" yaml:"version"`
	Binary       string            `json:"binary" yaml:"binary"`
	Args         []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env          map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	SHA256       string            `json:"sha256" yaml:"sha256"`
	Enabled      bool              `json:"enabled" yaml:"enabled"`
	Capabilities []Capability      `json:"capabilities" yaml:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("signal source name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("signal source version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("signal source binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("signal source sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("signal source capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityGeofence, CapabilityBeacon, CapabilityManual:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type Kind string

const (
	KindGeofenceEnter Kind = "geofence_enter"
	KindGeofenceExit  Kind = "geofence_exit"
	KindBeaconSeen    Kind = "beacon_seen"
	KindBeaconExited  Kind = "beacon_exited"
	KindManualStart   Kind = "manual_start"
	KindManualStop    Kind = "manual_stop"
	KindPauseStart    Kind = "pause_start"
	KindPauseEnd      Kind = "pause_end"
)

// Capability is the manifest capability a source needs to raise k.
func (k Kind) Capability() (Capability, error) {
	switch k {
	case KindGeofenceEnter, KindGeofenceExit:
		return CapabilityGeofence, nil
	case KindBeaconSeen, KindBeaconExited:
		return CapabilityBeacon, nil
	case KindManualStart, KindManualStop, KindPauseStart, KindPauseEnd:
		return CapabilityManual, nil
	default:
		return "", fmt.Errorf("unknown signal kind: %q", k)
	}
}

// Signal is one raw event reported by a source. Time may be zero for
// signals that take effect when processed.
type Signal struct {
	Kind        Kind
	Zone        string
	SessionType string
	BeaconID    string
	Time        time.Time
}

type Description struct {
	Name         string
	Version      string
	Capabilities []Capability
}
