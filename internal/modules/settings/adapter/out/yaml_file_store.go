package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"worktrack/internal/modules/settings/domain"
	settingsout "worktrack/internal/modules/settings/port/out"
	trackingdomain "worktrack/internal/modules/tracking/domain"
	apperrors "worktrack/internal/platform/errors"
)

type windowsFile struct {
	Outbound trackingdomain.TimeWindow `yaml:"outbound"`
	Return   trackingdomain.TimeWindow `yaml:"return"`
	Work     trackingdomain.TimeWindow `yaml:"work"`
}

type beaconFile struct {
	UUID                string `yaml:"uuid,omitempty"`
	TimeoutMinutes      int    `yaml:"timeout_minutes"`
	ScanIntervalSeconds int    `yaml:"scan_interval_seconds"`
}

type remindersFile struct {
	NoTracking trackingdomain.TimeOfDay `yaml:"no_tracking"`
	LateCutoff trackingdomain.TimeOfDay `yaml:"late_cutoff"`
}

// settingsFile is the on-disk layout. Decoding starts from the defaults,
// so absent keys keep their default value.
type settingsFile struct {
	CommuteDays       []string      `yaml:"commute_days"`
	Windows           windowsFile   `yaml:"windows"`
	Beacon            beaconFile    `yaml:"beacon"`
	Reminders         remindersFile `yaml:"reminders"`
	WeeklyTargetHours float64       `yaml:"weekly_target_hours"`
}

type YAMLFileStore struct {
	path string
}

func NewYAMLFileStore(path string) settingsout.Store {
	return &YAMLFileStore{path: path}
}

func (s *YAMLFileStore) Load(_ context.Context) (domain.Settings, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Default(), nil
		}
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return Decode(payload)
}

func (s *YAMLFileStore) Save(_ context.Context, settings domain.Settings) error {
	payload, err := Encode(settings)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Decode parses a settings document, filling absent keys from defaults.
func Decode(payload []byte) (domain.Settings, error) {
	file := toFile(domain.Default())
	dec := yaml.NewDecoder(bytes.NewReader(payload))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return domain.Settings{}, fmt.Errorf("%w: decode settings: %v", apperrors.ErrInvalidInput, err)
	}
	days := make([]time.Weekday, 0, len(file.CommuteDays))
	for _, raw := range file.CommuteDays {
		day, err := trackingdomain.ParseWeekday(raw)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("%w: commute_days: %v", apperrors.ErrInvalidInput, err)
		}
		days = append(days, day)
	}
	settings := domain.Settings{
		CommuteDays: trackingdomain.NewWeekdaySet(days...),
		Windows: domain.Windows{
			Outbound: file.Windows.Outbound,
			Return:   file.Windows.Return,
			Work:     file.Windows.Work,
		},
		Beacon: domain.Beacon{
			UUID:         file.Beacon.UUID,
			Timeout:      time.Duration(file.Beacon.TimeoutMinutes) * time.Minute,
			ScanInterval: time.Duration(file.Beacon.ScanIntervalSeconds) * time.Second,
		},
		Reminders: domain.Reminders{
			NoTracking: file.Reminders.NoTracking,
			LateCutoff: file.Reminders.LateCutoff,
		},
		WeeklyTargetHours: file.WeeklyTargetHours,
	}
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func Encode(settings domain.Settings) ([]byte, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	payload, err := yaml.Marshal(toFile(settings))
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return payload, nil
}

func toFile(settings domain.Settings) settingsFile {
	return settingsFile{
		CommuteDays: settings.CommuteDays.Names(),
		Windows: windowsFile{
			Outbound: settings.Windows.Outbound,
			Return:   settings.Windows.Return,
			Work:     settings.Windows.Work,
		},
		Beacon: beaconFile{
			UUID:                settings.Beacon.UUID,
			TimeoutMinutes:      int(settings.Beacon.Timeout / time.Minute),
			ScanIntervalSeconds: int(settings.Beacon.ScanInterval / time.Second),
		},
		Reminders: remindersFile{
			NoTracking: settings.Reminders.NoTracking,
			LateCutoff: settings.Reminders.LateCutoff,
		},
		WeeklyTargetHours: settings.WeeklyTargetHours,
	}
}
