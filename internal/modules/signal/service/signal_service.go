package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"worktrack/internal/modules/signal/domain"
	"worktrack/internal/modules/signal/dto"
	signalout "worktrack/internal/modules/signal/port/out"
	"worktrack/internal/platform/clock"
	"worktrack/internal/platform/logging"
)

const defaultPollInterval = time.Minute

type SignalService struct {
	store  signalout.ManifestStore
	host   signalout.Host
	router signalout.Router
	clock  clock.Clock
	log    *zap.Logger
}

func NewSignalService(store signalout.ManifestStore, host signalout.Host, router signalout.Router, clk clock.Clock, logger *zap.Logger) *SignalService {
	return &SignalService{store: store, host: host, router: router, clock: clk, log: logging.OrNop(logger).Named("signals")}
}

func (s *SignalService) List(ctx context.Context) ([]dto.SourceInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SourceInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.SourceInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

func (s *SignalService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		if !result.ChecksumValid {
			result.Error = "checksum mismatch"
			results = append(results, result)
			continue
		}
		if m.Enabled && s.host != nil {
			if err := s.checkLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Run polls each runnable source in its own goroutine until ctx is done.
// A source that fails is reconnected on its next tick; sources that cannot
// run at all are logged and skipped.
func (s *SignalService) Run(ctx context.Context) error {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return err
	}
	group, ctx := errgroup.WithContext(ctx)
	started := 0
	for _, m := range manifests {
		if err := runnable(m); err != nil {
			s.log.Warn("signal source skipped", zap.String("source", m.Name), zap.Error(err))
			continue
		}
		manifest := m
		started++
		group.Go(func() error {
			s.poll(ctx, manifest)
			return nil
		})
	}
	s.log.Info("signal sources started", zap.Int("count", started))
	return group.Wait()
}

func (s *SignalService) poll(ctx context.Context, manifest domain.Manifest) {
	interval := s.router.ScanInterval()
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	log := s.log.With(zap.String("source", manifest.Name))

	var (
		source signalout.Source
		cursor string
	)
	defer func() {
		if source != nil {
			source.Close()
		}
	}()
	for {
		if source == nil {
			opened, err := s.open(ctx, manifest)
			if err != nil {
				log.Warn("signal source unavailable", zap.Error(err))
			} else {
				source = opened
			}
		}
		if source != nil {
			next, err := s.pollOnce(ctx, manifest, source, cursor)
			if err != nil {
				log.Warn("signal poll failed, reconnecting", zap.Error(err))
				source.Close()
				source = nil
			} else {
				cursor = next
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *SignalService) open(ctx context.Context, manifest domain.Manifest) (signalout.Source, error) {
	source, err := s.host.Open(ctx, manifest)
	if err != nil {
		return nil, err
	}
	desc, err := source.Describe(ctx)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("describe: %w", err)
	}
	s.log.Info("signal source connected",
		zap.String("source", manifest.Name),
		zap.String("reported_name", desc.Name),
		zap.String("reported_version", desc.Version))
	return source, nil
}

func (s *SignalService) pollOnce(ctx context.Context, manifest domain.Manifest, source signalout.Source, cursor string) (string, error) {
	signals, next, err := source.Poll(ctx, cursor)
	if err != nil {
		return cursor, err
	}
	for _, signal := range signals {
		if err := s.deliver(ctx, manifest, signal); err != nil {
			s.log.Error("signal not applied",
				zap.String("source", manifest.Name),
				zap.String("kind", string(signal.Kind)),
				zap.Error(err))
		}
	}
	return next, nil
}

func (s *SignalService) deliver(ctx context.Context, manifest domain.Manifest, signal domain.Signal) error {
	capability, err := signal.Kind.Capability()
	if err != nil {
		return err
	}
	if !manifest.HasCapability(capability) {
		return fmt.Errorf("%w: %s from %s", domain.ErrCapabilityDenied, signal.Kind, manifest.Name)
	}
	return s.router.Route(ctx, signal)
}

func (s *SignalService) checkLifecycle(ctx context.Context, manifest domain.Manifest) error {
	source, err := s.host.Open(ctx, manifest)
	if err != nil {
		return err
	}
	defer source.Close()
	if _, err := source.Describe(ctx); err != nil {
		return fmt.Errorf("describe: %w", err)
	}
	return nil
}

func (s *SignalService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, m := range manifests {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("manifest %q: %w", m.Name, err)
		}
		if _, ok := seen[m.Name]; ok {
			return nil, fmt.Errorf("duplicate signal source name: %s", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return manifests, nil
}

func runnable(m domain.Manifest) error {
	if !m.Enabled {
		return domain.ErrSourceDisabled
	}
	if !fileExists(m.Binary) {
		return fmt.Errorf("binary does not exist: %s", m.Binary)
	}
	return checksumMatches(m.Binary, m.SHA256)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func checksumMatches(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return err
	}
	if hex.EncodeToString(hash.Sum(nil)) != expected {
		return domain.ErrChecksumMismatch
	}
	return nil
}
