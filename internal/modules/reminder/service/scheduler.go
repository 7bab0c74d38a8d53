package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"worktrack/internal/modules/reminder/domain"
	reminderout "worktrack/internal/modules/reminder/port/out"
	trackingdomain "worktrack/internal/modules/tracking/domain"
	"worktrack/internal/platform/clock"
	"worktrack/internal/platform/logging"
)

const CheckInterval = time.Minute

// Scheduler evaluates the reminder predicates once a minute and notifies
// each kind at most once per calendar day.
type Scheduler struct {
	clock    clock.Clock
	ledger   reminderout.Ledger
	config   reminderout.ConfigSource
	notifier reminderout.Notifier
	log      *zap.Logger

	mu    sync.Mutex
	fired map[domain.Kind]string
}

func NewScheduler(clk clock.Clock, ledger reminderout.Ledger, config reminderout.ConfigSource, notifier reminderout.Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		clock:    clk,
		ledger:   ledger,
		config:   config,
		notifier: notifier,
		log:      logging.OrNop(logger).Named("reminders"),
		fired:    map[domain.Kind]string{},
	}
}

// Run checks immediately and then on every tick until ctx is done. Check
// failures are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(CheckInterval)
	defer ticker.Stop()
	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.Check(ctx); err != nil {
		s.log.Warn("reminder check failed", zap.Error(err))
	}
}

// Check evaluates both reminders at the current time and returns the ones
// it notified.
func (s *Scheduler) Check(ctx context.Context) ([]domain.Reminder, error) {
	cfg := s.config.ReminderConfig()
	now := s.clock.Now()
	local := now
	if cfg.Location != nil {
		local = now.In(cfg.Location)
	}
	day := local.Format("2006-01-02")
	tod := trackingdomain.TimeOfDayOf(local)

	var due []domain.Reminder
	if !s.firedOn(domain.KindNoTracking, day) {
		tracked, err := s.ledger.HasTrackingOn(ctx, local)
		if err != nil {
			return nil, fmt.Errorf("check tracking today: %w", err)
		}
		commute := trackingdomain.IsCommuteDay(local, cfg.CommuteDays)
		if trackingdomain.ShouldShowNoTrackingReminder(tod, cfg.NoTracking, commute, tracked) {
			due = append(due, domain.Reminder{
				Kind:    domain.KindNoTracking,
				Day:     day,
				At:      now,
				Message: "No work session has been tracked today.",
			})
		}
	}
	if !s.firedOn(domain.KindLateTracking, day) {
		open, err := s.ledger.HasOpenSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("check open session: %w", err)
		}
		if trackingdomain.ShouldShowLateTrackingReminder(tod, cfg.LateCutoff, open) {
			due = append(due, domain.Reminder{
				Kind:    domain.KindLateTracking,
				Day:     day,
				At:      now,
				Message: "A work session is still running after " + cfg.LateCutoff.String() + ".",
			})
		}
	}

	sent := make([]domain.Reminder, 0, len(due))
	for _, reminder := range due {
		if err := s.notifier.Notify(ctx, reminder); err != nil {
			return sent, fmt.Errorf("notify %s: %w", reminder.Kind, err)
		}
		s.markFired(reminder.Kind, day)
		s.log.Info("reminder sent", zap.String("kind", string(reminder.Kind)), zap.String("day", day))
		sent = append(sent, reminder)
	}
	return sent, nil
}

func (s *Scheduler) firedOn(kind domain.Kind, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired[kind] == day
}

func (s *Scheduler) markFired(kind domain.Kind, day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired[kind] = day
}
