package out

import (
	"context"
	"time"

	"go.uber.org/zap"

	"worktrack/internal/modules/reminder/domain"
	reminderout "worktrack/internal/modules/reminder/port/out"
	"worktrack/internal/platform/logging"
)

// Broadcaster fans a JSON event out to connected observers.
type Broadcaster interface {
	BroadcastJSON(v any)
}

// BroadcastNotifier publishes reminders as "reminder" events and logs them.
type BroadcastNotifier struct {
	out Broadcaster
	log *zap.Logger
}

func NewBroadcastNotifier(out Broadcaster, logger *zap.Logger) reminderout.Notifier {
	return &BroadcastNotifier{out: out, log: logging.OrNop(logger).Named("notify")}
}

func (n *BroadcastNotifier) Notify(_ context.Context, reminder domain.Reminder) error {
	n.log.Debug("broadcasting reminder", zap.String("kind", string(reminder.Kind)), zap.String("message", reminder.Message))
	n.out.BroadcastJSON(map[string]any{
		"type":     "reminder",
		"ts":       reminder.At.UTC().Format(time.RFC3339Nano),
		"reminder": reminder,
	})
	return nil
}
