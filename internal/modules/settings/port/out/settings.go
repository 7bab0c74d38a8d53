package out

import (
	"context"

	"worktrack/internal/modules/settings/domain"
)

type Store interface {
	// Load returns defaults when nothing has been stored yet.
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}

// ChangeNotifier calls notify whenever the stored settings may have
// changed. Watch blocks until ctx is done.
type ChangeNotifier interface {
	Watch(ctx context.Context, notify func()) error
}
