package out

import (
	"context"
	"time"

	"worktrack/internal/modules/signal/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Source is a connected plugin. Close releases the plugin process.
type Source interface {
	Describe(ctx context.Context) (domain.Description, error)
	Poll(ctx context.Context, cursor string) ([]domain.Signal, string, error)
	Close()
}

type Host interface {
	Open(ctx context.Context, manifest domain.Manifest) (Source, error)
}

// Router delivers signals to the tracking engine and presence monitor.
type Router interface {
	Route(ctx context.Context, signal domain.Signal) error
	ScanInterval() time.Duration
}
