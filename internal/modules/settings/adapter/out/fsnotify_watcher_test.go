package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	settingsout "worktrack/internal/modules/settings/adapter/out"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFileWatcherCollapsesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	watcher := settingsout.NewFileWatcher(path, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	notified := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func() { notified <- struct{}{} })
	}()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("watch: %v", err)
		}
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("weekly_target_hours: 30\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-notified:
	case <-time.After(5 * time.Second):
		t.Fatalf("no change notification")
	}
	select {
	case <-notified:
		t.Fatalf("burst produced more than one notification")
	case <-time.After(300 * time.Millisecond):
	}
}
