package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherStartStop(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "ebcore.yaml"), func(Config) {})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx)) // second Start is a no-op
	w.Stop()
	w.Stop() // second Stop is a no-op
}

func TestWatcherStartFailureLeavesStopNonBlocking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "ebcore.yaml")
	w, err := NewWatcher(path, func(Config) {})
	require.NoError(t, err)

	require.Error(t, w.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}
}
