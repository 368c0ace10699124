package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/soap-flow/internal/logger"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{seen: make(chan string, 16)}
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.seen <- path
	return nil
}

func (r *recorder) wait(t *testing.T) string {
	t.Helper()
	select {
	case p := <-r.seen:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
		return ""
	}
}

func startWatcher(t *testing.T, dir string, handler EventHandler, maxConcurrent int) (context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(dir, handler, logger.Nop(), maxConcurrent)
	require.NoError(t, err)
	w.(*implWatcher).settleDelay = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Stop()
	})
	return cancel, done
}

func TestIsTranscript(t *testing.T) {
	require.True(t, IsTranscript("consulta.txt"))
	require.True(t, IsTranscript("/inbox/CONSULTA.TXT"))
	require.True(t, IsTranscript("notes.md"))
	require.False(t, IsTranscript("audio.mp3"))
	require.False(t, IsTranscript("noext"))
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), newRecorder().handle, logger.Nop(), 1)
	require.Error(t, err)
}

func TestNewDefaultsConcurrency(t *testing.T) {
	w, err := New(t.TempDir(), newRecorder().handle, logger.Nop(), 0)
	require.NoError(t, err)
	defer w.Stop()
	require.Equal(t, 1, w.(*implWatcher).maxConcurrent)
}

func TestStartDrainsBacklog(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "consulta1.txt")
	require.NoError(t, os.WriteFile(existing, []byte("Paciente: tosse"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foto.jpg"), []byte("x"), 0644))

	rec := newRecorder()
	startWatcher(t, dir, rec.handle, 1)

	require.Equal(t, existing, rec.wait(t))
}

func TestStartHandlesNewTranscripts(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec.handle, 2)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.wav"), []byte("x"), 0644))
	path := filepath.Join(dir, "consulta2.txt")
	require.NoError(t, os.WriteFile(path, []byte("Paciente: febre"), 0644))

	require.Equal(t, path, rec.wait(t))
}

func TestStartStopsOnCancel(t *testing.T) {
	cancel, done := startWatcher(t, t.TempDir(), newRecorder().handle, 1)
	cancel()

	select {
	case err := <-done:
		require.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestStartWaitsForRunningHandlerOnCancel(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var finished int32
	handler := func(context.Context, string) error {
		started <- struct{}{}
		<-release
		atomic.AddInt32(&finished, 1)
		return nil
	}

	w, err := New(dir, handler, logger.Nop(), 1)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not started")
	}

	// The second backlog file is waiting for the only slot.
	cancel()
	select {
	case err := <-done:
		t.Fatalf("Start returned %v before the running handler finished", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&finished))
}

func TestSettleHonoursCancel(t *testing.T) {
	w := &implWatcher{settleDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.ErrorIs(t, w.settle(ctx), context.Canceled)
	require.Less(t, time.Since(start), time.Second)

	w.settleDelay = 0
	require.NoError(t, w.settle(ctx))
}

func TestDispatchLimitsConcurrency(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	var running, peak int32
	finished := make(chan struct{}, 3)
	handler := func(context.Context, string) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		finished <- struct{}{}
		return nil
	}

	startWatcher(t, dir, handler, 1)

	for i := 0; i < 3; i++ {
		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatal("backlog not processed")
		}
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestDispatchSkipsInFlightPath(t *testing.T) {
	w := &implWatcher{inFlight: make(map[string]struct{})}
	require.True(t, w.claim("/inbox/a.txt"))
	require.False(t, w.claim("/inbox/a.txt"))
	w.unclaim("/inbox/a.txt")
	require.True(t, w.claim("/inbox/a.txt"))
}
