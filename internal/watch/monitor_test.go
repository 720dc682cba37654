package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startMonitor(t *testing.T, dir string, debounce time.Duration) <-chan string {
	t.Helper()
	seen := make(chan string, 16)
	match := func(path string) bool { return strings.HasSuffix(path, ".wav") }

	m, err := New(dir, match, func(path string) { seen <- path }, debounce)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	t.Cleanup(m.Stop)
	return seen
}

func TestMonitor_HandlesSettledFile(t *testing.T) {
	dir := t.TempDir()
	seen := startMonitor(t, dir, 100*time.Millisecond)

	path := filepath.Join(dir, "talk.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.WriteString("chunk")
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	select {
	case got := <-seen:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("handler not called")
	}

	// Writes inside the debounce window collapse into one call.
	select {
	case got := <-seen:
		t.Fatalf("unexpected second call for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestMonitor_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	seen := startMonitor(t, dir, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.wav"), 0755))

	select {
	case got := <-seen:
		t.Fatalf("unexpected call for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestMonitor_CreatesFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "incoming")
	startMonitor(t, dir, 50*time.Millisecond)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}
