package checklist

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watcherTemplate = `
id: TPL-WATCH
name: Tipo vigilado
fields:
  - {id: check, label: Check, kind: boolean, required: true}
`

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	tpls, err := LoadAll(dir)
	require.NoError(t, err)
	registry, err := NewRegistry(tpls)
	require.NoError(t, err)

	_, ok := registry.ByID("TPL-WATCH")
	require.False(t, ok)

	w := NewWatcher(registry, dir, 50*time.Millisecond, log.New(io.Discard, "", 0))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "watch.yaml"), []byte(watcherTemplate), 0o644))

	assert.Eventually(t, func() bool {
		_, ok := registry.ByID("TPL-WATCH")
		return ok
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_BadFileKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "watch.yaml"), []byte(watcherTemplate), 0o644))

	tpls, err := LoadAll(dir)
	require.NoError(t, err)
	registry, err := NewRegistry(tpls)
	require.NoError(t, err)

	w := NewWatcher(registry, dir, 50*time.Millisecond, log.New(io.Discard, "", 0))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// An invalid edit must not drop the template that was loaded.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "watch.yaml"), []byte("id: [broken"), 0o644))

	time.Sleep(300 * time.Millisecond)
	_, ok := registry.ByID("TPL-WATCH")
	assert.True(t, ok)
}
