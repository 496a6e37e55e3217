package checkpoint

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgurr/pkg/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(filepath.Join(t.TempDir(), "state", "checkpoint.txt"))
	require.NoError(t, err)
	return mgr
}

func TestSaveAndLoad(t *testing.T) {
	mgr := newTestManager(t)
	assert.False(t, mgr.Exists())

	require.NoError(t, mgr.Save("/r/test"))
	assert.True(t, mgr.Exists())

	data, err := os.ReadFile(mgr.Path())
	require.NoError(t, err)
	assert.Equal(t, "/r/test\n", string(data))

	got, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, "/r/test", got)

	_, err = os.Stat(mgr.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveReplacesPrevious(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.Save("/r/first"))
	require.NoError(t, mgr.Save("/r/second"))

	got, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, "/r/second", got)
}

func TestSaveRejectsInvalidName(t *testing.T) {
	mgr := newTestManager(t)
	err := mgr.Save("not a community")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidName))
	assert.False(t, mgr.Exists())
}

func TestLoadMissing(t *testing.T) {
	mgr := newTestManager(t)
	_, err := mgr.Load()
	assert.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestLoadInvalidContent(t *testing.T) {
	tests := map[string]string{
		"garbage":  "rm -rf /\n",
		"empty":    "",
		"no slash": "r/test\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			mgr := newTestManager(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(mgr.Path()), 0755))
			require.NoError(t, os.WriteFile(mgr.Path(), []byte(content), 0644))

			_, err := mgr.Load()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidName))
		})
	}
}

func TestLoadToleratesCRLF(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(mgr.Path()), 0755))
	require.NoError(t, os.WriteFile(mgr.Path(), []byte("/r/test\r\n"), 0644))

	got, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, "/r/test", got)
}

func TestDelete(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.Save("/r/test"))
	require.NoError(t, mgr.Delete())
	assert.False(t, mgr.Exists())
	require.NoError(t, mgr.Delete())
}

func TestDefaultPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only applies on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "imgurr", "checkpoint.txt"), path)

	mgr, err := NewManager("")
	require.NoError(t, err)
	assert.Equal(t, path, mgr.Path())
}
