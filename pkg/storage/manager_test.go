package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveIfAbsent(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, false)
	require.NoError(t, err)

	saved, err := m.SaveIfAbsent("abc123.jpg", []byte("image bytes"), time.Time{})
	require.NoError(t, err)
	assert.True(t, saved)

	content, err := os.ReadFile(filepath.Join(dir, "abc123.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(content))

	_, err = os.Stat(filepath.Join(dir, "abc123.jpg.part"))
	assert.True(t, os.IsNotExist(err))
	assert.True(t, m.Exists("abc123.jpg"))
}

func TestSaveIfAbsentKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc123.jpg"), []byte("original"), 0644))

	saved, err := m.SaveIfAbsent("abc123.jpg", []byte("replacement"), time.Time{})
	require.NoError(t, err)
	assert.False(t, saved)

	content, err := os.ReadFile(filepath.Join(dir, "abc123.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
}

func TestSaveIfAbsentOverwritesStalePart(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, false)
	require.NoError(t, err)

	stale := filepath.Join(dir, "abc123.jpg.part")
	require.NoError(t, os.WriteFile(stale, []byte("half a download that was much longer"), 0644))

	saved, err := m.SaveIfAbsent("abc123.jpg", []byte("whole"), time.Time{})
	require.NoError(t, err)
	assert.True(t, saved)

	content, err := os.ReadFile(filepath.Join(dir, "abc123.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "whole", string(content))
}

func TestSaveIfAbsentPreservesTimestamp(t *testing.T) {
	dir := t.TempDir()
	created := time.Unix(1335866400, 0)

	m, err := NewManager(dir, true)
	require.NoError(t, err)
	_, err = m.SaveIfAbsent("a.jpg", []byte("x"), created)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "a.jpg"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(created))

	plain, err := NewManager(t.TempDir(), false)
	require.NoError(t, err)
	_, err = plain.SaveIfAbsent("a.jpg", []byte("x"), created)
	require.NoError(t, err)

	info, err = os.Stat(plain.Path("a.jpg"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), info.ModTime(), time.Minute)
}

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	m, err := NewManager(dir, false)
	require.NoError(t, err)
	assert.Equal(t, dir, m.OutputDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
