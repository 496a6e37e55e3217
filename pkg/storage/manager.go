package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manager writes downloaded images into the output directory
type Manager struct {
	outputDir          string
	preserveTimestamps bool
}

// NewManager creates a new storage manager
func NewManager(outputDir string, preserveTimestamps bool) (*Manager, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir:          outputDir,
		preserveTimestamps: preserveTimestamps,
	}, nil
}

// Path returns the full path for filename inside the output directory
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.outputDir, filename)
}

// Exists reports whether filename is already present in final form
func (m *Manager) Exists(filename string) bool {
	_, err := os.Stat(m.Path(filename))
	return err == nil
}

// SaveIfAbsent writes data to filename unless a file by that name already
// exists, in which case it does nothing and reports false. The data goes
// to "<filename>.part" first and is renamed into place, so a crash leaves
// at most a stale .part file, which the next attempt truncates.
//
// When timestamp preservation is enabled and mtime is non-zero, the file's
// access and modification times are set to mtime.
func (m *Manager) SaveIfAbsent(filename string, data []byte, mtime time.Time) (bool, error) {
	final := m.Path(filename)
	if _, err := os.Stat(final); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", filename, err)
	}

	part := final + ".part"
	out, err := os.OpenFile(part, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	if err == nil {
		err = out.Sync()
	}
	closeErr := out.Close()

	if err != nil {
		os.Remove(part)
		return false, fmt.Errorf("failed to save image data: %w", err)
	}
	if closeErr != nil {
		os.Remove(part)
		return false, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if m.preserveTimestamps && !mtime.IsZero() {
		if err := os.Chtimes(part, mtime, mtime); err != nil {
			os.Remove(part)
			return false, fmt.Errorf("failed to set file times: %w", err)
		}
	}

	if err := os.Rename(part, final); err != nil {
		os.Remove(part)
		return false, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return true, nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}
