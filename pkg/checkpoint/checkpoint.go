package checkpoint

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"imgurr/pkg/errors"
	"imgurr/pkg/logger"
	"imgurr/pkg/validate"
)

// ErrNoCheckpoint is returned by Load when no checkpoint has been written
var ErrNoCheckpoint = stderrors.New("no checkpoint found")

// Manager handles checkpoint operations
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a checkpoint manager for path, or for DefaultPath
// when path is empty
func NewManager(path string) (*Manager, error) {
	if path == "" {
		dataDir, err := getDataDirectory()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		path = filepath.Join(dataDir, "checkpoint.txt")
	}

	return &Manager{
		checkpointPath: path,
		logger:         logger.GetLogger(),
	}, nil
}

// DefaultPath returns the platform data directory location of the checkpoint
func DefaultPath() (string, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "checkpoint.txt"), nil
}

// Save records community as the one being crawled
func (m *Manager) Save(community string) error {
	if !validate.IsValidCommunityName(community) {
		return errors.New(errors.ErrorTypeInvalidName, "invalid community name %q", community)
	}

	if err := os.MkdirAll(filepath.Dir(m.checkpointPath), 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	if _, err := file.WriteString(community + "\n"); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"community": community,
		"path":      m.checkpointPath,
	})
	return nil
}

// Load returns the community recorded by the last Save
func (m *Manager) Load() (string, error) {
	data, err := os.ReadFile(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCheckpoint
		}
		return "", fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	community := strings.TrimRight(line, "\r")
	if !validate.IsValidCommunityName(community) {
		return "", errors.New(errors.ErrorTypeInvalidName, "checkpoint %s holds invalid community name %q", m.checkpointPath, community)
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"community": community,
		"path":      m.checkpointPath,
	})
	return community, nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("Checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// Path returns the checkpoint file location
func (m *Manager) Path() string {
	return m.checkpointPath
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "imgurr"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "imgurr"), nil
	default:
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "imgurr"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "imgurr"), nil
	}
}
