package filestate

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// ScanState maps a log file path to the byte offset already handed to
// the pipeline, so repeated directory scans only pick up new content.
type ScanState map[string]int64

type Manager interface {
	LoadState() (ScanState, error)
	SaveState(state ScanState) error
	GetStateFilePath() string
}

type scanStateManager struct {
	filePath string
	mu       sync.RWMutex
}

func NewManager(filePath string) Manager {
	return &scanStateManager{
		filePath: filePath,
	}
}

func (m *scanStateManager) LoadState() (ScanState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("file", m.filePath).Msg("Scan state file not found, starting fresh.")
			return make(ScanState), nil
		}
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to read scan state file")
		return nil, err
	}

	if len(data) == 0 {
		log.Warn().Str("file", m.filePath).Msg("Scan state file is empty, starting fresh.")
		return make(ScanState), nil
	}
	var state ScanState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to unmarshal scan state file")
		return nil, err
	}

	log.Debug().Str("file", m.filePath).Int("files_tracked", len(state)).Msg("Loaded scan state")
	return state, nil
}

// SaveState writes the state atomically via a temp file rename.
func (m *scanStateManager) SaveState(state ScanState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal scan state")
		return err
	}

	tempFilePath := m.filePath + ".tmp"
	err = os.WriteFile(tempFilePath, data, 0644)
	if err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary scan state file")
		return err
	}

	err = os.Rename(tempFilePath, m.filePath)
	if err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", m.filePath).Msg("Failed to rename scan state file")
		_ = os.Remove(tempFilePath)
		return err
	}
	log.Debug().Str("file", m.filePath).Int("files_tracked", len(state)).Msg("Saved scan state")
	return nil
}

func (m *scanStateManager) GetStateFilePath() string {
	return m.filePath
}
