package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// State is shared between the running monitor and the CLI commands.
// Clipboard text is never stored, only its length.
type State struct {
	Active         bool      `json:"active"`
	Captures       int       `json:"captures"`
	LastCaptureAt  time.Time `json:"last_capture_at"`
	LastCaptureLen int       `json:"last_capture_len"`
}

type Storage interface {
	Load() (*State, error)
	Save(state *State) error
	Clear() error
}

type JSONStorage struct {
	Path string
}

func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{Path: path}
}

func GetDefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cliprelay", "state.json"), nil
}

func (s *JSONStorage) Load() (*State, error) {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return &State{Active: true}, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Save writes through a uniquely named temp file so a concurrent reader
// never sees a half-written state and concurrent writers never share a
// temp file.
func (s *JSONStorage) Save(state *State) error {
	dir := filepath.Dir(s.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// Clear resets capture statistics and keeps the active flag.
func (s *JSONStorage) Clear() error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	return s.Save(&State{Active: state.Active})
}
