package storage

import "path/filepath"

// StateFileName is the sync-state singleton, read by the next run and
// opaque to the site.
const StateFileName = "_sync.json"

// SyncState records where the previous run left off. PlaylistEtags is
// part of the persisted shape but reserved: nothing populates or reads
// it yet.
type SyncState struct {
	LastSync        string            `json:"lastSync"`
	VideoCount      int               `json:"videoCount"`
	PlaylistCount   int               `json:"playlistCount"`
	LatestVideoDate string            `json:"latestVideoDate"`
	PlaylistEtags   map[string]string `json:"playlistEtags"`
}

// StateStore persists the SyncState singleton under the data root.
type StateStore struct {
	path string
}

// NewStateStore creates a store for the state file under dataDir.
func NewStateStore(dataDir string) *StateStore {
	return &StateStore{path: filepath.Join(dataDir, StateFileName)}
}

// Load returns the persisted state, or nil when no usable state
// exists. A missing or corrupt file is the normal first-run / forced
// full-sync condition, not an error.
func (s *StateStore) Load() *SyncState {
	var state SyncState
	if err := ReadJSON(s.path, "state", &state); err != nil {
		return nil
	}
	return &state
}

// Save atomically persists the state.
func (s *StateStore) Save(state *SyncState) error {
	if state.PlaylistEtags == nil {
		state.PlaylistEtags = map[string]string{}
	}
	return WriteJSON(s.path, "state", state)
}
