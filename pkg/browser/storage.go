package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// storageState mirrors the subset of Playwright's storage state file that
// matters for restoring a login.
type storageState struct {
	Cookies []struct {
		Name   string `json:"name"`
		Domain string `json:"domain"`
	} `json:"cookies"`
	Origins []json.RawMessage `json:"origins"`
}

// ValidStorageState reports whether path holds a usable storage state.
// A missing file is not an error. An empty, truncated or cookie-less file is
// treated as absent so a fresh context is created instead.
func ValidStorageState(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read storage state: %w", err)
	}

	var state storageState
	if err := json.Unmarshal(data, &state); err != nil {
		return false, nil
	}
	return len(state.Cookies) > 0, nil
}
