package changeengine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pentacore/bridge/internal/bridgeerr"
)

// atomicWriteJSON writes v to path as pretty-printed JSON (2-space indent,
// trailing newline) via temp-file-plus-rename so a crash mid-write never
// leaves a torn file, per spec §4.6/§8 invariant 4.
func atomicWriteJSON(path string, v interface{}) error {
	dir := filepath.Dir(path)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return &bridgeerr.PersistenceError{Path: path, Cause: err}
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return &bridgeerr.PersistenceError{Path: path, Cause: err}
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &bridgeerr.PersistenceError{Path: path, Cause: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &bridgeerr.PersistenceError{Path: path, Cause: err}
	}

	if err := os.Rename(tmp, path); err != nil {
		return &bridgeerr.PersistenceError{Path: path, Cause: err}
	}
	_ = dir
	return nil
}

// loadJSONOrRecover parses path into v. On a parse failure the file is
// renamed to *.corrupt-<timestamp>.json alongside the original and the
// function reports recovered=true so the caller can instantiate fresh
// defaults and emit ConfigurationCorrupt exactly once.
func loadJSONOrRecover(path string, v interface{}) (recovered bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return false, readErr
		}
		return false, &bridgeerr.PersistenceError{Path: path, Cause: readErr}
	}

	if jsonErr := json.Unmarshal(data, v); jsonErr != nil {
		corruptPath := fmt.Sprintf("%s.corrupt-%d.json", path, time.Now().Unix())
		if renameErr := os.Rename(path, corruptPath); renameErr != nil {
			return false, &bridgeerr.PersistenceError{Path: path, Cause: renameErr}
		}
		return true, &bridgeerr.ConfigurationCorruptError{Path: path}
	}
	return false, nil
}
