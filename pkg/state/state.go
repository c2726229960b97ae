package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the canonical runtime folder layout under the archive path.
type Paths struct {
	Root      string
	Store     string
	State     string
	Sweeper   string
	Telemetry string
	Tmp       string
}

// PathsVar is populated by Init during startup and read by the sweeper and
// telemetry writers.
var PathsVar Paths

// Init ensures the runtime folder layout exists under archivePath and
// records the resolved paths in PathsVar. Paths must not be symlinks, must
// have restrictive permissions, and must be writable by the process.
func Init(archivePath string) error {
	p := Paths{
		Root:      archivePath,
		Store:     filepath.Join(archivePath, "store"),
		State:     filepath.Join(archivePath, "state"),
		Sweeper:   filepath.Join(archivePath, "state", "sweeper"),
		Telemetry: filepath.Join(archivePath, "state", "telemetry"),
		Tmp:       filepath.Join(archivePath, "state", "tmp"),
	}
	for _, dir := range []string{p.Store, p.Sweeper, p.Telemetry, p.Tmp} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}
	PathsVar = p
	return nil
}

func ensureDir(p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("cannot create parent for %s: %w", p, err)
	}
	if fi, err := os.Lstat(p); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path is a symlink: %s", p)
		}
		if !fi.IsDir() {
			return fmt.Errorf("path exists and is not a directory: %s", p)
		}
		if fi.Mode().Perm()&0o022 != 0 {
			return fmt.Errorf("path has permissive mode (group/other write): %s", p)
		}
	}
	if err := os.MkdirAll(p, 0o700); err != nil {
		return fmt.Errorf("cannot create path %s: %w", p, err)
	}
	if fi, err := os.Lstat(p); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path is a symlink after creation: %s", p)
		}
	}
	// writability check: create and remove a temp file
	tmp, err := os.CreateTemp(p, ".validate-*")
	if err != nil {
		return fmt.Errorf("path not writable: %s: %w", p, err)
	}
	tmp.Close()
	_ = os.Remove(tmp.Name())
	return nil
}
