// Package storage keeps finished games, user preferences and result
// statistics in a BadgerDB database.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessrules"

// Dirs is the on-disk layout of the application.
type Dirs struct {
	Root    string
	DB      string // BadgerDB files
	Exports string // PGN files and diagrams saved under a bare file name
}

// DirsIn lays the directories out under root.
func DirsIn(root string) Dirs {
	return Dirs{
		Root:    root,
		DB:      filepath.Join(root, "db"),
		Exports: filepath.Join(root, "exports"),
	}
}

// DefaultDirs returns the layout under the platform data directory:
// - macOS: ~/Library/Application Support/chessrules/
// - Linux: $XDG_DATA_HOME/chessrules/ or ~/.local/share/chessrules/
// - Windows: %APPDATA%/chessrules/
func DefaultDirs() (Dirs, error) {
	base, err := dataHome()
	if err != nil {
		return Dirs{}, err
	}
	return DirsIn(filepath.Join(base, appName)), nil
}

func dataHome() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Roaming"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// Ensure creates the root and database directories. The exports
// directory is created on first use.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Root, d.DB} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ExportPath resolves the target of an export. A bare file name lands in
// the exports directory, which is created if needed. A name with a
// directory part, or any name when Exports is unset, is returned as is.
func (d Dirs) ExportPath(name string) (string, error) {
	if d.Exports == "" || filepath.Base(name) != name {
		return name, nil
	}
	if err := os.MkdirAll(d.Exports, 0755); err != nil {
		return "", err
	}
	return filepath.Join(d.Exports, name), nil
}
