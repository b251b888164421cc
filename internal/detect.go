package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "gpt-web"

// DataPaths holds the files the tool keeps per user profile
type DataPaths struct {
	DataDir      string // base directory
	DatabasePath string // <DataDir>/<name>.sqlite
	UIDPath      string // <DataDir>/uid
}

// DefaultDataDir returns the per-user data directory for the current OS
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library/Application Support", appDirName), nil
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		return filepath.Join(home, ".local/share", appDirName), nil
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, appDirName), nil
		}
		return filepath.Join(home, "AppData", "Local", appDirName), nil
	default:
		return filepath.Join(home, "."+appDirName), nil
	}
}

// ResolveDataPaths builds the paths for a data directory and database
// name, falling back to the defaults for empty values.
func ResolveDataPaths(dataDir, dbName string) (DataPaths, error) {
	if dataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return DataPaths{}, err
		}
		dataDir = dir
	}
	if dbName == "" {
		dbName = DefaultDatabaseName
	}

	return DataPaths{
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, dbName+".sqlite"),
		UIDPath:      filepath.Join(dataDir, "uid"),
	}, nil
}

// DatabaseExists checks if the database file has been created yet
func (p DataPaths) DatabaseExists() bool {
	_, err := os.Stat(p.DatabasePath)
	return err == nil
}
