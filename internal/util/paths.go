package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ConfigDir returns the rulesmith configuration directory
func ConfigDir() string {
	return filepath.Join(HomeDir(), ".config", "rulesmith")
}

// BackupsDir returns the default directory for rules-tree backups
func BackupsDir() string {
	return filepath.Join(ConfigDir(), "backups")
}

// ExpandPath expands a leading ~ to the home directory and resolves relative
// paths against baseDir. Returns the path unchanged when already absolute.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
