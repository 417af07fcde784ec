// File: internal/session/locate.go
package session

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// installRoot returns the per-OS Chrome default-profile directory that holds
// installed copies of the extension with the given identifier.
func installRoot(identifier string) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", &ResolutionError{Reason: "cannot resolve home directory", Err: err}
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default", "Extensions", identifier), nil
	case "windows":
		return filepath.Join(home, "AppData", "Local", "Google", "Chrome", "User Data", "Default", "Extensions", identifier), nil
	default:
		return filepath.Join(home, ".config", "google-chrome", "Default", "Extensions", identifier), nil
	}
}

// Locate searches the local Chrome install for an unpacked copy of the
// extension identified by identifier and returns the directory of its highest
// installed version.
func Locate(identifier string) (string, error) {
	root, err := installRoot(identifier)
	if err != nil {
		return "", err
	}
	return locateIn(root)
}

// locateIn picks the highest version subdirectory of root that carries a
// manifest. Chrome names version directories like "11.13.1_0"; a descending
// case-insensitive sort puts the newest first, matching Chrome's own layout
// closely enough for a default profile.
func locateIn(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", ErrExtensionNotFound
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return "", ErrExtensionNotFound
	}

	sort.Slice(versions, func(i, j int) bool {
		return strings.ToLower(versions[i]) > strings.ToLower(versions[j])
	})

	for _, version := range versions {
		candidate := filepath.Join(root, version)
		if hasManifest(candidate) {
			return candidate, nil
		}
	}
	return "", ErrExtensionNotFound
}
