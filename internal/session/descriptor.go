// File: internal/session/descriptor.go
package session

import (
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Descriptor identifies the extension payload loaded into a session. It is
// resolved once per session and immutable afterwards.
type Descriptor struct {
	Identifier      string
	Source          string
	Path            string
	Name            string
	Version         string
	ManifestVersion int
}

// manifest mirrors the subset of manifest.json the driver cares about.
type manifest struct {
	ManifestVersion int    `json:"manifest_version"`
	Name            string `json:"name"`
	Version         string `json:"version"`
}

// hasManifest reports whether dir contains a manifest.json (case-insensitive,
// matching how Chrome treats the filename on case-folding filesystems).
func hasManifest(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), "manifest.json") {
			return true
		}
	}
	return false
}

// readManifest parses the manifest.json inside an unpacked extension directory.
func readManifest(dir string) (manifest, error) {
	var m manifest
	raw, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return m, &IOError{Op: "read", Path: filepath.Join(dir, "manifest.json"), Err: err}
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, &ResolutionError{Reason: "malformed manifest.json", Err: err}
	}
	return m, nil
}

// newDescriptor builds the immutable descriptor for an extension that has been
// copied into the session at path.
func newDescriptor(identifier, source, path string) (Descriptor, error) {
	m, err := readManifest(path)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Identifier:      identifier,
		Source:          source,
		Path:            path,
		Name:            m.Name,
		Version:         m.Version,
		ManifestVersion: m.ManifestVersion,
	}, nil
}
