// File: internal/session/session.go

// Package session owns the on-disk sandbox that holds a persistent browser
// profile and the copied extension payload. Resolving a session is the only
// durable mutation the tool performs; profiles are never deleted automatically.
package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// extensionSubdir is where the payload lives inside a session directory.
const extensionSubdir = "browser_extension"

// Confirmer answers yes/no questions before destructive copies. The CLI wires
// an interactive prompt; tests script the answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Options controls session resolution.
type Options struct {
	// Name of the session directory. Empty means a fresh random directory
	// under the working directory (always "first run" semantics).
	Name string
	// ExtensionPath is an explicit unpacked extension directory. Empty means
	// reuse a previously copied payload or auto-locate one by Identifier.
	ExtensionPath string
	// Identifier is the extension id used for auto-location.
	Identifier string
	// Confirm guards overwriting an existing payload copy. Nil declines.
	Confirm Confirmer
	// Locator overrides extension auto-location, mainly for tests.
	// Defaults to Locate.
	Locator func(identifier string) (string, error)
}

// Session is the resolved sandbox: a profile directory plus the extension
// payload copied into it.
type Session struct {
	// Dir is the absolute profile directory handed to the browser.
	Dir string
	// ExtensionDir is the absolute path of the copied payload inside Dir.
	ExtensionDir string
	// Descriptor describes the copied extension; immutable after resolve.
	Descriptor Descriptor
	// Fresh is true when the directory was created by this invocation.
	Fresh bool
}

// Resolve materializes the session directory and its extension payload
// according to opts. On failure of a freshly generated random session the
// half-made directory is removed; named sessions are left untouched.
func Resolve(logger *zap.Logger, opts Options) (*Session, error) {
	log := logger.Named("session")

	dir, fresh, err := resolveDir(log, opts.Name)
	if err != nil {
		return nil, err
	}

	sess, err := populate(log, dir, fresh, opts)
	if err != nil && fresh && opts.Name == "" {
		log.Info("Removing unusable random session directory", zap.String("dir", dir))
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.Warn("Failed to remove session directory", zap.String("dir", dir), zap.Error(rmErr))
		}
	}
	return sess, err
}

// resolveDir creates or reuses the session directory.
func resolveDir(log *zap.Logger, name string) (dir string, fresh bool, err error) {
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", false, &ResolutionError{Reason: "cannot resolve working directory", Err: err}
		}
		dir = filepath.Join(cwd, fmt.Sprintf("extflow_%s_session", uuid.NewString()[:8]))
		if err := os.Mkdir(dir, 0o755); err != nil {
			return "", false, &IOError{Op: "create", Path: dir, Err: err}
		}
		log.Info("No session name given, created a fresh random session",
			zap.String("dir", dir))
		log.Info("To reuse this browser session next time, pass --session",
			zap.String("session", dir))
		return dir, true, nil
	}

	dir, err = filepath.Abs(name)
	if err != nil {
		return "", false, &ResolutionError{Reason: fmt.Sprintf("invalid session name %q", name), Err: err}
	}
	if _, statErr := os.Stat(dir); os.IsNotExist(statErr) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", false, &IOError{Op: "create", Path: dir, Err: err}
		}
		fresh = true
	}
	return dir, fresh, nil
}

// populate ensures the extension payload exists inside the session directory
// and builds the descriptor.
func populate(log *zap.Logger, dir string, fresh bool, opts Options) (*Session, error) {
	dest := filepath.Join(dir, extensionSubdir)

	source := opts.ExtensionPath
	switch {
	case source != "":
		abs, err := filepath.Abs(source)
		if err != nil {
			return nil, &ResolutionError{Reason: fmt.Sprintf("invalid extension path %q", source), Err: err}
		}
		source = abs
		if !hasManifest(source) {
			return nil, &ResolutionError{Reason: fmt.Sprintf("no manifest.json in %q", source)}
		}
		if err := copyPayload(log, source, dest, opts.Confirm); err != nil {
			return nil, err
		}

	case hasManifest(dest):
		// Reuse the payload copied by a previous run.
		log.Info("Reusing previously copied extension payload", zap.String("path", dest))

	default:
		locate := opts.Locator
		if locate == nil {
			locate = Locate
		}
		log.Info("Searching for the browser extension", zap.String("identifier", opts.Identifier))
		found, err := locate(opts.Identifier)
		if err != nil {
			return nil, &ResolutionError{Reason: fmt.Sprintf("no copy of extension %q installed", opts.Identifier), Err: err}
		}
		source = found
		if err := copyPayload(log, source, dest, opts.Confirm); err != nil {
			return nil, err
		}
	}

	desc, err := newDescriptor(opts.Identifier, source, dest)
	if err != nil {
		return nil, err
	}

	log.Info("Session resolved",
		zap.String("dir", dir),
		zap.String("extension", desc.Name),
		zap.String("version", desc.Version),
		zap.Int("manifest_version", desc.ManifestVersion),
		zap.Bool("fresh", fresh),
	)

	return &Session{Dir: dir, ExtensionDir: dest, Descriptor: desc, Fresh: fresh}, nil
}

// copyPayload copies the unpacked extension into the session, prompting before
// replacing an existing copy.
func copyPayload(log *zap.Logger, source, dest string, confirm Confirmer) error {
	if _, err := os.Stat(dest); err == nil {
		prompt := fmt.Sprintf("Destination %q already exists, overwrite (yes): ", dest)
		if confirm == nil || !confirm.Confirm(prompt) {
			return &ResolutionError{Reason: "extension payload already present", Err: ErrOverwriteDeclined}
		}
		if err := os.RemoveAll(dest); err != nil {
			return &IOError{Op: "remove", Path: dest, Err: err}
		}
	}

	log.Info("Copying extension payload", zap.String("from", source), zap.String("to", dest))
	if err := copyDir(source, dest); err != nil {
		return err
	}
	return nil
}

// copyDir recursively copies a directory tree. Symlinks inside extension
// payloads are not expected and are skipped.
func copyDir(source, dest string) error {
	return filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return &IOError{Op: "resolve", Path: path, Err: err}
		}
		target := filepath.Join(dest, rel)

		if info.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &IOError{Op: "create", Path: target, Err: err}
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return &IOError{Op: "open", Path: source, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &IOError{Op: "create", Path: dest, Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return &IOError{Op: "copy", Path: dest, Err: err}
	}
	return nil
}

// String implements fmt.Stringer for log friendliness.
func (s *Session) String() string {
	return strings.Join([]string{s.Dir, s.Descriptor.Version}, "@")
}
