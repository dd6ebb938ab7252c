// Package workspace manages the ephemeral directory tree of a native sandbox
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	securejoin "github.com/cyphar/filepath-securejoin"
)

const (
	// RuntimeDirName is the XDG runtime directory inside the workspace.
	RuntimeDirName = "runtime"

	// PasswordFileName holds the hashed remote-display password.
	PasswordFileName = ".vncpass"

	runtimeDirPerm = 0o700
	logFilePerm    = 0o600
)

// validName matches safe log sink names: alphanumeric, hyphens, underscores, dots.
var validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateName checks that a name is safe to use as a file name inside
// the workspace.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("workspace entry name must not be empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("workspace entry name too long (max 128 characters)")
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("workspace entry name %q contains invalid characters (allowed: alphanumeric, hyphens, underscores, dots)", name)
	}
	return nil
}

// Workspace is a temporary home directory for one native sandbox. It
// holds the runtime directory, the credential file, and one log file per
// supervised process.
type Workspace struct {
	// Root is the absolute path of the workspace directory.
	Root string
}

// New creates a fresh workspace under parent (os.TempDir when empty)
// with an owner-only runtime directory.
func New(parent, prefix string) (*Workspace, error) {
	root, err := os.MkdirTemp(parent, prefix)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		_ = os.RemoveAll(root)
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}

	w := &Workspace{Root: abs}
	if err := w.Ensure(); err != nil {
		_ = os.RemoveAll(abs)
		return nil, err
	}
	return w, nil
}

// Ensure recreates the workspace tree if parts of it were removed and
// re-applies owner-only permissions on the runtime directory.
func (w *Workspace) Ensure() error {
	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	dir := w.RuntimeDir()
	if err := os.MkdirAll(dir, runtimeDirPerm); err != nil {
		return fmt.Errorf("create runtime dir: %w", err)
	}
	// MkdirAll is subject to umask and leaves existing dirs untouched.
	if err := os.Chmod(dir, runtimeDirPerm); err != nil {
		return fmt.Errorf("restrict runtime dir: %w", err)
	}
	return nil
}

// RuntimeDir returns the XDG_RUNTIME_DIR for the sandbox.
func (w *Workspace) RuntimeDir() string {
	return filepath.Join(w.Root, RuntimeDirName)
}

// PasswordFile returns the path of the stored remote-display password.
func (w *Workspace) PasswordFile() string {
	return filepath.Join(w.Root, PasswordFileName)
}

// HasPassword reports whether credentials were already stored.
func (w *Workspace) HasPassword() bool {
	_, err := os.Stat(w.PasswordFile())
	return err == nil
}

// LogPath returns the log file path for a named process, confined to
// the workspace.
func (w *Workspace) LogPath(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return securejoin.SecureJoin(w.Root, name+".log")
}

// OpenLog opens the append-only log sink for a named process.
func (w *Workspace) OpenLog(name string) (*os.File, error) {
	path, err := w.LogPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", name, err)
	}
	return f, nil
}

// Remove deletes the whole workspace tree.
func (w *Workspace) Remove() error {
	if w.Root == "" {
		return nil
	}
	return os.RemoveAll(w.Root)
}
