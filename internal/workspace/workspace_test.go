package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"display-server", false},
		{"desktop_session.1", false},
		{"", true},
		{"../escape", true},
		{"has space", true},
		{"-leading-dash", true},
		{strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestNew_CreatesTree(t *testing.T) {
	parent := t.TempDir()

	w, err := New(parent, "sandbox-native-")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(w.Root), "sandbox-native-") {
		t.Errorf("Root = %q, want sandbox-native- prefix", w.Root)
	}
	if !filepath.IsAbs(w.Root) {
		t.Errorf("Root = %q, want absolute path", w.Root)
	}

	info, err := os.Stat(w.RuntimeDir())
	if err != nil {
		t.Fatalf("runtime dir missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("runtime dir perm = %o, want 700", perm)
	}
}

func TestEnsure_RestoresRuntimeDir(t *testing.T) {
	w, err := New(t.TempDir(), "ws-")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := os.RemoveAll(w.RuntimeDir()); err != nil {
		t.Fatal(err)
	}
	if err := w.Ensure(); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if _, err := os.Stat(w.RuntimeDir()); err != nil {
		t.Errorf("runtime dir not restored: %v", err)
	}
}

func TestOpenLog(t *testing.T) {
	w, err := New(t.TempDir(), "ws-")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f, err := w.OpenLog("display-server")
	if err != nil {
		t.Fatalf("OpenLog() error = %v", err)
	}
	_, _ = f.WriteString("hello\n")
	_ = f.Close()

	data, err := os.ReadFile(filepath.Join(w.Root, "display-server.log"))
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("log content = %q", data)
	}

	f, err = w.OpenLog("display-server")
	if err != nil {
		t.Fatalf("reopen OpenLog() error = %v", err)
	}
	_, _ = f.WriteString("again\n")
	_ = f.Close()

	data, _ = os.ReadFile(filepath.Join(w.Root, "display-server.log"))
	if string(data) != "hello\nagain\n" {
		t.Errorf("reopened log should append, content = %q", data)
	}

	if _, err := w.OpenLog("../outside"); err == nil {
		t.Error("OpenLog should reject names that escape the workspace")
	}
}

func TestPasswordFile(t *testing.T) {
	w, err := New(t.TempDir(), "ws-")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if w.HasPassword() {
		t.Error("HasPassword() = true before storing")
	}
	if err := os.WriteFile(w.PasswordFile(), []byte("hash"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !w.HasPassword() {
		t.Error("HasPassword() = false after storing")
	}
}

func TestRemove(t *testing.T) {
	w, err := New(t.TempDir(), "ws-")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(w.Root); !os.IsNotExist(err) {
		t.Errorf("workspace still exists: %v", err)
	}

	// Removing twice is fine.
	if err := w.Remove(); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}
