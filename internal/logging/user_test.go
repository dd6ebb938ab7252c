package logging

import (
	"bytes"
	"testing"
)

func TestUserOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	SetUserOutput(&out, &errOut)
	t.Cleanup(func() { SetUserOutput(nil, nil) })

	UserInfo("starting %s", "docker")
	UserSuccess("sandbox %s ready", "sandbox-1")
	UserWarning("ttl is %d", 0)
	UserError("failed: %v", "boom")

	if got, want := out.String(), "ℹ starting docker\n✓ sandbox sandbox-1 ready\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if got, want := errOut.String(), "⚠ ttl is 0\n✗ failed: boom\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}
