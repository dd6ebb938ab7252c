// Package workspace manages the ephemeral directory tree of a native sandbox.
//
// A workspace is created lazily on first use and removed together with
// the process group that uses it:
//
//	<root>/              HOME of every sandbox process
//	<root>/runtime/      XDG_RUNTIME_DIR, mode 0700
//	<root>/.vncpass      remote-display password, stored once
//	<root>/<name>.log    one log sink per supervised process
//
// Log paths are resolved with filepath-securejoin so a process name can
// never address a file outside the workspace.
package workspace
