// Package config provides the sandbox configuration and its loading.
//
// # Sources
//
// A Config is assembled once at startup from three layers, later layers
// overriding earlier ones:
//
//   - Default(): built-in values (container backend, agent-sandbox:latest, port 6080)
//   - An optional TOML file named by --config or SANDBOX_CONFIG
//   - Environment variables (SANDBOX_IMAGE, SANDBOX_TTL, SANDBOX_DOCKER_ARGS, ...)
//
// Environment access goes through a LookupFunc so tests never mutate the
// process environment:
//
//	cfg, err := config.Load(config.LoadOptions{
//	    Lookup: func(k string) (string, bool) { v, ok := env[k]; return v, ok },
//	})
//
// # TOML File
//
//	runtime = "native"
//	password = "hunter2"
//	ttl_minutes = 10
//	extra_args = ["--shm-size", "1g"]
//
//	[native]
//	display = ":42"
//	vnc_port = 5902
//
// Unknown keys are rejected.
//
// # Validation
//
// Load validates the result. Malformed numbers, a negative TTL, ports out
// of range, and unknown runtime kinds are reported as config errors.
package config
