package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	shellquote "github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/deskbox/internal/errors"
)

// RuntimeKind identifies which sandbox backend to build
type RuntimeKind string

const (
	RuntimeDocker RuntimeKind = "docker"
	RuntimePodman RuntimeKind = "podman"
	RuntimeNative RuntimeKind = "native"
	RuntimeAuto   RuntimeKind = "auto"
)

const (
	DefaultImage       = "agent-sandbox:latest"
	DefaultPassword    = "secret"
	DefaultTTLMinutes  = 30
	DefaultPort        = 6080
	DefaultNetworkMode = "none"
	DefaultCPUs        = "1"
	DefaultMemory      = "512m"
	DefaultListen      = "0.0.0.0:8000"

	DefaultDisplay = ":99"
	DefaultWidth   = 1280
	DefaultHeight  = 800
	DefaultVNCPort = 5901
	DefaultWebRoot = "/usr/share/novnc/"

	// ConfigFileEnv names the variable pointing at an optional TOML file.
	ConfigFileEnv = "SANDBOX_CONFIG"
)

// NativeConfig holds settings only the native backend reads
type NativeConfig struct {
	Display string `toml:"display"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	VNCPort int    `toml:"vnc_port"`
	WebRoot string `toml:"web_root"`
}

// Config is the process-wide sandbox configuration. It is built once at
// startup and treated as read-only afterwards.
type Config struct {
	Runtime     RuntimeKind `toml:"runtime"`
	Image       string      `toml:"image"`
	Password    string      `toml:"password"`
	TTLMinutes  int         `toml:"ttl_minutes"`
	Port        int         `toml:"port"` // 0 disables port publication
	NetworkMode string      `toml:"network_mode"`
	ExtraArgs   []string    `toml:"extra_args"`
	CPUs        string      `toml:"cpus"`
	Memory      string      `toml:"memory"`
	Listen      string      `toml:"listen"`

	Native NativeConfig `toml:"native"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Runtime:     RuntimeDocker,
		Image:       DefaultImage,
		Password:    DefaultPassword,
		TTLMinutes:  DefaultTTLMinutes,
		Port:        DefaultPort,
		NetworkMode: DefaultNetworkMode,
		CPUs:        DefaultCPUs,
		Memory:      DefaultMemory,
		Listen:      DefaultListen,
		Native: NativeConfig{
			Display: DefaultDisplay,
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			VNCPort: DefaultVNCPort,
			WebRoot: DefaultWebRoot,
		},
	}
}

// TTL returns the recycle window as a duration
func (c *Config) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Validate checks that the Config is usable.
func (c *Config) Validate() error {
	switch c.Runtime {
	case RuntimeDocker, RuntimePodman, RuntimeNative, RuntimeAuto:
	default:
		return errors.ConfigError(fmt.Sprintf("invalid runtime %q (must be docker, podman, native, or auto)", c.Runtime), nil)
	}

	if c.TTLMinutes < 0 {
		return errors.ConfigError(fmt.Sprintf("ttl must not be negative, got %d", c.TTLMinutes), nil)
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.ConfigError(fmt.Sprintf("port out of range: %d", c.Port), nil)
	}
	if c.Native.VNCPort <= 0 || c.Native.VNCPort > 65535 {
		return errors.ConfigError(fmt.Sprintf("native vnc port out of range: %d", c.Native.VNCPort), nil)
	}
	if c.Native.Width <= 0 || c.Native.Height <= 0 {
		return errors.ConfigError(fmt.Sprintf("invalid native resolution %dx%d", c.Native.Width, c.Native.Height), nil)
	}
	if c.Native.Display == "" {
		return errors.ConfigError("native display must not be empty", nil)
	}

	return nil
}

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadOptions controls where Load reads from
type LoadOptions struct {
	// File is an optional TOML file. When empty, SANDBOX_CONFIG is consulted.
	File string

	// Lookup reads environment variables. Nil means os.LookupEnv.
	Lookup LookupFunc
}

// Load builds a Config from defaults, an optional TOML file, and the
// environment, in that order of precedence (later wins).
func Load(opts LoadOptions) (*Config, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := Default()

	file := opts.File
	if file == "" {
		file, _ = lookup(ConfigFileEnv)
	}
	if file != "" {
		if err := loadFile(file, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv is Load with the process environment and no explicit file.
func LoadFromEnv() (*Config, error) {
	return Load(LoadOptions{})
}

func loadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return errors.ConfigError(fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", ")), nil)
	}

	return nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup("SANDBOX_RUNTIME"); ok && v != "" {
		cfg.Runtime = RuntimeKind(strings.ToLower(strings.TrimSpace(v)))
	}

	setString(lookup, "SANDBOX_IMAGE", &cfg.Image)
	setString(lookup, "SANDBOX_PASSWORD", &cfg.Password)
	setString(lookup, "SANDBOX_NETWORK_MODE", &cfg.NetworkMode)
	setString(lookup, "SANDBOX_CPUS", &cfg.CPUs)
	setString(lookup, "SANDBOX_MEMORY", &cfg.Memory)
	setString(lookup, "SANDBOX_LISTEN", &cfg.Listen)
	setString(lookup, "SANDBOX_NATIVE_DISPLAY", &cfg.Native.Display)
	setString(lookup, "SANDBOX_NATIVE_WEB_ROOT", &cfg.Native.WebRoot)

	ints := []struct {
		key string
		dst *int
	}{
		{"SANDBOX_TTL", &cfg.TTLMinutes},
		{"SANDBOX_PORT", &cfg.Port},
		{"SANDBOX_NATIVE_WIDTH", &cfg.Native.Width},
		{"SANDBOX_NATIVE_HEIGHT", &cfg.Native.Height},
		{"SANDBOX_NATIVE_VNC_PORT", &cfg.Native.VNCPort},
	}
	for _, i := range ints {
		if err := setInt(lookup, i.key, i.dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("SANDBOX_DOCKER_ARGS"); ok {
		args, err := shellquote.Split(v)
		if err != nil {
			return errors.ConfigError("failed to parse SANDBOX_DOCKER_ARGS", err)
		}
		cfg.ExtraArgs = args
	}

	return nil
}

// setString overrides dst when key is set. An empty value keeps the
// current one, except for the network mode where empty means "no flag".
func setString(lookup LookupFunc, key string, dst *string) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	if v == "" && key != "SANDBOX_NETWORK_MODE" {
		return
	}
	*dst = v
}

func setInt(lookup LookupFunc, key string, dst *int) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return errors.ConfigError(fmt.Sprintf("invalid integer for %s: %q", key, v), err)
	}
	*dst = n
	return nil
}
