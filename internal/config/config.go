package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/portname"
)

// LoggingConfig configures the daemon logger.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Format selects the handler: text or json
	Format string `yaml:"format"`
}

// CustomResolutionConfig controls the display mode override backend.
type CustomResolutionConfig struct {
	// Enabled creates the RandR backend at startup. When false the output
	// window still works but can never change a display's video mode.
	Enabled bool `yaml:"enabled"`
}

// OutputConfig holds the initial pin values of the output node.
type OutputConfig struct {
	Width       uint32  `yaml:"width"`
	Height      uint32  `yaml:"height"`
	Fullscreen  bool    `yaml:"fullscreen"`
	VSync       bool    `yaml:"vsync"`
	RefreshRate float32 `yaml:"refresh_rate"`
	ColorDepth  uint32  `yaml:"color_depth"`
	PixelFormat string  `yaml:"pixel_format"`
	// Monitor is a display string as listed by `displayout ports`, or NONE.
	Monitor string `yaml:"monitor"`
}

// RunnerConfig configures frame pacing.
type RunnerConfig struct {
	FrameRate float64 `yaml:"frame_rate"`
	// Reopen recreates the output window after it was closed or lost
	// instead of stopping the daemon.
	Reopen bool `yaml:"reopen"`
}

// HotkeysConfig binds global key sequences (xgbutil syntax, e.g.
// "Mod4-Shift-f") to output actions. An empty sequence disables the action.
type HotkeysConfig struct {
	Fullscreen  string `yaml:"fullscreen"`
	Apply       string `yaml:"apply"`
	Revert      string `yaml:"revert"`
	NextMonitor string `yaml:"next_monitor"`
}

// IPCConfig configures the control socket.
type IPCConfig struct {
	// Socket overrides the socket path (default: $XDG_RUNTIME_DIR/displayout.sock)
	Socket string `yaml:"socket,omitempty"`
}

// Config is the effective displayout configuration.
type Config struct {
	// Display is the X display to connect to. Empty uses $DISPLAY.
	Display string `yaml:"display,omitempty"`
	// XAuthority is the X authority file. Empty uses $XAUTHORITY.
	XAuthority       string                 `yaml:"xauthority,omitempty"`
	Logging          LoggingConfig          `yaml:"logging"`
	CustomResolution CustomResolutionConfig `yaml:"custom_resolution"`
	Output           OutputConfig           `yaml:"output"`
	Runner           RunnerConfig           `yaml:"runner"`
	Hotkeys          HotkeysConfig          `yaml:"hotkeys"`
	IPC              IPCConfig              `yaml:"ipc"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	node := displayout.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		CustomResolution: CustomResolutionConfig{Enabled: true},
		Output: OutputConfig{
			Width:       node.Resolution.Width,
			Height:      node.Resolution.Height,
			Fullscreen:  node.Fullscreen,
			VSync:       node.VSync,
			RefreshRate: node.RefreshRate,
			ColorDepth:  node.ColorDepth,
			PixelFormat: node.Format.String(),
			Monitor:     node.Monitor,
		},
		Runner: RunnerConfig{FrameRate: 60},
		Hotkeys: HotkeysConfig{
			Fullscreen:  "Mod4-Shift-f",
			NextMonitor: "Mod4-Shift-m",
		},
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("logging.format must be one of: text, json")}
	}
	if c.Output.Width == 0 {
		return &ValidationError{Path: "output.width", Err: fmt.Errorf("output.width must be > 0")}
	}
	if c.Output.Height == 0 {
		return &ValidationError{Path: "output.height", Err: fmt.Errorf("output.height must be > 0")}
	}
	if c.Output.RefreshRate <= 0 {
		return &ValidationError{Path: "output.refresh_rate", Err: fmt.Errorf("output.refresh_rate must be > 0")}
	}
	if c.Output.ColorDepth == 0 {
		return &ValidationError{Path: "output.color_depth", Err: fmt.Errorf("output.color_depth must be > 0")}
	}
	if _, err := customres.ParsePixelFormat(c.Output.PixelFormat); err != nil {
		return &ValidationError{Path: "output.pixel_format", Err: err}
	}
	if m := strings.TrimSpace(c.Output.Monitor); m != "" && m != portname.None {
		if _, err := portname.Parse(m); err != nil {
			return &ValidationError{Path: "output.monitor", Err: err}
		}
	}
	if c.Runner.FrameRate <= 0 {
		return &ValidationError{Path: "runner.frame_rate", Err: fmt.Errorf("runner.frame_rate must be > 0")}
	}
	seen := map[string]string{}
	for _, hk := range []struct{ path, keys string }{
		{"hotkeys.fullscreen", c.Hotkeys.Fullscreen},
		{"hotkeys.apply", c.Hotkeys.Apply},
		{"hotkeys.revert", c.Hotkeys.Revert},
		{"hotkeys.next_monitor", c.Hotkeys.NextMonitor},
	} {
		keys := strings.ToLower(strings.TrimSpace(hk.keys))
		if keys == "" {
			continue
		}
		if other, ok := seen[keys]; ok {
			return &ValidationError{Path: hk.path, Err: fmt.Errorf("%q is already bound by %s", hk.keys, other)}
		}
		seen[keys] = hk.path
	}
	return nil
}

// NodeConfig converts the output section into the node's pin values.
// The config must have passed Validate.
func (c *Config) NodeConfig() displayout.Config {
	format, err := customres.ParsePixelFormat(c.Output.PixelFormat)
	if err != nil {
		format = customres.FormatB8G8R8A8Unorm
	}
	monitor := strings.TrimSpace(c.Output.Monitor)
	if monitor == "" {
		monitor = portname.None
	}
	return displayout.Config{
		Resolution:  displayout.Resolution{Width: c.Output.Width, Height: c.Output.Height},
		Fullscreen:  c.Output.Fullscreen,
		VSync:       c.Output.VSync,
		RefreshRate: c.Output.RefreshRate,
		ColorDepth:  c.Output.ColorDepth,
		Format:      format,
		Monitor:     monitor,
	}
}

// Save writes the configuration to path, or to the standard location when
// path is empty.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveMonitor loads the config at path, replaces output.monitor and writes
// it back. An empty path uses the standard location.
func SaveMonitor(path string, monitor string) error {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return err
		}
	}
	res, err := LoadFromPath(path)
	if err != nil {
		return err
	}
	res.Config.Output.Monitor = monitor
	return res.Config.Save(path)
}
