package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/portname"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_ValidAndMatchesNodeDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if got, want := cfg.NodeConfig(), displayout.DefaultConfig(); got != want {
		t.Fatalf("expected node defaults %+v, got %+v", want, got)
	}
	if !cfg.CustomResolution.Enabled {
		t.Fatalf("expected custom resolution enabled by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Output.Width != 1920 || res.Config.Output.Height != 1080 {
		t.Fatalf("expected default 1920x1080, got %dx%d", res.Config.Output.Width, res.Config.Output.Height)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Logging.Level != "info" {
		t.Fatalf("expected default level info, got %q", res.Config.Logging.Level)
	}
}

func TestLoadFromPath_OverridesOnlyNamedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"display: \":1\"",
		"output:",
		"  width: 2560",
		"  fullscreen: true",
		"  monitor: \"Left Panel - 1 - 0\"",
		"runner:",
		"  frame_rate: 30",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != ":1" {
		t.Fatalf("expected display :1, got %q", cfg.Display)
	}
	if cfg.Output.Width != 2560 || cfg.Output.Height != 1080 {
		t.Fatalf("expected 2560x1080, got %dx%d", cfg.Output.Width, cfg.Output.Height)
	}
	if cfg.Runner.FrameRate != 30 {
		t.Fatalf("expected frame rate 30, got %v", cfg.Runner.FrameRate)
	}

	node := cfg.NodeConfig()
	if !node.Fullscreen {
		t.Fatalf("expected fullscreen node config")
	}
	if node.Monitor != "Left Panel - 1 - 0" {
		t.Fatalf("expected monitor string to pass through, got %q", node.Monitor)
	}
	if node.RefreshRate != 60 {
		t.Fatalf("expected default refresh 60, got %v", node.RefreshRate)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "output:\n  widht: 10\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "widht") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), "config.yaml") {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorCarriesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "output:\n  pixel_format: RGB565\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Path != "output.pixel_format" {
		t.Fatalf("expected path output.pixel_format, got %q", verr.Path)
	}
	if verr.Source.Kind != SourceFile || verr.Source.Line != 2 {
		t.Fatalf("expected file source at line 2, got %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected line number in message, got %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := map[string]func(*Config){
		"output.width":        func(c *Config) { c.Output.Width = 0 },
		"output.height":       func(c *Config) { c.Output.Height = 0 },
		"output.refresh_rate": func(c *Config) { c.Output.RefreshRate = -1 },
		"output.color_depth":  func(c *Config) { c.Output.ColorDepth = 0 },
		"output.monitor":      func(c *Config) { c.Output.Monitor = "DP-1" },
		"logging.level":       func(c *Config) { c.Logging.Level = "trace" },
		"logging.format":      func(c *Config) { c.Logging.Format = "xml" },
		"runner.frame_rate":   func(c *Config) { c.Runner.FrameRate = 0 },
	}
	for path, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		err := cfg.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", path, err)
		}
		if verr.Path != path {
			t.Fatalf("%s: expected error path %q, got %q", path, path, verr.Path)
		}
	}
}

func TestValidate_MonitorNoneAndEmptyAccepted(t *testing.T) {
	for _, m := range []string{"", portname.None, "Unknown - 0 - 3"} {
		cfg := DefaultConfig()
		cfg.Output.Monitor = m
		if err := cfg.Validate(); err != nil {
			t.Fatalf("monitor %q: unexpected error %v", m, err)
		}
	}
	cfg := DefaultConfig()
	cfg.Output.Monitor = ""
	if got := cfg.NodeConfig().Monitor; got != portname.None {
		t.Fatalf("expected empty monitor to map to NONE, got %q", got)
	}
}

func TestNodeConfig_PixelFormatCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.PixelFormat = "r8g8b8a8_unorm"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := cfg.NodeConfig().Format; got != customres.FormatR8G8B8A8Unorm {
		t.Fatalf("expected R8G8B8A8, got %v", got)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "output:\n  width: 800\n  height: 600\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "output:\n  width: 1024\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: config.d\noutput:\n  height: 768\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Output.Width != 1024 || res.Config.Output.Height != 768 {
		t.Fatalf("expected 1024x768, got %dx%d", res.Config.Output.Width, res.Config.Output.Height)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files loaded, got %v", res.Files)
	}

	_, src, err := Explain(res, "output.width")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.HasSuffix(src.File, "20-override.yaml") {
		t.Fatalf("expected width from 20-override.yaml, got %+v", src)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/displayout-test.yaml")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/tmp/displayout-test.yaml" {
		t.Fatalf("expected env override, got %q", path)
	}
}

func TestExplain_DefaultSourceAndUnknownPath(t *testing.T) {
	res := &LoadResult{Config: DefaultConfig(), Sources: map[string]Source{}}
	val, src, err := Explain(res, "runner.frame_rate")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != float64(60) || src.Kind != SourceDefault {
		t.Fatalf("expected default 60, got %v from %+v", val, src)
	}
	if _, _, err := Explain(res, "output"); err == nil {
		t.Fatalf("expected error for non-leaf path")
	}
}

func TestSave_RoundTripsMonitor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Output.Monitor = "Right Panel - 1 - 1"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Output.Monitor != "Right Panel - 1 - 1" {
		t.Fatalf("expected saved monitor, got %q", res.Config.Output.Monitor)
	}
}

func TestSaveMonitor_KeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "output:\n  width: 1280\n  height: 720\n")

	if err := SaveMonitor(path, "Left Panel - 1 - 0"); err != nil {
		t.Fatalf("save monitor: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Output.Monitor != "Left Panel - 1 - 0" {
		t.Fatalf("expected saved monitor, got %q", res.Config.Output.Monitor)
	}
	if res.Config.Output.Width != 1280 || res.Config.Output.Height != 720 {
		t.Fatalf("expected 1280x720 kept, got %dx%d", res.Config.Output.Width, res.Config.Output.Height)
	}

	if err := SaveMonitor(path, "DP-1"); err == nil {
		t.Fatalf("expected malformed monitor to be rejected")
	}
}

func TestLoadFromPath_HotkeysOverrideAndDisable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "hotkeys:\n  fullscreen: \"\"\n  apply: Mod4-Shift-a\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	hk := res.Config.Hotkeys
	if hk.Fullscreen != "" {
		t.Fatalf("expected fullscreen hotkey disabled, got %q", hk.Fullscreen)
	}
	if hk.Apply != "Mod4-Shift-a" {
		t.Fatalf("expected apply hotkey, got %q", hk.Apply)
	}
	if hk.NextMonitor != "Mod4-Shift-m" {
		t.Fatalf("expected default next_monitor hotkey, got %q", hk.NextMonitor)
	}
}

func TestValidate_DuplicateHotkey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hotkeys.Revert = "mod4-shift-F"
	err := cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "hotkeys.revert" {
		t.Fatalf("expected duplicate hotkey error at hotkeys.revert, got %v", err)
	}
}
