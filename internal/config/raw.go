package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// Raw* types mirror the config file. Every field is optional so that a file
// only overrides what it names.

type RawLogging struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type RawCustomResolution struct {
	Enabled *bool `yaml:"enabled"`
}

type RawOutput struct {
	Width       *uint32  `yaml:"width"`
	Height      *uint32  `yaml:"height"`
	Fullscreen  *bool    `yaml:"fullscreen"`
	VSync       *bool    `yaml:"vsync"`
	RefreshRate *float32 `yaml:"refresh_rate"`
	ColorDepth  *uint32  `yaml:"color_depth"`
	PixelFormat *string  `yaml:"pixel_format"`
	Monitor     *string  `yaml:"monitor"`
}

type RawRunner struct {
	FrameRate *float64 `yaml:"frame_rate"`
	Reopen    *bool    `yaml:"reopen"`
}

type RawHotkeys struct {
	Fullscreen  *string `yaml:"fullscreen"`
	Apply       *string `yaml:"apply"`
	Revert      *string `yaml:"revert"`
	NextMonitor *string `yaml:"next_monitor"`
}

type RawIPC struct {
	Socket *string `yaml:"socket"`
}

type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Display          *string              `yaml:"display"`
	XAuthority       *string              `yaml:"xauthority"`
	Logging          *RawLogging          `yaml:"logging"`
	CustomResolution *RawCustomResolution `yaml:"custom_resolution"`
	Output           *RawOutput           `yaml:"output"`
	Runner           *RawRunner           `yaml:"runner"`
	Hotkeys          *RawHotkeys          `yaml:"hotkeys"`
	IPC              *RawIPC              `yaml:"ipc"`
}

func (r RawConfig) merge(overlay RawConfig) RawConfig {
	out := r
	out.Include = nil
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.Logging != nil {
		merged := mergeRawLogging(deref(out.Logging), *overlay.Logging)
		out.Logging = &merged
	}
	if overlay.CustomResolution != nil {
		merged := deref(out.CustomResolution)
		if overlay.CustomResolution.Enabled != nil {
			merged.Enabled = overlay.CustomResolution.Enabled
		}
		out.CustomResolution = &merged
	}
	if overlay.Output != nil {
		merged := mergeRawOutput(deref(out.Output), *overlay.Output)
		out.Output = &merged
	}
	if overlay.Runner != nil {
		merged := deref(out.Runner)
		if overlay.Runner.FrameRate != nil {
			merged.FrameRate = overlay.Runner.FrameRate
		}
		if overlay.Runner.Reopen != nil {
			merged.Reopen = overlay.Runner.Reopen
		}
		out.Runner = &merged
	}
	if overlay.Hotkeys != nil {
		merged := mergeRawHotkeys(deref(out.Hotkeys), *overlay.Hotkeys)
		out.Hotkeys = &merged
	}
	if overlay.IPC != nil {
		merged := deref(out.IPC)
		if overlay.IPC.Socket != nil {
			merged.Socket = overlay.IPC.Socket
		}
		out.IPC = &merged
	}
	return out
}

func mergeRawLogging(base RawLogging, overlay RawLogging) RawLogging {
	out := base
	if overlay.Level != nil {
		out.Level = overlay.Level
	}
	if overlay.Format != nil {
		out.Format = overlay.Format
	}
	return out
}

func mergeRawHotkeys(base RawHotkeys, overlay RawHotkeys) RawHotkeys {
	out := base
	if overlay.Fullscreen != nil {
		out.Fullscreen = overlay.Fullscreen
	}
	if overlay.Apply != nil {
		out.Apply = overlay.Apply
	}
	if overlay.Revert != nil {
		out.Revert = overlay.Revert
	}
	if overlay.NextMonitor != nil {
		out.NextMonitor = overlay.NextMonitor
	}
	return out
}

func mergeRawOutput(base RawOutput, overlay RawOutput) RawOutput {
	out := base
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	if overlay.Fullscreen != nil {
		out.Fullscreen = overlay.Fullscreen
	}
	if overlay.VSync != nil {
		out.VSync = overlay.VSync
	}
	if overlay.RefreshRate != nil {
		out.RefreshRate = overlay.RefreshRate
	}
	if overlay.ColorDepth != nil {
		out.ColorDepth = overlay.ColorDepth
	}
	if overlay.PixelFormat != nil {
		out.PixelFormat = overlay.PixelFormat
	}
	if overlay.Monitor != nil {
		out.Monitor = overlay.Monitor
	}
	return out
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
