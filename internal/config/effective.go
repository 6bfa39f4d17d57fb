package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = *l.Level
		}
		if l.Format != nil {
			cfg.Logging.Format = *l.Format
		}
	}
	if cr := raw.CustomResolution; cr != nil && cr.Enabled != nil {
		cfg.CustomResolution.Enabled = *cr.Enabled
	}
	if o := raw.Output; o != nil {
		if o.Width != nil {
			cfg.Output.Width = *o.Width
		}
		if o.Height != nil {
			cfg.Output.Height = *o.Height
		}
		if o.Fullscreen != nil {
			cfg.Output.Fullscreen = *o.Fullscreen
		}
		if o.VSync != nil {
			cfg.Output.VSync = *o.VSync
		}
		if o.RefreshRate != nil {
			cfg.Output.RefreshRate = *o.RefreshRate
		}
		if o.ColorDepth != nil {
			cfg.Output.ColorDepth = *o.ColorDepth
		}
		if o.PixelFormat != nil {
			cfg.Output.PixelFormat = *o.PixelFormat
		}
		if o.Monitor != nil {
			cfg.Output.Monitor = *o.Monitor
		}
	}
	if r := raw.Runner; r != nil {
		if r.FrameRate != nil {
			cfg.Runner.FrameRate = *r.FrameRate
		}
		if r.Reopen != nil {
			cfg.Runner.Reopen = *r.Reopen
		}
	}
	if h := raw.Hotkeys; h != nil {
		if h.Fullscreen != nil {
			cfg.Hotkeys.Fullscreen = *h.Fullscreen
		}
		if h.Apply != nil {
			cfg.Hotkeys.Apply = *h.Apply
		}
		if h.Revert != nil {
			cfg.Hotkeys.Revert = *h.Revert
		}
		if h.NextMonitor != nil {
			cfg.Hotkeys.NextMonitor = *h.NextMonitor
		}
	}
	if i := raw.IPC; i != nil && i.Socket != nil {
		cfg.IPC.Socket = *i.Socket
	}

	return cfg
}
