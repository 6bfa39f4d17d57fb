package config

import (
	"fmt"
)

// Explain returns the effective value at the given YAML path and its source.
//
// Supported paths are the leaf keys of the schema, for example:
//
//	display
//	xauthority
//	logging.level
//	custom_resolution.enabled
//	output.width
//	output.monitor
//	runner.frame_rate
//	hotkeys.fullscreen
//	ipc.socket
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	values := map[string]any{
		"display":                   cfg.Display,
		"xauthority":                cfg.XAuthority,
		"logging.level":             cfg.Logging.Level,
		"logging.format":            cfg.Logging.Format,
		"custom_resolution.enabled": cfg.CustomResolution.Enabled,
		"output.width":              cfg.Output.Width,
		"output.height":             cfg.Output.Height,
		"output.fullscreen":         cfg.Output.Fullscreen,
		"output.vsync":              cfg.Output.VSync,
		"output.refresh_rate":       cfg.Output.RefreshRate,
		"output.color_depth":        cfg.Output.ColorDepth,
		"output.pixel_format":       cfg.Output.PixelFormat,
		"output.monitor":            cfg.Output.Monitor,
		"runner.frame_rate":         cfg.Runner.FrameRate,
		"runner.reopen":             cfg.Runner.Reopen,
		"hotkeys.fullscreen":        cfg.Hotkeys.Fullscreen,
		"hotkeys.apply":             cfg.Hotkeys.Apply,
		"hotkeys.revert":            cfg.Hotkeys.Revert,
		"hotkeys.next_monitor":      cfg.Hotkeys.NextMonitor,
		"ipc.socket":                cfg.IPC.Socket,
	}
	v, ok := values[path]
	if !ok {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return v, nil
}
