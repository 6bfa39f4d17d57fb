package mcp

import "github.com/1broseidon/displayout/internal/displayout"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// StatusOutput describes the output node. It is returned by every tool that
// changes the node so callers see the resulting state.
type StatusOutput struct {
	Node             displayout.Snapshot `json:"node"`
	CustomResolution bool                `json:"custom_resolution" jsonschema:"Whether a custom resolution backend is available"`
	UptimeSeconds    int64               `json:"uptime_seconds"`
}

// ListPortsInput is the input for the list_ports tool.
type ListPortsInput struct{}

// ListPortsOutput is the output for the list_ports tool.
type ListPortsOutput struct {
	Ports   []string `json:"ports" jsonschema:"Selectable monitor strings, starting with NONE"`
	Current string   `json:"current" jsonschema:"Monitor string the output is locked to, or NONE"`
}

// SelectMonitorInput is the input for the select_monitor tool.
type SelectMonitorInput struct {
	Monitor string `json:"monitor" jsonschema:"A monitor string exactly as returned by list_ports"`
	Apply   bool   `json:"apply,omitempty" jsonschema:"When true, apply the configured custom resolution to the monitor after selecting it"`
}

// SetOutputInput is the input for the set_output tool. Only the fields that
// are set are changed.
type SetOutputInput struct {
	Width       *uint32  `json:"width,omitempty" jsonschema:"Output width in pixels; requires height"`
	Height      *uint32  `json:"height,omitempty" jsonschema:"Output height in pixels; requires width"`
	RefreshRate *float32 `json:"refresh_rate,omitempty" jsonschema:"Refresh rate in Hz used for the custom resolution"`
	VSync       *bool    `json:"vsync,omitempty" jsonschema:"Present with vertical sync"`
	Fullscreen  *bool    `json:"fullscreen,omitempty" jsonschema:"Cover the locked monitor without decorations"`
}

// ApplyCustomResolutionInput is the input for the apply_custom_resolution tool.
type ApplyCustomResolutionInput struct{}

// RevertCustomResolutionInput is the input for the revert_custom_resolution tool.
type RevertCustomResolutionInput struct{}
