// Package mcp exposes the running displayout daemon to MCP clients.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/displayout/internal/ipc"
)

const (
	ServerName    = "displayout"
	ServerVersion = "0.1.0"
)

// Daemon is the control surface the tools call. *ipc.Client implements it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListPorts() (*ipc.PortsData, error)
	SetPin(pin string, value any) error
	CallFunction(name string) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for displayout.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a new MCP server that forwards to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the output window state: window mode, locked monitor, whether a custom resolution is applied, window bounds and swapchain size.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_ports",
		Description: "List the monitors the output can be locked to. Each entry has the form '<monitor name> - <gpu> - <port>'; pass one unchanged to select_monitor.",
	}, s.handleListPorts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "select_monitor",
		Description: "Lock the output window to a monitor from list_ports. An applied custom resolution moves with the lock. NONE leaves the current lock unchanged.",
	}, s.handleSelectMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_output",
		Description: "Change output settings: resolution (width and height together), refresh rate, vsync and fullscreen. Omitted fields keep their current value.",
	}, s.handleSetOutput)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_custom_resolution",
		Description: "Apply the configured resolution and refresh rate to the monitor under the output window (or the locked monitor). The window is locked to that monitor afterwards.",
	}, s.handleApplyCustomResolution)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "revert_custom_resolution",
		Description: "Restore the monitor's original video mode and release the monitor lock.",
	}, s.handleRevertCustomResolution)
}
