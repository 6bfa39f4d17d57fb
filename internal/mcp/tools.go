package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/portname"
)

func (s *Server) status() (StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return StatusOutput{}, err
	}
	return StatusOutput{
		Node:             st.Node,
		CustomResolution: st.CustomResolution,
		UptimeSeconds:    st.UptimeSeconds,
	}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	out, err := s.status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleListPorts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListPortsInput) (*mcpsdk.CallToolResult, ListPortsOutput, error) {
	ports, err := s.daemon.ListPorts()
	if err != nil {
		return nil, ListPortsOutput{}, err
	}
	return nil, ListPortsOutput{Ports: ports.Ports, Current: ports.Current}, nil
}

func (s *Server) handleSelectMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args SelectMonitorInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	monitor := strings.TrimSpace(args.Monitor)
	if monitor == "" {
		return nil, StatusOutput{}, fmt.Errorf("monitor is required; call list_ports for valid values")
	}
	if !portname.IsNone(monitor) {
		if _, err := portname.Parse(monitor); err != nil {
			return nil, StatusOutput{}, fmt.Errorf("monitor %q is not a list_ports entry: %w", monitor, err)
		}
	}
	if err := s.daemon.SetPin(displayout.PinMonitor, monitor); err != nil {
		return nil, StatusOutput{}, err
	}
	if args.Apply {
		if err := s.daemon.CallFunction(displayout.FuncForceUpdateMonitorResolution); err != nil {
			return nil, StatusOutput{}, err
		}
	}
	out, err := s.status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleSetOutput(_ context.Context, _ *mcpsdk.CallToolRequest, args SetOutputInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	if (args.Width == nil) != (args.Height == nil) {
		return nil, StatusOutput{}, fmt.Errorf("width and height must be set together")
	}
	if args.Width == nil && args.RefreshRate == nil && args.VSync == nil && args.Fullscreen == nil {
		return nil, StatusOutput{}, fmt.Errorf("nothing to change")
	}

	// Resolution and refresh rate first so that entering fullscreen sees
	// the final mode.
	if args.Width != nil {
		if *args.Width == 0 || *args.Height == 0 {
			return nil, StatusOutput{}, fmt.Errorf("width and height must be > 0")
		}
		res := map[string]uint32{"width": *args.Width, "height": *args.Height}
		if err := s.daemon.SetPin(displayout.PinResolution, res); err != nil {
			return nil, StatusOutput{}, err
		}
	}
	if args.RefreshRate != nil {
		if err := s.daemon.SetPin(displayout.PinRefreshRate, *args.RefreshRate); err != nil {
			return nil, StatusOutput{}, err
		}
	}
	if args.VSync != nil {
		if err := s.daemon.SetPin(displayout.PinVSync, *args.VSync); err != nil {
			return nil, StatusOutput{}, err
		}
	}
	if args.Fullscreen != nil {
		if err := s.daemon.SetPin(displayout.PinFullscreen, *args.Fullscreen); err != nil {
			return nil, StatusOutput{}, err
		}
	}

	out, err := s.status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleApplyCustomResolution(_ context.Context, _ *mcpsdk.CallToolRequest, _ ApplyCustomResolutionInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	return s.callAndReport(displayout.FuncForceUpdateMonitorResolution)
}

func (s *Server) handleRevertCustomResolution(_ context.Context, _ *mcpsdk.CallToolRequest, _ RevertCustomResolutionInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	return s.callAndReport(displayout.FuncRevertMonitorResolution)
}

func (s *Server) callAndReport(function string) (*mcpsdk.CallToolResult, StatusOutput, error) {
	if err := s.daemon.CallFunction(function); err != nil {
		return nil, StatusOutput{}, err
	}
	out, err := s.status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, out, nil
}
