package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/displayout/internal/ipc"
	"github.com/1broseidon/displayout/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: displayout mcp serve [--socket PATH]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Serve the output controls as MCP tools over stdio. Every tool call is")
	fmt.Fprintln(w, "forwarded to the daemon started with 'displayout run'.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}
	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		printMCPUsage(os.Stderr)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	socket := fs.String("socket", "", "Daemon socket (default: ipc.socket from config, then the runtime dir)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "mcp serve takes no arguments")
		fs.Usage()
		return 2
	}

	client := newClient()
	if *socket != "" {
		client = ipc.NewClientForSocket(*socket)
	}
	// stdout carries the protocol; diagnostics go to stderr only.
	if _, err := client.GetStatus(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: daemon not reachable yet (%v); tools will fail until 'displayout run' is started\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(client).Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
