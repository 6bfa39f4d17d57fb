package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/displayout/internal/config"
	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/ipc"
	"github.com/1broseidon/displayout/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "ports":
		os.Exit(runPorts(os.Args[2:]))
	case "monitor":
		os.Exit(runMonitor(os.Args[2:]))
	case "apply":
		os.Exit(runFunction("apply", displayout.FuncForceUpdateMonitorResolution, os.Args[2:]))
	case "revert":
		os.Exit(runFunction("revert", displayout.FuncRevertMonitorResolution, os.Args[2:]))
	case "set":
		os.Exit(runSet(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: displayout <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open the output window and serve IPC (foreground)")
	fmt.Fprintln(w, "  status              Show output node status")
	fmt.Fprintln(w, "  ports               List selectable monitors")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  monitor set         Lock the output to a monitor")
	fmt.Fprintln(w, "  monitor pick        Choose the monitor interactively")
	fmt.Fprintln(w, "  apply               Apply the custom resolution")
	fmt.Fprintln(w, "  revert              Revert the custom resolution")
	fmt.Fprintln(w, "  set                 Set a node pin")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive dashboard")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'displayout <command> --help' for command-specific options.")
}

// newClient returns a client for the socket configured in the default
// config, falling back to the runtime directory socket.
func newClient() *ipc.Client {
	cfg, err := config.Load()
	if err != nil || cfg.IPC.Socket == "" {
		return ipc.NewClient()
	}
	return ipc.NewClientForSocket(cfg.IPC.Socket)
}

// parseNoArgs parses a command that takes no positional arguments and an
// optional --json flag. When ok is false the command should exit with code.
func parseNoArgs(name, usage, desc string, args []string) (jsonOut bool, code int, ok bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, desc)
	}
	asJSON := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, 0, false
		}
		return false, 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return false, 2, false
	}
	return *asJSON, 0, true
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	jsonOut, code, ok := parseNoArgs("status", "displayout status [--json]", "Show output node status via IPC.", args)
	if !ok {
		return code
	}

	status, err := newClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if jsonOut {
		return printJSON(status)
	}

	n := status.Node
	fmt.Printf("daemon_running:    %v\n", status.DaemonRunning)
	fmt.Printf("uptime:            %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
	fmt.Printf("custom_resolution: %v\n", status.CustomResolution)
	fmt.Printf("state:             %s\n", n.State)
	fmt.Printf("monitor:           %s\n", n.Monitor)
	if n.LockedPort != "" {
		fmt.Printf("locked_port:       %s\n", n.LockedPort)
	}
	fmt.Printf("custom_applied:    %v\n", n.CustomApplied)
	fmt.Printf("request:           %s\n", n.Request)
	fmt.Printf("fullscreen:        %v\n", n.Fullscreen)
	fmt.Printf("vsync:             %v\n", n.VSync)
	if n.Window != nil {
		fmt.Printf("window:            %dx%d+%d+%d\n", n.Window.Width, n.Window.Height, n.Window.X, n.Window.Y)
	}
	fmt.Printf("swapchain:         %dx%d (%d frames)\n", n.Extent.Width, n.Extent.Height, n.FrameCount)
	return 0
}

func runPorts(args []string) int {
	jsonOut, code, ok := parseNoArgs("ports", "displayout ports [--json]", "List the monitors the output can be locked to.", args)
	if !ok {
		return code
	}

	ports, err := newClient().ListPorts()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if jsonOut {
		return printJSON(ports)
	}
	for _, p := range ports.Ports {
		marker := "- "
		if p == ports.Current {
			marker = "* "
		}
		fmt.Println(marker + p)
	}
	return 0
}

func runFunction(name, function string, args []string) int {
	_, code, ok := parseNoArgs(name, "displayout "+name, "Call "+function+" on the output node.", args)
	if !ok {
		return code
	}
	if err := newClient().CallFunction(function); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printMonitorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  displayout monitor set [--save] [--path PATH] <monitor>")
	fmt.Fprintln(w, "  displayout monitor pick [--save] [--path PATH]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "<monitor> is an entry printed by 'displayout ports', or NONE.")
}

func runMonitor(args []string) int {
	if len(args) == 0 {
		printMonitorUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printMonitorUsage(os.Stdout)
		return 0
	}

	sub := args[0]
	if sub != "set" && sub != "pick" {
		fmt.Fprintf(os.Stderr, "Unknown monitor command: %s\n\n", sub)
		printMonitorUsage(os.Stderr)
		return 2
	}

	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { printMonitorUsage(os.Stderr) }
	save := fs.Bool("save", false, "Also write output.monitor to the config file")
	path := fs.String("path", "", "Config file path (default: ~/.config/displayout/config.yaml)")
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := newClient()
	var monitor string
	switch sub {
	case "set":
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "monitor set requires <monitor>")
			fs.Usage()
			return 2
		}
		monitor = fs.Arg(0)
	case "pick":
		ports, err := client.ListPorts()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		monitor, err = tui.PickMonitor(ports.Ports, ports.Current)
		if errors.Is(err, tui.ErrCancelled) {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if err := client.SelectMonitor(monitor); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *save {
		if err := config.SaveMonitor(*path, monitor); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

// pinArg converts a command-line pin value to the value sent over IPC.
func pinArg(pin, raw string) (any, error) {
	switch pin {
	case displayout.PinResolution, displayout.PinMonitor:
		return raw, nil
	case displayout.PinFullscreen, displayout.PinVSync:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", pin, raw)
		}
		return v, nil
	case displayout.PinRefreshRate:
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(raw), "hz"), 32)
		if err != nil {
			return nil, fmt.Errorf("%s expects a number, got %q", pin, raw)
		}
		return float32(v), nil
	default:
		return nil, fmt.Errorf("unknown pin %q (valid: %s, %s, %s, %s, %s)", pin,
			displayout.PinResolution, displayout.PinFullscreen, displayout.PinVSync,
			displayout.PinRefreshRate, displayout.PinMonitor)
	}
}

func runSet(args []string) int {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayout set <pin> <value>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pins:")
		fmt.Fprintln(os.Stderr, "  Resolution   WxH, e.g. 1920x1080")
		fmt.Fprintln(os.Stderr, "  Fullscreen   true|false")
		fmt.Fprintln(os.Stderr, "  VSync        true|false")
		fmt.Fprintln(os.Stderr, "  RefreshRate  Hz, e.g. 59.94")
		fmt.Fprintln(os.Stderr, "  Monitor      an entry from 'displayout ports'")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "set requires <pin> <value>")
		fs.Usage()
		return 2
	}

	value, err := pinArg(fs.Arg(0), fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := newClient().SetPin(fs.Arg(0), value); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfigAt(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  displayout config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  displayout config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  displayout config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/displayout/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfigAt(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/displayout/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		_ = fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigAt(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			for _, f := range res.Files {
				fmt.Printf("# loaded: %s\n", f)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/displayout/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigAt(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: displayout tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive dashboard for the running output node.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, 1/2   Switch between Output and Monitors")
		fmt.Fprintln(os.Stderr, "  e          Edit output pins")
		fmt.Fprintln(os.Stderr, "  a / r      Apply / revert the custom resolution")
		fmt.Fprintln(os.Stderr, "  enter      Lock the output to the selected monitor")
		fmt.Fprintln(os.Stderr, "  s          Save the selected monitor to the config file")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C  Quit")
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/displayout/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if err := tui.Run(newClient(), *path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}
