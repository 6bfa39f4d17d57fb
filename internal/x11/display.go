package x11

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// DisplayEnv names the X display and authority file a connection uses.
type DisplayEnv struct {
	Display    string
	XAuthority string
}

// ResolveDisplayEnv fills in the display a daemon should connect to when it
// was started without a GUI environment. Precedence: the process environment,
// then configured, then the user's login session, then the highest X socket.
func ResolveDisplayEnv(configured DisplayEnv) (DisplayEnv, error) {
	env := DisplayEnv{
		Display:    strings.TrimSpace(os.Getenv("DISPLAY")),
		XAuthority: strings.TrimSpace(os.Getenv("XAUTHORITY")),
	}
	if env.Display == "" {
		env.Display = strings.TrimSpace(configured.Display)
	}
	if env.XAuthority == "" {
		env.XAuthority = strings.TrimSpace(configured.XAuthority)
	}

	if env.Display == "" || env.XAuthority == "" {
		detectedDisplay, detectedXAuthority := detectSessionX11EnvFn()
		if env.Display == "" {
			env.Display = strings.TrimSpace(detectedDisplay)
		}
		if env.XAuthority == "" {
			env.XAuthority = strings.TrimSpace(detectedXAuthority)
		}
	}
	if env.Display == "" {
		env.Display = detectDisplayFromSocketFn("/tmp/.X11-unix")
	}
	if env.Display == "" {
		return DisplayEnv{}, fmt.Errorf("no X display found; set display in config (e.g. display: \":0\") or export DISPLAY")
	}

	if env.XAuthority == "" {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				env.XAuthority = candidate
			}
		}
	}
	return env, nil
}

// Export publishes XAUTHORITY to the process environment, where the X
// client library reads it during connection setup.
func (e DisplayEnv) Export() error {
	if e.XAuthority == "" {
		return nil
	}
	return os.Setenv("XAUTHORITY", e.XAuthority)
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectSessionX11Env() (display string, xauthority string) {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, sessionID := range parseLoginctlSessions(out, uid) {
		d := loginctlShowSessionProp(sessionID, "Display")
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}

		xauth := ""
		leader := loginctlShowSessionProp(sessionID, "Leader")
		if leader != "" && leader != "0" {
			if envMap, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(envMap["DISPLAY"]); ed != "" {
					d = ed
				}
				xauth = strings.TrimSpace(envMap["XAUTHORITY"])
			}
		}
		return d, xauth
	}
	return "", ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlShowSessionProp(sessionID string, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", sessionID, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		if k, v, ok := strings.Cut(part, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

// detectDisplayFromSockets returns the highest-numbered display with a
// socket in dir.
func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		if n, err := strconv.Atoi(name[1:]); err == nil {
			displays = append(displays, n)
		}
	}
	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}
