// Package runtimepath locates per-user runtime files such as the control
// socket.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnvSocket overrides the control socket location for the daemon and its
// clients. An explicit ipc.socket in the config still wins.
const EnvSocket = "DISPLAYOUT_SOCKET"

const socketName = "displayout.sock"

var (
	runUserBase = "/run/user"
	getuid      = os.Getuid
)

// Dir returns the runtime directory: $XDG_RUNTIME_DIR, then /run/user/<uid>,
// then a private directory under os.TempDir that is created on demand.
func Dir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); dir != "" {
		return dir, nil
	}

	uid := strconv.Itoa(getuid())
	if dir := filepath.Join(runUserBase, uid); isDir(dir) {
		return dir, nil
	}

	dir := filepath.Join(os.TempDir(), "displayout-"+uid)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	info, err := os.Lstat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to stat runtime dir: %w", err)
	}
	if !info.IsDir() || info.Mode().Perm()&0077 != 0 {
		return "", fmt.Errorf("runtime dir %s must be a directory with mode 0700", dir)
	}
	return dir, nil
}

// SocketPath returns the control socket path.
func SocketPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvSocket)); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, socketName), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
