// Package open hands finished files to the system's default application.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Start opens path with the default handler without waiting for it to exit.
func Start(path string) error {
	cmd, ok := command(runtime.GOOS, path)
	if !ok {
		return fmt.Errorf("opening files is not supported on %s", runtime.GOOS)
	}
	return cmd.Start()
}

// StartWith opens path with app. An empty app means the default handler.
func StartWith(path, app string) error {
	if app == "" {
		return Start(path)
	}

	cmd, ok := commandWith(runtime.GOOS, path, app)
	if !ok {
		return fmt.Errorf("opening files is not supported on %s", runtime.GOOS)
	}
	return cmd.Start()
}

func command(goos, path string) (*exec.Cmd, bool) {
	switch goos {
	case "windows":
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", path), true
	case "darwin":
		return exec.Command("open", path), true
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path), true
	case "android":
		return exec.Command("termux-open", path), true
	default:
		return nil, false
	}
}

func commandWith(goos, path, app string) (*exec.Cmd, bool) {
	switch goos {
	case "windows":
		return exec.Command("cmd", "/C", "start", "", app, path), true
	case "darwin":
		return exec.Command("open", "-a", app, path), true
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command(app, path), true
	case "android":
		return exec.Command("termux-open", "--choose", path), true
	default:
		return nil, false
	}
}
