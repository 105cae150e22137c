package shared

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"
)

var getRuntime = func() string { return runtime.GOOS }

var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// openCommand builds the platform command that hands target to the system's default handler.
func openCommand(target string) (*exec.Cmd, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens the default system browser (or image viewer, for file paths) at target.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(target string) error {
	cmd, err := openCommand(target)
	if err != nil {
		return err
	}

	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

// BrowserOpener opens image resources in a new browsing context using the system handler.
// Failures are logged; opening is best effort.
type BrowserOpener struct {
	Logger *log.Logger
}

// Open hands url to [OpenBrowser].
func (o BrowserOpener) Open(url string) {
	if err := OpenBrowser(url); err != nil && o.Logger != nil {
		o.Logger.Warn("could not open image", "url", url, "error", err)
	}
}
