package charts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
)

// OpenFile opens path in the system's default viewer without waiting for it
// to exit.
func OpenFile(path string) error {
	_, err := startDetached(viewerCommand(path))
	return err
}

func viewerCommand(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// startDetached starts cmd and reaps it in the background. The returned
// channel receives the exit error once the process has been waited for.
func startDetached(cmd *exec.Cmd) (<-chan error, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()
	return done, nil
}

// Viewer shows figures one at a time, waiting for Enter between them.
type Viewer struct {
	Open func(path string) error
	In   io.Reader
	Out  io.Writer
}

// Show opens every path in turn. A figure that cannot be opened is logged
// and its path printed instead.
func (v *Viewer) Show(paths []string) error {
	open := v.Open
	if open == nil {
		open = OpenFile
	}
	in := bufio.NewReader(v.In)

	for i, path := range paths {
		if err := open(path); err != nil {
			slog.Warn("open figure failed", slog.String("path", path), slog.Any("error", err))
		}
		fmt.Fprintf(v.Out, "[%d/%d] %s - press Enter to continue\n", i+1, len(paths), path)
		if _, err := in.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("wait for input: %w", err)
		}
	}
	return nil
}
