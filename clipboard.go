package spin

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/gogpu/spin/imageio"
	"github.com/gogpu/spin/pyramid"
)

// CopyImage exports buf as PNG to the system clipboard via wl-copy,
// falling back to xclip. The helper runs detached; the temp file is
// removed when it finishes. Returns ErrClipboardHelperMissing when
// neither helper is installed.
func CopyImage(buf *pyramid.Buffer) error {
	helper, args, err := clipboardHelper()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "spin-clipboard-*.png")
	if err != nil {
		return fmt.Errorf("spin: clipboard temp file: %w", err)
	}
	path := f.Name()
	if err := imageio.EncodePNG(f, buf); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("spin: clipboard encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("spin: clipboard temp file: %w", err)
	}

	cmd := exec.Command(helper, append(args, path)...)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return fmt.Errorf("spin: spawn %s: %w", helper, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slogger().Warn("clipboard helper failed", "helper", helper, "error", err)
		} else {
			slogger().Info("image copied to clipboard", "helper", helper)
		}
		os.Remove(path)
	}()
	return nil
}

func clipboardHelper() (string, []string, error) {
	if _, err := exec.LookPath("wl-copy"); err == nil {
		return "wl-copy", []string{"--type", "image/png", "-f"}, nil
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return "xclip", []string{"-selection", "clipboard", "-t", "image/png", "-i"}, nil
	}
	return "", nil, ErrClipboardHelperMissing
}
